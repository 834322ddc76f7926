package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shaiso/Impulse/internal/domain"
	"github.com/shaiso/Impulse/internal/objstore"
)

// Default configuration values.
const (
	defaultLimit       = 100
	defaultWindowHours = 168 // 7 суток почасовых партиций
	defaultLegacyHours = 24  // legacy-партиции без workspace в пути
	defaultFetchBatch  = 24  // одновременных запросов к object store
)

// WorkspaceMetrics — результат чтения метрик workspace.
type WorkspaceMetrics struct {
	Total      int                      `json:"total"`
	Stats      domain.WorkspaceStats    `json:"stats"`
	Executions []domain.ExecutionRecord `json:"executions"`
}

// Reader восстанавливает историю выполнений workspace из object store.
//
// Сканирует почасовые партиции за ограниченное окно (7 суток) под
// workspace-префиксом плюс ограниченный набор legacy-партиций без
// workspace в пути (фильтрация по содержимому). Партиции читаются
// параллельно, но не больше FetchBatch одновременно.
//
// Recorder гарантирует только at-least-once, поэтому записи
// дедуплицируются по паре (timestamp, job_id).
type Reader struct {
	store  objstore.Store
	logger *slog.Logger

	windowHours int
	legacyHours int
	fetchBatch  int

	now func() time.Time
}

// ReaderConfig — конфигурация Reader.
type ReaderConfig struct {
	Store  objstore.Store
	Logger *slog.Logger

	// WindowHours — глубина сканирования workspace-партиций (default: 168).
	WindowHours int

	// LegacyHours — глубина сканирования legacy-партиций (default: 24).
	LegacyHours int

	// FetchBatch — ограничение параллельных запросов (default: 24).
	FetchBatch int
}

// NewReader создаёт Reader.
func NewReader(cfg ReaderConfig) *Reader {
	windowHours := cfg.WindowHours
	if windowHours <= 0 {
		windowHours = defaultWindowHours
	}

	legacyHours := cfg.LegacyHours
	if legacyHours <= 0 {
		legacyHours = defaultLegacyHours
	}

	fetchBatch := cfg.FetchBatch
	if fetchBatch <= 0 {
		fetchBatch = defaultFetchBatch
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reader{
		store:       cfg.Store,
		logger:      logger,
		windowHours: windowHours,
		legacyHours: legacyHours,
		fetchBatch:  fetchBatch,
		now:         time.Now,
	}
}

// WorkspaceMetrics возвращает историю и агрегаты workspace.
// Пустой результат — нулевая статистика, не ошибка.
func (r *Reader) WorkspaceMetrics(ctx context.Context, workspaceID string, limit int) (*WorkspaceMetrics, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	now := r.now().UTC()

	prefixes := make([]prefixScan, 0, r.windowHours+r.legacyHours)
	for h := 0; h < r.windowHours; h++ {
		t := now.Add(-time.Duration(h) * time.Hour)
		prefixes = append(prefixes, prefixScan{prefix: partitionPrefix(workspaceID, t)})
	}
	for h := 0; h < r.legacyHours; h++ {
		t := now.Add(-time.Duration(h) * time.Hour)
		prefixes = append(prefixes, prefixScan{prefix: legacyPrefix(t), legacy: true})
	}

	records, err := r.fetchAll(ctx, workspaceID, prefixes)
	if err != nil {
		return nil, err
	}

	records = dedupe(records)

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})

	stats := domain.ComputeStats(records)

	executions := records
	if len(executions) > limit {
		executions = executions[:limit]
	}

	return &WorkspaceMetrics{
		Total:      len(records),
		Stats:      stats,
		Executions: executions,
	}, nil
}

type prefixScan struct {
	prefix string
	legacy bool
}

// fetchAll читает все партиции ограниченными параллельными батчами.
func (r *Reader) fetchAll(ctx context.Context, workspaceID string, prefixes []prefixScan) ([]domain.ExecutionRecord, error) {
	var mu sync.Mutex
	var records []domain.ExecutionRecord

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.fetchBatch)

	for _, scan := range prefixes {
		g.Go(func() error {
			found, err := r.fetchPrefix(ctx, workspaceID, scan)
			if err != nil {
				return err
			}
			if len(found) == 0 {
				return nil
			}

			mu.Lock()
			records = append(records, found...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// fetchPrefix читает одну часовую партицию.
func (r *Reader) fetchPrefix(ctx context.Context, workspaceID string, scan prefixScan) ([]domain.ExecutionRecord, error) {
	keys, err := r.store.List(ctx, scan.prefix)
	if err != nil {
		return nil, err
	}

	var records []domain.ExecutionRecord
	for _, key := range keys {
		data, err := r.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, objstore.ErrNotFound) {
				// Объект исчез между List и Get — пропускаем.
				continue
			}
			return nil, err
		}

		var batch []domain.ExecutionRecord
		if err := json.Unmarshal(data, &batch); err != nil {
			// Битый объект не валит весь запрос.
			r.logger.Warn("skipping unreadable metrics object", "key", key, "error", err)
			continue
		}

		for i := range batch {
			// Legacy-партиции общие для всех workspace.
			if scan.legacy && batch[i].WorkspaceID != workspaceID {
				continue
			}
			records = append(records, batch[i])
		}
	}

	return records, nil
}

// dedupe убирает дубликаты по (timestamp, job_id), сохраняя первый экземпляр.
func dedupe(records []domain.ExecutionRecord) []domain.ExecutionRecord {
	seen := make(map[string]bool, len(records))
	out := records[:0]
	for i := range records {
		key := records[i].DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, records[i])
	}
	return out
}
