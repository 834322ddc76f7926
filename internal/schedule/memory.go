package schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shaiso/Impulse/internal/domain"
)

// MemoryStore — in-memory реализация Store для тестов и локальной
// разработки. Семантика совпадает с PostgresStore: точные
// структурированные ключи, upsert-замена, плотная выборка по workspace.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]map[int]domain.ScheduleEntry
}

// NewMemoryStore создаёт пустой MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]map[int]domain.ScheduleEntry),
	}
}

// ListByWorkspace возвращает entries workspace в порядке index.
func (s *MemoryStore) ListByWorkspace(_ context.Context, workspaceID string) ([]domain.ScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws := s.entries[workspaceID]
	out := make([]domain.ScheduleEntry, 0, len(ws))
	for _, entry := range ws {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

// Upsert вставляет или заменяет entry по ключу (workspace_id, idx).
func (s *MemoryStore) Upsert(_ context.Context, entry *domain.ScheduleEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.entries[entry.WorkspaceID]
	if !ok {
		ws = make(map[int]domain.ScheduleEntry)
		s.entries[entry.WorkspaceID] = ws
	}

	stored := *entry
	now := time.Now().UTC()
	if existing, ok := ws[entry.Index]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	ws[entry.Index] = stored
	return nil
}

// Remove удаляет одну entry. Отсутствующий ключ — не ошибка.
func (s *MemoryStore) Remove(_ context.Context, workspaceID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ws, ok := s.entries[workspaceID]; ok {
		delete(ws, index)
		if len(ws) == 0 {
			delete(s.entries, workspaceID)
		}
	}
	return nil
}

// ListDue возвращает entries с next_due_at <= now, не более limit.
func (s *MemoryStore) ListDue(_ context.Context, now time.Time, limit int) ([]domain.ScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ScheduleEntry
	for _, ws := range s.entries {
		for _, entry := range ws {
			if !entry.NextDueAt.After(now) {
				out = append(out, entry)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].NextDueAt.Before(out[j].NextDueAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Reschedule фиксирует срабатывание и назначает следующее время.
func (s *MemoryStore) Reschedule(_ context.Context, workspaceID string, index int, firedAt, nextDue time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.entries[workspaceID]
	if !ok {
		return ErrNotFound
	}
	entry, ok := ws[index]
	if !ok {
		return ErrNotFound
	}

	fired := firedAt
	entry.LastFiredAt = &fired
	entry.NextDueAt = nextDue
	entry.UpdatedAt = time.Now().UTC()
	ws[index] = entry
	return nil
}

// NextDue возвращает ближайшее next_due_at среди entries workspace.
func (s *MemoryStore) NextDue(_ context.Context, workspaceID string) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var next *time.Time
	for _, entry := range s.entries[workspaceID] {
		due := entry.NextDueAt
		if next == nil || due.Before(*next) {
			next = &due
		}
	}
	return next, nil
}
