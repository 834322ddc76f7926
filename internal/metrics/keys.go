package metrics

import (
	"fmt"
	"time"
)

// Раскладка объектов в object store.
//
// Актуальная, с workspace в пути:
//
//	metrics/workspace={id}/year={YYYY}/month={MM}/day={DD}/hour={HH}/metrics-{epochMillis}.json
//
// Legacy, без workspace (фильтруется по содержимому на клиенте):
//
//	metrics/year={YYYY}/month={MM}/day={DD}/hour={HH}/metrics-{epochMillis}.json
//
// Legacy-раскладка остаётся читаемой бессрочно для обратной совместимости.

// partitionPrefix — префикс часовой партиции workspace.
func partitionPrefix(workspaceID string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("metrics/workspace=%s/year=%04d/month=%02d/day=%02d/hour=%02d/",
		workspaceID, t.Year(), int(t.Month()), t.Day(), t.Hour())
}

// legacyPrefix — префикс часовой legacy-партиции (без workspace).
func legacyPrefix(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("metrics/year=%04d/month=%02d/day=%02d/hour=%02d/",
		t.Year(), int(t.Month()), t.Day(), t.Hour())
}

// objectKey — ключ объекта одного flush для workspace.
// Партиция берётся от времени flush, не от timestamp записей: записи
// на границе часа могут оказаться в партиции следующего часа.
func objectKey(workspaceID string, flushedAt time.Time) string {
	return fmt.Sprintf("%smetrics-%d.json",
		partitionPrefix(workspaceID, flushedAt), flushedAt.UnixMilli())
}
