package objstore

import (
	"context"
	"errors"
)

// ErrNotFound — объект с таким ключом отсутствует.
var ErrNotFound = errors.New("object not found")

// Store — порт durable object store.
//
// Узкий контракт, который требуется metrics-слою: записать объект по
// ключу, перечислить ключи по префиксу, прочитать объект. Ключи —
// path-подобные строки ("metrics/workspace=acme/year=2026/...").
//
// Store не интерпретирует содержимое и не реализует retention:
// удаление старых объектов — внешняя политика.
type Store interface {
	// Put записывает объект. Существующий ключ перезаписывается.
	Put(ctx context.Context, key string, data []byte) error

	// List возвращает ключи с данным префиксом в произвольном порядке.
	List(ctx context.Context, prefix string) ([]string, error)

	// Get возвращает содержимое объекта или ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
}
