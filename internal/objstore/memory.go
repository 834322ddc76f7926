package objstore

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// MemoryStore — in-memory реализация Store для тестов и локальной
// разработки. Потокобезопасна.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// FailPuts — если true, Put возвращает ошибку.
	// Используется тестами recorder'а для проверки requeue.
	FailPuts bool
}

// NewMemoryStore создаёт пустой MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Put записывает объект.
func (s *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailPuts {
		return errors.New("put failed")
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[key] = cp
	return nil
}

// List возвращает ключи с данным префиксом.
func (s *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Get возвращает содержимое объекта.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

// Len возвращает количество объектов.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
