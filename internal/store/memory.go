package store

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	pkgerrors "github.com/motoekip/catalog-service/pkg/errors"
)

// MemorySelectionStore хранилище пользовательских списков в памяти процесса.
// Используется в разработке и тестах вместо Redis
type MemorySelectionStore struct {
	cache *gocache.Cache
}

// NewMemorySelectionStore создает хранилище в памяти.
// Нулевой ttl означает хранение без ограничения
func NewMemorySelectionStore(ttl time.Duration) *MemorySelectionStore {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemorySelectionStore{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

// Get получает значение по ключу
func (s *MemorySelectionStore) Get(_ context.Context, key string) ([]byte, error) {
	value, found := s.cache.Get(key)
	if !found {
		return nil, pkgerrors.ErrNotFound
	}
	return value.([]byte), nil
}

// Set сохраняет значение по ключу
func (s *MemorySelectionStore) Set(_ context.Context, key string, value []byte) error {
	buf := make([]byte, len(value))
	copy(buf, value)
	s.cache.Set(key, buf, gocache.DefaultExpiration)
	return nil
}

// Delete удаляет ключ
func (s *MemorySelectionStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Close освобождает ресурсы хранилища
func (s *MemorySelectionStore) Close() error {
	s.cache.Flush()
	return nil
}
