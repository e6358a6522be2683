package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	pkgerrors "github.com/motoekip/catalog-service/pkg/errors"
)

// RedisSelectionStore реализация хранилища пользовательских списков на Redis
type RedisSelectionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSelectionStore создает новое хранилище списков.
// ttl задает время жизни списка с момента последней записи;
// нулевое значение означает хранение без ограничения
func NewRedisSelectionStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisSelectionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisSelectionStore{client: client, ttl: ttl}, nil
}

// Get получает значение по ключу
func (s *RedisSelectionStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get key from redis: %w", err)
	}
	return value, nil
}

// Set сохраняет значение по ключу
func (s *RedisSelectionStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key in redis: %w", err)
	}
	return nil
}

// Delete удаляет ключ
func (s *RedisSelectionStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key from redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func (s *RedisSelectionStore) Close() error {
	return s.client.Close()
}
