package interfaces

import "context"

// SelectionStorePort представляет интерфейс KV-хранилища пользовательских
// списков (корзина, избранное). Значение хранится как сериализованный список
// целиком: операции чтения/записи атомарны на уровне ключа
type SelectionStorePort interface {
	// Get получает значение по ключу. Возвращает errors.ErrNotFound,
	// если ключ отсутствует
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение по ключу, перезаписывая существующее
	Set(ctx context.Context, key string, value []byte) error

	// Delete удаляет ключ. Удаление отсутствующего ключа не является ошибкой
	Delete(ctx context.Context, key string) error

	// Close закрывает соединение с хранилищем
	Close() error
}
