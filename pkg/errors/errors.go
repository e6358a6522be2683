package errors

import "errors"

// Общие ошибки портов, на которые могут опираться все адаптеры
var (
	// ErrCacheMiss возвращается кэшем, когда ключ не найден
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrNotFound возвращается хранилищем, когда запись не найдена
	ErrNotFound = errors.New("storage: record not found")
)
