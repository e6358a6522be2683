package interfaces

import (
	"context"

	"github.com/motoekip/catalog-service/internal/domain/models"
)

// CatalogStoragePort определяет интерфейс источника товаров каталога.
// Реализация может использовать любую базу данных (PostgreSQL, MySQL и т.д.)
type CatalogStoragePort interface {
	// ListByCategory возвращает полный, неотфильтрованный список товаров
	// категории в стабильном порядке
	ListByCategory(ctx context.Context, category string) ([]models.Product, error)

	// GetProduct получает товар по ID
	// Возвращает nil, nil если товар не найден
	GetProduct(ctx context.Context, productID string) (*models.Product, error)

	// SaveProduct сохраняет товар в хранилище
	// Если товар с таким ID уже существует, он будет обновлен
	SaveProduct(ctx context.Context, product *models.Product) error

	// CountByCategory возвращает количество товаров в каждой категории
	CountByCategory(ctx context.Context) (map[string]int, error)

	// Close закрывает соединение с хранилищем
	Close() error
}
