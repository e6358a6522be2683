package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/motoekip/catalog-service/internal/domain/models"
	"github.com/motoekip/catalog-service/pkg/tx"
)

// CatalogStorage реализация источника товаров для PostgreSQL
type CatalogStorage struct {
	pool *pgxpool.Pool
}

// NewCatalogStorage создает новый экземпляр CatalogStorage
func NewCatalogStorage(ctx context.Context, connectionString string) (*CatalogStorage, error) {
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &CatalogStorage{pool: pool}, nil
}

// Pool возвращает пул соединений для менеджера транзакций
func (r *CatalogStorage) Pool() *pgxpool.Pool {
	return r.pool
}

// Close закрывает соединение с БД
func (r *CatalogStorage) Close() error {
	r.pool.Close()
	return nil
}

type executor interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// getExecutor возвращает исполнителя запросов: транзакцию из контекста
// (если запрос выполняется внутри TxManager.Do) или пул
func (r *CatalogStorage) getExecutor(ctx context.Context) executor {
	if txn, ok := tx.GetTxFromContext(ctx); ok {
		return txn
	}
	return r.pool
}

// ListByCategory возвращает полный список товаров категории.
// Порядок стабилен между вызовами: по дате создания, затем по ID
func (r *CatalogStorage) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	query := `
		SELECT id, name, description, category, brand, price, old_price, discount,
		       in_stock, rating, popularity, image_url, facets, created_at, updated_at
		FROM catalog.products
		WHERE category = $1
		ORDER BY created_at, id
	`

	rows, err := r.getExecutor(ctx).Query(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product rows: %w", err)
	}

	return products, nil
}

// GetProduct получает товар по ID
func (r *CatalogStorage) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	query := `
		SELECT id, name, description, category, brand, price, old_price, discount,
		       in_stock, rating, popularity, image_url, facets, created_at, updated_at
		FROM catalog.products
		WHERE id = $1
	`

	row := r.getExecutor(ctx).QueryRow(ctx, query, productID)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Товар не найден
		}
		return nil, err
	}

	return product, nil
}

// SaveProduct сохраняет товар в хранилище (upsert по ID)
func (r *CatalogStorage) SaveProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO catalog.products (id, name, description, category, brand, price, old_price,
		                              discount, in_stock, rating, popularity, image_url, facets,
		                              created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id)
		DO UPDATE SET
			name = $2, description = $3, category = $4, brand = $5, price = $6,
			old_price = $7, discount = $8, in_stock = $9, rating = $10,
			popularity = $11, image_url = $12, facets = $13, updated_at = $15
	`

	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	facets, err := json.Marshal(product.Facets)
	if err != nil {
		return fmt.Errorf("failed to marshal facets: %w", err)
	}

	if _, err := r.getExecutor(ctx).Exec(ctx, query,
		product.ID, product.Name, product.Description, product.Category, product.Brand,
		product.Price, product.OldPrice, product.Discount, product.InStock, product.Rating,
		product.Popularity, product.ImageURL, facets, product.CreatedAt, product.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	return nil
}

// CountByCategory возвращает количество товаров в каждой категории
func (r *CatalogStorage) CountByCategory(ctx context.Context) (map[string]int, error) {
	query := `SELECT category, COUNT(*) FROM catalog.products GROUP BY category`

	rows, err := r.getExecutor(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts[category] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read category counts: %w", err)
	}

	return counts, nil
}

// scanProduct читает одну строку товара, включая JSONB фасеты
func scanProduct(row pgx.Row) (*models.Product, error) {
	var product models.Product
	var facets []byte

	err := row.Scan(
		&product.ID, &product.Name, &product.Description, &product.Category, &product.Brand,
		&product.Price, &product.OldPrice, &product.Discount, &product.InStock, &product.Rating,
		&product.Popularity, &product.ImageURL, &facets, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if len(facets) > 0 {
		if err := json.Unmarshal(facets, &product.Facets); err != nil {
			return nil, fmt.Errorf("failed to unmarshal facets: %w", err)
		}
	}

	return &product, nil
}
