package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/motoekip/catalog-service/internal/adapters/messaging"
	"github.com/motoekip/catalog-service/internal/domain/catalog"
	"github.com/motoekip/catalog-service/internal/domain/models"
	pkgerrors "github.com/motoekip/catalog-service/pkg/errors"
	"github.com/motoekip/catalog-service/pkg/interfaces"
)

// Ошибки уровня бизнес-логики каталога
var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrProductNotFound = errors.New("product not found")
)

// FacetView описывает один фасет категории для клиента:
// заголовок и список доступных значений
type FacetView struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Options []string `json:"options"`
}

// CategoryView описывает категорию каталога
type CategoryView struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Count    int    `json:"count"`
}

// CatalogService предоставляет бизнес-логику каталога: загрузку списков
// товаров, фильтрацию через движок и публикацию событий просмотра
type CatalogService struct {
	storage   interfaces.CatalogStoragePort
	cache     interfaces.CachePort
	messaging interfaces.MessagingPort
	logger    interfaces.LoggerPort
	cacheTTL  time.Duration
}

// NewCatalogService создает новый экземпляр CatalogService
func NewCatalogService(
	storage interfaces.CatalogStoragePort,
	cache interfaces.CachePort,
	msgBroker interfaces.MessagingPort,
	logger interfaces.LoggerPort,
	cacheTTL time.Duration,
) *CatalogService {
	return &CatalogService{
		storage:   storage,
		cache:     cache,
		messaging: msgBroker,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// ListCatalog возвращает страницу каталога категории: товары после
// фильтрации, сортировки и пагинации, плюс опции фасетов полного списка
func (s *CatalogService) ListCatalog(ctx context.Context, category string, criteria models.FilterCriteria) (*catalog.Result, error) {
	schema, ok := catalog.SchemaFor(category)
	if !ok {
		return nil, ErrUnknownCategory
	}

	products, err := s.loadCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	result, err := catalog.NewEngine(schema).Run(products, criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to run catalog engine: %w", err)
	}

	s.publishCatalogViewed(ctx, category, criteria, result.TotalCount)

	return result, nil
}

// Facets возвращает фасеты категории с опциями, собранными по полному
// списку товаров. Опции не сужаются активными фильтрами
func (s *CatalogService) Facets(ctx context.Context, category string) ([]FacetView, error) {
	schema, ok := catalog.SchemaFor(category)
	if !ok {
		return nil, ErrUnknownCategory
	}

	products, err := s.loadCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	options := catalog.NewEngine(schema).DeriveFacetOptions(products)

	views := make([]FacetView, 0, len(schema.Facets))
	for _, facet := range schema.Facets {
		views = append(views, FacetView{
			Name:    facet.Name,
			Title:   facet.Title,
			Options: options[facet.Name],
		})
	}

	return views, nil
}

// Categories возвращает список категорий каталога с количеством товаров
func (s *CatalogService) Categories(ctx context.Context) ([]CategoryView, error) {
	counts, err := s.storage.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products by category: %w", err)
	}

	schemas := catalog.Schemas()
	views := make([]CategoryView, 0, len(schemas))
	for _, schema := range schemas {
		views = append(views, CategoryView{
			Category: schema.Category,
			Title:    schema.Title,
			Count:    counts[schema.Category],
		})
	}

	return views, nil
}

// GetProduct получает товар по ID
func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	cacheKey := "product:" + productID

	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		var product models.Product
		if err := json.Unmarshal(cached, &product); err == nil {
			return &product, nil
		}
		s.logger.WarnWithContext(ctx, "Failed to unmarshal cached product", "key", cacheKey)
	}

	product, err := s.storage.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if data, err := json.Marshal(product); err == nil {
		if err := s.cache.Set(ctx, cacheKey, data, s.cacheTTL); err != nil {
			s.logger.WarnWithContext(ctx, "Failed to cache product", "key", cacheKey, "error", err)
		}
	}

	return product, nil
}

// InvalidateCategory сбрасывает кэш списка товаров категории.
// Пустая категория сбрасывает кэш всего каталога
func (s *CatalogService) InvalidateCategory(ctx context.Context, category string) error {
	pattern := "catalog:*"
	if category != "" {
		pattern = "catalog:" + category
	}

	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	if err := s.cache.DeleteByPattern(ctx, "product:*"); err != nil {
		return fmt.Errorf("failed to invalidate product cache: %w", err)
	}

	return nil
}

// SubscribeToReseeds подписывается на события пересоздания каталога.
// Сидер и другие экземпляры сервиса публикуют это событие после записи
// товаров; получатель сбрасывает свой кэш, и следующая выборка читает
// свежие данные из хранилища. Возвращает функцию отмены подписки
func (s *CatalogService) SubscribeToReseeds(ctx context.Context) (func() error, error) {
	return s.messaging.Subscribe(ctx, messaging.CatalogReseededEvent, func(ctx context.Context, msg *interfaces.Message) error {
		s.logger.InfoWithContext(ctx, "Получено событие пересоздания каталога, сброс кэша",
			"message_id", msg.ID)
		return s.InvalidateCategory(ctx, "")
	})
}

// loadCategory загружает полный список товаров категории:
// сначала из кэша, при промахе из хранилища с записью в кэш
func (s *CatalogService) loadCategory(ctx context.Context, category string) ([]models.Product, error) {
	cacheKey := "catalog:" + category

	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		var products []models.Product
		if err := json.Unmarshal(cached, &products); err == nil {
			return products, nil
		}
		s.logger.WarnWithContext(ctx, "Failed to unmarshal cached category", "key", cacheKey)
	} else if !errors.Is(err, pkgerrors.ErrCacheMiss) {
		s.logger.WarnWithContext(ctx, "Failed to read category from cache", "key", cacheKey, "error", err)
	}

	products, err := s.storage.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load category %s: %w", category, err)
	}

	if data, err := json.Marshal(products); err == nil {
		if err := s.cache.Set(ctx, cacheKey, data, s.cacheTTL); err != nil {
			s.logger.WarnWithContext(ctx, "Failed to cache category", "key", cacheKey, "error", err)
		}
	}

	return products, nil
}

// publishCatalogViewed публикует событие просмотра категории.
// Ошибка публикации не прерывает обработку запроса
func (s *CatalogService) publishCatalogViewed(ctx context.Context, category string, criteria models.FilterCriteria, totalCount int) {
	payload := messaging.CatalogViewedPayload{
		Event:      messaging.CatalogViewedEvent,
		Category:   category,
		TextQuery:  criteria.TextQuery,
		SortKey:    criteria.SortKey,
		Page:       criteria.Page,
		TotalCount: totalCount,
		ViewedAt:   time.Now().UTC(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.ErrorWithContext(ctx, "Failed to marshal catalog_viewed event", "error", err)
		return
	}

	if err := s.messaging.PublishWithKey(ctx, messaging.CatalogViewedEvent, category, data); err != nil {
		s.logger.WarnWithContext(ctx, "Failed to publish catalog_viewed event", "category", category, "error", err)
	}
}
