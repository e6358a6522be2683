package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/motoekip/catalog-service/internal/adapters/messaging"
	"github.com/motoekip/catalog-service/internal/domain/models"
	"github.com/motoekip/catalog-service/internal/store"
	pkgerrors "github.com/motoekip/catalog-service/pkg/errors"
	"github.com/motoekip/catalog-service/pkg/interfaces"
)

// fakeStorage источник товаров в памяти со счетчиком обращений
type fakeStorage struct {
	products  map[string][]models.Product
	listCalls int
}

func (f *fakeStorage) ListByCategory(_ context.Context, category string) ([]models.Product, error) {
	f.listCalls++
	return f.products[category], nil
}

func (f *fakeStorage) GetProduct(_ context.Context, productID string) (*models.Product, error) {
	for _, list := range f.products {
		for i := range list {
			if list[i].ID == productID {
				p := list[i]
				return &p, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeStorage) SaveProduct(_ context.Context, _ *models.Product) error { return nil }

func (f *fakeStorage) CountByCategory(_ context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for category, list := range f.products {
		counts[category] = len(list)
	}
	return counts, nil
}

func (f *fakeStorage) Close() error { return nil }

// fakeCache кэш в памяти без TTL
type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{data: make(map[string][]byte)} }

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	value, found := f.data[key]
	if !found {
		return nil, pkgerrors.ErrCacheMiss
	}
	return value, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.data[key] = value
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeCache) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			delete(f.data, key)
		}
	}
	return nil
}

func (f *fakeCache) Close() error { return nil }

// fakeMessaging записывает опубликованные сообщения и оформленные подписки
type fakeMessaging struct {
	published []string // topic
	handlers  map[string]interfaces.MessageHandler
}

func (f *fakeMessaging) Publish(_ context.Context, topic string, _ []byte) error {
	f.published = append(f.published, topic)
	return nil
}

func (f *fakeMessaging) PublishWithKey(_ context.Context, topic string, _ string, _ []byte) error {
	f.published = append(f.published, topic)
	return nil
}

func (f *fakeMessaging) Subscribe(_ context.Context, topic string, handler interfaces.MessageHandler) (func() error, error) {
	if f.handlers == nil {
		f.handlers = make(map[string]interfaces.MessageHandler)
	}
	f.handlers[topic] = handler
	return func() error {
		delete(f.handlers, topic)
		return nil
	}, nil
}

func (f *fakeMessaging) Close() error { return nil }

// nopLogger логгер-заглушка для тестов
type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func (nopLogger) DebugWithContext(context.Context, string, ...interface{}) {}
func (nopLogger) InfoWithContext(context.Context, string, ...interface{})  {}
func (nopLogger) WarnWithContext(context.Context, string, ...interface{})  {}
func (nopLogger) ErrorWithContext(context.Context, string, ...interface{}) {}
func (l nopLogger) WithFields(...interfaces.LogField) interfaces.LoggerPort {
	return l
}
func (l nopLogger) WithField(string, interface{}) interfaces.LoggerPort { return l }
func (nopLogger) Sync() error                                           { return nil }

func testProducts() map[string][]models.Product {
	return map[string][]models.Product{
		"tires": {
			{ID: "1", Name: "Michelin Road 6", Category: "tires", Brand: "Michelin", Price: 5000, InStock: true, Facets: map[string]string{"season": "Лето"}},
			{ID: "2", Name: "Pirelli Angel GT", Category: "tires", Brand: "Pirelli", Price: 8000, OldPrice: 10000, Discount: 20, InStock: true, Facets: map[string]string{"season": "Лето"}},
			{ID: "3", Name: "Mitas Terra Force", Category: "tires", Brand: "Mitas", Price: 4500, InStock: false, Facets: map[string]string{"season": "Всесезонные"}},
		},
		"oils": {
			{ID: "10", Name: "Motul 7100", Category: "oils", Brand: "Motul", Price: 1500, InStock: true},
		},
	}
}

func newTestCatalogService(storage *fakeStorage, broker *fakeMessaging) (*CatalogService, *fakeCache) {
	cache := newFakeCache()
	return NewCatalogService(storage, cache, broker, nopLogger{}, time.Minute), cache
}

func TestListCatalogUnknownCategory(t *testing.T) {
	svc, _ := newTestCatalogService(&fakeStorage{products: testProducts()}, &fakeMessaging{})

	_, err := svc.ListCatalog(context.Background(), "snowmobiles", models.FilterCriteria{})
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestListCatalogReturnsFilteredPage(t *testing.T) {
	storage := &fakeStorage{products: testProducts()}
	broker := &fakeMessaging{}
	svc, _ := newTestCatalogService(storage, broker)

	result, err := svc.ListCatalog(context.Background(), "tires", models.FilterCriteria{DiscountOnly: true})
	if err != nil {
		t.Fatalf("list catalog: %v", err)
	}

	if result.TotalCount != 1 || result.Products[0].ID != "2" {
		t.Errorf("expected single discounted product 2, got %+v", result.Products)
	}
	// Опции фасетов собираются по полному списку, не по выборке
	got := result.FacetOptions["season"]
	if len(got) != 2 || got[0] != "Всесезонные" || got[1] != "Лето" {
		t.Errorf("expected full season options, got %v", got)
	}
	if len(broker.published) != 1 || broker.published[0] != messaging.CatalogViewedEvent {
		t.Errorf("expected catalog_viewed event, got %v", broker.published)
	}
}

func TestListCatalogUsesCacheOnSecondCall(t *testing.T) {
	storage := &fakeStorage{products: testProducts()}
	svc, _ := newTestCatalogService(storage, &fakeMessaging{})
	ctx := context.Background()

	if _, err := svc.ListCatalog(ctx, "tires", models.FilterCriteria{}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := svc.ListCatalog(ctx, "tires", models.FilterCriteria{}); err != nil {
		t.Fatalf("second call: %v", err)
	}

	if storage.listCalls != 1 {
		t.Errorf("expected 1 storage call, got %d", storage.listCalls)
	}
}

func TestInvalidateCategoryDropsCache(t *testing.T) {
	storage := &fakeStorage{products: testProducts()}
	svc, cache := newTestCatalogService(storage, &fakeMessaging{})
	ctx := context.Background()

	if _, err := svc.ListCatalog(ctx, "tires", models.FilterCriteria{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := svc.InvalidateCategory(ctx, "tires"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, found := cache.data["catalog:tires"]; found {
		t.Error("catalog cache key survived invalidation")
	}

	if _, err := svc.ListCatalog(ctx, "tires", models.FilterCriteria{}); err != nil {
		t.Fatalf("list after invalidation: %v", err)
	}
	if storage.listCalls != 2 {
		t.Errorf("expected storage reload after invalidation, got %d calls", storage.listCalls)
	}
}

func TestReseedEventInvalidatesCache(t *testing.T) {
	storage := &fakeStorage{products: testProducts()}
	broker := &fakeMessaging{}
	svc, cache := newTestCatalogService(storage, broker)
	ctx := context.Background()

	unsubscribe, err := svc.SubscribeToReseeds(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if _, err := svc.ListCatalog(ctx, "tires", models.FilterCriteria{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, found := cache.data["catalog:tires"]; !found {
		t.Fatal("category was not cached before the event")
	}

	handler := broker.handlers[messaging.CatalogReseededEvent]
	if handler == nil {
		t.Fatal("no handler registered for catalog_reseeded")
	}
	if err := handler(ctx, &interfaces.Message{ID: "msg-1", Topic: messaging.CatalogReseededEvent}); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	if _, found := cache.data["catalog:tires"]; found {
		t.Error("cache still holds category key after reseed event")
	}
	if _, err := svc.ListCatalog(ctx, "tires", models.FilterCriteria{}); err != nil {
		t.Fatalf("list after event: %v", err)
	}
	if storage.listCalls != 2 {
		t.Errorf("expected storage reload after reseed event, got %d calls", storage.listCalls)
	}

	if err := unsubscribe(); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if _, found := broker.handlers[messaging.CatalogReseededEvent]; found {
		t.Error("handler still registered after unsubscribe")
	}
}

func TestGetProductNotFound(t *testing.T) {
	svc, _ := newTestCatalogService(&fakeStorage{products: testProducts()}, &fakeMessaging{})

	_, err := svc.GetProduct(context.Background(), "absent")
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestGetProduct(t *testing.T) {
	svc, cache := newTestCatalogService(&fakeStorage{products: testProducts()}, &fakeMessaging{})

	product, err := svc.GetProduct(context.Background(), "1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Name != "Michelin Road 6" {
		t.Errorf("unexpected product: %+v", product)
	}
	if _, found := cache.data["product:1"]; !found {
		t.Error("product was not cached")
	}
}

func TestFacetsUseFullList(t *testing.T) {
	svc, _ := newTestCatalogService(&fakeStorage{products: testProducts()}, &fakeMessaging{})

	views, err := svc.Facets(context.Background(), "tires")
	if err != nil {
		t.Fatalf("facets: %v", err)
	}

	byName := make(map[string]FacetView)
	for _, view := range views {
		byName[view.Name] = view
	}

	brands := byName["brand"].Options
	if len(brands) != 3 || brands[0] != "Michelin" || brands[1] != "Mitas" || brands[2] != "Pirelli" {
		t.Errorf("unexpected brand options: %v", brands)
	}
	if byName["season"].Title == "" {
		t.Error("facet view missing title")
	}
}

func TestCategoriesIncludeCounts(t *testing.T) {
	svc, _ := newTestCatalogService(&fakeStorage{products: testProducts()}, &fakeMessaging{})

	views, err := svc.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}

	counts := make(map[string]int)
	for _, view := range views {
		counts[view.Category] = view.Count
	}

	if counts["tires"] != 3 || counts["oils"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
	// Категории без товаров тоже присутствуют
	if _, found := counts["helmets"]; !found {
		t.Error("empty category missing from listing")
	}
}

func newTestSelectionService(broker *fakeMessaging) *SelectionService {
	storage := &fakeStorage{products: testProducts()}
	catalogSvc, _ := newTestCatalogService(storage, broker)
	return NewSelectionService(store.NewMemorySelectionStore(0), catalogSvc, broker, nopLogger{})
}

func TestCartEmptyForNewUser(t *testing.T) {
	svc := newTestSelectionService(&fakeMessaging{})

	items, err := svc.Cart(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty cart, got %v", items)
	}
}

func TestAddToCartAccumulatesQuantity(t *testing.T) {
	broker := &fakeMessaging{}
	svc := newTestSelectionService(broker)
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, "user-1", "1", 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	items, err := svc.AddToCart(ctx, "user-1", "1", 0) // количество меньше единицы трактуется как единица
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(items) != 1 || items[0].Quantity != 3 {
		t.Errorf("expected single item with quantity 3, got %v", items)
	}

	added := 0
	for _, topic := range broker.published {
		if topic == messaging.CartItemAddedEvent {
			added++
		}
	}
	if added != 2 {
		t.Errorf("expected 2 cart_item_added events, got %d", added)
	}
}

func TestAddToCartUnknownProduct(t *testing.T) {
	svc := newTestSelectionService(&fakeMessaging{})

	_, err := svc.AddToCart(context.Background(), "user-1", "absent", 1)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestUpdateCartItemZeroRemoves(t *testing.T) {
	svc := newTestSelectionService(&fakeMessaging{})
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, "user-1", "1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	items, err := svc.UpdateCartItem(ctx, "user-1", "1", 0)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty cart after zero quantity, got %v", items)
	}
}

func TestUpdateCartItemMissingProduct(t *testing.T) {
	svc := newTestSelectionService(&fakeMessaging{})

	_, err := svc.UpdateCartItem(context.Background(), "user-1", "1", 5)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestClearCart(t *testing.T) {
	svc := newTestSelectionService(&fakeMessaging{})
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, "user-1", "1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.ClearCart(ctx, "user-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	items, err := svc.Cart(ctx, "user-1")
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty cart, got %v", items)
	}
}

func TestToggleFavoriteRoundTrip(t *testing.T) {
	broker := &fakeMessaging{}
	svc := newTestSelectionService(broker)
	ctx := context.Background()

	items, added, err := svc.ToggleFavorite(ctx, "user-1", "2")
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !added || len(items) != 1 {
		t.Errorf("expected item added, got added=%v items=%v", added, items)
	}

	items, added, err = svc.ToggleFavorite(ctx, "user-1", "2")
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if added || len(items) != 0 {
		t.Errorf("expected item removed, got added=%v items=%v", added, items)
	}
}

func TestFavoritesIsolatedPerUser(t *testing.T) {
	svc := newTestSelectionService(&fakeMessaging{})
	ctx := context.Background()

	if _, _, err := svc.ToggleFavorite(ctx, "user-1", "1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	items, err := svc.Favorites(ctx, "user-2")
	if err != nil {
		t.Fatalf("favorites: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("favorites leaked between users: %v", items)
	}
}
