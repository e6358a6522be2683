package catalog

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/motoekip/catalog-service/internal/domain/models"
)

func float64Ptr(v float64) *float64 {
	return &v
}

// tireFixtures возвращает небольшой набор шин с предсказуемыми полями
func tireFixtures() []models.Product {
	return []models.Product{
		{
			ID: "1", Name: "Michelin Road 6", Category: "tires", Brand: "Michelin",
			Price: 5000, Discount: 0, InStock: true, Rating: 4.8, Popularity: 120,
			Facets: map[string]string{"season": "Лето", "size": "120/70 ZR17"},
		},
		{
			ID: "2", Name: "Pirelli Angel GT", Category: "tires", Brand: "Pirelli",
			Price: 8000, Discount: 20, InStock: true, Rating: 4.5, Popularity: 300,
			Facets: map[string]string{"season": "Зима", "size": "180/55 ZR17"},
		},
		{
			ID: "3", Name: "Dunlop Mutant", Category: "tires", Brand: "Dunlop",
			Price: 6500, Discount: 10, InStock: false, Rating: 4.2, Popularity: 80,
			Facets: map[string]string{"season": "Всесезонные", "size": "120/70 ZR17"},
		},
		{
			ID: "4", Name: "Michelin Anakee Adventure", Category: "tires", Brand: "Michelin",
			Price: 7200, Discount: 0, InStock: true, Rating: 4.6, Popularity: 95,
			Facets: map[string]string{"season": "Лето", "size": "110/80 R19"},
		},
	}
}

func tiresEngine(t *testing.T) *Engine {
	t.Helper()
	schema, ok := SchemaFor("tires")
	if !ok {
		t.Fatal("schema for tires not found")
	}
	return NewEngine(schema)
}

func ids(products []models.Product) []string {
	result := make([]string, 0, len(products))
	for _, p := range products {
		result = append(result, p.ID)
	}
	return result
}

func TestRunNilProducts(t *testing.T) {
	engine := tiresEngine(t)

	if _, err := engine.Run(nil, models.FilterCriteria{}); err != ErrInvalidProducts {
		t.Errorf("expected ErrInvalidProducts, got %v", err)
	}
}

func TestRunEmptyCriteriaReturnsEverything(t *testing.T) {
	engine := tiresEngine(t)
	products := tireFixtures()

	result, err := engine.Run(products, models.FilterCriteria{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalCount != len(products) {
		t.Errorf("expected total count %d, got %d", len(products), result.TotalCount)
	}
	if !reflect.DeepEqual(ids(result.Products), []string{"1", "2", "3", "4"}) {
		t.Errorf("expected original order, got %v", ids(result.Products))
	}
	if result.Page != 1 {
		t.Errorf("expected page 1, got %d", result.Page)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	engine := tiresEngine(t)
	products := tireFixtures()
	criteria := models.FilterCriteria{
		InStockOnly: true,
		SortKey:     models.SortPriceDesc,
		Facets:      map[string][]string{"season": {"Лето"}},
	}

	first, err := engine.Run(products, criteria)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.Run(products, criteria)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("same products and criteria must yield identical results")
	}
}

func TestApplyFiltersDiscountOnly(t *testing.T) {
	engine := tiresEngine(t)

	filtered := engine.ApplyFilters(tireFixtures(), models.FilterCriteria{DiscountOnly: true})

	if !reflect.DeepEqual(ids(filtered), []string{"2", "3"}) {
		t.Errorf("expected products 2 and 3, got %v", ids(filtered))
	}
}

func TestApplyFiltersInStockOnly(t *testing.T) {
	engine := tiresEngine(t)

	filtered := engine.ApplyFilters(tireFixtures(), models.FilterCriteria{InStockOnly: true})

	if !reflect.DeepEqual(ids(filtered), []string{"1", "2", "4"}) {
		t.Errorf("expected products 1, 2 and 4, got %v", ids(filtered))
	}
}

func TestApplyFiltersPriceRange(t *testing.T) {
	engine := tiresEngine(t)

	filtered := engine.ApplyFilters(tireFixtures(), models.FilterCriteria{
		PriceMin: float64Ptr(6000),
		PriceMax: float64Ptr(10000),
	})

	if !reflect.DeepEqual(ids(filtered), []string{"2", "3", "4"}) {
		t.Errorf("expected products 2, 3 and 4, got %v", ids(filtered))
	}
}

func TestApplyFiltersInvertedPriceRange(t *testing.T) {
	engine := tiresEngine(t)

	// min > max: пустой результат, без паники и без ошибки
	filtered := engine.ApplyFilters(tireFixtures(), models.FilterCriteria{
		PriceMin: float64Ptr(10000),
		PriceMax: float64Ptr(6000),
	})

	if len(filtered) != 0 {
		t.Errorf("inverted price range must match nothing, got %v", ids(filtered))
	}
}

func TestApplyFiltersNegativePriceCoercedToZero(t *testing.T) {
	engine := tiresEngine(t)
	products := tireFixtures()
	products[0].Price = -500

	filtered := engine.ApplyFilters(products, models.FilterCriteria{
		PriceMin: float64Ptr(0),
		PriceMax: float64Ptr(100),
	})

	// Отрицательная цена трактуется как 0 и попадает в интервал [0, 100]
	if !reflect.DeepEqual(ids(filtered), []string{"1"}) {
		t.Errorf("expected product 1 with coerced zero price, got %v", ids(filtered))
	}
}

func TestApplyFiltersTextQuery(t *testing.T) {
	engine := tiresEngine(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"michelin", []string{"1", "4"}},
		{"ANGEL", []string{"2"}},
		{"120/70", []string{"1", "3"}}, // размер ищется как поисковый фасет
		{"нет такого", []string{}},
		{"", []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		filtered := engine.ApplyFilters(tireFixtures(), models.FilterCriteria{TextQuery: tt.query})
		if !reflect.DeepEqual(ids(filtered), tt.want) {
			t.Errorf("query %q: expected %v, got %v", tt.query, tt.want, ids(filtered))
		}
	}
}

func TestApplyFiltersFacetExactMatch(t *testing.T) {
	engine := tiresEngine(t)

	filtered := engine.ApplyFilters(tireFixtures(), models.FilterCriteria{
		Facets: map[string][]string{"season": {"Лето", "Зима"}},
	})

	// ИЛИ внутри множества значений одного фасета
	if !reflect.DeepEqual(ids(filtered), []string{"1", "2", "4"}) {
		t.Errorf("expected products 1, 2 and 4, got %v", ids(filtered))
	}
}

func TestApplyFiltersFacetConjunction(t *testing.T) {
	engine := tiresEngine(t)

	filtered := engine.ApplyFilters(tireFixtures(), models.FilterCriteria{
		Facets: map[string][]string{
			"season":          {"Лето"},
			models.FacetBrand: {"Michelin"},
		},
	})

	// И между разными фасетами
	if !reflect.DeepEqual(ids(filtered), []string{"1", "4"}) {
		t.Errorf("expected products 1 and 4, got %v", ids(filtered))
	}
}

func TestApplyFiltersFacetMissingValueExcluded(t *testing.T) {
	engine := tiresEngine(t)
	products := tireFixtures()
	delete(products[0].Facets, "season")

	filtered := engine.ApplyFilters(products, models.FilterCriteria{
		Facets: map[string][]string{"season": {"Лето"}},
	})

	if !reflect.DeepEqual(ids(filtered), []string{"4"}) {
		t.Errorf("product without facet value must not pass, got %v", ids(filtered))
	}
}

func TestApplyFiltersSubstringFacet(t *testing.T) {
	schema, ok := SchemaFor("tuning")
	if !ok {
		t.Fatal("schema for tuning not found")
	}
	engine := NewEngine(schema)

	products := []models.Product{
		{ID: "1", Category: "tuning", Brand: "Akrapovic",
			Facets: map[string]string{"compatibility": "Yamaha MT-07, Yamaha MT-09"}},
		{ID: "2", Category: "tuning", Brand: "SC-Project",
			Facets: map[string]string{"compatibility": "Honda CB650R"}},
	}

	filtered := engine.ApplyFilters(products, models.FilterCriteria{
		Facets: map[string][]string{"compatibility": {"MT-07"}},
	})

	if !reflect.DeepEqual(ids(filtered), []string{"1"}) {
		t.Errorf("substring facet must match partial value, got %v", ids(filtered))
	}
}

func TestApplyFiltersForeignCategoryExcluded(t *testing.T) {
	engine := tiresEngine(t)
	products := append(tireFixtures(), models.Product{
		ID: "99", Name: "Шлем Shoei", Category: "helmets", Brand: "Shoei", Price: 30000, InStock: true,
	})

	filtered := engine.ApplyFilters(products, models.FilterCriteria{})

	if !reflect.DeepEqual(ids(filtered), []string{"1", "2", "3", "4"}) {
		t.Errorf("foreign category product must be excluded, got %v", ids(filtered))
	}
}

// TestApplyFiltersMonotonicity: добавление любого ограничения
// никогда не увеличивает размер выборки
func TestApplyFiltersMonotonicity(t *testing.T) {
	engine := tiresEngine(t)
	products := tireFixtures()

	base := models.FilterCriteria{Facets: map[string][]string{"season": {"Лето", "Зима", "Всесезонные"}}}
	baseCount := len(engine.ApplyFilters(products, base))

	narrower := []models.FilterCriteria{
		{Facets: map[string][]string{"season": {"Лето"}}},
		{InStockOnly: true},
		{DiscountOnly: true},
		{PriceMin: float64Ptr(6000), PriceMax: float64Ptr(7000)},
		{TextQuery: "michelin"},
	}

	for i, criteria := range narrower {
		count := len(engine.ApplyFilters(products, criteria))
		if count > baseCount {
			t.Errorf("criteria #%d: narrowing increased count from %d to %d", i, baseCount, count)
		}
	}
}

func TestSortProductsPriceAsc(t *testing.T) {
	products := tireFixtures()
	SortProducts(products, models.SortPriceAsc)

	for i := 1; i < len(products); i++ {
		if products[i-1].EffectivePrice() > products[i].EffectivePrice() {
			t.Fatalf("products not ordered by ascending price: %v", ids(products))
		}
	}
}

func TestSortProductsPriceDesc(t *testing.T) {
	products := tireFixtures()
	SortProducts(products, models.SortPriceDesc)

	if !reflect.DeepEqual(ids(products), []string{"2", "4", "3", "1"}) {
		t.Errorf("expected order 2, 4, 3, 1, got %v", ids(products))
	}
}

func TestSortProductsStability(t *testing.T) {
	products := []models.Product{
		{ID: "a", Price: 100},
		{ID: "b", Price: 50},
		{ID: "c", Price: 100},
		{ID: "d", Price: 100},
	}

	SortProducts(products, models.SortPriceAsc)

	// Равные цены сохраняют исходный относительный порядок
	if !reflect.DeepEqual(ids(products), []string{"b", "a", "c", "d"}) {
		t.Errorf("stable sort violated: got %v", ids(products))
	}
}

func TestSortProductsDefaultKeepsOrder(t *testing.T) {
	products := tireFixtures()
	SortProducts(products, models.SortDefault)

	if !reflect.DeepEqual(ids(products), []string{"1", "2", "3", "4"}) {
		t.Errorf("default sort must keep order, got %v", ids(products))
	}
}

func TestSortProductsDiscountDesc(t *testing.T) {
	products := tireFixtures()
	SortProducts(products, models.SortDiscountDesc)

	if !reflect.DeepEqual(ids(products), []string{"2", "3", "1", "4"}) {
		t.Errorf("expected order 2, 3, 1, 4, got %v", ids(products))
	}
}

func TestPaginateOutOfRangePageResets(t *testing.T) {
	products := make([]models.Product, 5)
	for i := range products {
		products[i] = models.Product{ID: fmt.Sprintf("%d", i+1)}
	}

	visible, totalPages, page := Paginate(products, 3, 12)

	if page != 1 {
		t.Errorf("expected page reset to 1, got %d", page)
	}
	if totalPages != 1 {
		t.Errorf("expected 1 total page, got %d", totalPages)
	}
	if len(visible) != 5 {
		t.Errorf("expected all 5 products on reset page, got %d", len(visible))
	}
}

func TestPaginateEmptyList(t *testing.T) {
	visible, totalPages, page := Paginate([]models.Product{}, 1, 12)

	if len(visible) != 0 || totalPages != 0 || page != 1 {
		t.Errorf("expected empty page, got %d items, %d pages, page %d", len(visible), totalPages, page)
	}
}

// TestPaginateCoverage: конкатенация всех страниц воспроизводит полный
// список ровно один раз, без пропусков и дубликатов
func TestPaginateCoverage(t *testing.T) {
	products := make([]models.Product, 27)
	for i := range products {
		products[i] = models.Product{ID: fmt.Sprintf("%d", i+1)}
	}

	const pageSize = 10
	_, totalPages, _ := Paginate(products, 1, pageSize)
	if totalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", totalPages)
	}

	var combined []string
	for page := 1; page <= totalPages; page++ {
		visible, _, got := Paginate(products, page, pageSize)
		if got != page {
			t.Errorf("page %d unexpectedly reset to %d", page, got)
		}
		combined = append(combined, ids(visible)...)
	}

	if !reflect.DeepEqual(combined, ids(products)) {
		t.Errorf("pages do not partition the list: %v", combined)
	}
}

func TestDeriveFacetOptionsSortedAndDistinct(t *testing.T) {
	engine := tiresEngine(t)

	options := engine.DeriveFacetOptions(tireFixtures())

	if !reflect.DeepEqual(options[models.FacetBrand], []string{"Dunlop", "Michelin", "Pirelli"}) {
		t.Errorf("unexpected brand options: %v", options[models.FacetBrand])
	}
	if !reflect.DeepEqual(options["season"], []string{"Всесезонные", "Зима", "Лето"}) {
		t.Errorf("unexpected season options: %v", options["season"])
	}
}

// TestDeriveFacetOptionsIgnoreActiveFilters: списки значений фасетов
// выводятся из полного списка категории, а не из отфильтрованного
func TestDeriveFacetOptionsIgnoreActiveFilters(t *testing.T) {
	engine := tiresEngine(t)
	products := tireFixtures()

	result, err := engine.Run(products, models.FilterCriteria{
		Facets: map[string][]string{models.FacetBrand: {"Michelin"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(result.FacetOptions[models.FacetBrand], []string{"Dunlop", "Michelin", "Pirelli"}) {
		t.Errorf("facet options must not narrow: %v", result.FacetOptions[models.FacetBrand])
	}
}

func TestDeriveFacetOptionsStaticFallback(t *testing.T) {
	engine := tiresEngine(t)

	products := []models.Product{
		{ID: "1", Category: "tires", Brand: "Michelin", Facets: map[string]string{"size": "120/70 ZR17"}},
	}

	options := engine.DeriveFacetOptions(products)

	// Ни один товар не несет сезон: показываем статический список схемы
	if !reflect.DeepEqual(options["season"], []string{"Лето", "Зима", "Всесезонные"}) {
		t.Errorf("expected static season fallback, got %v", options["season"])
	}
}

func TestRunDoesNotMutateInput(t *testing.T) {
	engine := tiresEngine(t)
	products := tireFixtures()
	original := ids(products)

	_, err := engine.Run(products, models.FilterCriteria{SortKey: models.SortPriceDesc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(ids(products), original) {
		t.Errorf("engine must not reorder the caller's slice: %v", ids(products))
	}
}
