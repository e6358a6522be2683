package handlers

import (
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/motoekip/catalog-service/internal/domain/catalog"
	"github.com/motoekip/catalog-service/internal/domain/models"
)

func tiresSchema(t *testing.T) *catalog.CategorySchema {
	t.Helper()
	schema, ok := catalog.SchemaFor("tires")
	if !ok {
		t.Fatal("tires schema not registered")
	}
	return schema
}

func TestParseCriteriaDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/catalog/tires", nil)

	criteria := ParseCriteria(r, tiresSchema(t))

	if criteria.TextQuery != "" || criteria.InStockOnly || criteria.DiscountOnly {
		t.Errorf("unexpected flags: %+v", criteria)
	}
	if criteria.PriceMin != nil || criteria.PriceMax != nil {
		t.Error("price bounds should be unset by default")
	}
	if criteria.SortKey != models.SortDefault {
		t.Errorf("expected default sort, got %q", criteria.SortKey)
	}
	if criteria.Page != 0 || criteria.PageSize != 0 {
		t.Errorf("expected zero pagination before engine defaults, got page=%d size=%d", criteria.Page, criteria.PageSize)
	}
}

func TestParseCriteriaFull(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/api/v1/catalog/tires?q=angel&in_stock=true&discount_only=1&price_min=1000&price_max=9000&sort=price_asc&page=2&page_size=24&brand=Pirelli,Michelin&season=%D0%9B%D0%B5%D1%82%D0%BE", nil)

	criteria := ParseCriteria(r, tiresSchema(t))

	if criteria.TextQuery != "angel" {
		t.Errorf("text query: %q", criteria.TextQuery)
	}
	if !criteria.InStockOnly || !criteria.DiscountOnly {
		t.Error("boolean flags not parsed")
	}
	if criteria.PriceMin == nil || *criteria.PriceMin != 1000 {
		t.Errorf("price_min: %v", criteria.PriceMin)
	}
	if criteria.PriceMax == nil || *criteria.PriceMax != 9000 {
		t.Errorf("price_max: %v", criteria.PriceMax)
	}
	if criteria.SortKey != models.SortPriceAsc {
		t.Errorf("sort: %q", criteria.SortKey)
	}
	if criteria.Page != 2 || criteria.PageSize != 24 {
		t.Errorf("pagination: page=%d size=%d", criteria.Page, criteria.PageSize)
	}

	expected := map[string][]string{
		"brand":  {"Pirelli", "Michelin"},
		"season": {"Лето"},
	}
	if !reflect.DeepEqual(criteria.Facets, expected) {
		t.Errorf("facets: %v", criteria.Facets)
	}
}

func TestParseCriteriaMalformedNumbersCoerceToZero(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/catalog/tires?price_min=abc&price_max=-5", nil)

	criteria := ParseCriteria(r, tiresSchema(t))

	if criteria.PriceMin == nil || *criteria.PriceMin != 0 {
		t.Errorf("malformed price_min should coerce to 0, got %v", criteria.PriceMin)
	}
	if criteria.PriceMax == nil || *criteria.PriceMax != 0 {
		t.Errorf("negative price_max should coerce to 0, got %v", criteria.PriceMax)
	}
}

func TestParseCriteriaUnknownSortFallsBack(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/catalog/tires?sort=by_color", nil)

	criteria := ParseCriteria(r, tiresSchema(t))
	if criteria.SortKey != models.SortDefault {
		t.Errorf("expected default sort for unknown key, got %q", criteria.SortKey)
	}
}

func TestParseCriteriaIgnoresUnknownFacetParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/catalog/tires?color=red&brand=Michelin", nil)

	criteria := ParseCriteria(r, tiresSchema(t))

	if _, found := criteria.Facets["color"]; found {
		t.Error("unknown facet param leaked into criteria")
	}
	if got := criteria.Facets["brand"]; len(got) != 1 || got[0] != "Michelin" {
		t.Errorf("brand facet: %v", got)
	}
}

func TestParseCriteriaRepeatedFacetParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/catalog/tires?brand=Michelin&brand=Pirelli", nil)

	criteria := ParseCriteria(r, tiresSchema(t))

	expected := []string{"Michelin", "Pirelli"}
	if !reflect.DeepEqual(criteria.Facets["brand"], expected) {
		t.Errorf("repeated params: %v", criteria.Facets["brand"])
	}
}

func TestParseCriteriaPageSizeOutOfRangeIgnored(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/catalog/tires?page_size=500", nil)

	criteria := ParseCriteria(r, tiresSchema(t))
	if criteria.PageSize != 0 {
		t.Errorf("oversized page_size should be ignored, got %d", criteria.PageSize)
	}
}
