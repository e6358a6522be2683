package catalog

import (
	"testing"

	"github.com/motoekip/catalog-service/internal/domain/models"
)

func TestSchemaForKnownCategories(t *testing.T) {
	for _, category := range []string{"tires", "helmets", "equipment", "tuning", "oils", "parts", "accessories", "electronics"} {
		schema, ok := SchemaFor(category)
		if !ok {
			t.Errorf("schema for %q not found", category)
			continue
		}
		if schema.Category != category {
			t.Errorf("schema category mismatch: %q != %q", schema.Category, category)
		}
		if len(schema.Facets) == 0 {
			t.Errorf("category %q has no facets", category)
		}
		if _, ok := schema.Facet(models.FacetBrand); !ok {
			t.Errorf("category %q has no brand facet", category)
		}
	}
}

func TestSchemaForUnknownCategory(t *testing.T) {
	if _, ok := SchemaFor("bicycles"); ok {
		t.Error("unknown category must not resolve to a schema")
	}
}

// Подстрочное сопоставление - явный выбор для фасетов совместимости,
// все остальные фасеты используют точное совпадение
func TestSubstringMatchIsOptIn(t *testing.T) {
	for _, schema := range Schemas() {
		for _, facet := range schema.Facets {
			switch facet.Match {
			case MatchExact:
			case MatchSubstring:
				if facet.Name != "compatibility" {
					t.Errorf("category %q: facet %q uses substring match", schema.Category, facet.Name)
				}
			default:
				t.Errorf("category %q: facet %q has unknown match rule %q", schema.Category, facet.Name, facet.Match)
			}
		}
	}
}

func TestSchemasReturnsCopy(t *testing.T) {
	first := Schemas()
	first[0].Category = "mutated"

	if second := Schemas(); second[0].Category == "mutated" {
		t.Error("Schemas must return a copy of the registry")
	}
}
