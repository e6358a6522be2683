package catalog

import (
	"errors"
	"sort"
	"strings"

	"github.com/motoekip/catalog-service/internal/domain/models"
	"github.com/motoekip/catalog-service/pkg/utils"
)

// ErrInvalidProducts возвращается, когда вызывающий передал nil вместо списка
// товаров. Это единственное нарушение контракта; любые аномалии в данных
// отдельных товаров приводятся к нейтральным значениям и ошибкой не являются
var ErrInvalidProducts = errors.New("products list is nil")

// DefaultPageSize - размер страницы каталога, если вызывающий его не задал
const DefaultPageSize = 12

// Result представляет вычисленное представление каталога
type Result struct {
	Products   []models.Product `json:"products"`
	TotalCount int              `json:"total_count"`
	TotalPages int              `json:"total_pages"`
	// Page - фактически отданная страница; отличается от запрошенной,
	// когда фильтр сузил выборку и запрошенная страница перестала существовать
	Page         int                 `json:"page"`
	PageSize     int                 `json:"page_size"`
	FacetOptions map[string][]string `json:"facet_options"`
}

// Engine вычисляет представление каталога для одной категории:
// фильтрация, сортировка и пагинация списка товаров в памяти.
// Движок не имеет состояния, чистый и безопасен для конкурентных вызовов
type Engine struct {
	schema *CategorySchema
}

// NewEngine создает движок каталога для схемы категории
func NewEngine(schema *CategorySchema) *Engine {
	return &Engine{schema: schema}
}

// Schema возвращает схему категории движка
func (e *Engine) Schema() *CategorySchema {
	return e.schema
}

// Run вычисляет полное представление каталога для набора товаров и критериев
func (e *Engine) Run(products []models.Product, criteria models.FilterCriteria) (*Result, error) {
	if products == nil {
		return nil, ErrInvalidProducts
	}

	// Списки значений фасетов выводятся из ПОЛНОГО списка категории,
	// а не из отфильтрованного подмножества: меню фасетов не сужаются
	// при применении других фильтров
	options := e.DeriveFacetOptions(products)

	filtered := e.ApplyFilters(products, criteria)
	SortProducts(filtered, criteria.SortKey)

	pageSize := criteria.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	visible, totalPages, page := Paginate(filtered, criteria.Page, pageSize)

	return &Result{
		Products:     visible,
		TotalCount:   len(filtered),
		TotalPages:   totalPages,
		Page:         page,
		PageSize:     pageSize,
		FacetOptions: options,
	}, nil
}

// DeriveFacetOptions собирает для каждого фасета схемы множество различных
// непустых значений по всем товарам категории. Списки отсортированы
// лексикографически, результат детерминирован. Если значений нет,
// используется статический список схемы
func (e *Engine) DeriveFacetOptions(products []models.Product) map[string][]string {
	options := make(map[string][]string, len(e.schema.Facets))

	for _, facet := range e.schema.Facets {
		seen := make(map[string]struct{})
		for i := range products {
			if v := products[i].FacetValue(facet.Name); v != "" {
				seen[v] = struct{}{}
			}
		}

		if len(seen) == 0 {
			options[facet.Name] = append([]string(nil), facet.StaticOptions...)
			continue
		}

		values := make([]string, 0, len(seen))
		for v := range seen {
			values = append(values, v)
		}
		sort.Strings(values)
		options[facet.Name] = values
	}

	return options
}

// ApplyFilters возвращает подмножество товаров, удовлетворяющих конъюнкции
// всех активных критериев, в исходном относительном порядке.
// Незаданные критерии ограничений не накладывают
func (e *Engine) ApplyFilters(products []models.Product, criteria models.FilterCriteria) []models.Product {
	queryLower := strings.ToLower(strings.TrimSpace(criteria.TextQuery))

	filtered := make([]models.Product, 0, len(products))
	for i := range products {
		if e.matches(&products[i], &criteria, queryLower) {
			filtered = append(filtered, products[i])
		}
	}
	return filtered
}

// matches проверяет товар на соответствие всем активным критериям
func (e *Engine) matches(p *models.Product, criteria *models.FilterCriteria, queryLower string) bool {
	// Принадлежность категории, если список не был предварительно отобран
	if p.Category != "" && p.Category != e.schema.Category {
		return false
	}

	if queryLower != "" && !e.matchesText(p, queryLower) {
		return false
	}

	if criteria.InStockOnly && !p.InStock {
		return false
	}

	if criteria.DiscountOnly && p.EffectiveDiscount() == 0 {
		return false
	}

	// Ценовой интервал. Перевернутый интервал (min > max) трактуется как
	// "ни один товар не подходит", а не как ошибка
	if criteria.HasPriceRange() {
		price := p.EffectivePrice()
		if criteria.PriceMin != nil && price < *criteria.PriceMin {
			return false
		}
		if criteria.PriceMax != nil && price > *criteria.PriceMax {
			return false
		}
	}

	// Фасеты: И между фасетами, ИЛИ внутри множества выбранных значений
	for _, facet := range e.schema.Facets {
		selection := criteria.FacetSelection(facet.Name)
		if len(selection) == 0 {
			continue
		}
		if !matchesFacet(p.FacetValue(facet.Name), selection, facet.Match) {
			return false
		}
	}

	return true
}

// matchesText проверяет вхождение запроса в имя, описание, бренд
// и поисковые фасеты схемы. Буквальное вхождение подстроки, без токенизации
func (e *Engine) matchesText(p *models.Product, queryLower string) bool {
	if strings.Contains(strings.ToLower(p.Name), queryLower) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Description), queryLower) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Brand), queryLower) {
		return true
	}
	for _, field := range e.schema.SearchFields {
		if strings.Contains(strings.ToLower(p.FacetValue(field)), queryLower) {
			return true
		}
	}
	return false
}

// matchesFacet проверяет значение фасета товара против множества выбора.
// Товар без значения фасета не проходит активный фильтр по этому фасету
func matchesFacet(value string, selection []string, rule MatchRule) bool {
	if value == "" {
		return false
	}

	if rule == MatchSubstring {
		valueLower := strings.ToLower(value)
		for _, s := range selection {
			if s != "" && strings.Contains(valueLower, strings.ToLower(s)) {
				return true
			}
		}
		return false
	}

	for _, s := range selection {
		if value == s {
			return true
		}
	}
	return false
}

// SortProducts сортирует список на месте по заданному ключу.
// Сортировка устойчивая: товары с равными ключами сохраняют относительный
// порядок, что обеспечивает воспроизводимую пагинацию между перерисовками.
// Ключ "default" и неизвестные ключи порядок не меняют
func SortProducts(products []models.Product, sortKey string) {
	switch sortKey {
	case models.SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectivePrice() < products[j].EffectivePrice()
		})
	case models.SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectivePrice() > products[j].EffectivePrice()
		})
	case models.SortDiscountDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectiveDiscount() > products[j].EffectiveDiscount()
		})
	case models.SortRatingDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectiveRating() > products[j].EffectiveRating()
		})
	case models.SortPopularityDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Popularity > products[j].Popularity
		})
	}
}

// Paginate возвращает срез страницы, общее число страниц и фактический номер
// страницы. Запрошенная страница за пределами диапазона сбрасывается на
// первую, а не возвращает пустой результат
func Paginate(products []models.Product, page, pageSize int) ([]models.Product, int, int) {
	p := utils.NewPagination(page, pageSize, "")
	p.SetTotal(int64(len(products)))

	start := p.Offset()
	if start >= len(products) {
		return []models.Product{}, p.TotalPages, p.Page
	}

	end := start + p.PageSize
	if end > len(products) {
		end = len(products)
	}

	return products[start:end], p.TotalPages, p.Page
}
