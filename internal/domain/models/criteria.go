package models

// Ключи сортировки каталога
const (
	SortDefault        = "default"
	SortPriceAsc       = "price_asc"
	SortPriceDesc      = "price_desc"
	SortDiscountDesc   = "discount_desc"
	SortRatingDesc     = "rating_desc"
	SortPopularityDesc = "popularity_desc"
)

// ValidSortKeys возвращает список допустимых ключей сортировки
func ValidSortKeys() []string {
	return []string{
		SortDefault,
		SortPriceAsc,
		SortPriceDesc,
		SortDiscountDesc,
		SortRatingDesc,
		SortPopularityDesc,
	}
}

// IsValidSortKey проверяет, допустим ли ключ сортировки
func IsValidSortKey(key string) bool {
	for _, k := range ValidSortKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// FilterCriteria представляет полный набор критериев фильтрации,
// сортировки и пагинации для одного представления каталога
type FilterCriteria struct {
	// Полнотекстовый поиск: подстрока без учета регистра
	// по имени, описанию, бренду и размерным фасетам
	TextQuery string `json:"text_query,omitempty"`

	// Переключатели
	InStockOnly  bool `json:"in_stock_only,omitempty"`
	DiscountOnly bool `json:"discount_only,omitempty"`

	// Ценовой интервал; nil означает отсутствие границы
	PriceMin *float64 `json:"price_min,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`

	// Выбранные значения фасетов: имя фасета -> множество принятых значений.
	// Пустое множество или отсутствие ключа означает "без ограничения"
	Facets map[string][]string `json:"facets,omitempty"`

	// Сортировка и пагинация
	SortKey  string `json:"sort_key,omitempty"`
	Page     int    `json:"page,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
}

// FacetSelection возвращает выбранные значения фасета (nil, если ограничения нет)
func (c *FilterCriteria) FacetSelection(name string) []string {
	if c.Facets == nil {
		return nil
	}
	return c.Facets[name]
}

// HasPriceRange сообщает, задана ли хотя бы одна граница цены
func (c *FilterCriteria) HasPriceRange() bool {
	return c.PriceMin != nil || c.PriceMax != nil
}
