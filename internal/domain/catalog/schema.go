package catalog

import "github.com/motoekip/catalog-service/internal/domain/models"

// MatchRule определяет правило сопоставления значения фасета с выбором пользователя
type MatchRule string

const (
	// MatchExact - точное совпадение со значением из множества выбора
	MatchExact MatchRule = "exact"
	// MatchSubstring - значение фасета содержит выбранную строку как подстроку.
	// Используется для фасетов совместимости, где значение товара перечисляет
	// несколько моделей мотоциклов одной строкой
	MatchSubstring MatchRule = "substring"
)

// FacetSpec описывает один фильтруемый фасет категории
type FacetSpec struct {
	Name  string    `json:"name"`
	Title string    `json:"title"`
	Match MatchRule `json:"match"`

	// StaticOptions - запасной список значений, показываемый покупателю,
	// когда ни один товар категории не несет этот фасет
	StaticOptions []string `json:"static_options,omitempty"`
}

// CategorySchema описывает категорию каталога: набор ее фасетов
// и дополнительные поля, участвующие в текстовом поиске
type CategorySchema struct {
	Category string      `json:"category"`
	Title    string      `json:"title"`
	Facets   []FacetSpec `json:"facets"`

	// SearchFields - имена фасетов, по которым дополнительно ищет текстовый
	// запрос; имя, описание и бренд ищутся всегда
	SearchFields []string `json:"search_fields,omitempty"`
}

// Facet возвращает описание фасета по имени
func (s *CategorySchema) Facet(name string) (FacetSpec, bool) {
	for _, f := range s.Facets {
		if f.Name == name {
			return f, true
		}
	}
	return FacetSpec{}, false
}

// FacetNames возвращает имена фасетов категории в порядке объявления
func (s *CategorySchema) FacetNames() []string {
	names := make([]string, 0, len(s.Facets))
	for _, f := range s.Facets {
		names = append(names, f.Name)
	}
	return names
}

// schemas - реестр категорий магазина. Ранее каждая категория дублировала
// собственную логику фильтрации; теперь различия описываются декларативно
var schemas = []CategorySchema{
	{
		Category: "tires",
		Title:    "Шины",
		Facets: []FacetSpec{
			{Name: models.FacetBrand, Title: "Бренд", Match: MatchExact},
			{Name: "size", Title: "Размер", Match: MatchExact},
			{Name: "season", Title: "Сезон", Match: MatchExact, StaticOptions: []string{"Лето", "Зима", "Всесезонные"}},
			{Name: "speed_rating", Title: "Индекс скорости", Match: MatchExact},
			{Name: "load_rating", Title: "Индекс нагрузки", Match: MatchExact},
		},
		SearchFields: []string{"size"},
	},
	{
		Category: "helmets",
		Title:    "Шлемы",
		Facets: []FacetSpec{
			{Name: models.FacetBrand, Title: "Бренд", Match: MatchExact},
			{Name: "size", Title: "Размер", Match: MatchExact, StaticOptions: []string{"XS", "S", "M", "L", "XL", "XXL"}},
			{Name: "type", Title: "Тип", Match: MatchExact},
			{Name: "material", Title: "Материал", Match: MatchExact},
		},
		SearchFields: []string{"size"},
	},
	{
		Category: "equipment",
		Title:    "Экипировка",
		Facets: []FacetSpec{
			{Name: models.FacetBrand, Title: "Бренд", Match: MatchExact},
			{Name: "size", Title: "Размер", Match: MatchExact, StaticOptions: []string{"XS", "S", "M", "L", "XL", "XXL"}},
			{Name: "season", Title: "Сезон", Match: MatchExact},
			{Name: "material", Title: "Материал", Match: MatchExact},
			{Name: "type", Title: "Тип", Match: MatchExact},
		},
		SearchFields: []string{"size"},
	},
	{
		Category: "tuning",
		Title:    "Тюнинг",
		Facets: []FacetSpec{
			{Name: models.FacetBrand, Title: "Бренд", Match: MatchExact},
			{Name: "compatibility", Title: "Совместимость", Match: MatchSubstring},
			{Name: "type", Title: "Тип", Match: MatchExact},
		},
	},
	{
		Category: "oils",
		Title:    "Масла и химия",
		Facets: []FacetSpec{
			{Name: models.FacetBrand, Title: "Бренд", Match: MatchExact},
			{Name: "viscosity", Title: "Вязкость", Match: MatchExact},
			{Name: "volume", Title: "Объем", Match: MatchExact},
			{Name: "composition", Title: "Состав", Match: MatchExact, StaticOptions: []string{"Синтетическое", "Полусинтетическое", "Минеральное"}},
		},
	},
	{
		Category: "parts",
		Title:    "Запчасти",
		Facets: []FacetSpec{
			{Name: models.FacetBrand, Title: "Бренд", Match: MatchExact},
			{Name: "compatibility", Title: "Совместимость", Match: MatchSubstring},
			{Name: "type", Title: "Тип", Match: MatchExact},
		},
	},
	{
		Category: "accessories",
		Title:    "Аксессуары",
		Facets: []FacetSpec{
			{Name: models.FacetBrand, Title: "Бренд", Match: MatchExact},
			{Name: "type", Title: "Тип", Match: MatchExact},
		},
	},
	{
		Category: "electronics",
		Title:    "Электроника",
		Facets: []FacetSpec{
			{Name: models.FacetBrand, Title: "Бренд", Match: MatchExact},
			{Name: "type", Title: "Тип", Match: MatchExact},
		},
	},
}

// Schemas возвращает схемы всех категорий магазина
func Schemas() []CategorySchema {
	result := make([]CategorySchema, len(schemas))
	copy(result, schemas)
	return result
}

// SchemaFor возвращает схему категории по идентификатору
func SchemaFor(category string) (*CategorySchema, bool) {
	for i := range schemas {
		if schemas[i].Category == category {
			return &schemas[i], true
		}
	}
	return nil, false
}
