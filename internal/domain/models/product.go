package models

import (
	"math"
	"time"
)

// FacetBrand - имя фасета бренда; значение хранится в отдельном поле Brand,
// а не в карте Facets
const FacetBrand = "brand"

// Product представляет товар каталога мотоэкипировки
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand,omitempty"`
	Price       float64 `json:"price"`
	OldPrice    float64 `json:"old_price,omitempty"`
	Discount    int     `json:"discount,omitempty"` // процент скидки, 0..100
	InStock     bool    `json:"in_stock"`
	Rating      float64 `json:"rating,omitempty"`
	Popularity  int     `json:"popularity,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`

	// Facets хранит специфичные для категории атрибуты товара:
	// размер, сезон, материал, состав, индексы скорости и нагрузки и т.д.
	Facets map[string]string `json:"facets,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FacetValue возвращает значение фасета по имени.
// Бренд хранится в отдельном поле, но для фильтрации считается обычным фасетом.
func (p *Product) FacetValue(name string) string {
	if name == FacetBrand {
		return p.Brand
	}
	return p.Facets[name]
}

// EffectivePrice возвращает цену товара, пригодную для сравнения.
// Отрицательные и некорректные значения приводятся к нулю.
func (p *Product) EffectivePrice() float64 {
	if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price < 0 {
		return 0
	}
	return p.Price
}

// EffectiveDiscount возвращает процент скидки в диапазоне [0, 100].
func (p *Product) EffectiveDiscount() int {
	if p.Discount < 0 {
		return 0
	}
	if p.Discount > 100 {
		return 100
	}
	return p.Discount
}

// EffectiveRating возвращает рейтинг товара, отсутствующий рейтинг считается нулевым.
func (p *Product) EffectiveRating() float64 {
	if math.IsNaN(p.Rating) || p.Rating < 0 {
		return 0
	}
	return p.Rating
}
