package messaging

import "time"

// События каталога, публикуемые в Kafka
const (
	CatalogViewedEvent   = "catalog_viewed"
	CatalogReseededEvent = "catalog_reseeded"
	CartItemAddedEvent   = "cart_item_added"
	FavoriteToggledEvent = "favorite_toggled"
)

// CatalogViewedPayload описывает просмотр страницы категории
type CatalogViewedPayload struct {
	Event      string    `json:"event"`
	Category   string    `json:"category"`
	TextQuery  string    `json:"text_query,omitempty"`
	SortKey    string    `json:"sort_key,omitempty"`
	Page       int       `json:"page"`
	TotalCount int       `json:"total_count"`
	ViewedAt   time.Time `json:"viewed_at"`
}

// CartItemAddedPayload описывает добавление товара в корзину
type CartItemAddedPayload struct {
	Event     string    `json:"event"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// FavoriteToggledPayload описывает добавление или удаление товара из избранного
type FavoriteToggledPayload struct {
	Event     string    `json:"event"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Added     bool      `json:"added"`
	ToggledAt time.Time `json:"toggled_at"`
}

// CatalogReseededPayload описывает пересоздание каталога сидером
type CatalogReseededPayload struct {
	Event      string         `json:"event"`
	Counts     map[string]int `json:"counts"`
	ReseededAt time.Time      `json:"reseeded_at"`
}
