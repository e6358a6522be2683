package models

import "time"

// CartItem представляет позицию в корзине покупателя
type CartItem struct {
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// FavoriteItem представляет товар в списке избранного
type FavoriteItem struct {
	ProductID string    `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}
