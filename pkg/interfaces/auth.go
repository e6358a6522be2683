package interfaces

import "context"

// UserClaims представляет минимальный набор данных о пользователе из токена
type UserClaims struct {
	UserID string
	Email  string
	Name   string
	Guest  bool
}

// AuthPort определяет интерфейс для проверки токенов аутентификации
type AuthPort interface {
	// ValidateToken проверяет токен и возвращает claims
	ValidateToken(ctx context.Context, token string) (*UserClaims, error)
}
