package handlers

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/motoekip/catalog-service/internal/security"
	"github.com/motoekip/catalog-service/pkg/interfaces"
)

// SessionHandler обработчик гостевых сессий. Гостевая сессия позволяет
// пользоваться корзиной и избранным без регистрации
type SessionHandler struct {
	guests *security.GuestTokenManager
	logger interfaces.LoggerPort
}

// NewSessionHandler создает новый обработчик сессий
func NewSessionHandler(guests *security.GuestTokenManager, logger interfaces.LoggerPort) *SessionHandler {
	return &SessionHandler{
		guests: guests,
		logger: logger,
	}
}

// guestSessionResponse выданная гостевая сессия
type guestSessionResponse struct {
	GuestID string `json:"guest_id"`
	Token   string `json:"token"`
}

// CreateGuestSession выдает новый гостевой токен
func (h *SessionHandler) CreateGuestSession(w http.ResponseWriter, r *http.Request) {
	guestID := uuid.New().String()

	token, err := h.guests.Generate(guestID)
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка выдачи гостевого токена", "error", err.Error())
		renderInternalError(w, r, "Ошибка создания гостевой сессии")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response{
		Success: true,
		Data:    guestSessionResponse{GuestID: guestID, Token: token},
	})
}
