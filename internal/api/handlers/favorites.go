package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/motoekip/catalog-service/internal/api/middleware"
	"github.com/motoekip/catalog-service/internal/domain/services"
	"github.com/motoekip/catalog-service/pkg/interfaces"
)

// FavoritesHandler обработчик запросов избранного
type FavoritesHandler struct {
	selectionService *services.SelectionService
	logger           interfaces.LoggerPort
}

// NewFavoritesHandler создает новый обработчик избранного
func NewFavoritesHandler(selectionService *services.SelectionService, logger interfaces.LoggerPort) *FavoritesHandler {
	return &FavoritesHandler{
		selectionService: selectionService,
		logger:           logger,
	}
}

// toggleFavoriteResponse результат переключения избранного
type toggleFavoriteResponse struct {
	Added bool        `json:"added"`
	Items interface{} `json:"items"`
}

// List обрабатывает запрос списка избранного
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		renderUnauthorized(w, r)
		return
	}

	items, err := h.selectionService.Favorites(r.Context(), userID)
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка получения избранного", "error", err.Error())
		renderInternalError(w, r, "Ошибка получения избранного")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true, Data: items})
}

// Toggle обрабатывает добавление или удаление товара из избранного
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		renderUnauthorized(w, r)
		return
	}

	productID := chi.URLParam(r, "id")
	if productID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "ID товара не указан",
		})
		return
	}

	items, added, err := h.selectionService.ToggleFavorite(r.Context(), userID, productID)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, errorResponse{
				Error:   "not_found",
				Code:    http.StatusNotFound,
				Message: "Товар не найден",
			})
			return
		}
		h.logger.ErrorWithContext(r.Context(), "Ошибка переключения избранного",
			"product_id", productID, "error", err.Error())
		renderInternalError(w, r, "Ошибка переключения избранного")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    toggleFavoriteResponse{Added: added, Items: items},
	})
}
