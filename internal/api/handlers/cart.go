package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/motoekip/catalog-service/internal/api/middleware"
	"github.com/motoekip/catalog-service/internal/domain/services"
	"github.com/motoekip/catalog-service/pkg/interfaces"
)

// CartHandler обработчик запросов корзины
type CartHandler struct {
	selectionService *services.SelectionService
	logger           interfaces.LoggerPort
}

// NewCartHandler создает новый обработчик корзины
func NewCartHandler(selectionService *services.SelectionService, logger interfaces.LoggerPort) *CartHandler {
	return &CartHandler{
		selectionService: selectionService,
		logger:           logger,
	}
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart обрабатывает запрос содержимого корзины
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		renderUnauthorized(w, r)
		return
	}

	items, err := h.selectionService.Cart(r.Context(), userID)
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка получения корзины", "error", err.Error())
		renderInternalError(w, r, "Ошибка получения корзины")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true, Data: items})
}

// AddItem обрабатывает добавление товара в корзину
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		renderUnauthorized(w, r)
		return
	}

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "Некорректное тело запроса",
		})
		return
	}

	items, err := h.selectionService.AddToCart(r.Context(), userID, req.ProductID, req.Quantity)
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
		h.logger.ErrorWithContext(r.Context(), "Ошибка добавления в корзину",
			"product_id", req.ProductID, "error", err.Error())
		renderInternalError(w, r, "Ошибка добавления в корзину")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true, Data: items})
}

// UpdateItem обрабатывает изменение количества товара в корзине
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		renderUnauthorized(w, r)
		return
	}

	productID := chi.URLParam(r, "id")

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:   "bad_request",
			Code:    http.StatusBadRequest,
			Message: "Некорректное тело запроса",
		})
		return
	}

	items, err := h.selectionService.UpdateCartItem(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, errorResponse{
				Error:   "not_found",
				Code:    http.StatusNotFound,
				Message: "Товар не найден в корзине",
			})
			return
		}
		h.logger.ErrorWithContext(r.Context(), "Ошибка изменения корзины",
			"product_id", productID, "error", err.Error())
		renderInternalError(w, r, "Ошибка изменения корзины")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true, Data: items})
}

// RemoveItem обрабатывает удаление товара из корзины
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		renderUnauthorized(w, r)
		return
	}

	productID := chi.URLParam(r, "id")

	items, err := h.selectionService.RemoveFromCart(r.Context(), userID, productID)
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка удаления из корзины",
			"product_id", productID, "error", err.Error())
		renderInternalError(w, r, "Ошибка удаления из корзины")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true, Data: items})
}

// Clear обрабатывает очистку корзины
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		renderUnauthorized(w, r)
		return
	}

	if err := h.selectionService.ClearCart(r.Context(), userID); err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка очистки корзины", "error", err.Error())
		renderInternalError(w, r, "Ошибка очистки корзины")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true})
}

func renderUnauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, errorResponse{
		Error:   "unauthorized",
		Code:    http.StatusUnauthorized,
		Message: "Требуется аутентификация",
	})
}

func renderInternalError(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, errorResponse{
		Error:   "internal_error",
		Code:    http.StatusInternalServerError,
		Message: message,
	})
}
