package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/motoekip/catalog-service/internal/domain/catalog"
	"github.com/motoekip/catalog-service/internal/domain/models"
	"github.com/motoekip/catalog-service/internal/domain/services"
	"github.com/motoekip/catalog-service/pkg/interfaces"
)

// CatalogHandler обработчик запросов каталога
type CatalogHandler struct {
	catalogService *services.CatalogService
	logger         interfaces.LoggerPort
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(catalogService *services.CatalogService, logger interfaces.LoggerPort) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// errorResponse представляет структуру ответа с ошибкой
type errorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// response представляет структуру успешного ответа
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// catalogMeta метаданные страницы каталога
type catalogMeta struct {
	TotalCount   int                 `json:"total_count"`
	TotalPages   int                 `json:"total_pages"`
	Page         int                 `json:"page"`
	PageSize     int                 `json:"page_size"`
	FacetOptions map[string][]string `json:"facet_options"`
}

// ListCatalog обрабатывает запрос страницы каталога категории
func (h *CatalogHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	schema, ok := catalog.SchemaFor(category)
	if !ok {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, errorResponse{
			Error:   "not_found",
			Code:    http.StatusNotFound,
			Message: "Категория не найдена",
		})
		return
	}

	criteria := ParseCriteria(r, schema)

	result, err := h.catalogService.ListCatalog(r.Context(), category, criteria)
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка получения каталога",
			"category", category, "error", err.Error())
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{
			Error:   "internal_error",
			Code:    http.StatusInternalServerError,
			Message: "Ошибка получения каталога",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    result.Products,
		Meta: catalogMeta{
			TotalCount:   result.TotalCount,
			TotalPages:   result.TotalPages,
			Page:         result.Page,
			PageSize:     result.PageSize,
			FacetOptions: result.FacetOptions,
		},
	})
}

// GetFacets обрабатывает запрос фасетов категории
func (h *CatalogHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	views, err := h.catalogService.Facets(r.Context(), category)
	if err != nil {
		if errors.Is(err, services.ErrUnknownCategory) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, errorResponse{
				Error:   "not_found",
				Code:    http.StatusNotFound,
				Message: "Категория не найдена",
			})
			return
		}
		h.logger.ErrorWithContext(r.Context(), "Ошибка получения фасетов",
			"category", category, "error", err.Error())
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{
			Error:   "internal_error",
			Code:    http.StatusInternalServerError,
			Message: "Ошибка получения фасетов",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true, Data: views})
}

// ListCategories обрабатывает запрос списка категорий каталога
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	views, err := h.catalogService.Categories(r.Context())
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка получения категорий", "error", err.Error())
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{
			Error:   "internal_error",
			Code:    http.StatusInternalServerError,
			Message: "Ошибка получения категорий",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true, Data: views})
}

// GetProduct обрабатывает запрос товара по ID
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
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

	product, err := h.catalogService.GetProduct(r.Context(), productID)
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
		h.logger.ErrorWithContext(r.Context(), "Ошибка получения товара",
			"product_id", productID, "error", err.Error())
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{
			Error:   "internal_error",
			Code:    http.StatusInternalServerError,
			Message: "Ошибка получения товара",
		})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true, Data: product})
}

// ParseCriteria собирает критерии фильтрации из параметров запроса.
// Некорректные числовые значения приводятся к нулю, неизвестный ключ
// сортировки заменяется сортировкой по умолчанию. Значения фасетов
// принимаются повторяющимися параметрами и списками через запятую
func ParseCriteria(r *http.Request, schema *catalog.CategorySchema) models.FilterCriteria {
	query := r.URL.Query()

	criteria := models.FilterCriteria{
		TextQuery:    strings.TrimSpace(query.Get("q")),
		InStockOnly:  parseBool(query.Get("in_stock")),
		DiscountOnly: parseBool(query.Get("discount_only")),
		SortKey:      models.SortDefault,
	}

	if raw := query.Get("price_min"); raw != "" {
		value := parsePrice(raw)
		criteria.PriceMin = &value
	}
	if raw := query.Get("price_max"); raw != "" {
		value := parsePrice(raw)
		criteria.PriceMax = &value
	}

	if sortKey := query.Get("sort"); models.IsValidSortKey(sortKey) {
		criteria.SortKey = sortKey
	}

	if page, err := strconv.Atoi(query.Get("page")); err == nil {
		criteria.Page = page
	}
	if pageSize, err := strconv.Atoi(query.Get("page_size")); err == nil && pageSize >= 1 && pageSize <= 100 {
		criteria.PageSize = pageSize
	}

	// Параметры с именами фасетов схемы трактуются как выбор значений
	for _, facet := range schema.Facets {
		raw := query[facet.Name]
		if len(raw) == 0 {
			continue
		}
		values := make([]string, 0, len(raw))
		for _, chunk := range raw {
			for _, value := range strings.Split(chunk, ",") {
				if value = strings.TrimSpace(value); value != "" {
					values = append(values, value)
				}
			}
		}
		if len(values) > 0 {
			if criteria.Facets == nil {
				criteria.Facets = make(map[string][]string)
			}
			criteria.Facets[facet.Name] = values
		}
	}

	return criteria
}

// parsePrice приводит некорректное значение цены к нулю
func parsePrice(raw string) float64 {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func parseBool(raw string) bool {
	return raw == "true" || raw == "1"
}
