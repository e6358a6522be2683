package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/motoekip/catalog-service/internal/api/handlers"
	"github.com/motoekip/catalog-service/internal/api/middleware"
	"github.com/motoekip/catalog-service/internal/domain/services"
	"github.com/motoekip/catalog-service/internal/security"
	"github.com/motoekip/catalog-service/pkg/interfaces"
)

// SetupRouter настраивает маршрутизатор
func SetupRouter(
	catalogService *services.CatalogService,
	selectionService *services.SelectionService,
	logger interfaces.LoggerPort,
	corsAllowedOrigins []string,
	oidcClient interfaces.AuthPort,
	guestTokens *security.GuestTokenManager,
) *chi.Mux {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.CORS(corsAllowedOrigins))

	r.Method(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))
	r.Method(http.MethodHead, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	catalogHandler := handlers.NewCatalogHandler(catalogService, logger)
	cartHandler := handlers.NewCartHandler(selectionService, logger)
	favoritesHandler := handlers.NewFavoritesHandler(selectionService, logger)
	sessionHandler := handlers.NewSessionHandler(guestTokens, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Гостевая сессия выдается без аутентификации
		r.Post("/session/guest", sessionHandler.CreateGuestSession)

		// Публичные маршруты каталога
		r.Get("/categories", catalogHandler.ListCategories)
		r.Route("/catalog/{category}", func(r chi.Router) {
			r.Get("/", catalogHandler.ListCatalog)
			r.Get("/facets", catalogHandler.GetFacets)
		})
		r.Get("/products/{id}", catalogHandler.GetProduct)

		// Пользовательские списки требуют токен: OIDC или гостевой
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(oidcClient, guestTokens))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/", cartHandler.AddItem)
				r.Delete("/", cartHandler.Clear)

				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", cartHandler.UpdateItem)
					r.Delete("/", cartHandler.RemoveItem)
				})
			})

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", favoritesHandler.List)
				r.Post("/{id}", favoritesHandler.Toggle)
			})
		})
	})

	return r
}
