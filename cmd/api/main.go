package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/motoekip/catalog-service/config"
	"github.com/motoekip/catalog-service/internal/adapters/cache"
	"github.com/motoekip/catalog-service/internal/adapters/logger"
	"github.com/motoekip/catalog-service/internal/adapters/messaging"
	postgres "github.com/motoekip/catalog-service/internal/adapters/storage"
	"github.com/motoekip/catalog-service/internal/api"
	"github.com/motoekip/catalog-service/internal/domain/services"
	"github.com/motoekip/catalog-service/internal/security"
	"github.com/motoekip/catalog-service/internal/store"
	"github.com/motoekip/catalog-service/internal/utils"
	"github.com/motoekip/catalog-service/pkg/auth"
	"github.com/motoekip/catalog-service/pkg/interfaces"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.ENV == "production")
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Инициализация сервиса",
		"app_name", cfg.AppName,
		"version", cfg.Version,
		"env", cfg.ENV,
	)

	postgresCon, err := utils.GenerateConnectionString(
		cfg.Postgres.Host,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
		cfg.Postgres.Port,
		cfg.Postgres.PoolSize,
		cfg.Postgres.Timeout,
	)
	if err != nil {
		log.Fatal("Ошибка сборки строки подключения к базе", "error", err.Error())
	}

	db, err := postgres.NewCatalogStorage(ctx, postgresCon)
	if err != nil {
		log.Fatal("Ошибка инициализации хранилища", "error", err.Error())
	}
	defer db.Close()
	log.Info("Хранилище инициализировано")

	cacheClient, err := cache.NewRedisCache(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("Ошибка инициализации кэша", "error", err.Error())
	}
	defer cacheClient.Close()
	log.Info("Кэш инициализирован")

	selectionStore, err := store.NewRedisSelectionStore(
		ctx,
		cfg.RedisAddr(),
		cfg.Redis.Password,
		cfg.Redis.SelectionsDB,
		cfg.Catalog.SelectionTTL,
	)
	if err != nil {
		log.Fatal("Ошибка инициализации хранилища списков", "error", err.Error())
	}
	defer selectionStore.Close()
	log.Info("Хранилище списков инициализировано")

	messagingClient, err := messaging.NewKafkaMessaging(cfg.Kafka.Brokers, cfg.Kafka.GroupID, log)
	if err != nil {
		log.Fatal("Ошибка инициализации системы обмена сообщениями", "error", err.Error())
	}
	defer messagingClient.Close()
	log.Info("Система обмена сообщениями инициализирована")

	var oidcClient interfaces.AuthPort = auth.DisabledClient{}
	if cfg.Auth.OIDCIssuerURL != "" {
		client, err := auth.NewOIDCClient(ctx, auth.OIDCConfig{
			IssuerURL:    cfg.Auth.OIDCIssuerURL,
			ClientID:     cfg.Auth.OIDCClientID,
			ClientSecret: cfg.Auth.OIDCClientSecret,
			RedirectURL:  cfg.Auth.OIDCRedirectURL,
		})
		if err != nil {
			log.Fatal("Ошибка инициализации OIDC-клиента", "error", err.Error())
		}
		oidcClient = client
		log.Info("OIDC-клиент инициализирован")
	} else {
		log.Warn("OIDC-провайдер не настроен, доступны только гостевые сессии")
	}

	privateKey, err := os.ReadFile(cfg.Auth.GuestPrivateKey)
	if err != nil {
		log.Fatal("Ошибка чтения приватного ключа гостевых токенов", "error", err.Error())
	}
	publicKey, err := os.ReadFile(cfg.Auth.GuestPublicKey)
	if err != nil {
		log.Fatal("Ошибка чтения публичного ключа гостевых токенов", "error", err.Error())
	}
	guestTokens, err := security.NewGuestTokenManager(privateKey, publicKey, cfg.Auth.GuestTokenTTL, cfg.Auth.GuestTokenIssuer)
	if err != nil {
		log.Fatal("Ошибка инициализации менеджера гостевых токенов", "error", err.Error())
	}

	catalogService := services.NewCatalogService(db, cacheClient, messagingClient, log, cfg.Catalog.CacheTTL)
	selectionService := services.NewSelectionService(selectionStore, catalogService, messagingClient, log)
	log.Info("Сервисы каталога инициализированы")

	unsubscribe, err := catalogService.SubscribeToReseeds(ctx)
	if err != nil {
		log.Fatal("Ошибка подписки на события пересоздания каталога", "error", err.Error())
	}
	defer unsubscribe()
	log.Info("Подписка на события пересоздания каталога оформлена")

	router := api.SetupRouter(
		catalogService,
		selectionService,
		log,
		cfg.Security.CORSAllowOrigins,
		oidcClient,
		guestTokens,
	)
	log.Info("Маршрутизатор настроен")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Сервер запущен", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Ошибка запуска сервера", "error", err.Error())
		}
	}()

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Ошибка при graceful shutdown", "error", err.Error())
		}
		log.Info("HTTP сервер остановлен")

		if err := messagingClient.Close(); err != nil {
			log.Error("Ошибка при закрытии Kafka", "error", err.Error())
		}
		if err := selectionStore.Close(); err != nil {
			log.Error("Ошибка при закрытии хранилища списков", "error", err.Error())
		}
		if err := cacheClient.Close(); err != nil {
			log.Error("Ошибка при закрытии Redis", "error", err.Error())
		}
		if err := db.Close(); err != nil {
			log.Error("Ошибка при закрытии БД", "error", err.Error())
		}

		close(done)
	}()

	<-done
	log.Info("Сервер корректно завершил работу")
}
