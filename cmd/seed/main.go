// Команда seed заполняет каталог стартовым набором товаров.
// Загрузка идемпотентна: повторный запуск обновляет существующие
// товары по ID, после чего сбрасывает кэш каталога
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "embed"

	"github.com/motoekip/catalog-service/config"
	"github.com/motoekip/catalog-service/internal/adapters/cache"
	"github.com/motoekip/catalog-service/internal/adapters/logger"
	"github.com/motoekip/catalog-service/internal/adapters/messaging"
	postgres "github.com/motoekip/catalog-service/internal/adapters/storage"
	"github.com/motoekip/catalog-service/internal/domain/catalog"
	"github.com/motoekip/catalog-service/internal/domain/models"
	"github.com/motoekip/catalog-service/internal/domain/services"
	"github.com/motoekip/catalog-service/internal/utils"
	"github.com/motoekip/catalog-service/pkg/tx"
)

//go:embed products.json
var seedData []byte

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.ENV == "production")
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var products []models.Product
	if err := json.Unmarshal(seedData, &products); err != nil {
		log.Fatal("Ошибка разбора файла товаров", "error", err.Error())
	}

	// Товары с неизвестной категорией не попадут ни в одну витрину
	for i := range products {
		if _, ok := catalog.SchemaFor(products[i].Category); !ok {
			log.Fatal("Неизвестная категория в файле товаров",
				"product_id", products[i].ID, "category", products[i].Category)
		}
	}

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

	// Все товары записываются одной транзакцией: частично засеянный
	// каталог хуже отсутствующего
	txManager := tx.NewTxManager(db.Pool())
	err = txManager.Do(ctx, func(txCtx context.Context) error {
		for i := range products {
			if err := db.SaveProduct(txCtx, &products[i]); err != nil {
				return fmt.Errorf("failed to seed product %s: %w", products[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Ошибка записи товаров", "error", err.Error())
	}
	log.Info("Товары записаны", "count", len(products))

	cacheClient, err := cache.NewRedisCache(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("Ошибка инициализации кэша", "error", err.Error())
	}
	defer cacheClient.Close()

	catalogService := services.NewCatalogService(db, cacheClient, nil, log, cfg.Catalog.CacheTTL)
	if err := catalogService.InvalidateCategory(ctx, ""); err != nil {
		log.Fatal("Ошибка сброса кэша каталога", "error", err.Error())
	}
	log.Info("Кэш каталога сброшен")

	counts, err := db.CountByCategory(ctx)
	if err != nil {
		log.Fatal("Ошибка подсчета товаров", "error", err.Error())
	}

	// Событие пересоздания публикуется после фиксации данных;
	// недоступный брокер не отменяет уже записанный каталог
	if messagingClient, err := messaging.NewKafkaMessaging(cfg.Kafka.Brokers, cfg.Kafka.GroupID, log); err != nil {
		log.Warn("Kafka недоступна, событие пересоздания не опубликовано", "error", err.Error())
	} else {
		defer messagingClient.Close()
		payload := messaging.CatalogReseededPayload{
			Event:      messaging.CatalogReseededEvent,
			Counts:     counts,
			ReseededAt: time.Now().UTC(),
		}
		if data, err := json.Marshal(payload); err == nil {
			if err := messagingClient.Publish(ctx, messaging.CatalogReseededEvent, data); err != nil {
				log.Warn("Ошибка публикации события пересоздания", "error", err.Error())
			}
		}
	}

	for category, count := range counts {
		log.Info("Категория засеяна", "category", category, "count", count)
	}
}
