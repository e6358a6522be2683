package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config содержит все настройки сервиса
type Config struct {
	AppName  string
	Version  string
	LogLevel string
	ENV      string

	Server struct {
		Host            string
		Port            int
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}

	Postgres struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
		SSLMode  string
		Timeout  time.Duration
		PoolSize int // размер пула соединений
	}

	Redis struct {
		Host         string
		Port         int
		Password     string
		DB           int
		SelectionsDB int // отдельная база для корзин и избранного
		PoolSize     int
		MinIdleConns int
	}

	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	}

	Auth struct {
		OIDCIssuerURL    string // адрес OIDC-провайдера
		OIDCClientID     string
		OIDCClientSecret string
		OIDCRedirectURL  string
		GuestPrivateKey  string        // путь к приватному ключу RS256
		GuestPublicKey   string        // путь к публичному ключу RS256
		GuestTokenTTL    time.Duration // срок жизни гостевого токена
		GuestTokenIssuer string
	}

	Catalog struct {
		CacheTTL     time.Duration // срок жизни кэша списков товаров
		SelectionTTL time.Duration // срок жизни корзин и избранного
	}

	Security struct {
		CORSAllowOrigins []string
	}
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	configFile := "config"
	if configPath != "" {
		configFile = configPath
	}

	var cfg Config

	viper.SetConfigName(configFile)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("../config")
	viper.AddConfigPath("../../config")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
		// Продолжаем, если файл не найден, будем использовать только переменные окружения
	}

	setDefaults()
	bindEnvVariables()

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка десериализации конфигурации: %w", err)
	}

	cfg.ENV = viper.GetString("env")
	if cfg.ENV == "" {
		cfg.ENV = "development"
		if envVar := os.Getenv("APP_ENV"); envVar != "" {
			cfg.ENV = envVar
		}
	}

	return &cfg, nil
}

// RedisAddr возвращает адрес Redis в формате host:port
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// setDefaults устанавливает значения по умолчанию
func setDefaults() {
	// Основные настройки
	viper.SetDefault("appName", "catalog-service")
	viper.SetDefault("version", "1.0.0")
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("env", "development")

	// Настройки сервера
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", "10s")
	viper.SetDefault("server.writeTimeout", "10s")
	viper.SetDefault("server.shutdownTimeout", "5s")

	// Настройки Postgres
	viper.SetDefault("postgres.host", "localhost")
	viper.SetDefault("postgres.port", 5432)
	viper.SetDefault("postgres.user", "postgres")
	viper.SetDefault("postgres.password", "postgres")
	viper.SetDefault("postgres.dbname", "catalog")
	viper.SetDefault("postgres.sslmode", "disable")
	viper.SetDefault("postgres.timeout", "5s")
	viper.SetDefault("postgres.poolSize", 10)

	// Настройки Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.selectionsDB", 1)
	viper.SetDefault("redis.poolSize", 10)
	viper.SetDefault("redis.minIdleConns", 2)

	// Настройки Kafka
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.group_id", "catalog-service")

	// Настройки аутентификации
	viper.SetDefault("auth.oidcIssuerURL", "")
	viper.SetDefault("auth.oidcClientID", "catalog-service")
	viper.SetDefault("auth.oidcClientSecret", "")
	viper.SetDefault("auth.oidcRedirectURL", "")
	viper.SetDefault("auth.guestPrivateKey", "keys/guest.pem")
	viper.SetDefault("auth.guestPublicKey", "keys/guest.pub.pem")
	viper.SetDefault("auth.guestTokenTTL", "720h")
	viper.SetDefault("auth.guestTokenIssuer", "catalog-service")

	// Настройки каталога
	viper.SetDefault("catalog.cacheTTL", "10m")
	viper.SetDefault("catalog.selectionTTL", "720h")

	// Настройки безопасности
	viper.SetDefault("security.corsAllowOrigins", []string{"*"})
}

// bindEnvVariables привязывает переменные окружения к конфигурации
func bindEnvVariables() {
	// Основные настройки
	viper.BindEnv("appName", "APP_NAME")
	viper.BindEnv("version", "APP_VERSION")
	viper.BindEnv("logLevel", "LOG_LEVEL")
	viper.BindEnv("env", "APP_ENV")

	// Настройки сервера
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.readTimeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.writeTimeout", "SERVER_WRITE_TIMEOUT")
	viper.BindEnv("server.shutdownTimeout", "SERVER_SHUTDOWN_TIMEOUT")

	// Настройки Postgres
	viper.BindEnv("postgres.host", "POSTGRES_HOST")
	viper.BindEnv("postgres.port", "POSTGRES_PORT")
	viper.BindEnv("postgres.user", "POSTGRES_USER")
	viper.BindEnv("postgres.password", "POSTGRES_PASSWORD")
	viper.BindEnv("postgres.dbname", "POSTGRES_DBNAME")
	viper.BindEnv("postgres.sslmode", "POSTGRES_SSLMODE")
	viper.BindEnv("postgres.timeout", "POSTGRES_TIMEOUT")
	viper.BindEnv("postgres.poolSize", "POSTGRES_POOL_SIZE")

	// Настройки Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("redis.selectionsDB", "REDIS_SELECTIONS_DB")
	viper.BindEnv("redis.poolSize", "REDIS_POOL_SIZE")
	viper.BindEnv("redis.minIdleConns", "REDIS_MIN_IDLE_CONNS")

	// Настройки Kafka
	viper.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	viper.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")

	// Настройки аутентификации
	viper.BindEnv("auth.oidcIssuerURL", "AUTH_OIDC_ISSUER_URL")
	viper.BindEnv("auth.oidcClientID", "AUTH_OIDC_CLIENT_ID")
	viper.BindEnv("auth.oidcClientSecret", "AUTH_OIDC_CLIENT_SECRET")
	viper.BindEnv("auth.oidcRedirectURL", "AUTH_OIDC_REDIRECT_URL")
	viper.BindEnv("auth.guestPrivateKey", "AUTH_GUEST_PRIVATE_KEY")
	viper.BindEnv("auth.guestPublicKey", "AUTH_GUEST_PUBLIC_KEY")
	viper.BindEnv("auth.guestTokenTTL", "AUTH_GUEST_TOKEN_TTL")
	viper.BindEnv("auth.guestTokenIssuer", "AUTH_GUEST_TOKEN_ISSUER")

	// Настройки каталога
	viper.BindEnv("catalog.cacheTTL", "CATALOG_CACHE_TTL")
	viper.BindEnv("catalog.selectionTTL", "CATALOG_SELECTION_TTL")

	// Настройки безопасности
	viper.BindEnv("security.corsAllowOrigins", "CORS_ALLOW_ORIGINS")
}
