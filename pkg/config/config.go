package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Pluggy   PluggyConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Sync     SyncConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

// PluggyConfig holds the aggregator endpoint and client credentials.
type PluggyConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	PageSize     int
	Timeout      time.Duration
	// KeyCacheTTL bounds how long a minted API key is reused when Redis is configured.
	// Zero disables caching and every sync run mints its own key.
	KeyCacheTTL time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type SyncConfig struct {
	Schedule        string
	Timeout         time.Duration
	RefreshBalances bool
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work for Docker/K8s
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "120"))
	maxConns, _ := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	pageSize, _ := strconv.Atoi(getEnv("PLUGGY_PAGE_SIZE", "500"))
	pluggyTimeout, _ := strconv.Atoi(getEnv("PLUGGY_TIMEOUT_SECONDS", "30"))
	keyTTL, _ := strconv.Atoi(getEnv("PLUGGY_KEY_CACHE_MINUTES", "0"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	syncTimeout, _ := strconv.Atoi(getEnv("SYNC_TIMEOUT_SECONDS", "300"))
	refreshBalances := getEnv("SYNC_REFRESH_BALANCES", "true") == "true"

	if pageSize <= 0 {
		pageSize = 500
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "wallet"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(maxConns),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		Pluggy: PluggyConfig{
			BaseURL:      getEnv("PLUGGY_BASE_URL", "https://api.pluggy.ai"),
			ClientID:     getEnv("PLUGGY_CLIENT_ID", ""),
			ClientSecret: getEnv("PLUGGY_CLIENT_SECRET", ""),
			PageSize:     pageSize,
			Timeout:      time.Duration(pluggyTimeout) * time.Second,
			KeyCacheTTL:  time.Duration(keyTTL) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		RabbitMQ: RabbitMQConfig{
			URL:      getEnv("RABBITMQ_URL", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "wallet.events"),
		},
		Sync: SyncConfig{
			Schedule:        getEnv("SYNC_SCHEDULE", "@every 6h"),
			Timeout:         time.Duration(syncTimeout) * time.Second,
			RefreshBalances: refreshBalances,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
