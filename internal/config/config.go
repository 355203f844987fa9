package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Elasticsearch ElasticsearchConfig
	Scheduler     SchedulerConfig
	Storage       StorageConfig
}

type AppConfig struct {
	Port         string
	Environment  string
	LogFilePath  string
	LogLevel     string
	HttpEnabled  bool
	NatsURL      string
	RedisURL     string
	JwtSecret    string
	OtelEnabled  bool
	OtelEndpoint string
}

type DatabaseConfig struct {
	Driver     string `validate:"oneof=postgres sqlite"`
	Connection string `validate:"required"`
	LogLevel   string
}

type ElasticsearchConfig struct {
	URIs      string `validate:"required"`
	Username  string
	Password  string
	Index     string `validate:"required"`
	QuerySize int    `validate:"min=1,max=10000"`
	Timeout   time.Duration
}

type SchedulerConfig struct {
	Enabled bool
	Cron    string `validate:"required"`
	// RecentHours is the look-back window of a recent-documents request that names none.
	RecentHours int `validate:"min=1"`
	LockEnabled bool
	// LockTTL bounds how long a crashed holder blocks other replicas.
	// A live holder renews the lease every LockTTL/3, so runs may outlast it.
	LockTTL      time.Duration
	LookupTTL    time.Duration
	SyncDurable  string
	TriggerTopic string
}

type StorageConfig struct {
	WriteMode string `validate:"oneof=insert upsert"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:         getEnv("APP_PORT", "8081"),
			Environment:  getEnv("GO_ENV", "development"),
			LogFilePath:  getEnv("LOG_FILE_PATH", "logs/docsync.log"),
			LogLevel:     getEnv("LOG_LEVEL", "debug"),
			HttpEnabled:  getEnvAsBool("HTTP_ENABLED", true),
			NatsURL:      getEnv("NATS_URL", ""),
			RedisURL:     getEnv("REDIS_URL", ""),
			JwtSecret:    getEnv("JWT_SECRET", ""),
			OtelEnabled:  getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			LogLevel:   getEnv("DB_LOG_LEVEL", "warn"),
		},
		Elasticsearch: ElasticsearchConfig{
			URIs:      getEnv("ES_URIS", "http://localhost:9200"),
			Username:  getEnv("ES_USERNAME", ""),
			Password:  getEnv("ES_PASSWORD", ""),
			Index:     getEnv("ES_DOCUMENT_QUERY_INDEX", ""),
			QuerySize: getEnvAsInt("ES_DOCUMENT_QUERY_SIZE", 100),
			Timeout:   getEnvAsDuration("ES_TIMEOUT", 30*time.Second),
		},
		Scheduler: SchedulerConfig{
			Enabled:      getEnvAsBool("SCHEDULER_ENABLED", true),
			Cron:         getEnv("SCHEDULER_CRON", "0 */5 * * * *"),
			RecentHours:  getEnvAsInt("SCHEDULER_RECENT_HOURS", 24),
			LockEnabled:  getEnvAsBool("SCHEDULER_LOCK_ENABLED", false),
			LockTTL:      getEnvAsDuration("SCHEDULER_LOCK_TTL", 30*time.Minute),
			LookupTTL:    getEnvAsDuration("SOURCE_LOOKUP_CACHE_TTL", time.Minute),
			SyncDurable:  getEnv("SYNC_REQUEST_DURABLE", "docsync-worker"),
			TriggerTopic: getEnv("SYNC_TRIGGER_TOPIC", "DOCUMENT_SYNC_TRIGGER"),
		},
		Storage: StorageConfig{
			WriteMode: strings.ToLower(getEnv("STORAGE_WRITE_MODE", "insert")),
		},
	}
}

// Validate reports configuration errors that must stop the process at startup.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Scheduler.LockEnabled && c.App.RedisURL == "" {
		return fmt.Errorf("invalid configuration: SCHEDULER_LOCK_ENABLED requires REDIS_URL")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
