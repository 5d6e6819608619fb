// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"

	CatalogFixtures = "fixtures"
	CatalogPostgres = "postgres"

	EventSinkLog   = "log"
	EventSinkKafka = "kafka"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like STORAGE_BACKEND
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, e.g. config.development.yaml
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries .env from multiple locations so the binary works when
// launched from the repo root, a cmd directory, or a test package.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills secrets from the environment when the config file
// left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Auth.JWTSecret == "" {
		if val := os.Getenv("JWT_SECRET"); val != "" {
			cfg.Auth.JWTSecret = val
		}
	}

	if cfg.Catalog.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Catalog.Postgres.User = val
		}
	}
	if cfg.Catalog.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Catalog.Postgres.Password = val
		}
	}

	if cfg.Storage.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Storage.Redis.Address = val
		}
	}
	if cfg.Storage.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Storage.Redis.Password = val
		}
	}

	if len(cfg.Events.Kafka.Brokers) == 0 {
		if val := os.Getenv("KAFKA_BROKERS"); val != "" {
			cfg.Events.Kafka.Brokers = strings.Split(val, ",")
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "delivery-engine"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	// Storage defaults
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = StorageMemory
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = "engine.db"
	}

	// Catalog defaults
	if cfg.Catalog.Source == "" {
		cfg.Catalog.Source = CatalogFixtures
	}
	if cfg.Catalog.Postgres.MaxConnections == 0 {
		cfg.Catalog.Postgres.MaxConnections = 25
	}
	if cfg.Catalog.Postgres.MaxIdle == 0 {
		cfg.Catalog.Postgres.MaxIdle = 5
	}
	if cfg.Catalog.Postgres.SSLMode == "" {
		cfg.Catalog.Postgres.SSLMode = "disable"
	}

	// Events defaults
	if cfg.Events.Sink == "" {
		cfg.Events.Sink = EventSinkLog
	}
	if cfg.Events.Kafka.Topic == "" {
		cfg.Events.Kafka.Topic = "delivery-events"
	}

	// Gateway defaults: the simulated support desk answers in 0.5-1.5s.
	// FailureRate stays as configured; zero means submissions always succeed.
	if cfg.Gateway.MinLatencyMs == 0 {
		cfg.Gateway.MinLatencyMs = 500
	}
	if cfg.Gateway.MaxLatencyMs == 0 {
		cfg.Gateway.MaxLatencyMs = 1500
	}
	if cfg.Gateway.TimeoutSeconds == 0 {
		cfg.Gateway.TimeoutSeconds = 10
	}

	// Auth defaults
	if cfg.Auth.TokenTTLMinutes == 0 {
		cfg.Auth.TokenTTLMinutes = 60 * 24
	}

	// Ops defaults
	if cfg.Ops.Address == "" {
		cfg.Ops.Address = ":8080"
	}
	if len(cfg.Ops.AllowedOrigins) == 0 {
		cfg.Ops.AllowedOrigins = []string{"*"}
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.Storage.Backend {
	case StorageMemory:
	case StorageSQLite:
		if cfg.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required for the sqlite backend")
		}
	case StorageRedis:
		if cfg.Storage.Redis.Address == "" {
			return fmt.Errorf("storage.redis.address is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", cfg.Storage.Backend)
	}

	switch cfg.Catalog.Source {
	case CatalogFixtures:
	case CatalogPostgres:
		if cfg.Catalog.Postgres.Host == "" {
			return fmt.Errorf("catalog.postgres.host is required")
		}
		if cfg.Catalog.Postgres.Database == "" {
			return fmt.Errorf("catalog.postgres.database is required")
		}
		if cfg.Catalog.Postgres.User == "" {
			return fmt.Errorf("catalog.postgres.user is required")
		}
	default:
		return fmt.Errorf("unknown catalog.source %q", cfg.Catalog.Source)
	}

	switch cfg.Events.Sink {
	case EventSinkLog:
	case EventSinkKafka:
		if len(cfg.Events.Kafka.Brokers) == 0 {
			return fmt.Errorf("events.kafka.brokers is required for the kafka sink")
		}
	default:
		return fmt.Errorf("unknown events.sink %q", cfg.Events.Sink)
	}

	if cfg.Gateway.BaseURL != "" {
		if _, err := url.ParseRequestURI(cfg.Gateway.BaseURL); err != nil {
			return fmt.Errorf("gateway.base_url is not a valid URL: %w", err)
		}
	}
	if cfg.Gateway.MinLatencyMs < 0 || cfg.Gateway.MaxLatencyMs < cfg.Gateway.MinLatencyMs {
		return fmt.Errorf("gateway latency bounds are invalid: min=%d max=%d",
			cfg.Gateway.MinLatencyMs, cfg.Gateway.MaxLatencyMs)
	}
	if cfg.Gateway.FailureRate < 0 || cfg.Gateway.FailureRate > 1 {
		return fmt.Errorf("gateway.failure_rate must be within [0,1], got %v", cfg.Gateway.FailureRate)
	}

	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
