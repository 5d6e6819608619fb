// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Storage StorageConfig `mapstructure:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Events  EventsConfig  `mapstructure:"events"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Ops     OpsConfig     `mapstructure:"ops"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// StorageConfig selects the device-storage backend stores persist into.
type StorageConfig struct {
	Backend string       `mapstructure:"backend"` // memory | sqlite | redis
	SQLite  SQLiteConfig `mapstructure:"sqlite"`
	Redis   RedisConfig  `mapstructure:"redis"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CatalogConfig selects where restaurant/menu/user records come from.
type CatalogConfig struct {
	Source      string         `mapstructure:"source"` // fixtures | postgres
	FixturesDir string         `mapstructure:"fixtures_dir"`
	Postgres    PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// EventsConfig selects the lifecycle-event sink.
type EventsConfig struct {
	Sink  string      `mapstructure:"sink"` // log | kafka
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// GatewayConfig tunes the support gateway used for issue submission. With a
// BaseURL the engine talks to a real endpoint; without one it runs the
// simulated gateway with the configured latency window and failure rate.
type GatewayConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	MinLatencyMs   int     `mapstructure:"min_latency_ms"`
	MaxLatencyMs   int     `mapstructure:"max_latency_ms"`
	FailureRate    float64 `mapstructure:"failure_rate"` // 0.0 - 1.0
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	JWTSecret       string `mapstructure:"jwt_secret"`
	TokenTTLMinutes int    `mapstructure:"token_ttl_minutes"`
}

// OpsConfig configures the operational HTTP surface (health, metrics, snapshots).
type OpsConfig struct {
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
