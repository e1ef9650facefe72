// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for CitySeva.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// the HTTP server, logging, and CORS; everything about the stores, the
// active backend, and the API lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// PostgreSQL (relational store). Empty disables it.
	PostgresDSN          string
	PostgresMaxOpenConns int
	PostgresSlowQuery    time.Duration

	// DataBackend selects which store serves API reads and writes: "sql" or "document".
	DataBackend string

	// Redis display-name cache for the document backend. Empty disables it.
	RedisAddr string
	CacheTTL  time.Duration

	// RabbitMQ notification events. Empty URL disables publishing.
	AMQPURL      string
	AMQPExchange string

	// Bearer tokens
	JWTSecret string
	TokenTTL  time.Duration

	// Audit logging destinations: all, db, log, or off
	AuditLogAuth      string
	AuditLogComplaint string
	AuditLogAdmin     string

	// AdminEmail names a registered user promoted to admin at startup.
	AdminEmail string

	// Migration settings used by citysevactl.
	MappingFile          string
	MigrateRetryAttempts int
	MigrateProgressEvery int

	// Timeouts overrides; zero keeps the defaults.
	Timeouts TimeoutConfig
}

// TimeoutConfig mirrors timeouts.Config for configuration loading.
type TimeoutConfig struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}
