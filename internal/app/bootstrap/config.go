// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for CitySeva.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, data_backend, etc.
//   - Environment variables: CITYSEVA_MONGO_URI, CITYSEVA_DATA_BACKEND, etc.
//   - Command-line flags: --mongo_uri, --data_backend, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "cityseva", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Relational store
	{Name: "postgres_dsn", Default: "", Desc: "PostgreSQL DSN (blank disables the relational store)"},
	{Name: "postgres_max_open_conns", Default: 25, Desc: "PostgreSQL max open connections"},
	{Name: "postgres_slow_query", Default: "200ms", Desc: "Log SQL statements slower than this at warn level"},

	// Backend selection
	{Name: "data_backend", Default: backend.Document, Desc: "Store serving the API: 'sql' or 'document'"},

	// Display-name cache
	{Name: "redis_addr", Default: "", Desc: "Redis address for the display-name cache (blank disables it)"},
	{Name: "cache_ttl", Default: "10m", Desc: "Display-name cache TTL"},

	// Notification events
	{Name: "amqp_url", Default: "", Desc: "RabbitMQ URL for notification events (blank disables publishing)"},
	{Name: "amqp_exchange", Default: "cityseva.events", Desc: "RabbitMQ topic exchange"},

	// Tokens
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "HS256 signing secret for bearer tokens (must be strong in production)"},
	{Name: "token_ttl", Default: "24h", Desc: "Bearer token lifetime"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_complaint", Default: "all", Desc: "Complaint event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of a registered user promoted to admin on startup"},

	// Migration
	{Name: "mapping_file", Default: "id_mapping.json", Desc: "Path of the migration ID mapping file"},
	{Name: "migrate_retry_attempts", Default: 3, Desc: "Tries per row on transient write errors"},
	{Name: "migrate_progress_every", Default: 100, Desc: "Log migration progress every N rows"},

	// Timeouts (blank keeps the defaults)
	{Name: "timeout_ping", Default: "", Desc: "Health check timeout"},
	{Name: "timeout_short", Default: "", Desc: "Single-record operation timeout"},
	{Name: "timeout_medium", Default: "", Desc: "List query timeout"},
	{Name: "timeout_long", Default: "", Desc: "Multi-collection operation timeout"},
	{Name: "timeout_batch", Default: "", Desc: "Per-row migration timeout"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CITYSEVA_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CITYSEVA", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		PostgresDSN:          appValues.String("postgres_dsn"),
		PostgresMaxOpenConns: appValues.Int("postgres_max_open_conns"),
		PostgresSlowQuery:    appValues.Duration("postgres_slow_query", 200*time.Millisecond),

		DataBackend: strings.ToLower(strings.TrimSpace(appValues.String("data_backend"))),

		RedisAddr: appValues.String("redis_addr"),
		CacheTTL:  appValues.Duration("cache_ttl", 10*time.Minute),

		AMQPURL:      appValues.String("amqp_url"),
		AMQPExchange: appValues.String("amqp_exchange"),

		JWTSecret: appValues.String("jwt_secret"),
		TokenTTL:  appValues.Duration("token_ttl", 24*time.Hour),

		AuditLogAuth:      appValues.String("audit_log_auth"),
		AuditLogComplaint: appValues.String("audit_log_complaint"),
		AuditLogAdmin:     appValues.String("audit_log_admin"),

		AdminEmail: appValues.String("admin_email"),

		MappingFile:          appValues.String("mapping_file"),
		MigrateRetryAttempts: appValues.Int("migrate_retry_attempts"),
		MigrateProgressEvery: appValues.Int("migrate_progress_every"),

		Timeouts: TimeoutConfig{
			Ping:   appValues.Duration("timeout_ping", 0),
			Short:  appValues.Duration("timeout_short", 0),
			Medium: appValues.Duration("timeout_medium", 0),
			Long:   appValues.Duration("timeout_long", 0),
			Batch:  appValues.Duration("timeout_batch", 0),
		},
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI is always checked because the document store backs the
// migration target and verification even when the API runs on SQL.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if err := validateAppConfig(appCfg); err != nil {
		return err
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.JWTSecret == devJWTSecret {
		return errors.New("jwt_secret must be changed in production")
	}
	return nil
}

func validateAppConfig(appCfg AppConfig) error {
	switch appCfg.DataBackend {
	case backend.Document:
	case backend.SQL:
		if appCfg.PostgresDSN == "" {
			return errors.New("data_backend 'sql' requires postgres_dsn to be set")
		}
	default:
		return fmt.Errorf("data_backend must be %q or %q, got %q", backend.SQL, backend.Document, appCfg.DataBackend)
	}
	if len(appCfg.JWTSecret) < 32 {
		return errors.New("jwt_secret must be at least 32 characters")
	}
	for key, v := range map[string]string{
		"audit_log_auth":      appCfg.AuditLogAuth,
		"audit_log_complaint": appCfg.AuditLogComplaint,
		"audit_log_admin":     appCfg.AuditLogAdmin,
	} {
		switch v {
		case "", auditlog.All, auditlog.DB, auditlog.Log, auditlog.Off:
		default:
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", key, v)
		}
	}
	return nil
}
