// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/backend/docbackend"
	"github.com/dalemusser/cityseva/internal/app/backend/sqlbackend"
	"github.com/dalemusser/cityseva/internal/app/sqlstore"
	"github.com/dalemusser/cityseva/internal/app/system/displaycache"
	"github.com/dalemusser/cityseva/internal/app/system/indexes"
	"github.com/dalemusser/cityseva/internal/app/system/notify"
	"github.com/dalemusser/cityseva/internal/app/system/timeouts"
	"github.com/dalemusser/cityseva/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens every configured store and selects the API backend.
// Anything opened before a failure is closed again.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (deps DBDeps, err error) {
	defer func() {
		if err != nil {
			closeDeps(context.WithoutCancel(ctx), deps, logger)
			deps = DBDeps{}
		}
	}()

	deps.MongoClient, err = connectMongo(ctx, appCfg)
	if err != nil {
		return deps, err
	}
	deps.MongoDatabase = deps.MongoClient.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	if appCfg.PostgresDSN != "" {
		deps.SQL, err = sqlstore.Open(appCfg.PostgresDSN, sqlstore.Options{
			MaxOpenConns:  appCfg.PostgresMaxOpenConns,
			MaxIdleConns:  appCfg.PostgresMaxOpenConns / 2,
			SlowThreshold: appCfg.PostgresSlowQuery,
		}, logger)
		if err != nil {
			return deps, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
		err = sqlstore.Ping(pingCtx, deps.SQL)
		cancel()
		if err != nil {
			return deps, fmt.Errorf("ping postgres: %w", err)
		}
		logger.Info("connected to PostgreSQL")
	}

	var names displaycache.Cache = displaycache.Nop{}
	if appCfg.RedisAddr != "" {
		deps.Redis = redis.NewClient(&redis.Options{Addr: appCfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
		perr := deps.Redis.Ping(pingCtx).Err()
		cancel()
		if perr != nil {
			// The cache is optional; run without it.
			logger.Warn("redis unreachable, display-name cache disabled",
				zap.String("addr", appCfg.RedisAddr), zap.Error(perr))
		} else {
			names = displaycache.NewRedis(deps.Redis, appCfg.CacheTTL, logger)
		}
	}

	deps.Publisher = notify.Nop{}
	if appCfg.AMQPURL != "" {
		pub, derr := notify.Dial(appCfg.AMQPURL, appCfg.AMQPExchange, logger)
		if derr != nil {
			return deps, derr
		}
		deps.Publisher = pub
		logger.Info("publishing notification events", zap.String("exchange", appCfg.AMQPExchange))
	}

	switch appCfg.DataBackend {
	case backend.SQL:
		deps.Backend = sqlbackend.New(deps.SQL)
	default:
		deps.Backend = docbackend.New(deps.MongoDatabase, names, logger)
	}
	logger.Info("data backend selected", zap.String("backend", deps.Backend.Name()))
	return deps, nil
}

func connectMongo(ctx context.Context, appCfg AppConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	connCtx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()
	client, err := mongo.Connect(connCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureSchema creates the relational tables, the collection validators
// and the indexes. Each step is idempotent.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.SQL != nil {
		if err := sqlstore.Migrate(ctx, deps.SQL); err != nil {
			logger.Error("postgres schema migration failed", zap.Error(err))
			return err
		}
	}
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("collection validators failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return err
	}
	logger.Info("schema ready")
	return nil
}
