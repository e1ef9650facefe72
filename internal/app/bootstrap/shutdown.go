// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/cityseva/internal/app/sqlstore"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down DB connections and other resources.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return closeDeps(ctx, deps, logger)
}

// closeDeps closes whatever deps holds, logging and joining every failure.
func closeDeps(ctx context.Context, deps DBDeps, logger *zap.Logger) error {
	var errs []error
	if deps.Publisher != nil {
		if err := deps.Publisher.Close(); err != nil {
			logger.Error("notification publisher close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			logger.Error("redis close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if deps.SQL != nil {
		logger.Info("closing PostgreSQL pool")
		if err := sqlstore.Close(deps.SQL); err != nil {
			logger.Error("PostgreSQL close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
