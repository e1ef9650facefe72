// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/system/normalize"
	"github.com/dalemusser/cityseva/internal/app/system/timeouts"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config(appCfg.Timeouts))

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps.Backend, appCfg.AdminEmail, logger); err != nil {
			logger.Error("admin bootstrap failed", zap.Error(err))
			return err
		}
	}
	return nil
}

// ensureAdmin promotes the registered user with email to admin. A missing
// user is logged and skipped: accounts are only created through registration.
func ensureAdmin(ctx context.Context, b backend.Backend, email string, logger *zap.Logger) error {
	email = normalize.Email(email)
	u, err := b.GetUserByEmail(ctx, email)
	if errors.Is(err, backend.ErrNotFound) {
		logger.Warn("admin_email does not match a registered user", zap.String("email", email))
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up admin user: %w", err)
	}
	if u.Role == models.RoleAdmin {
		return nil
	}
	if err := b.SetUserRole(ctx, u.ID, models.RoleAdmin, nil); err != nil {
		return fmt.Errorf("promote admin user: %w", err)
	}
	logger.Info("promoted user to admin", zap.String("user_id", u.ID), zap.String("previous_role", u.Role))
	return nil
}
