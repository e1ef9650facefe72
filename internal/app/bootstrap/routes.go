// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/cityseva/internal/app/civic"
	auditlogfeature "github.com/dalemusser/cityseva/internal/app/features/auditlog"
	categoriesfeature "github.com/dalemusser/cityseva/internal/app/features/categories"
	complaintsfeature "github.com/dalemusser/cityseva/internal/app/features/complaints"
	errorsfeature "github.com/dalemusser/cityseva/internal/app/features/errors"
	healthfeature "github.com/dalemusser/cityseva/internal/app/features/health"
	loginfeature "github.com/dalemusser/cityseva/internal/app/features/login"
	notificationsfeature "github.com/dalemusser/cityseva/internal/app/features/notifications"
	officialrequestsfeature "github.com/dalemusser/cityseva/internal/app/features/officialrequests"
	userinfofeature "github.com/dalemusser/cityseva/internal/app/features/userinfo"
	usersfeature "github.com/dalemusser/cityseva/internal/app/features/users"
	"github.com/dalemusser/cityseva/internal/app/system/auditlog"
	"github.com/dalemusser/cityseva/internal/app/system/auth"
	"github.com/dalemusser/cityseva/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The JSON API is mounted under /api
// behind the bearer-token middleware; each feature applies its own actor
// and role requirements.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens := auth.NewIssuer(appCfg.JWTSecret, appCfg.TokenTTL)

	audit := auditlog.New(deps.Backend, logger, auditlog.Config{
		Auth:      appCfg.AuditLogAuth,
		Complaint: appCfg.AuditLogComplaint,
		Admin:     appCfg.AuditLogAdmin,
	})
	svc := civic.New(deps.Backend, audit, deps.Publisher, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Set before mounting so subrouters inherit them.
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.SQL, deps.Backend.Name(), logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api", func(api chi.Router) {
		// Loads the Actor from a bearer token when one is sent.
		api.Use(auth.Middleware(tokens, logger))

		// Accounts
		api.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(svc, errLog, logger)))
		api.Mount("/login", loginfeature.Routes(loginfeature.NewHandler(svc, tokens, ratelimit.NewLoginLimiter(), errLog, logger)))
		api.Mount("/me", userinfofeature.Routes(userinfofeature.NewHandler(svc, errLog)))

		// Complaints and their categories
		api.Mount("/categories", categoriesfeature.Routes(categoriesfeature.NewHandler(svc, errLog, logger)))
		api.Mount("/complaints", complaintsfeature.Routes(complaintsfeature.NewHandler(svc, errLog, logger)))

		api.Mount("/notifications", notificationsfeature.Routes(notificationsfeature.NewHandler(svc, errLog)))
		api.Mount("/official-requests", officialrequestsfeature.Routes(officialrequestsfeature.NewHandler(svc, errLog, logger)))

		// Admin
		api.Mount("/audit-logs", auditlogfeature.Routes(auditlogfeature.NewHandler(svc, errLog, logger)))
	})

	return r, nil
}
