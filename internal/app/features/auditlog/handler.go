// internal/app/features/auditlog/handler.go
package auditlog

import (
	"github.com/dalemusser/cityseva/internal/app/civic"
	uierrors "github.com/dalemusser/cityseva/internal/app/features/errors"
	"go.uber.org/zap"
)

type Handler struct {
	Svc    *civic.Service
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs an Audit Log feature handler.
func NewHandler(svc *civic.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:    svc,
		Log:    logger,
		ErrLog: errLog,
	}
}
