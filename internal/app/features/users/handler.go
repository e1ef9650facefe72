// internal/app/features/users/handler.go
package users

import (
	"github.com/dalemusser/cityseva/internal/app/civic"
	uierrors "github.com/dalemusser/cityseva/internal/app/features/errors"
	"go.uber.org/zap"
)

// Handler serves registration and account reads.
type Handler struct {
	Svc    *civic.Service
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a users Handler.
func NewHandler(svc *civic.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:    svc,
		ErrLog: errLog,
		Log:    logger,
	}
}
