// internal/app/features/complaints/handler.go
package complaints

import (
	"github.com/dalemusser/cityseva/internal/app/civic"
	uierrors "github.com/dalemusser/cityseva/internal/app/features/errors"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for complaints and their
// history, media and feedback.
type Handler struct {
	Svc    *civic.Service
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a complaints Handler.
func NewHandler(svc *civic.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:    svc,
		ErrLog: errLog,
		Log:    logger,
	}
}
