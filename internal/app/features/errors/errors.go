// internal/app/features/errors/errors.go
//
// Package errors turns workflow errors into JSON responses. Clients get a
// short public message; the underlying error goes to the log only.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/civic"
	"github.com/dalemusser/cityseva/internal/app/system/authutil"
	"github.com/dalemusser/cityseva/internal/domain/rules"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Body is the JSON shape of every error response.
type Body struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ErrorLogger writes error responses and logs the cause.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger returns an ErrorLogger writing to logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{log: logger}
}

// Write sends status with a public message.
func Write(w http.ResponseWriter, status int, body Body) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	return []zap.Field{
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
}

// LogServerError logs err at error level and responds 500 with public.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, public string) {
	e.log.Error(msg, e.fields(r, err)...)
	Write(w, http.StatusInternalServerError, Body{Error: public})
}

// LogBadRequest logs err at info level and responds 400 with public.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, public string) {
	e.log.Info(msg, e.fields(r, err)...)
	Write(w, http.StatusBadRequest, Body{Error: public})
}

// Respond maps err to a status code. Known domain errors carry their own
// message; anything else becomes a 500 with "failed to <action>".
func (e *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, action string, err error) {
	status, body := classify(err)
	if status == http.StatusInternalServerError {
		e.LogServerError(w, r, "failed to "+action, err, "failed to "+action)
		return
	}
	e.log.Debug("request rejected", append(e.fields(r, err), zap.Int("status", status))...)
	Write(w, status, body)
}

var (
	conflicts = []error{
		backend.ErrDuplicate,
		backend.ErrCategoryInUse,
		rules.ErrFeedbackExists,
		rules.ErrAlreadyReviewed,
		rules.ErrNotResolved,
		civic.ErrRequestPending,
	}
	badInput = []error{
		rules.ErrInvalidStatus,
		rules.ErrInvalidPriority,
		rules.ErrInvalidRole,
		rules.ErrInvalidRating,
		rules.ErrInvalidMediaKind,
		rules.ErrDepartmentRequired,
		rules.ErrDepartmentForbidden,
		civic.ErrInvalidAssignee,
		authutil.ErrInvalidEmail,
	}
)

func classify(err error) (int, Body) {
	var ve *civic.ValidationError
	if stderrors.As(err, &ve) {
		return http.StatusBadRequest, Body{Error: ve.Err.Error(), Field: ve.Field}
	}
	switch {
	case stderrors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound, Body{Error: "not found"}
	case stderrors.Is(err, civic.ErrForbidden), stderrors.Is(err, rules.ErrNotAuthor):
		return http.StatusForbidden, Body{Error: "forbidden"}
	case stderrors.Is(err, civic.ErrInvalidCredentials), stderrors.Is(err, civic.ErrInactive):
		return http.StatusUnauthorized, Body{Error: civic.ErrInvalidCredentials.Error()}
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, Body{Error: "request timed out"}
	}
	for _, target := range conflicts {
		if stderrors.Is(err, target) {
			return http.StatusConflict, Body{Error: target.Error()}
		}
	}
	for _, target := range badInput {
		if stderrors.Is(err, target) {
			return http.StatusBadRequest, Body{Error: target.Error()}
		}
	}
	return http.StatusInternalServerError, Body{}
}
