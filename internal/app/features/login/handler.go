// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"

	"github.com/dalemusser/cityseva/internal/app/backend"
	"github.com/dalemusser/cityseva/internal/app/civic"
	uierrors "github.com/dalemusser/cityseva/internal/app/features/errors"
	"github.com/dalemusser/cityseva/internal/app/features/shared/jsonapi"
	"github.com/dalemusser/cityseva/internal/app/system/auditlog"
	"github.com/dalemusser/cityseva/internal/app/system/auth"
	"github.com/dalemusser/cityseva/internal/app/system/ratelimit"
	"github.com/dalemusser/cityseva/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler exchanges credentials for a bearer token.
type Handler struct {
	Svc     *civic.Service
	Tokens  *auth.Issuer
	// Limiter may be nil, which disables throttling.
	Limiter *ratelimit.LoginLimiter
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

// NewHandler constructs a login Handler.
func NewHandler(svc *civic.Service, tokens *auth.Issuer, limiter *ratelimit.LoginLimiter, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:     svc,
		Tokens:  tokens,
		Limiter: limiter,
		ErrLog:  errLog,
		Log:     logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int64        `json:"expires_in"` // seconds
	User      backend.User `json:"user"`
}

// HandleLogin handles POST /api/login.
//
// On success: 200 and
//
//	{ "token":"…", "token_type":"Bearer", "expires_in":86400, "user":{…} }
//
// Unknown email, wrong password and disabled accounts all answer 401 with
// the same message. Too many attempts from one IP or for one email answer 429.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := jsonapi.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad login body", err, "invalid request body")
		return
	}

	ip := auditlog.ClientIP(r)
	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(ip, req.Email); !ok {
			h.Log.Warn("login throttled", zap.String("ip", ip), zap.String("reason", reason))
			uierrors.Write(w, http.StatusTooManyRequests, uierrors.Body{Error: reason})
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Svc.Authenticate(ctx, req.Email, req.Password, ip)
	if err != nil {
		h.ErrLog.Respond(w, r, "log in", err)
		return
	}

	token, err := h.Tokens.Issue(auth.Actor{ID: u.ID, Role: u.Role})
	if err != nil {
		h.ErrLog.Respond(w, r, "log in", err)
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(req.Email)
	}
	h.Log.Info("user logged in", zap.String("user_id", u.ID), zap.String("role", u.Role))

	jsonapi.Write(w, http.StatusOK, loginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(h.Tokens.TTL().Seconds()),
		User:      u,
	})
}
