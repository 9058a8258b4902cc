package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/quantedge/quantedge/internal/api/middleware"
	"github.com/quantedge/quantedge/internal/api/response"
	"github.com/quantedge/quantedge/internal/auth"
	"github.com/quantedge/quantedge/internal/core"
	"go.uber.org/zap"
)

// AuthClient is the account service.
type AuthClient interface {
	Signup(ctx context.Context, req auth.SignupRequest) (*auth.Result, error)
	Login(ctx context.Context, creds auth.Credentials) (*auth.Result, error)
	Logout(ctx context.Context, email string) (*auth.Result, error)
}

// SessionGauge receives the live session count.
type SessionGauge interface {
	SetSessionsActive(count int)
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// AuthHandler proxies account operations and manages sessions.
type AuthHandler struct {
	client   AuthClient
	sessions *auth.SessionStore
	gauge    SessionGauge
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler. gauge and logger may be nil.
func NewAuthHandler(client AuthClient, sessions *auth.SessionStore, gauge SessionGauge, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{client: client, sessions: sessions, gauge: gauge, logger: logger}
}

// Signup registers an account.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrBadRequest, err))
		return
	}

	res, err := h.client.Signup(r.Context(), req)
	if err != nil {
		response.Error(w, http.StatusBadGateway, err)
		return
	}
	response.JSON(w, resultStatus(res), res)
}

// Login checks credentials and opens a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrBadRequest, err))
		return
	}

	res, err := h.client.Login(r.Context(), creds)
	if err != nil {
		response.Error(w, http.StatusBadGateway, err)
		return
	}

	out := LoginResponse{Success: res.Success, Message: res.Message}
	if res.Success {
		sess := h.sessions.Create(creds.Email)
		out.Token = sess.Token
		out.ExpiresAt = sess.ExpiresAt
		h.reportSessions()
		h.logger.Info("user logged in", zap.String("email", creds.Email))
	}
	response.JSON(w, resultStatus(res), out)
}

// Logout revokes the caller's session and informs the account service.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Revoke(middleware.BearerToken(r))
	if !ok {
		response.Error(w, http.StatusUnauthorized, core.ErrUnauthorized)
		return
	}
	h.reportSessions()

	res, err := h.client.Logout(r.Context(), sess.Email)
	if err != nil {
		// The local session is already gone.
		h.logger.Warn("auth service logout failed", zap.String("email", sess.Email), zap.Error(err))
		res = &auth.Result{Success: true, Message: "Logged out"}
	}
	response.JSON(w, http.StatusOK, res)
}

func (h *AuthHandler) reportSessions() {
	if h.gauge != nil {
		h.gauge.SetSessionsActive(h.sessions.Len())
	}
}

func resultStatus(res *auth.Result) int {
	if res.StatusCode != 0 {
		return res.StatusCode
	}
	if res.Success {
		return http.StatusOK
	}
	return http.StatusBadRequest
}
