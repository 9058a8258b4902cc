package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	handler "github.com/quantedge/quantedge/internal/api/handler/api"
	"github.com/quantedge/quantedge/internal/api/job"
	"github.com/quantedge/quantedge/internal/api/middleware"
	"github.com/quantedge/quantedge/internal/auth"
	"github.com/quantedge/quantedge/internal/metrics"
	"github.com/quantedge/quantedge/internal/settings"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Server represents the HTTP server for the dashboard backend
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	handler    http.Handler
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	CORSOrigins []string
	MetricsPath string
}

// Dependencies are the services behind the routes. Optional services
// leave their routes unregistered when nil.
type Dependencies struct {
	Settings *settings.Manager
	Jobs     *job.Store
	Backtest handler.Runner
	Auth     handler.AuthClient
	Sessions *auth.SessionStore
	Contact  handler.Submitter
	Metrics  *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Settings == nil {
		return nil, fmt.Errorf("settings manager is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Jobs == nil {
		deps.Jobs = job.NewStore(100, time.Hour)
	}

	s := &Server{
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.setupRoutes(cfg, deps)

	var h http.Handler = s.mux
	if deps.Metrics != nil {
		h = metrics.HTTPMiddleware(deps.Metrics)(h)
	}
	h = metrics.LoggingMiddleware(logger)(h)
	h = cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key", metrics.RequestIDHeader},
		ExposedHeaders: []string{metrics.RequestIDHeader},
	}).Handler(h)
	s.handler = h

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	apiKey := middleware.APIKeyAuth(cfg.APIKey)
	protect := func(h http.HandlerFunc) http.Handler { return apiKey(h) }

	var sessions *auth.SessionStore
	if deps.Auth != nil {
		sessions = deps.Sessions
		if sessions == nil {
			sessions = auth.NewSessionStore(24 * time.Hour)
		}
	}
	withSession := func(h http.HandlerFunc) http.Handler {
		return apiKey(middleware.SessionAuth(sessions)(h))
	}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	settingsHandler := handler.NewSettingsHandler(deps.Settings)
	s.mux.Handle("GET /api/instruments", protect(settingsHandler.Instruments))
	s.mux.Handle("GET /api/settings", protect(settingsHandler.Get))
	s.mux.Handle("PUT /api/settings", protect(settingsHandler.Replace))
	s.mux.Handle("PATCH /api/settings", protect(settingsHandler.Update))
	s.mux.Handle("POST /api/settings/validate", protect(settingsHandler.Validate))
	s.mux.Handle("POST /api/settings/apply", protect(settingsHandler.Apply))
	s.mux.Handle("POST /api/settings/restore", protect(settingsHandler.Restore))

	var backtestRecorder handler.BacktestRecorder
	var sessionGauge handler.SessionGauge
	if deps.Metrics != nil {
		backtestRecorder = deps.Metrics
		sessionGauge = deps.Metrics
	}

	backtestHandler := handler.NewBacktestHandler(deps.Jobs, deps.Backtest, deps.Settings, backtestRecorder, s.logger)
	s.mux.Handle("POST /api/backtest", withSession(backtestHandler.Create))
	s.mux.Handle("GET /api/backtest/{id}", withSession(backtestHandler.GetStatus))

	if deps.Auth != nil {
		authHandler := handler.NewAuthHandler(deps.Auth, sessions, sessionGauge, s.logger)
		s.mux.Handle("POST /api/auth/signup", protect(authHandler.Signup))
		s.mux.Handle("POST /api/auth/login", protect(authHandler.Login))
		s.mux.Handle("POST /api/auth/logout", protect(authHandler.Logout))
	}

	if deps.Contact != nil {
		contactHandler := handler.NewContactHandler(deps.Contact)
		s.mux.Handle("POST /api/contact", protect(contactHandler.Submit))
	}

	if deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle("GET "+path, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
