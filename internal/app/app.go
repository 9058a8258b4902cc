package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/quantedge/quantedge/internal/api"
	"github.com/quantedge/quantedge/internal/api/job"
	"github.com/quantedge/quantedge/internal/auth"
	"github.com/quantedge/quantedge/internal/backtest"
	"github.com/quantedge/quantedge/internal/config"
	"github.com/quantedge/quantedge/internal/contact"
	"github.com/quantedge/quantedge/internal/metrics"
	"github.com/quantedge/quantedge/internal/notifier"
	"github.com/quantedge/quantedge/internal/notifier/email"
	"github.com/quantedge/quantedge/internal/notifier/webhook"
	"github.com/quantedge/quantedge/internal/settings"
	"github.com/quantedge/quantedge/internal/storage/kv"
	"go.uber.org/zap"
)

// App wires the settings manager and its collaborators from configuration.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	store     kv.Store
	closer    io.Closer
	manager   *settings.Manager
	metrics   *metrics.Registry
	notifiers *notifier.Registry
	contact   *contact.Service
	backtest  *backtest.Client
	auth      *auth.Client
	sessions  *auth.SessionStore
	jobs      *job.Store
	interval  time.Duration

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
}

// New creates a new App instance. The settings store is opened here; call
// Close to release it.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Defaults()
	}

	store, closer, err := kv.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("opening settings store: %w", err)
	}

	a := &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		closer:    closer,
		notifiers: notifier.NewRegistry(),
		jobs:      job.NewStore(cfg.Server.MaxJobs, time.Duration(cfg.Server.JobTTLHours)*time.Hour),
		interval:  time.Minute,
	}

	opts := []settings.Option{
		settings.WithKey(cfg.Storage.Key),
		settings.WithUniverse(settings.NewUniverse(cfg.Universe)),
		settings.WithLogger(logger.Named("settings")),
	}
	if cfg.Metrics.Enabled {
		a.metrics = metrics.NewRegistry()
		opts = append(opts, settings.WithRecorder(a.metrics))
	}
	a.manager = settings.NewManager(store, opts...)

	if err := a.registerNotifiers(); err != nil {
		closer.Close()
		return nil, err
	}
	var contactRecorder contact.Recorder
	if a.metrics != nil {
		contactRecorder = a.metrics
	}
	a.contact = contact.NewService(a.notifiers, cfg.Contact.AdminEmail, logger.Named("contact"), contactRecorder)

	if cfg.Backtest.URL != "" {
		a.backtest = backtest.NewClient(cfg.Backtest.URL, cfg.Backtest.Timeout, logger.Named("backtest"))
	}
	if cfg.Auth.URL != "" {
		a.auth = auth.NewClient(cfg.Auth.URL, cfg.Auth.Timeout)
		a.sessions = auth.NewSessionStore(cfg.Auth.SessionTTL)
	}

	return a, nil
}

func (a *App) registerNotifiers() error {
	smtp := a.cfg.Contact.SMTP
	if smtp.Host != "" {
		n := email.New(email.Config{
			Host:     smtp.Host,
			Port:     smtp.Port,
			Username: smtp.Username,
			Password: smtp.Password,
			From:     smtp.From,
		})
		if err := a.notifiers.Register(n); err != nil {
			return err
		}
	}
	if hook := a.cfg.Contact.Webhook; hook.URL != "" {
		if err := a.notifiers.Register(webhook.New(hook.URL, hook.Headers)); err != nil {
			return err
		}
	}
	return nil
}

// Manager returns the settings manager.
func (a *App) Manager() *settings.Manager { return a.manager }

// Metrics returns the metrics registry, nil when metrics are disabled.
func (a *App) Metrics() *metrics.Registry { return a.metrics }

// Restore loads the stored settings into the manager.
func (a *App) Restore(ctx context.Context) settings.SimulationSettings {
	s := a.manager.Restore(ctx)
	a.logger.Info("settings restored",
		zap.String("key", a.manager.Key()),
		zap.String("state", string(a.manager.State())),
	)
	return s
}

// Dependencies returns the services the HTTP server routes to.
func (a *App) Dependencies() api.Dependencies {
	deps := api.Dependencies{
		Settings: a.manager,
		Jobs:     a.jobs,
		Metrics:  a.metrics,
	}
	// Only set the interfaces for configured clients so nil stays nil.
	if a.notifiers.Len() > 0 {
		deps.Contact = a.contact
	}
	if a.backtest != nil {
		deps.Backtest = a.backtest
	}
	if a.auth != nil {
		deps.Auth = a.auth
		deps.Sessions = a.sessions
	}
	return deps
}

// ServerConfig translates the server section for api.NewServer.
func (a *App) ServerConfig() api.Config {
	return api.Config{
		Host:        a.cfg.Server.Host,
		Port:        a.cfg.Server.Port,
		APIKey:      a.cfg.Server.APIKey,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		MetricsPath: a.cfg.Metrics.Path,
	}
}

// SetInterval sets the housekeeping interval
func (a *App) SetInterval(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.interval = d
}

// Start runs housekeeping until ctx is done: expired jobs and sessions are
// pruned and the gauges refreshed.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app already running")
	}
	a.running = true

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	interval := a.interval
	a.mu.Unlock()

	a.logger.Info("QuantEdge starting",
		zap.String("storage", a.cfg.Storage.Type),
		zap.Int("notifiers", a.notifiers.Len()),
		zap.Bool("backtest", a.backtest != nil),
		zap.Bool("auth", a.auth != nil),
	)

	a.RunOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("QuantEdge shutting down")
			a.mu.Lock()
			a.running = false
			a.mu.Unlock()
			return ctx.Err()
		case <-ticker.C:
			a.RunOnce()
		}
	}
}

// Stop stops the housekeeping loop
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

// RunOnce performs one housekeeping pass.
func (a *App) RunOnce() {
	jobs := len(a.jobs.List())
	sessions := 0
	if a.sessions != nil {
		sessions = a.sessions.Len()
	}
	if a.metrics != nil {
		a.metrics.SetJobsActive("backtest", a.jobs.Active("backtest"))
		a.metrics.SetSessionsActive(sessions)
	}
	a.logger.Debug("housekeeping", zap.Int("jobs", jobs), zap.Int("sessions", sessions))
}

// Close releases the settings store.
func (a *App) Close() error {
	return a.closer.Close()
}

// GetStats returns a summary of the app's state.
func (a *App) GetStats() map[string]any {
	a.mu.RLock()
	running := a.running
	a.mu.RUnlock()

	sessions := 0
	if a.sessions != nil {
		sessions = a.sessions.Len()
	}
	return map[string]any{
		"running":   running,
		"state":     string(a.manager.State()),
		"notifiers": a.notifiers.Len(),
		"jobs":      len(a.jobs.List()),
		"sessions":  sessions,
	}
}
