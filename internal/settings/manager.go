package settings

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/quantedge/quantedge/internal/core"
	"github.com/quantedge/quantedge/internal/logger"
	"go.uber.org/zap"
)

// DefaultKey is the well-known key the record is stored under.
const DefaultKey = "simulationSettings"

// Store is the durable key-value port the manager persists through.
// Get returns an error matching core.ErrNotFound when key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// State tells whether the in-memory record matches what was last stored.
type State string

const (
	StateEditing   State = "editing"
	StatePersisted State = "persisted"
)

// Outcome labels reported to a Recorder.
const (
	OutcomeApplied       = "applied"
	OutcomeInvalid       = "invalid"
	OutcomePersistFailed = "persist_failed"
	OutcomeRestored      = "restored"
	OutcomeAbsent        = "absent"
	OutcomeCorrupt       = "corrupt"
	OutcomeReadFailed    = "read_failed"
)

// Recorder receives apply and restore outcomes, typically for metrics.
type Recorder interface {
	RecordSettingsApply(outcome string)
	RecordSettingsRestore(outcome string)
}

// Option configures a Manager.
type Option func(*Manager)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(m *Manager) {
		if key != "" {
			m.key = key
		}
	}
}

// WithUniverse enables the universe membership check.
func WithUniverse(u *Universe) Option {
	return func(m *Manager) { m.universe = u }
}

// WithLogger sets the logger used for swallowed restore failures.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger.OrNop(log) }
}

// WithRecorder attaches an outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// Manager owns the in-memory settings record for a configuration session.
// Field updates never validate; Apply validates and persists in one step and
// is the only transition from StateEditing to StatePersisted.
//
// The record is guarded by a mutex because HTTP handlers share one Manager.
type Manager struct {
	store    Store
	key      string
	universe *Universe
	logger   *zap.Logger
	recorder Recorder

	mu      sync.RWMutex
	current SimulationSettings
	state   State
}

// NewManager creates a manager holding the default record.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		key:     DefaultKey,
		logger:  zap.NewNop(),
		current: Defaults(),
		state:   StateEditing,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Key returns the storage key.
func (m *Manager) Key() string { return m.key }

// Universe returns the configured universe, which may be nil.
func (m *Manager) Universe() *Universe { return m.universe }

// Settings returns a copy of the in-memory record.
func (m *Manager) Settings() SimulationSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Snapshot returns the record and state read under one lock.
func (m *Manager) Snapshot() (SimulationSettings, State) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.state
}

// UpdateField replaces one field and returns the new record.
func (m *Manager) UpdateField(u FieldUpdate) SimulationSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = u.Apply(m.current)
	m.state = StateEditing
	return m.current
}

// Replace swaps the whole in-memory record without validating it.
func (m *Manager) Replace(s SimulationSettings) SimulationSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	m.state = StateEditing
	return m.current
}

// Validate checks the in-memory record and returns the first failure.
func (m *Manager) Validate() error {
	return Validate(m.Settings(), m.universe)
}

// AllFailures lists every violation in the in-memory record.
func (m *Manager) AllFailures() []*ValidationError {
	return AllFailures(m.Settings(), m.universe)
}

// Persist writes s under the manager's key, replacing any earlier value.
// Callers validate first; Persist only stores. The in-memory record is
// left as it is whether or not the write succeeds.
func (m *Manager) Persist(ctx context.Context, s SimulationSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return core.WrapError(core.ErrPersistFailed, err)
	}
	if err := m.store.Set(ctx, m.key, data); err != nil {
		return core.WrapError(core.ErrPersistFailed, err)
	}
	return nil
}

// Apply validates the in-memory record and, when valid, persists it. Only a
// successful validate and persist moves the manager to StatePersisted, and
// only if the record was not edited while the write was in flight. The lock
// is not held across the store call.
func (m *Manager) Apply(ctx context.Context) (SimulationSettings, error) {
	s := m.Settings()
	if err := Validate(s, m.universe); err != nil {
		m.record(OutcomeInvalid)
		return s, err
	}

	if err := m.Persist(ctx, s); err != nil {
		m.logger.Error("failed to persist settings", zap.String("key", m.key), zap.Error(err))
		m.record(OutcomePersistFailed)
		return s, err
	}

	m.mu.Lock()
	if m.current.Equal(s) {
		m.state = StatePersisted
	}
	m.mu.Unlock()

	m.record(OutcomeApplied)
	m.logger.Info("settings applied",
		zap.String("key", m.key),
		zap.Strings("stocks", s.SelectedStocks.Symbols()),
	)
	return s, nil
}

// Restore loads the stored record into memory and returns it. A missing,
// unreadable or malformed value yields Defaults; the failure is logged and
// never returned. A stored record that does not validate is loaded for
// editing but never counts as persisted.
func (m *Manager) Restore(ctx context.Context) SimulationSettings {
	s, outcome := m.load(ctx)

	state := StateEditing
	if outcome == OutcomeRestored {
		if err := Validate(s, m.universe); err != nil {
			m.logger.Warn("stored settings do not validate, editing required",
				zap.String("key", m.key), zap.Error(err))
		} else {
			state = StatePersisted
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	m.state = state
	if m.recorder != nil {
		m.recorder.RecordSettingsRestore(outcome)
	}
	return s
}

func (m *Manager) load(ctx context.Context) (SimulationSettings, string) {
	data, err := m.store.Get(ctx, m.key)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return Defaults(), OutcomeAbsent
		}
		m.logger.Warn("reading stored settings failed, using defaults",
			zap.String("key", m.key), zap.Error(err))
		return Defaults(), OutcomeReadFailed
	}

	var s SimulationSettings
	if err := json.Unmarshal(data, &s); err != nil {
		m.logger.Warn("stored settings are malformed, using defaults",
			zap.String("key", m.key),
			zap.Error(core.WrapError(core.ErrRestoreParseFailed, err)))
		return Defaults(), OutcomeCorrupt
	}
	return s, OutcomeRestored
}

func (m *Manager) record(outcome string) {
	if m.recorder != nil {
		m.recorder.RecordSettingsApply(outcome)
	}
}
