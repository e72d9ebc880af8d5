package onboarding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"buyer-portal/buyer-portal-backend/internal/sessions"
)

// ProceduresFactory builds the procedure client for one buyer request
type ProceduresFactory func(buyerID uuid.UUID, token string) Procedures

// CompletionHook runs once per session after onboarding completes
type CompletionHook func(ctx context.Context, c Completion) error

// OpenRequest carries the caller's choices when opening a session
type OpenRequest struct {
	InitialStep StepID `json:"initialStep"`
	Demo        bool   `json:"demo"`
}

// Manager keeps live wizards by session key and resumes them from the store
type Manager struct {
	mu         sync.Mutex
	wizards    map[string]*liveSession
	registry   *Registry
	store      sessions.Store
	procedures ProceduresFactory
	hooks      []CompletionHook
	events     Publisher
	logger     *zap.Logger
	keyPrefix  string
	now        func() time.Time
}

type liveSession struct {
	wizard  *Wizard
	touched time.Time
}

// ManagerOption customises a Manager
type ManagerOption func(*Manager)

// WithKeyPrefix sets the prefix of session keys
func WithKeyPrefix(prefix string) ManagerOption {
	return func(m *Manager) { m.keyPrefix = prefix }
}

// WithCompletionHooks registers hooks run after onboarding completes
func WithCompletionHooks(hooks ...CompletionHook) ManagerOption {
	return func(m *Manager) { m.hooks = append(m.hooks, hooks...) }
}

// WithEvents publishes wizard events to p
func WithEvents(p Publisher) ManagerOption {
	return func(m *Manager) { m.events = p }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a session manager
func NewManager(registry *Registry, store sessions.Store, procedures ProceduresFactory, logger *zap.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		wizards:    make(map[string]*liveSession),
		registry:   registry,
		store:      store,
		procedures: procedures,
		logger:     logger,
		keyPrefix:  "buyer-onboarding",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the step registry sessions are built from
func (m *Manager) Registry() *Registry { return m.registry }

// SessionKey returns the storage key of a buyer's session
func (m *Manager) SessionKey(buyerID uuid.UUID) string {
	return fmt.Sprintf("%s-%s", m.keyPrefix, buyerID)
}

// Open returns the buyer's session, resuming it when one exists, and mounts
// the current step
func (m *Manager) Open(ctx context.Context, buyerID uuid.UUID, token string, req OpenRequest) (*Wizard, []Notice, error) {
	if req.InitialStep != "" {
		if _, err := m.registry.Step(req.InitialStep); err != nil {
			return nil, nil, err
		}
	}
	key := m.SessionKey(buyerID)

	w, err := m.lookup(ctx, key, buyerID, token)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return nil, nil, err
	}
	if w == nil {
		opts := m.options(buyerID, token)
		opts.Key = key
		opts.InitialStep = req.InitialStep
		if req.Demo {
			demo := DemoData(m.now())
			opts.Initial = &demo
		}
		w, err = NewWizard(ctx, m.registry, opts)
		if err != nil {
			return nil, nil, err
		}
		w = m.keep(key, w)
		m.logger.Info("Onboarding session started", zap.String("session", key), zap.String("step", string(w.Current().ID)))
	}

	return w, w.Mount(ctx), nil
}

// Get returns a live or stored session owned by buyerID
func (m *Manager) Get(ctx context.Context, key string, buyerID uuid.UUID, token string) (*Wizard, error) {
	return m.lookup(ctx, key, buyerID, token)
}

func (m *Manager) lookup(ctx context.Context, key string, buyerID uuid.UUID, token string) (*Wizard, error) {
	m.mu.Lock()
	live, ok := m.wizards[key]
	if ok && live.wizard.BuyerID() == buyerID {
		live.touched = m.now()
	}
	m.mu.Unlock()
	if ok {
		w := live.wizard
		if w.BuyerID() != buyerID {
			return nil, ErrSessionNotFound
		}
		w.BindProcedures(m.procedures(buyerID, token))
		return w, nil
	}

	if m.store == nil {
		return nil, ErrSessionNotFound
	}
	snap, err := m.store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if snap == nil || snap.BuyerID != buyerID {
		return nil, ErrSessionNotFound
	}
	w, err := RestoreWizard(m.registry, snap, m.options(buyerID, token))
	if err != nil {
		m.logger.Warn("Discarding unreadable session snapshot", zap.String("session", key), zap.Error(err))
		return nil, ErrSessionNotFound
	}
	return m.keep(key, w), nil
}

// keep registers w under key unless another request got there first, and
// returns the live wizard
func (m *Manager) keep(key string, w *Wizard) *Wizard {
	m.mu.Lock()
	defer m.mu.Unlock()
	if live, ok := m.wizards[key]; ok {
		live.touched = m.now()
		return live.wizard
	}
	m.wizards[key] = &liveSession{wizard: w, touched: m.now()}
	return w
}

// Forget drops a live session from memory; its snapshot stays in the store
func (m *Manager) Forget(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.wizards, key)
}

// Live returns the number of sessions held in memory
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.wizards)
}

// EvictIdle drops live sessions not touched since before. Sessions with a
// save in flight are kept. Snapshots stay in the store, so an evicted
// session resumes on its next request.
func (m *Manager) EvictIdle(before time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key, live := range m.wizards {
		if live.touched.Before(before) && live.wizard.Idle() {
			delete(m.wizards, key)
			n++
		}
	}
	if n > 0 {
		m.logger.Info("Evicted idle onboarding sessions", zap.Int("count", n), zap.Int("live", len(m.wizards)))
	}
	return n
}

func (m *Manager) options(buyerID uuid.UUID, token string) Options {
	return Options{
		BuyerID:    buyerID,
		Procedures: m.procedures(buyerID, token),
		Store:      m.store,
		Events:     m.events,
		Logger:     m.logger,
		Clock:      m.now,
		OnComplete: m.runHooks,
	}
}

func (m *Manager) runHooks(ctx context.Context, c Completion) {
	m.logger.Info("Onboarding completed", zap.String("session", c.Key), zap.String("buyer_id", c.BuyerID.String()))
	for i, hook := range m.hooks {
		if err := hook(ctx, c); err != nil {
			m.logger.Error("Completion hook failed", zap.Int("hook", i), zap.String("session", c.Key), zap.Error(err))
		}
	}
	// Completed sessions are served from their snapshot from now on
	m.Forget(c.Key)
}
