package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"buyer-portal/buyer-portal-backend/internal/sessions"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

type procCall struct {
	Op      string
	Step    string
	Payload any
}

// fakeProcedures records every call and can be told to fail or block
type fakeProcedures struct {
	mu          sync.Mutex
	calls       []procCall
	saved       map[string]json.RawMessage
	fetchErr    error
	submitErr   error
	completeErr error

	// when set, Submit signals submitStarted and waits for releaseSubmit
	submitStarted chan struct{}
	releaseSubmit chan struct{}
	// when set, GetStepData signals fetchStarted and waits for releaseFetch
	fetchStarted chan struct{}
	releaseFetch chan struct{}
}

func newFakeProcedures() *fakeProcedures {
	return &fakeProcedures{saved: make(map[string]json.RawMessage)}
}

func (f *fakeProcedures) GetStepData(_ context.Context, step string) (json.RawMessage, error) {
	if f.fetchStarted != nil {
		f.fetchStarted <- struct{}{}
		<-f.releaseFetch
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, procCall{Op: "get", Step: step})
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.saved[step], nil
}

func (f *fakeProcedures) Submit(_ context.Context, step string, payload any) error {
	if f.submitStarted != nil {
		f.submitStarted <- struct{}{}
		<-f.releaseSubmit
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, procCall{Op: "submit", Step: step, Payload: payload})
	return f.submitErr
}

func (f *fakeProcedures) CompleteOnboarding(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, procCall{Op: "complete"})
	return f.completeErr
}

func (f *fakeProcedures) ops(kind string) []procCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []procCall
	for _, c := range f.calls {
		if kind == "" || c.Op == kind {
			out = append(out, c)
		}
	}
	return out
}

// failingStore rejects every save
type failingStore struct{ sessions.Store }

func (failingStore) Save(context.Context, *sessions.Snapshot) error {
	return errors.New("database unavailable")
}

// gatedStore blocks saves while gated, signalling each one on entered
type gatedStore struct {
	*sessions.MemoryStore
	gated   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		MemoryStore: sessions.NewMemoryStore(),
		entered:     make(chan struct{}, 8),
		release:     make(chan struct{}),
	}
}

func (g *gatedStore) Save(ctx context.Context, snap *sessions.Snapshot) error {
	if g.gated.Load() {
		g.entered <- struct{}{}
		<-g.release
	}
	return g.MemoryStore.Save(ctx, snap)
}

type wizardFixture struct {
	wizard    *Wizard
	procs     *fakeProcedures
	store     *sessions.MemoryStore
	completed []Completion
}

func newFixture(t *testing.T, start StepID, initial *AggregateData) *wizardFixture {
	t.Helper()
	registry, err := NewBuyerRegistry()
	require.NoError(t, err)

	fx := &wizardFixture{procs: newFakeProcedures(), store: sessions.NewMemoryStore()}
	fx.wizard, err = NewWizard(context.Background(), registry, Options{
		Key:         "buyer-onboarding-test",
		BuyerID:     uuid.New(),
		InitialStep: start,
		Initial:     initial,
		Procedures:  fx.procs,
		Store:       fx.store,
		Clock:       testClock,
		OnComplete: func(_ context.Context, c Completion) {
			fx.completed = append(fx.completed, c)
		},
	})
	require.NoError(t, err)
	return fx
}

func demo() *AggregateData {
	d := DemoData(testNow)
	return &d
}

func edit(t *testing.T, w *Wizard, section string, fields string) {
	t.Helper()
	_, err := w.EditDraft(context.Background(), section, json.RawMessage(fields))
	require.NoError(t, err)
}
