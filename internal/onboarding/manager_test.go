package onboarding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"buyer-portal/buyer-portal-backend/internal/sessions"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ string, event any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event.(Event))
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestManager(t *testing.T, procs *fakeProcedures, opts ...ManagerOption) (*Manager, *sessions.MemoryStore) {
	t.Helper()
	registry, err := NewBuyerRegistry()
	require.NoError(t, err)
	store := sessions.NewMemoryStore()
	factory := func(uuid.UUID, string) Procedures { return procs }
	opts = append([]ManagerOption{WithClock(testClock)}, opts...)
	return NewManager(registry, store, factory, zap.NewNop(), opts...), store
}

func TestManagerOpenCreatesThenResumes(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, newFakeProcedures(), WithKeyPrefix("acme"))
	buyer := uuid.New()

	w, notices, err := m.Open(ctx, buyer, "token", OpenRequest{InitialStep: StepDueDiligence})
	require.NoError(t, err)
	assert.Empty(t, notices)
	assert.Equal(t, "acme-"+buyer.String(), w.Key())
	assert.Equal(t, StepDueDiligence, w.Current().ID)

	again, _, err := m.Open(ctx, buyer, "token", OpenRequest{})
	require.NoError(t, err)
	assert.Same(t, w, again)
	assert.Equal(t, StepDueDiligence, again.Current().ID)
}

func TestManagerOpenValidatesInitialStep(t *testing.T) {
	m, _ := newTestManager(t, newFakeProcedures())
	_, _, err := m.Open(context.Background(), uuid.New(), "", OpenRequest{InitialStep: "nope"})
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestManagerOpenWithDemoData(t *testing.T) {
	m, _ := newTestManager(t, newFakeProcedures())
	w, _, err := m.Open(context.Background(), uuid.New(), "", OpenRequest{Demo: true})
	require.NoError(t, err)
	require.NotNil(t, w.Data().InitialInquiry)
	assert.Equal(t, "Northbridge Family Office", w.Data().InitialInquiry.OrganisationName)
}

func TestManagerGetScopesToBuyer(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, newFakeProcedures())
	owner := uuid.New()
	w, _, err := m.Open(ctx, owner, "", OpenRequest{})
	require.NoError(t, err)

	_, err = m.Get(ctx, w.Key(), uuid.New(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Get(ctx, "buyer-onboarding-missing", owner, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	m.Forget(w.Key())
	_, err = m.Get(ctx, w.Key(), uuid.New(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerResumesFromStore(t *testing.T) {
	ctx := context.Background()
	procs := newFakeProcedures()
	m, store := newTestManager(t, procs)
	buyer := uuid.New()

	w, _, err := m.Open(ctx, buyer, "", OpenRequest{Demo: true})
	require.NoError(t, err)
	_, err = w.Continue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	m.Forget(w.Key())
	resumed, err := m.Get(ctx, w.Key(), buyer, "")
	require.NoError(t, err)
	assert.NotSame(t, w, resumed)
	assert.Equal(t, StepQualification, resumed.Current().ID)
	assert.Equal(t, w.Data(), resumed.Data())
}

func TestManagerRunsCompletionHooksOnce(t *testing.T) {
	ctx := context.Background()
	procs := newFakeProcedures()
	events := &recordingPublisher{}

	var mu sync.Mutex
	var seen []Completion
	record := func(_ context.Context, c Completion) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, c)
		return nil
	}
	failing := func(context.Context, Completion) error { return errors.New("mailer down") }

	m, _ := newTestManager(t, procs, WithCompletionHooks(failing, record), WithEvents(events))
	w, _, err := m.Open(ctx, uuid.New(), "", OpenRequest{Demo: true})
	require.NoError(t, err)

	for i := 0; i < len(BuyerSteps()); i++ {
		_, err := w.Continue(ctx)
		require.NoError(t, err)
	}
	_, err = w.Continue(ctx)
	require.NoError(t, err)

	assert.True(t, w.Completed())
	assert.Len(t, procs.ops("submit"), 10)
	assert.Len(t, procs.ops("complete"), 1)
	require.Len(t, seen, 1)
	assert.Equal(t, w.Key(), seen[0].Key)
	assert.Equal(t, testNow, seen[0].CompletedAt)
	assert.Contains(t, events.types(), EventCompleted)
	assert.Contains(t, events.types(), EventStepAdvanced)
}

func TestManagerEvictsIdleSessions(t *testing.T) {
	ctx := context.Background()
	var clockMu sync.Mutex
	now := testNow
	clock := func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		clockMu.Lock()
		defer clockMu.Unlock()
		now = now.Add(d)
	}

	m, store := newTestManager(t, newFakeProcedures(), WithClock(clock))
	active, stale := uuid.New(), uuid.New()
	a, _, err := m.Open(ctx, active, "", OpenRequest{})
	require.NoError(t, err)
	s, _, err := m.Open(ctx, stale, "", OpenRequest{InitialStep: StepQualification})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Live())

	advance(40 * time.Minute)
	_, err = m.Get(ctx, a.Key(), active, "")
	require.NoError(t, err)

	assert.Equal(t, 1, m.EvictIdle(clock().Add(-30*time.Minute)))
	assert.Equal(t, 1, m.Live())
	assert.Equal(t, 2, store.Len())

	same, err := m.Get(ctx, a.Key(), active, "")
	require.NoError(t, err)
	assert.Same(t, a, same)

	resumed, err := m.Get(ctx, s.Key(), stale, "")
	require.NoError(t, err)
	assert.NotSame(t, s, resumed)
	assert.Equal(t, StepQualification, resumed.Current().ID)
}

func TestManagerKeepsSessionsWithSaveInFlight(t *testing.T) {
	ctx := context.Background()
	procs := newFakeProcedures()
	procs.submitStarted = make(chan struct{})
	procs.releaseSubmit = make(chan struct{})

	m, _ := newTestManager(t, procs)
	w, _, err := m.Open(ctx, uuid.New(), "", OpenRequest{Demo: true})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := w.Continue(ctx)
		done <- err
	}()
	<-procs.submitStarted

	assert.Zero(t, m.EvictIdle(testNow.Add(time.Hour)))
	assert.Equal(t, 1, m.Live())

	close(procs.releaseSubmit)
	require.NoError(t, <-done)
	assert.Equal(t, 1, m.EvictIdle(testNow.Add(time.Hour)))
	assert.Zero(t, m.Live())
}

func TestManagerForgetsCompletedSessions(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, newFakeProcedures())
	buyer := uuid.New()
	w, _, err := m.Open(ctx, buyer, "", OpenRequest{Demo: true, InitialStep: StepSecondaryMarketExit})
	require.NoError(t, err)

	_, err = w.Continue(ctx)
	require.NoError(t, err)
	require.True(t, w.Completed())
	assert.Zero(t, m.Live())

	resumed, err := m.Get(ctx, w.Key(), buyer, "")
	require.NoError(t, err)
	assert.True(t, resumed.Completed())
}
