package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"buyer-portal/buyer-portal-backend/internal/sessions"
)

// Procedures is the remote boundary the wizard saves through
type Procedures interface {
	// GetStepData returns nil, nil when nothing was saved for step
	GetStepData(ctx context.Context, step string) (json.RawMessage, error)
	Submit(ctx context.Context, step string, payload any) error
	CompleteOnboarding(ctx context.Context) error
}

// Publisher fans wizard events out to live listeners
type Publisher interface {
	Publish(topic string, event any)
}

// Event is pushed to listeners of a session after each state change
type Event struct {
	Type string    `json:"type"`
	Step StepID    `json:"step"`
	At   time.Time `json:"at"`
}

const (
	EventStepSaved    = "step.saved"
	EventStepAdvanced = "step.advanced"
	EventStepBack     = "step.back"
	EventCompleted    = "onboarding.completed"
)

// Completion is handed to completion hooks once onboarding finishes
type Completion struct {
	Key         string        `json:"key"`
	BuyerID     uuid.UUID     `json:"buyer_id"`
	Data        AggregateData `json:"data"`
	CompletedAt time.Time     `json:"completed_at"`
}

// View is a read-only picture of the wizard for rendering
type View struct {
	Key          string          `json:"key"`
	Steps        []WizardStep    `json:"steps"`
	CurrentStep  WizardStep      `json:"currentStep"`
	StepIndex    int             `json:"stepIndex"`
	Progress     int             `json:"progress"`
	GuideMessage string          `json:"guideMessage"`
	Draft        json.RawMessage `json:"draft"`
	Data         AggregateData   `json:"data"`
	Busy         bool            `json:"busy"`
	Completed    bool            `json:"completed"`
	Notices      []Notice        `json:"notices,omitempty"`
}

// Options configures a new or restored wizard
type Options struct {
	Key         string
	BuyerID     uuid.UUID
	InitialStep StepID
	Initial     *AggregateData
	Procedures  Procedures
	Store       sessions.Store
	Events      Publisher
	Logger      *zap.Logger
	Clock       func() time.Time
	OnComplete  func(ctx context.Context, c Completion)
}

type draftState struct {
	Draft  json.RawMessage `json:"draft"`
	Edited bool            `json:"edited"`
}

// Wizard owns the aggregate, the current-step pointer and each step's
// local draft. All state changes are serialised by mu; remote calls and
// snapshot writes run without holding it.
type Wizard struct {
	mu         sync.Mutex
	saveMu     sync.Mutex
	key        string
	buyerID    uuid.UUID
	registry   *Registry
	procs      Procedures
	store      sessions.Store
	events     Publisher
	logger     *zap.Logger
	now        func() time.Time
	onComplete func(ctx context.Context, c Completion)

	data        AggregateData
	current     StepID
	drafts      map[StepID]json.RawMessage
	edited      map[StepID]bool
	busy        map[StepID]bool
	guide       string
	completed   bool
	completedAt *time.Time

	// rev numbers snapshots in state order; savedRev is the last one stored
	rev      uint64
	savedRev uint64
}

// pendingSnapshot is a snapshot taken under mu, written after release
type pendingSnapshot struct {
	rev  uint64
	snap *sessions.Snapshot
}

// NewWizard starts a session at opts.InitialStep (the first step when empty)
func NewWizard(ctx context.Context, registry *Registry, opts Options) (*Wizard, error) {
	start := opts.InitialStep
	if start == "" {
		start = registry.First()
	}
	if _, err := registry.Step(start); err != nil {
		return nil, err
	}
	w := newWizard(registry, opts)
	if opts.Initial != nil {
		w.data = *opts.Initial
	}
	w.current = start

	w.mu.Lock()
	w.activateLocked()
	pending := w.snapshotLocked()
	w.mu.Unlock()
	w.save(ctx, pending)
	return w, nil
}

// RestoreWizard rebuilds a wizard from a stored snapshot
func RestoreWizard(registry *Registry, snap *sessions.Snapshot, opts Options) (*Wizard, error) {
	current := StepID(snap.CurrentStep)
	if _, err := registry.Step(current); err != nil {
		return nil, err
	}
	opts.Key = snap.Key
	opts.BuyerID = snap.BuyerID
	w := newWizard(registry, opts)
	w.current = current
	w.completed = snap.Completed
	w.completedAt = snap.CompletedAt

	if len(snap.Data) > 0 {
		if err := json.Unmarshal(snap.Data, &w.data); err != nil {
			return nil, fmt.Errorf("failed to decode session data: %w", err)
		}
	}
	if len(snap.Drafts) > 0 {
		var drafts map[StepID]draftState
		if err := json.Unmarshal(snap.Drafts, &drafts); err != nil {
			return nil, fmt.Errorf("failed to decode session drafts: %w", err)
		}
		for id, d := range drafts {
			if _, err := registry.Step(id); err != nil {
				continue
			}
			w.drafts[id] = d.Draft
			w.edited[id] = d.Edited
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.activateLocked()
	return w, nil
}

func newWizard(registry *Registry, opts Options) *Wizard {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Wizard{
		key:        opts.Key,
		buyerID:    opts.BuyerID,
		registry:   registry,
		procs:      opts.Procedures,
		store:      opts.Store,
		events:     opts.Events,
		logger:     logger.With(zap.String("session", opts.Key)),
		now:        clock,
		onComplete: opts.OnComplete,
		drafts:     make(map[StepID]json.RawMessage),
		edited:     make(map[StepID]bool),
		busy:       make(map[StepID]bool),
	}
}

// Key returns the session key
func (w *Wizard) Key() string { return w.key }

// BuyerID returns the owner of the session
func (w *Wizard) BuyerID() uuid.UUID { return w.buyerID }

// Idle reports whether no step save is in flight
func (w *Wizard) Idle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, busy := range w.busy {
		if busy {
			return false
		}
	}
	return true
}

// BindProcedures swaps the procedure client, e.g. when the caller's token changes
func (w *Wizard) BindProcedures(p Procedures) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.procs = p
}

// Current returns the active step
func (w *Wizard) Current() WizardStep {
	w.mu.Lock()
	defer w.mu.Unlock()
	step, _ := w.registry.Step(w.current)
	return step
}

// Data returns a copy of the aggregate
func (w *Wizard) Data() AggregateData {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.data
}

// Completed reports whether onboarding finished in this session
func (w *Wizard) Completed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.completed
}

// View returns the current state
func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

// UpdateWizardData shallow merges partial into the aggregate. Records
// absent from partial are left untouched. An unedited draft of the current
// step is reseeded from the merged data.
func (w *Wizard) UpdateWizardData(ctx context.Context, partial AggregateData) View {
	w.mu.Lock()
	w.data.Merge(partial)
	w.activateLocked()
	pending := w.snapshotLocked()
	view := w.viewLocked()
	w.mu.Unlock()
	w.save(ctx, pending)
	return view
}

// GoToNextStep moves the pointer forward by one; no-op on the last step
func (w *Wizard) GoToNextStep(ctx context.Context) {
	w.mu.Lock()
	w.current = w.registry.Next(w.current)
	pending := w.snapshotLocked()
	w.mu.Unlock()
	w.save(ctx, pending)
}

// GoToPreviousStep moves the pointer back by one; no-op on the first step
func (w *Wizard) GoToPreviousStep(ctx context.Context) {
	w.mu.Lock()
	w.current = w.registry.Previous(w.current)
	pending := w.snapshotLocked()
	w.mu.Unlock()
	w.save(ctx, pending)
}

// Mount activates the current step and hydrates it from saved data
func (w *Wizard) Mount(ctx context.Context) []Notice {
	w.mu.Lock()
	w.activateLocked()
	pending := w.snapshotLocked()
	w.mu.Unlock()
	w.save(ctx, pending)
	return w.Hydrate(ctx)
}

// Hydrate fetches previously saved data for the current step. The result is
// applied only if the aggregate still lacks the step's record and the draft
// was not edited meanwhile. Failures come back as notices, never errors.
func (w *Wizard) Hydrate(ctx context.Context) []Notice {
	w.mu.Lock()
	step := w.current
	form, err := w.registry.Form(step)
	if err != nil || form.Has(&w.data) || w.edited[step] || w.procs == nil {
		w.mu.Unlock()
		return nil
	}
	procs := w.procs
	w.mu.Unlock()

	raw, err := procs.GetStepData(ctx, string(step))
	if err != nil {
		w.logger.Warn("Failed to load saved step data", zap.String("step", string(step)), zap.Error(err))
		return []Notice{{Level: NoticeWarning, Message: "We could not load your saved answers for this step. You can keep editing."}}
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	w.mu.Lock()
	if form.Has(&w.data) || w.edited[step] {
		w.mu.Unlock()
		return nil
	}
	draft, err := form.Hydrate(raw, &w.data)
	if err != nil {
		w.mu.Unlock()
		w.logger.Warn("Discarded malformed saved step data", zap.String("step", string(step)), zap.Error(err))
		return []Notice{{Level: NoticeWarning, Message: "Your saved answers for this step could not be read. Defaults are shown instead."}}
	}
	w.drafts[step] = draft
	pending := w.snapshotLocked()
	w.mu.Unlock()
	w.save(ctx, pending)
	return nil
}

// EditDraft merges fields into one section of the current step's draft,
// leaving sibling fields untouched. An empty section edits top level fields.
func (w *Wizard) EditDraft(ctx context.Context, section string, fields json.RawMessage) (View, error) {
	w.mu.Lock()
	step := w.current
	form, err := w.registry.Form(step)
	if err != nil {
		w.mu.Unlock()
		return View{}, err
	}
	draft, err := w.draftLocked(step, form)
	if err != nil {
		w.mu.Unlock()
		return View{}, err
	}
	patched, err := form.Patch(draft, section, fields)
	if err != nil {
		w.mu.Unlock()
		return View{}, err
	}
	w.drafts[step] = patched
	w.edited[step] = true
	pending := w.snapshotLocked()
	view := w.viewLocked()
	w.mu.Unlock()
	w.save(ctx, pending)
	return view, nil
}

// Back retreats one step. Nothing is validated or saved and the aggregate
// is not touched.
func (w *Wizard) Back(ctx context.Context) View {
	w.mu.Lock()
	from := w.current
	w.current = w.registry.Previous(from)
	w.activateLocked()
	pending := w.snapshotLocked()
	view := w.viewLocked()
	w.mu.Unlock()
	w.save(ctx, pending)

	if view.CurrentStep.ID != from {
		w.publish(EventStepBack, view.CurrentStep.ID)
	}
	return view
}

// Continue validates the current draft, merges it into the aggregate and
// submits it. On success the pointer advances; on the terminal step the
// onboarding is completed instead when the final acknowledgement is given.
// A failed submit keeps the merge so the caller can simply retry.
func (w *Wizard) Continue(ctx context.Context) (View, error) {
	w.mu.Lock()
	step := w.current
	form, err := w.registry.Form(step)
	if err != nil {
		w.mu.Unlock()
		return View{}, err
	}
	if w.busy[step] {
		w.mu.Unlock()
		return View{}, ErrStepBusy
	}
	draft, err := w.draftLocked(step, form)
	if err != nil {
		w.mu.Unlock()
		return View{}, err
	}
	payload, err := form.Commit(draft, &w.data, w.now())
	if err != nil {
		w.mu.Unlock()
		return View{}, err
	}
	w.edited[step] = false
	w.drafts[step], _ = form.Seed(&w.data, w.now())
	w.busy[step] = true
	alreadyDone := w.completed
	ready := form.Terminal() && !alreadyDone && form.ReadyToComplete(&w.data)
	procs := w.procs
	pending := w.snapshotLocked()
	w.mu.Unlock()
	w.save(ctx, pending)

	if procs == nil {
		w.release(step)
		return View{}, &ProcedureError{Op: "submit", Step: step}
	}

	submitErr := procs.Submit(ctx, string(step), payload)
	var completeErr error
	if submitErr == nil && ready {
		completeErr = procs.CompleteOnboarding(ctx)
	}

	w.mu.Lock()
	w.busy[step] = false
	var notices []Notice
	var finished *Completion
	switch {
	case submitErr != nil:
		w.logger.Error("Failed to save step", zap.String("step", string(step)), zap.Error(submitErr))
		pending = w.snapshotLocked()
		w.mu.Unlock()
		w.save(ctx, pending)
		return View{}, &ProcedureError{Op: "submit", Step: step, Err: submitErr}
	case completeErr != nil:
		w.logger.Error("Failed to complete onboarding", zap.Error(completeErr))
		pending = w.snapshotLocked()
		w.mu.Unlock()
		w.save(ctx, pending)
		w.publish(EventStepSaved, step)
		return View{}, &ProcedureError{Op: "complete", Step: step, Err: completeErr}
	case form.Terminal() && alreadyDone:
		notices = append(notices, Notice{Level: NoticeInfo, Message: "Your answers were saved. Onboarding is already complete."})
	case form.Terminal() && !ready:
		notices = append(notices, Notice{Level: NoticeInfo, Message: "Your answers were saved. Confirm the final acknowledgement to complete onboarding."})
	case form.Terminal():
		at := w.now()
		w.completed = true
		w.completedAt = &at
		finished = &Completion{Key: w.key, BuyerID: w.buyerID, Data: w.data, CompletedAt: at}
		notices = append(notices, Notice{Level: NoticeSuccess, Message: "Onboarding complete. Welcome aboard."})
	default:
		// The user may have navigated away while the save was in flight
		if w.current == step {
			w.current = w.registry.Next(step)
			w.activateLocked()
		}
		notices = append(notices, Notice{Level: NoticeSuccess, Message: "Saved."})
	}
	pending = w.snapshotLocked()
	view := w.viewLocked()
	w.mu.Unlock()
	w.save(ctx, pending)

	view.Notices = notices
	w.publish(EventStepSaved, step)
	if finished != nil {
		w.publish(EventCompleted, step)
		if w.onComplete != nil {
			w.onComplete(ctx, *finished)
		}
	} else if view.CurrentStep.ID != step {
		w.publish(EventStepAdvanced, view.CurrentStep.ID)
	}
	return view, nil
}

func (w *Wizard) release(step StepID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy[step] = false
}

// activateLocked pushes the guide message and seeds the draft unless the
// user has unsaved edits for the step
func (w *Wizard) activateLocked() {
	form, err := w.registry.Form(w.current)
	if err != nil {
		return
	}
	w.guide = form.GuideMessage()
	if _, ok := w.drafts[w.current]; ok && w.edited[w.current] {
		return
	}
	draft, err := form.Seed(&w.data, w.now())
	if err != nil {
		w.logger.Warn("Failed to seed step draft", zap.String("step", string(w.current)), zap.Error(err))
		return
	}
	w.drafts[w.current] = draft
}

func (w *Wizard) draftLocked(step StepID, form StepForm) (json.RawMessage, error) {
	if d, ok := w.drafts[step]; ok && len(d) > 0 {
		return d, nil
	}
	d, err := form.Seed(&w.data, w.now())
	if err != nil {
		return nil, err
	}
	w.drafts[step] = d
	return d, nil
}

func (w *Wizard) viewLocked() View {
	step, _ := w.registry.Step(w.current)
	idx, _ := w.registry.Index(w.current)
	total := w.registry.Len()
	progress := 0
	if total > 0 {
		progress = (idx + 1) * 100 / total
	}
	if w.completed {
		progress = 100
	}
	return View{
		Key:          w.key,
		Steps:        w.registry.Steps(),
		CurrentStep:  step,
		StepIndex:    idx,
		Progress:     progress,
		GuideMessage: w.guide,
		Draft:        append(json.RawMessage(nil), w.drafts[w.current]...),
		Data:         w.data,
		Busy:         w.busy[w.current],
		Completed:    w.completed,
	}
}

// snapshotLocked captures the session state for save. It returns nil when
// there is no store or the state cannot be encoded.
func (w *Wizard) snapshotLocked() *pendingSnapshot {
	if w.store == nil {
		return nil
	}
	data, err := json.Marshal(w.data)
	if err != nil {
		w.logger.Warn("Failed to encode session data", zap.Error(err))
		return nil
	}
	drafts := make(map[StepID]draftState, len(w.drafts))
	for id, d := range w.drafts {
		drafts[id] = draftState{Draft: d, Edited: w.edited[id]}
	}
	encodedDrafts, err := json.Marshal(drafts)
	if err != nil {
		w.logger.Warn("Failed to encode session drafts", zap.Error(err))
		return nil
	}
	w.rev++
	return &pendingSnapshot{
		rev: w.rev,
		snap: &sessions.Snapshot{
			Key:         w.key,
			BuyerID:     w.buyerID,
			CurrentStep: string(w.current),
			Data:        data,
			Drafts:      encodedDrafts,
			Completed:   w.completed,
			CompletedAt: w.completedAt,
		},
	}
}

// save writes a snapshot taken by snapshotLocked. It must be called without
// mu held. A snapshot older than the last one stored is dropped. Failures
// are logged and swallowed.
func (w *Wizard) save(ctx context.Context, p *pendingSnapshot) {
	if p == nil {
		return
	}
	w.saveMu.Lock()
	defer w.saveMu.Unlock()
	if p.rev <= w.savedRev {
		return
	}
	if err := w.store.Save(ctx, p.snap); err != nil {
		w.logger.Warn("Failed to persist session snapshot", zap.Error(err))
		return
	}
	w.savedRev = p.rev
}

func (w *Wizard) publish(kind string, step StepID) {
	if w.events == nil {
		return
	}
	w.events.Publish(w.key, Event{Type: kind, Step: step, At: w.now()})
}
