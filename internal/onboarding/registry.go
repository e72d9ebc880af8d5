package onboarding

import (
	"fmt"

	"buyer-portal/buyer-portal-backend/pkg/workflows"
)

// Registry maps every schema step to exactly one form
type Registry struct {
	steps []WizardStep
	seq   *workflows.Sequence
	forms map[StepID]StepForm
}

// NewRegistry validates that steps and forms line up one to one. Only the
// last step may finish onboarding, and it must.
func NewRegistry(steps []WizardStep, forms ...StepForm) (*Registry, error) {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = string(s.ID)
	}
	seq, err := workflows.NewSequence(ids...)
	if err != nil {
		return nil, fmt.Errorf("invalid step schema: %w", err)
	}

	r := &Registry{
		steps: append([]WizardStep(nil), steps...),
		seq:   seq,
		forms: make(map[StepID]StepForm, len(forms)),
	}
	for _, f := range forms {
		id := f.Step()
		if _, err := seq.Index(string(id)); err != nil {
			return nil, fmt.Errorf("form for %w: %s", ErrUnknownStep, id)
		}
		if _, dup := r.forms[id]; dup {
			return nil, fmt.Errorf("duplicate form for step %s", id)
		}
		if f.Terminal() != seq.IsLast(string(id)) {
			return nil, fmt.Errorf("step %s: only the last step may complete onboarding", id)
		}
		r.forms[id] = f
	}
	for _, s := range steps {
		if _, ok := r.forms[s.ID]; !ok {
			return nil, fmt.Errorf("no form registered for step %s", s.ID)
		}
	}
	return r, nil
}

// NewBuyerRegistry wires the buyer schema to its forms
func NewBuyerRegistry() (*Registry, error) {
	return NewRegistry(BuyerSteps(), BuyerForms()...)
}

// Steps returns the schema in order
func (r *Registry) Steps() []WizardStep {
	return append([]WizardStep(nil), r.steps...)
}

// Form returns the form for id
func (r *Registry) Form(id StepID) (StepForm, error) {
	f, ok := r.forms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStep, id)
	}
	return f, nil
}

// Step returns the schema entry for id
func (r *Registry) Step(id StepID) (WizardStep, error) {
	i, err := r.seq.Index(string(id))
	if err != nil {
		return WizardStep{}, fmt.Errorf("%w: %s", ErrUnknownStep, id)
	}
	return r.steps[i], nil
}

// Index returns the position of id in the schema
func (r *Registry) Index(id StepID) (int, error) {
	i, err := r.seq.Index(string(id))
	if err != nil {
		return -1, fmt.Errorf("%w: %s", ErrUnknownStep, id)
	}
	return i, nil
}

// Len returns the number of steps
func (r *Registry) Len() int { return r.seq.Len() }

// First returns the entry step
func (r *Registry) First() StepID { return StepID(r.seq.First()) }

// Next returns the step after id, or id itself at the end
func (r *Registry) Next(id StepID) StepID {
	next, err := r.seq.Next(string(id))
	if err != nil {
		return id
	}
	return StepID(next)
}

// Previous returns the step before id, or id itself at the start
func (r *Registry) Previous(id StepID) StepID {
	prev, err := r.seq.Previous(string(id))
	if err != nil {
		return id
	}
	return StepID(prev)
}
