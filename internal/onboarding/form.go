package onboarding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"buyer-portal/buyer-portal-backend/internal/procedures"
)

// StepForm is the type-erased view of a Form used by the wizard and registry
type StepForm interface {
	Step() StepID
	GuideMessage() string
	// Has reports whether the aggregate already holds this step's record
	Has(agg *AggregateData) bool
	// Seed returns the initial draft: the aggregate record if present, else defaults
	Seed(agg *AggregateData, now time.Time) (json.RawMessage, error)
	// Patch merges fields into one nested object of draft. An empty section
	// addresses the top level.
	Patch(draft json.RawMessage, section string, fields json.RawMessage) (json.RawMessage, error)
	// Commit validates draft and its remote payload, stores it in agg and
	// returns the payload. agg is untouched on failure.
	Commit(draft json.RawMessage, agg *AggregateData, now time.Time) (any, error)
	// Hydrate parses a fetched payload, stores it in agg and returns it as a draft
	Hydrate(raw json.RawMessage, agg *AggregateData) (json.RawMessage, error)
	// Terminal reports whether the step finishes onboarding
	Terminal() bool
	// ReadyToComplete reports whether the terminal record asks for completion
	ReadyToComplete(agg *AggregateData) bool
}

// Rule is one local validation predicate
type Rule[T any] struct {
	Field   string
	Message string
	Check   func(v *T, now time.Time) bool
}

// Form binds a local editable shape T to the remote input shape P of one step
type Form[T any, P any] struct {
	step       StepID
	guide      string
	defaults   func(agg *AggregateData, now time.Time) T
	slot       func(agg *AggregateData) **T
	rules      []Rule[T]
	toRemote   func(T) P
	fromRemote func(P) T
	complete   func(*T) bool
}

func (f *Form[T, P]) Step() StepID         { return f.step }
func (f *Form[T, P]) GuideMessage() string { return f.guide }
func (f *Form[T, P]) Terminal() bool       { return f.complete != nil }

func (f *Form[T, P]) Has(agg *AggregateData) bool {
	return *f.slot(agg) != nil
}

func (f *Form[T, P]) Seed(agg *AggregateData, now time.Time) (json.RawMessage, error) {
	if cur := *f.slot(agg); cur != nil {
		return json.Marshal(cur)
	}
	return json.Marshal(f.defaults(agg, now))
}

func (f *Form[T, P]) Patch(draft json.RawMessage, section string, fields json.RawMessage) (json.RawMessage, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(draft, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	var edits map[string]json.RawMessage
	if err := json.Unmarshal(fields, &edits); err != nil || edits == nil {
		return nil, fmt.Errorf("%w: fields must be an object", ErrInvalidDraft)
	}

	if section == "" {
		for k, v := range edits {
			root[k] = v
		}
	} else {
		cur, ok := root[section]
		if !ok || !isObject(cur) {
			return nil, fmt.Errorf("%w: %s has no section %q", ErrUnknownSection, f.step, section)
		}
		var sub map[string]json.RawMessage
		if err := json.Unmarshal(cur, &sub); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
		}
		for k, v := range edits {
			sub[k] = v
		}
		merged, err := json.Marshal(sub)
		if err != nil {
			return nil, err
		}
		root[section] = merged
	}

	out, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	// Round trip through T so unknown or mistyped fields are rejected here
	v, err := f.decode(out)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func (f *Form[T, P]) Commit(draft json.RawMessage, agg *AggregateData, now time.Time) (any, error) {
	v, err := f.decode(draft)
	if err != nil {
		return nil, err
	}
	for _, r := range f.rules {
		if !r.Check(&v, now) {
			return nil, &ValidationError{Step: f.step, Field: r.Field, Message: r.Message}
		}
	}
	payload := f.toRemote(v)
	// Local rules mirror the input constraints; this catches any drift
	// before the aggregate is touched.
	if vs := procedures.Validate(payload); len(vs) > 0 {
		return nil, &ValidationError{
			Step:    f.step,
			Field:   vs[0].Field,
			Message: fmt.Sprintf("%s is not acceptable (%s)", vs[0].Field, vs[0].Tag),
		}
	}
	stored := v
	*f.slot(agg) = &stored
	return payload, nil
}

func (f *Form[T, P]) Hydrate(raw json.RawMessage, agg *AggregateData) (json.RawMessage, error) {
	p, err := procedures.Parse[P](raw)
	if err != nil {
		return nil, err
	}
	v := f.fromRemote(p)
	*f.slot(agg) = &v
	return json.Marshal(v)
}

func (f *Form[T, P]) ReadyToComplete(agg *AggregateData) bool {
	cur := *f.slot(agg)
	return f.complete != nil && cur != nil && f.complete(cur)
}

func (f *Form[T, P]) decode(raw json.RawMessage) (T, error) {
	var v T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}
	return v, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
