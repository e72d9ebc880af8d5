package onboarding

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownStep is returned for a step id missing from the schema
	ErrUnknownStep = errors.New("unknown step")
	// ErrUnknownSection is returned when a draft edit targets a section the step does not have
	ErrUnknownSection = errors.New("unknown section")
	// ErrStepBusy is returned while a continue for the same step is still outstanding
	ErrStepBusy = errors.New("step is busy")
	// ErrSessionNotFound is returned for an unknown or foreign session key
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidDraft is returned when edited fields do not fit the step's shape
	ErrInvalidDraft = errors.New("invalid draft")
)

// ValidationError names the first local rule a draft failed
type ValidationError struct {
	Step    StepID
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ProcedureError wraps a failed remote call. Op is "submit" or "complete".
type ProcedureError struct {
	Op   string
	Step StepID
	Err  error
}

func (e *ProcedureError) Error() string {
	msg := "something went wrong, please try again"
	if e.Err != nil && e.Err.Error() != "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s %s failed: %s", e.Op, e.Step, msg)
}

func (e *ProcedureError) Unwrap() error { return e.Err }

// NoticeLevel grades a user-facing notice
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeSuccess NoticeLevel = "success"
)

// Notice is a dismissable message returned alongside a view
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}
