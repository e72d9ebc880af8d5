package workflows

import (
	"errors"
	"fmt"
)

// ErrUnknownState is returned when an id is not part of the sequence
var ErrUnknownState = errors.New("unknown state")

// Sequence enforces linear, one-step-at-a-time transitions over an ordered
// list of ids. It is immutable after construction.
type Sequence struct {
	order []string
	index map[string]int
}

// NewSequence creates a sequence from ordered ids. Ids must be non-empty and unique.
func NewSequence(ids ...string) (*Sequence, error) {
	if len(ids) == 0 {
		return nil, errors.New("sequence requires at least one state")
	}
	seq := &Sequence{
		order: make([]string, len(ids)),
		index: make(map[string]int, len(ids)),
	}
	for i, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("state %d has an empty id", i)
		}
		if _, dup := seq.index[id]; dup {
			return nil, fmt.Errorf("duplicate state %q", id)
		}
		seq.order[i] = id
		seq.index[id] = i
	}
	return seq, nil
}

// Len returns the number of states
func (s *Sequence) Len() int {
	return len(s.order)
}

// First returns the first state
func (s *Sequence) First() string {
	return s.order[0]
}

// Last returns the terminal state
func (s *Sequence) Last() string {
	return s.order[len(s.order)-1]
}

// Index returns the position of id
func (s *Sequence) Index(id string) (int, error) {
	i, ok := s.index[id]
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrUnknownState, id)
	}
	return i, nil
}

// At returns the id at position i, clamped to the bounds of the sequence
func (s *Sequence) At(i int) string {
	if i < 0 {
		i = 0
	}
	if i >= len(s.order) {
		i = len(s.order) - 1
	}
	return s.order[i]
}

// Next returns the state after from. Past the end it returns from unchanged.
func (s *Sequence) Next(from string) (string, error) {
	i, err := s.Index(from)
	if err != nil {
		return "", err
	}
	return s.At(i + 1), nil
}

// Previous returns the state before from. Before the start it returns from unchanged.
func (s *Sequence) Previous(from string) (string, error) {
	i, err := s.Index(from)
	if err != nil {
		return "", err
	}
	return s.At(i - 1), nil
}

// IsLast reports whether id is the terminal state
func (s *Sequence) IsLast(id string) bool {
	return id == s.Last()
}

// CanTransition checks if a move from -> to is a single step in either direction
func (s *Sequence) CanTransition(from, to string) bool {
	i, ok := s.index[from]
	if !ok {
		return false
	}
	j, ok := s.index[to]
	if !ok {
		return false
	}
	return j == i+1 || j == i-1
}

// GetAllowedTransitions returns the neighbours of a given state
func (s *Sequence) GetAllowedTransitions(from string) []string {
	i, ok := s.index[from]
	if !ok {
		return []string{}
	}
	allowed := []string{}
	if i > 0 {
		allowed = append(allowed, s.order[i-1])
	}
	if i < len(s.order)-1 {
		allowed = append(allowed, s.order[i+1])
	}
	return allowed
}

// IDs returns a copy of the ordered ids
func (s *Sequence) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
