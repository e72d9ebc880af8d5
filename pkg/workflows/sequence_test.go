package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSequenceRejectsBadInput(t *testing.T) {
	_, err := NewSequence()
	assert.Error(t, err)

	_, err = NewSequence("a", "")
	assert.Error(t, err)

	_, err = NewSequence("a", "b", "a")
	assert.Error(t, err)
}

func TestSequenceNavigationIsBounded(t *testing.T) {
	seq, err := NewSequence("a", "b", "c")
	require.NoError(t, err)

	next, err := seq.Next("a")
	require.NoError(t, err)
	assert.Equal(t, "b", next)

	next, err = seq.Next("c")
	require.NoError(t, err)
	assert.Equal(t, "c", next)

	prev, err := seq.Previous("a")
	require.NoError(t, err)
	assert.Equal(t, "a", prev)

	prev, err = seq.Previous("c")
	require.NoError(t, err)
	assert.Equal(t, "b", prev)

	_, err = seq.Next("z")
	assert.ErrorIs(t, err, ErrUnknownState)
}

func TestSequenceTransitions(t *testing.T) {
	seq, err := NewSequence("a", "b", "c")
	require.NoError(t, err)

	assert.True(t, seq.CanTransition("a", "b"))
	assert.True(t, seq.CanTransition("c", "b"))
	assert.False(t, seq.CanTransition("a", "c"))
	assert.False(t, seq.CanTransition("a", "z"))

	assert.Equal(t, []string{"b"}, seq.GetAllowedTransitions("a"))
	assert.Equal(t, []string{"a", "c"}, seq.GetAllowedTransitions("b"))
	assert.Empty(t, seq.GetAllowedTransitions("z"))

	assert.Equal(t, "a", seq.First())
	assert.True(t, seq.IsLast("c"))
	assert.Equal(t, 3, seq.Len())
}
