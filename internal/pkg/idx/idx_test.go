package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_Monotonic(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	prev := NewAt(at)
	for range 100 {
		next := NewAt(at)
		require.Greater(t, next, prev)
		prev = next
	}
}

func TestParse(t *testing.T) {
	id := New()
	got, err := Parse(" " + id + " ")
	require.NoError(t, err)
	require.Equal(t, id, got)

	_, err = Parse("")
	require.ErrorIs(t, err, ErrInvalid)

	_, err = Parse("not-a-ulid")
	require.ErrorIs(t, err, ErrInvalid)
}
