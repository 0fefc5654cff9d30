package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(Settings{MaxRequests: 3, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	}
	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrOpen)
}

func TestHalfOpenProbeClosesOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker(Settings{MaxRequests: 1, Timeout: 10 * time.Millisecond})

	require.Error(t, cb.Execute(func() error { return errBoom }))
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenProbeReopensOnFailure(t *testing.T) {
	cb := NewCircuitBreaker(Settings{MaxRequests: 1, Timeout: 10 * time.Millisecond})

	require.Error(t, cb.Execute(func() error { return errBoom }))
	time.Sleep(20 * time.Millisecond)

	require.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, cb.State())
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(Settings{MaxRequests: 2, Timeout: time.Minute})

	require.Error(t, cb.Execute(func() error { return errBoom }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.Error(t, cb.Execute(func() error { return errBoom }))

	assert.Equal(t, StateClosed, cb.State())
}
