package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream down")

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var mu sync.Mutex
	var transitions []State

	cfg := DefaultConfig("idp")
	cfg.FailureThreshold = 3
	cfg.Timeout = time.Hour
	cfg.OnStateChange = func(_ string, to State) {
		mu.Lock()
		transitions = append(transitions, to)
		mu.Unlock()
	}
	cb := New(cfg, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := cb.Execute(ctx, func(context.Context) error { return errUpstream })
		require.ErrorIs(t, err, errUpstream)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateOpen}, transitions)
}

func TestCircuitBreaker_PassesThroughSuccess(t *testing.T) {
	cb := New(DefaultConfig("kafka"), nil)

	err := cb.Execute(context.Background(), func(context.Context) error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cfg := DefaultConfig("idp")
	cfg.FailureThreshold = 1
	cfg.Timeout = 10 * time.Millisecond
	cb := New(cfg, nil)
	ctx := context.Background()

	_ = cb.Execute(ctx, func(context.Context) error { return errUpstream })
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, cb.Execute(ctx, func(context.Context) error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestState_Gauge(t *testing.T) {
	assert.Equal(t, 0.0, StateClosed.Gauge())
	assert.Equal(t, 1.0, StateOpen.Gauge())
	assert.Equal(t, 2.0, StateHalfOpen.Gauge())
}
