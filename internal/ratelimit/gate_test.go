package ratelimit

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_BudgetExhaustion(t *testing.T) {
	gate := NewGate(Config{RequestsPerSecond: 1000, BurstSize: 10, Budget: 3})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, gate.Wait(ctx))
	}
	assert.True(t, gate.Exhausted())
	assert.ErrorIs(t, gate.Wait(ctx), ErrBudgetExhausted)
	assert.Equal(t, 3, gate.Used())
}

func TestGate_UnlimitedBudget(t *testing.T) {
	gate := NewGate(Config{RequestsPerSecond: 1000, BurstSize: 10, Budget: 0})
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		require.NoError(t, gate.Wait(ctx))
	}
	assert.False(t, gate.Exhausted())
}

func TestGate_CancelledContext(t *testing.T) {
	// Rate of one per hour with no burst available after the first call.
	gate := NewGate(Config{RequestsPerSecond: 1.0 / 3600.0, BurstSize: 1, Budget: 10})
	ctx := context.Background()
	require.NoError(t, gate.Wait(ctx))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err := gate.Wait(cancelled)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrBudgetExhausted)
}

func TestGate_CancelledWaitRefundsBudget(t *testing.T) {
	gate := NewGate(Config{RequestsPerSecond: 1000, BurstSize: 1, Budget: 1})

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	err := gate.Wait(cancelled)
	require.Error(t, err)

	// The aborted call must not count against the budget.
	assert.Equal(t, 0, gate.Used())
	assert.False(t, gate.Exhausted())

	require.NoError(t, gate.Wait(context.Background()))
	assert.Equal(t, 1, gate.Used())
	assert.True(t, gate.Exhausted())
}

func TestGate_ConcurrentCallersNeverOvercommit(t *testing.T) {
	gate := NewGate(Config{RequestsPerSecond: 10000, BurstSize: 100, Budget: 20})
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gate.Wait(ctx); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, granted)
	assert.True(t, gate.Exhausted())
}
