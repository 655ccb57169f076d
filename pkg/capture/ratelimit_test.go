package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacerEnforcesMinimumInterval(t *testing.T) {
	const interval = 20 * time.Millisecond
	p := NewPacer(interval)
	ctx := context.Background()

	var grants []time.Time
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Wait(ctx))
		grants = append(grants, time.Now())
	}

	for i := 1; i < len(grants); i++ {
		gap := grants[i].Sub(grants[i-1])
		// Small scheduling tolerance; the invariant is no bunching.
		assert.GreaterOrEqual(t, gap, interval-2*time.Millisecond,
			"grants %d and %d too close: %s", i-1, i, gap)
	}
}

func TestPacerDoesNotAccumulateBurst(t *testing.T) {
	const interval = 30 * time.Millisecond
	p := NewPacer(interval)
	ctx := context.Background()

	require.NoError(t, p.Wait(ctx))
	// A long idle stretch must not bank extra immediate grants.
	time.Sleep(4 * interval)

	require.NoError(t, p.Wait(ctx))
	start := time.Now()
	require.NoError(t, p.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), interval-2*time.Millisecond)
}

func TestPacerZeroIntervalNeverDelays(t *testing.T) {
	p := NewPacer(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, p.Wait(ctx))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestPacerHonorsCancellation(t *testing.T) {
	p := NewPacer(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, p.Wait(ctx)) // first grant is immediate
	cancel()
	assert.Error(t, p.Wait(ctx))
}
