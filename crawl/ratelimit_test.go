package crawl_test

import (
	"context"
	"testing"
	"time"

	"github.com/govseek/govseek/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJitter_Wait_zero_window_returns_immediately(t *testing.T) {
	t.Parallel()

	j := crawl.NewJitter(0, 0)

	begin := time.Now()
	err := j.Wait(context.Background())
	require.NoError(t, err)
	assert.Less(t, time.Since(begin), 50*time.Millisecond)
}

func TestJitter_Wait_blocks_at_least_min_delay(t *testing.T) {
	t.Parallel()

	j := crawl.NewJitter(30*time.Millisecond, 60*time.Millisecond)

	begin := time.Now()
	err := j.Wait(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(begin), 30*time.Millisecond)
}

func TestJitter_Wait_honors_context_cancellation(t *testing.T) {
	t.Parallel()

	j := crawl.NewJitter(10*time.Second, 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := j.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJitter_clamps_invalid_window(t *testing.T) {
	t.Parallel()

	// max < min gets raised to min; negative min is clamped to zero.
	j := crawl.NewJitter(-time.Second, -2*time.Second)

	err := j.Wait(context.Background())
	assert.NoError(t, err)
}

func TestDomainLimiter_Wait_allows_requests(t *testing.T) {
	t.Parallel()

	d := crawl.NewDomainLimiter(1000)

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Wait(context.Background(), "example.gov.sg"))
	}
}

func TestDomainLimiter_Wait_honors_context_cancellation(t *testing.T) {
	t.Parallel()

	d := crawl.NewDomainLimiter(0.001)

	// First request consumes the initial token.
	require.NoError(t, d.Wait(context.Background(), "example.gov.sg"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := d.Wait(ctx, "example.gov.sg")
	assert.Error(t, err)
}
