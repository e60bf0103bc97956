package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiterSeparateBucketsPerHost(t *testing.T) {
	hl := NewHostLimiter(1, 1)
	ctx := context.Background()

	// one burst token per host; different hosts don't contend
	require.NoError(t, hl.WaitURL(ctx, "https://a.test/jobs"))
	require.NoError(t, hl.WaitURL(ctx, "https://b.test/jobs"))
}

func TestHostLimiterThrottlesSameHost(t *testing.T) {
	hl := NewHostLimiter(1000, 1)
	ctx := context.Background()

	require.NoError(t, hl.WaitURL(ctx, "https://a.test/1"))
	start := time.Now()
	require.NoError(t, hl.WaitURL(ctx, "https://a.test/2"))
	assert.GreaterOrEqual(t, time.Since(start), 500*time.Microsecond, "second hit waits for the refill")
}

func TestHostLimiterCanceledContext(t *testing.T) {
	hl := NewHostLimiter(0.001, 1)
	ctx := context.Background()
	require.NoError(t, hl.WaitURL(ctx, "https://a.test/1"))

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, hl.WaitURL(cctx, "https://a.test/2"))
}

func TestHostLimiterFallbackBucket(t *testing.T) {
	hl := NewHostLimiter(1, 1)
	assert.NoError(t, hl.WaitURL(context.Background(), "not a url"))
}
