package llm

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator scripts a sequence of results for the gateway.
type fakeGenerator struct {
	calls     int
	responses []string
	errs      []error
}

func (f *fakeGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp string
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

// fakeClock drives the gateway's injected now/sleep without real waiting.
type fakeClock struct {
	t      time.Time
	sleeps []time.Duration
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
	return nil
}

func newTestGateway(gen Generator, cfg GatewayConfig) (*Gateway, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	g := NewGateway(gen, cfg, slog.Default())
	g.now = clock.now
	g.sleep = clock.sleep
	return g, clock
}

func defaultCfg() GatewayConfig {
	return GatewayConfig{
		MinSpacing: 2 * time.Second,
		Retry: RetryConfig{
			MaxRetries: 2,
			BaseDelay:  2 * time.Second,
			MaxDelay:   30 * time.Second,
		},
	}
}

func TestGateway_EnforcesMinSpacing(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"first", "second"}}
	g, clock := newTestGateway(gen, defaultCfg())
	ctx := context.Background()

	_, err := g.Generate(ctx, "sys", "one")
	require.NoError(t, err)

	// Second back-to-back call must sleep out the full 2s window.
	_, err = g.Generate(ctx, "sys", "two")
	require.NoError(t, err)

	require.Len(t, clock.sleeps, 1)
	assert.Equal(t, 2*time.Second, clock.sleeps[0])
}

func TestGateway_NoSpacingWaitAfterWindowPassed(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"first", "second"}}
	g, clock := newTestGateway(gen, defaultCfg())
	ctx := context.Background()

	_, err := g.Generate(ctx, "sys", "one")
	require.NoError(t, err)

	clock.t = clock.t.Add(5 * time.Second)
	_, err = g.Generate(ctx, "sys", "two")
	require.NoError(t, err)

	assert.Empty(t, clock.sleeps)
}

func TestGateway_RetriesThrottlingWithBackoff(t *testing.T) {
	throttle := errors.New("429 too many requests")
	gen := &fakeGenerator{
		errs:      []error{throttle, throttle, nil},
		responses: []string{"", "", "recovered"},
	}
	g, clock := newTestGateway(gen, defaultCfg())

	result, err := g.Generate(context.Background(), "sys", "msg")
	require.NoError(t, err)
	assert.Equal(t, "recovered", result)
	assert.Equal(t, 3, gen.calls)

	// Backoff sleeps: base*2^0=2s, base*2^1=4s (spacing waits are absorbed
	// because the backoff already advances the fake clock past the window).
	require.GreaterOrEqual(t, len(clock.sleeps), 2)
	assert.Contains(t, clock.sleeps, 2*time.Second)
	assert.Contains(t, clock.sleeps, 4*time.Second)
}

func TestGateway_NonThrottlingErrorNotRetried(t *testing.T) {
	gen := &fakeGenerator{errs: []error{errors.New("connection refused")}}
	g, _ := newTestGateway(gen, defaultCfg())

	_, err := g.Generate(context.Background(), "sys", "msg")
	require.Error(t, err)
	assert.Equal(t, 1, gen.calls)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ErrModelUnavailable, genErr.Code)
}

func TestGateway_ExhaustionReturnsFailureSignal(t *testing.T) {
	throttle := errors.New("rate limit exceeded")
	gen := &fakeGenerator{errs: []error{throttle, throttle, throttle}}
	g, _ := newTestGateway(gen, defaultCfg())

	_, err := g.Generate(context.Background(), "sys", "msg")
	require.Error(t, err)
	assert.Equal(t, 3, gen.calls) // initial + 2 retries

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, ErrRetriesExhausted, genErr.Code)
	assert.True(t, IsUnavailable(err))
}

func TestGateway_NilGeneratorIsUnavailable(t *testing.T) {
	g, _ := newTestGateway(nil, defaultCfg())

	_, err := g.Generate(context.Background(), "sys", "msg")
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
}

func TestGateway_BackoffCappedAtMaxDelay(t *testing.T) {
	cfg := defaultCfg()
	cfg.Retry.MaxRetries = 6
	g, _ := newTestGateway(&fakeGenerator{}, cfg)

	assert.Equal(t, 2*time.Second, g.backoffDelay(0))
	assert.Equal(t, 16*time.Second, g.backoffDelay(3))
	assert.Equal(t, 30*time.Second, g.backoffDelay(5))
	assert.Equal(t, 30*time.Second, g.backoffDelay(20))
}
