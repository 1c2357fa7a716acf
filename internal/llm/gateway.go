package llm

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// RetryConfig bounds retries on throttling errors.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// GatewayConfig configures call spacing and retry behavior.
type GatewayConfig struct {
	MinSpacing time.Duration
	Retry      RetryConfig
}

// Gateway serializes all calls to the external model, enforces a minimum
// spacing between consecutive calls and retries throttling errors with
// capped exponential backoff. The upstream quota is shared across every
// session, so one gateway instance guards one process-wide last-call
// timestamp under its mutex.
//
// On exhaustion the caller receives a *GenerationError, never a panic;
// converting that into a fallback response is the caller's job.
type Gateway struct {
	gen    Generator
	cfg    GatewayConfig
	logger *slog.Logger

	mu       sync.Mutex
	lastCall time.Time

	// Injectable for tests so spacing can be asserted without sleeping.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGateway wraps gen. gen may be nil, in which case every Generate call
// reports the model unavailable and callers fall through to fallbacks.
func NewGateway(gen Generator, cfg GatewayConfig, logger *slog.Logger) *Gateway {
	return &Gateway{
		gen:    gen,
		cfg:    cfg,
		logger: logger.With("component", "llm-gateway"),
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// Available reports whether an external model is configured.
func (g *Gateway) Available() bool { return g.gen != nil }

// Generate issues a model call through the spacing and retry policy.
// The mutex is held for the whole call so concurrent sessions are
// serialized against the shared quota.
func (g *Gateway) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if g.gen == nil {
		return "", &GenerationError{
			Code:    ErrModelUnavailable,
			Message: "no external model configured",
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt <= g.cfg.Retry.MaxRetries; attempt++ {
		if err := g.waitForSpacing(ctx); err != nil {
			return "", err
		}

		g.lastCall = g.now()
		result, err := g.gen.Generate(ctx, systemPrompt, userPrompt)
		if err == nil {
			return result, nil
		}
		lastErr = err

		genErr := classifyError(err)
		if !genErr.Retryable {
			g.logger.Warn("model call failed", "code", genErr.Code, "error", err)
			return "", genErr
		}
		if attempt >= g.cfg.Retry.MaxRetries {
			break
		}

		delay := g.backoffDelay(attempt)
		g.logger.Info("model throttled, backing off",
			"attempt", attempt+1, "delay", delay)
		if err := g.sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	g.logger.Warn("model retries exhausted", "error", lastErr)
	return "", &GenerationError{
		Code:    ErrRetriesExhausted,
		Message: "model retries exhausted",
		Cause:   lastErr,
	}
}

// waitForSpacing sleeps out the remainder of the minimum inter-call
// window. Callers hold the mutex, so the read-sleep-write sequence on
// lastCall cannot race.
func (g *Gateway) waitForSpacing(ctx context.Context) error {
	if g.lastCall.IsZero() {
		return nil
	}
	elapsed := g.now().Sub(g.lastCall)
	if remaining := g.cfg.MinSpacing - elapsed; remaining > 0 {
		return g.sleep(ctx, remaining)
	}
	return nil
}

// backoffDelay computes min(base * 2^attempt, cap).
func (g *Gateway) backoffDelay(attempt int) time.Duration {
	delay := g.cfg.Retry.BaseDelay << uint(attempt)
	if delay > g.cfg.Retry.MaxDelay || delay <= 0 {
		delay = g.cfg.Retry.MaxDelay
	}
	return delay
}

// IsUnavailable reports whether err means the model could not serve the
// request and a fallback response is required.
func IsUnavailable(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
