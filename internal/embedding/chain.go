package embedding

import (
	"context"
	"log/slog"
)

// Chain tries the primary embedder and falls back to the deterministic
// hash embedder when the primary is unavailable or quota-limited. Both
// legs produce vectors of the same dimension.
type Chain struct {
	primary  Embedder // may be nil when no hosted provider is configured
	fallback Embedder
	logger   *slog.Logger
}

var _ Embedder = (*Chain)(nil)

// NewChain builds the embedding fallback chain. primary may be nil.
func NewChain(primary Embedder, fallback Embedder, logger *slog.Logger) *Chain {
	return &Chain{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With("component", "embedding"),
	}
}

// Embed returns the primary embedding when available, otherwise the
// deterministic fallback. Fallback errors are impossible by construction
// but propagated anyway.
func (c *Chain) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.primary != nil {
		vec, err := c.primary.Embed(ctx, text)
		if err == nil {
			return vec, nil
		}
		c.logger.Warn("primary embedder failed, using hash fallback",
			"model", c.primary.Model(), "error", err)
	}
	return c.fallback.Embed(ctx, text)
}

// Model reports the primary model when configured, else the fallback.
func (c *Chain) Model() string {
	if c.primary != nil {
		return c.primary.Model()
	}
	return c.fallback.Model()
}

// Dimension returns the shared vector length.
func (c *Chain) Dimension() int { return c.fallback.Dimension() }
