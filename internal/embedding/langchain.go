package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// HostedConfig selects and configures the hosted embedding backend.
type HostedConfig struct {
	Provider     string // "ollama" or "openai"
	Model        string
	OpenAIAPIKey string
	OllamaHost   string
	Dimension    int
}

// HostedEmbedder calls a hosted embedding model through langchaingo.
// Vectors are coerced to the configured dimension so hosted and hash
// embedders stay interchangeable.
type HostedEmbedder struct {
	embedder embeddings.Embedder
	model    string
	dim      int
}

var _ Embedder = (*HostedEmbedder)(nil)

// NewHostedEmbedder creates the hosted embedder for the given provider.
func NewHostedEmbedder(cfg HostedConfig) (*HostedEmbedder, error) {
	dim := cfg.Dimension
	if dim <= 0 {
		dim = DefaultDimension
	}

	var client embeddings.EmbedderClient
	switch cfg.Provider {
	case "ollama", "":
		llm, err := ollama.New(
			ollama.WithModel(cfg.Model),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama client: %w", err)
		}
		client = llm

	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai embeddings require an API key")
		}
		llm, err := openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithEmbeddingModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		client = llm

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}

	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	return &HostedEmbedder{embedder: embedder, model: cfg.Model, dim: dim}, nil
}

// Embed generates a vector through the hosted model.
func (e *HostedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("hosted embed: %w", err)
	}
	return coerceDimension(vec, e.dim), nil
}

// Model returns the hosted model name.
func (e *HostedEmbedder) Model() string { return e.model }

// Dimension returns the configured vector length.
func (e *HostedEmbedder) Dimension() int { return e.dim }

// coerceDimension truncates or zero-pads vec to dim and renormalizes,
// so vectors from different backends remain comparable.
func coerceDimension(vec []float32, dim int) []float32 {
	if len(vec) == dim {
		return vec
	}
	out := make([]float32, dim)
	copy(out, vec)
	normalize(out)
	return out
}
