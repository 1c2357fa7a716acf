// Package llm wraps the external language model behind a rate-limited,
// retrying gateway with deterministic fallbacks.
package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator produces a response from a system prompt and a user prompt.
// The gateway and tests depend on this seam, not on a concrete provider.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ModelConfig selects and configures the generation backend.
type ModelConfig struct {
	Provider     string // "openai", "ollama", or "none"
	Model        string
	OpenAIAPIKey string
	OllamaHost   string
}

// Model wraps a langchaingo LLM for text generation.
type Model struct {
	llm       llms.Model
	modelName string
}

var _ Generator = (*Model)(nil)

// NewModel creates the configured generation model. Provider "none"
// returns (nil, nil): the service then runs entirely on fallbacks.
func NewModel(cfg ModelConfig) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.Provider {
	case "none", "":
		return nil, nil

	case "ollama":
		model, err = ollama.New(
			ollama.WithModel(cfg.Model),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	return &Model{llm: model, modelName: cfg.Model}, nil
}

// Generate produces a response for the given prompts.
func (m *Model) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	response, err := m.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", classifyError(err)
	}

	if len(response.Choices) == 0 || response.Choices[0].Content == "" {
		return "", &GenerationError{
			Code:    ErrEmptyResponse,
			Message: "model returned no content",
		}
	}

	return response.Choices[0].Content, nil
}

// Name returns the model identifier.
func (m *Model) Name() string { return m.modelName }
