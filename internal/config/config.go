// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all tunables for the document-intelligence service.
// Thresholds that gate extraction and retrieval quality are configuration,
// not constants: their defaults are conventional, not derived.
type Config struct {
	Port      string `env:"PORT" envDefault:"8111"`
	UploadDir string `env:"UPLOAD_DIR" envDefault:"/tmp/carelink-uploads"`

	LogFile  string `env:"LOG_FILE" envDefault:"/tmp/carelink.log"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`

	// Upload validation.
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"15728640"` // 15 MB

	// Extraction minimum-signal thresholds (characters).
	MinPDFTextChars int `env:"MIN_PDF_TEXT_CHARS" envDefault:"50"`
	MinOCRChars     int `env:"MIN_OCR_CHARS" envDefault:"20"`

	// PDF rasterization DPI for the OCR path.
	RasterDPI int `env:"RASTER_DPI" envDefault:"300"`

	// Best-effort OCR error corrections for medical text.
	OCRCorrections bool `env:"OCR_CORRECTIONS" envDefault:"true"`

	// Retrieval. The corpus floor filters low-confidence library matches;
	// uploaded reports are trusted context the user attached on purpose,
	// so they rank against their own, lower floor.
	RelevanceFloor       float64 `env:"RELEVANCE_FLOOR" envDefault:"0.6"`
	ReportRelevanceFloor float64 `env:"REPORT_RELEVANCE_FLOOR" envDefault:"0.25"`
	RetrievalLimit       int     `env:"RETRIEVAL_LIMIT" envDefault:"3"`
	EmbeddingDim         int     `env:"EMBEDDING_DIM" envDefault:"384"`

	// Generation gateway.
	GenMinSpacing time.Duration `env:"GEN_MIN_SPACING" envDefault:"2s"`
	GenMaxRetries int           `env:"GEN_MAX_RETRIES" envDefault:"2"`
	GenBaseDelay  time.Duration `env:"GEN_BASE_DELAY" envDefault:"2s"`
	GenMaxDelay   time.Duration `env:"GEN_MAX_DELAY" envDefault:"30s"`
	GenTimeout    time.Duration `env:"GEN_TIMEOUT" envDefault:"60s"`

	// LLM / embedding providers. Provider "none" disables the external
	// model entirely and the service runs on fallbacks.
	LLMProvider     string `env:"LLM_PROVIDER" envDefault:"none"`
	LLMModel        string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OllamaHost      string `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	EmbeddingModel  string `env:"EMBEDDING_MODEL" envDefault:"all-minilm:l6-v2"`
	EmbedWithModel  bool   `env:"EMBED_WITH_MODEL" envDefault:"false"`

	// Per-client HTTP request rate limit (requests per minute, burst).
	ClientRPM   int `env:"CLIENT_RPM" envDefault:"30"`
	ClientBurst int `env:"CLIENT_BURST" envDefault:"10"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Level converts the configured log level string to a slog.Level.
func (c Config) Level() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
