package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/carelink/backend/internal/config"
	"github.com/carelink/backend/internal/consultation"
	"github.com/carelink/backend/internal/embedding"
	"github.com/carelink/backend/internal/extraction"
	"github.com/carelink/backend/internal/imageprep"
	"github.com/carelink/backend/internal/knowledge"
	"github.com/carelink/backend/internal/llm"
	"github.com/carelink/backend/internal/middleware"
	"github.com/carelink/backend/internal/ocr"
	"github.com/carelink/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.Level())
	defer closeLog()
	slog.SetDefault(logger)

	ctx := context.Background()

	// Extraction pipeline. Missing OCR backends degrade to placeholder
	// responses rather than failing startup.
	caps := extraction.Probe(logger)
	var engine *ocr.Engine
	if caps.CanOCR() {
		engine = ocr.NewEngine(caps.Tesseract, cfg.MinOCRChars, logger)
	}
	extractor := extraction.NewService(
		caps,
		engine,
		imageprep.New(imageprep.DefaultOptions, logger),
		extraction.Config{
			MinPDFTextChars: cfg.MinPDFTextChars,
			MinOCRChars:     cfg.MinOCRChars,
			RasterDPI:       cfg.RasterDPI,
			OCRCorrections:  cfg.OCRCorrections,
		},
		logger,
	)

	// Embeddings: hosted model when enabled, deterministic hashing
	// otherwise, with the hash embedder always available as fallback.
	embedder := buildEmbedder(cfg, logger)

	corpus := knowledge.NewStore(embedder, cfg.RelevanceFloor)
	if err := knowledge.SeedStore(ctx, corpus); err != nil {
		logger.Error("failed to seed knowledge corpus", "error", err)
		os.Exit(1)
	}
	reports := knowledge.NewDynamicIndex(embedder, cfg.ReportRelevanceFloor)

	gateway := llm.NewGateway(buildGenerator(cfg, logger), llm.GatewayConfig{
		MinSpacing: cfg.GenMinSpacing,
		Retry: llm.RetryConfig{
			MaxRetries: cfg.GenMaxRetries,
			BaseDelay:  cfg.GenBaseDelay,
			MaxDelay:   cfg.GenMaxDelay,
		},
	}, logger)

	svc := consultation.NewService(
		store.NewMemoryStore(),
		extractor,
		corpus,
		reports,
		gateway,
		consultation.Config{
			UploadDir:      cfg.UploadDir,
			MaxUploadBytes: cfg.MaxUploadBytes,
			RetrievalLimit: cfg.RetrievalLimit,
		},
		logger,
	)

	router := chi.NewRouter()
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.NewRateLimiter(cfg.ClientRPM, cfg.ClientBurst).Middleware)

	consultation.NewHandler(svc, logger).Routes(router)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	router.Get("/v1/capabilities", capabilitiesHandler(caps, gateway, embedder))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:1234",
			"http://127.0.0.1:1234",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-User-ID",
		},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h2c.NewHandler(c.Handler(router), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server",
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
		"ocr", caps.CanOCR(),
		"pdf_ocr", caps.CanRasterizePDF(),
	)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// buildEmbedder returns the hosted embedder chained over the hash
// fallback when enabled, or the hash embedder alone.
func buildEmbedder(cfg config.Config, logger *slog.Logger) embedding.Embedder {
	hash := embedding.NewHashEmbedder(cfg.EmbeddingDim)
	if !cfg.EmbedWithModel {
		return hash
	}

	hosted, err := embedding.NewHostedEmbedder(embedding.HostedConfig{
		Provider:     cfg.LLMProvider,
		Model:        cfg.EmbeddingModel,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		OllamaHost:   cfg.OllamaHost,
		Dimension:    cfg.EmbeddingDim,
	})
	if err != nil {
		logger.Warn("hosted embedder unavailable, using hash embeddings", "error", err)
		return hash
	}
	return embedding.NewChain(hosted, hash, logger)
}

// buildGenerator creates the generation model, or nil when no provider
// is configured so the gateway resolves every call to a fallback.
func buildGenerator(cfg config.Config, logger *slog.Logger) llm.Generator {
	model, err := llm.NewModel(llm.ModelConfig{
		Provider:     cfg.LLMProvider,
		Model:        cfg.LLMModel,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		OllamaHost:   cfg.OllamaHost,
	})
	if err != nil {
		logger.Warn("model unavailable, running on fallback responses", "error", err)
		return nil
	}
	if model == nil {
		logger.Info("no model configured, running on fallback responses")
		return nil
	}
	return timeoutGenerator{gen: model, timeout: cfg.GenTimeout}
}

// timeoutGenerator bounds each model call with the configured timeout.
type timeoutGenerator struct {
	gen     llm.Generator
	timeout time.Duration
}

func (t timeoutGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.gen.Generate(ctx, systemPrompt, userPrompt)
}

// capabilitiesHandler reports what the running instance can do so
// clients can adjust upload guidance.
func capabilitiesHandler(caps extraction.Capabilities, gateway *llm.Gateway, embedder embedding.Embedder) http.HandlerFunc {
	type capabilities struct {
		OCR            bool   `json:"ocr"`
		ScannedPDF     bool   `json:"scanned_pdf"`
		Model          bool   `json:"model"`
		EmbeddingModel string `json:"embedding_model"`
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(capabilities{
			OCR:            caps.CanOCR(),
			ScannedPDF:     caps.CanRasterizePDF(),
			Model:          gateway.Available(),
			EmbeddingModel: embedder.Model(),
		})
	}
}
