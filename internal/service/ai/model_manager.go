package ai

import (
	"context"
	"fmt"

	"github.com/aparra/img2card-bot/internal/domain"
	"github.com/aparra/img2card-bot/internal/prompt"
	"github.com/aparra/img2card-bot/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ModelManager owns the constructed provider clients for the life of the
// process. It is read-only after construction and safe for concurrent
// pipeline runs. Provider selection is configuration: OpenAI is primary when
// its key is present, Gemini otherwise; the other becomes the fallback when
// fallback is enabled. Individual calls are never retried against the same
// provider.
type ModelManager struct {
	openai         *OpenAIProvider
	gemini         *GeminiProvider
	primary        Provider
	fallback       Provider
	logger         *zap.Logger
	enableFallback bool
}

type ModelManagerConfig struct {
	OpenAIAPIKey          string
	OpenAIVisionModel     string
	OpenAIGenerationModel string
	GeminiAPIKey          string
	GeminiModel           string
	EnableFallback        bool
}

func NewModelManager(ctx context.Context, cfg ModelManagerConfig, logger *zap.Logger) (*ModelManager, error) {
	openaiProvider := NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIVisionModel, cfg.OpenAIGenerationModel, logger)

	var geminiProvider *GeminiProvider
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		geminiProvider = NewGeminiProvider(geminiClient, cfg.GeminiModel, logger)
	}

	mm := &ModelManager{
		openai: openaiProvider,
		gemini: geminiProvider,
		logger: logger,
	}

	switch {
	case openaiProvider != nil:
		mm.primary = openaiProvider
		if geminiProvider != nil {
			mm.fallback = geminiProvider
		}
	case geminiProvider != nil:
		mm.primary = geminiProvider
	default:
		return nil, fmt.Errorf("no AI provider configured")
	}

	mm.enableFallback = cfg.EnableFallback && mm.fallback != nil
	logger.Info("AI providers configured",
		zap.String("primary", mm.primary.Name()),
		zap.Bool("fallback", mm.enableFallback),
	)

	return mm, nil
}

// NewModelManagerWithProviders wires pre-built providers; used by tests.
func NewModelManagerWithProviders(primary, fallback Provider, logger *zap.Logger) *ModelManager {
	return &ModelManager{
		primary:        primary,
		fallback:       fallback,
		logger:         logger,
		enableFallback: fallback != nil,
	}
}

// Transcribe runs the vision capability. Provider failures come back as a
// TranscriptionError and propagate to the orchestrator untouched.
func (mm *ModelManager) Transcribe(ctx context.Context, payload *domain.ImagePayload, detail domain.Detail) (string, error) {
	text, err := mm.primary.Transcribe(ctx, payload, detail)
	if err == nil {
		return text, nil
	}

	if mm.enableFallback {
		mm.logger.Warn("Primary transcription failed, trying fallback provider",
			zap.String("primary", mm.primary.Name()),
			zap.Error(err),
		)
		text, fallbackErr := mm.fallback.Transcribe(ctx, payload, detail)
		if fallbackErr == nil {
			return text, nil
		}
		return "", errors.NewTranscriptionError("vision transcription failed", fallbackErr)
	}

	return "", errors.NewTranscriptionError("vision transcription failed", err)
}

// GenerateCard runs the text-generation capability against the settled
// context text.
func (mm *ModelManager) GenerateCard(ctx context.Context, contextText string) (string, error) {
	req := GenerateRequest{
		System:      prompt.GenerationSystem,
		Context:     contextText,
		Instruction: prompt.BuildCardPrompt(),
	}

	text, err := mm.primary.Generate(ctx, req)
	if err == nil {
		return text, nil
	}

	if mm.enableFallback {
		mm.logger.Warn("Primary generation failed, trying fallback provider",
			zap.String("primary", mm.primary.Name()),
			zap.Error(err),
		)
		text, fallbackErr := mm.fallback.Generate(ctx, req)
		if fallbackErr == nil {
			return text, nil
		}
		return "", errors.NewGenerationError("card generation failed", fallbackErr)
	}

	return "", errors.NewGenerationError("card generation failed", err)
}

// HealthCheck pings each configured provider; healthy when any responds.
func (mm *ModelManager) HealthCheck(ctx context.Context) bool {
	primaryOK := mm.primary.Ping(ctx)

	fallbackOK := false
	if mm.fallback != nil {
		fallbackOK = mm.fallback.Ping(ctx)
	}

	mm.logger.Info("AI health check",
		zap.Bool("primary", primaryOK),
		zap.Bool("fallback", fallbackOK),
	)
	return primaryOK || fallbackOK
}
