package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aparra/img2card-bot/internal/constants"
	"github.com/aparra/img2card-bot/internal/domain"
	"github.com/aparra/img2card-bot/internal/prompt"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiProvider drives both pipeline model calls through the Gemini API.
// Gemini has no detail knob, so the hint only shapes the token budget.
type GeminiProvider struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func NewGeminiProvider(client *genai.Client, model string, logger *zap.Logger) *GeminiProvider {
	if client == nil {
		return nil
	}
	return &GeminiProvider{
		client: client,
		model:  model,
		logger: logger,
	}
}

func (g *GeminiProvider) Name() string {
	return "Gemini"
}

func (g *GeminiProvider) Transcribe(ctx context.Context, payload *domain.ImagePayload, detail domain.Detail) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}

	g.logger.Debug("Transcribing with Gemini",
		zap.String("model", g.model),
		zap.String("detail", string(detail)),
	)

	maxTokens := int32(constants.VisionConfig.MaxTranscriptionTokens)
	if detail == domain.DetailHigh {
		maxTokens *= 2
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: prompt.TranscribeInstruction},
				{InlineData: &genai.Blob{
					MIMEType: payload.Format.MIMEType(),
					Data:     payload.Raw,
				}},
			},
		},
	}, &genai.GenerateContentConfig{MaxOutputTokens: maxTokens})
	if err != nil {
		g.logger.Error("Gemini transcription failed", zap.Error(err))
		return "", err
	}

	text := extractGeminiText(resp)
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return text, nil
}

func (g *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}

	g.logger.Debug("Generating with Gemini", zap.String("model", g.model))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: req.Context},
				{Text: req.Instruction},
			},
		},
	}, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		},
	})
	if err != nil {
		g.logger.Error("Gemini generation failed", zap.Error(err))
		return "", err
	}

	text := extractGeminiText(resp)
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return text, nil
}

func (g *GeminiProvider) Ping(ctx context.Context) bool {
	if g.client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		{Parts: []*genai.Part{{Text: "ping"}}},
	}, &genai.GenerateContentConfig{MaxOutputTokens: 10})
	if err != nil {
		g.logger.Debug("Gemini ping failed", zap.Error(err))
		return false
	}
	return extractGeminiText(resp) != ""
}

func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "")
}
