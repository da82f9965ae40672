package ai

import (
	"context"
	"fmt"

	"github.com/aparra/img2card-bot/internal/constants"
	"github.com/aparra/img2card-bot/internal/domain"
	"github.com/aparra/img2card-bot/internal/prompt"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

// OpenAIProvider drives both pipeline model calls through the OpenAI chat
// completions API.
type OpenAIProvider struct {
	client          *openai.Client
	visionModel     string
	generationModel string
	logger          *zap.Logger
}

func NewOpenAIProvider(apiKey, visionModel, generationModel string, logger *zap.Logger) *OpenAIProvider {
	if apiKey == "" {
		return nil
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client:          &client,
		visionModel:     visionModel,
		generationModel: generationModel,
		logger:          logger,
	}
}

func (o *OpenAIProvider) Name() string {
	return "OpenAI"
}

func (o *OpenAIProvider) Transcribe(ctx context.Context, payload *domain.ImagePayload, detail domain.Detail) (string, error) {
	if o.client == nil {
		return "", fmt.Errorf("OpenAI client not initialized")
	}

	o.logger.Debug("Transcribing with OpenAI",
		zap.String("model", o.visionModel),
		zap.String("detail", string(detail)),
		zap.String("format", string(payload.Format)),
	)

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(prompt.TranscribeInstruction),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL:    payload.DataURI(),
			Detail: string(detail),
		}),
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(o.visionModel),
		Messages:            []openai.ChatCompletionMessageParamUnion{openai.UserMessage(parts)},
		MaxCompletionTokens: openai.Int(int64(constants.VisionConfig.MaxTranscriptionTokens)),
	})
	if err != nil {
		o.logger.Error("OpenAI transcription failed", zap.Error(err))
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if o.client == nil {
		return "", fmt.Errorf("OpenAI client not initialized")
	}

	o.logger.Debug("Generating with OpenAI", zap.String("model", o.generationModel))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.generationModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.AssistantMessage(req.Context),
			openai.UserMessage(req.Instruction),
		},
	})
	if err != nil {
		o.logger.Error("OpenAI generation failed", zap.Error(err))
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIProvider) Ping(ctx context.Context) bool {
	if o.client == nil {
		return false
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(o.generationModel),
		Messages:            []openai.ChatCompletionMessageParamUnion{openai.UserMessage("ping")},
		MaxCompletionTokens: openai.Int(10),
	})
	if err != nil {
		o.logger.Debug("OpenAI ping failed", zap.Error(err))
		return false
	}
	return len(resp.Choices) > 0
}
