package ai

import (
	"context"

	"github.com/aparra/img2card-bot/internal/domain"
)

// Provider is one swappable vision/generation backend. Both capabilities live
// on the same provider because every supported backend (OpenAI, Gemini)
// exposes them through a single client.
type Provider interface {
	Name() string
	Transcribe(ctx context.Context, payload *domain.ImagePayload, detail domain.Detail) (string, error)
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Ping(ctx context.Context) bool
}

// GenerateRequest carries the three message roles of a card-generation call:
// fixed system instructions, the settled context (raw transcription or
// re-serialized enriched venue) and the user instruction.
type GenerateRequest struct {
	System      string
	Context     string
	Instruction string
}
