package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/aparra/img2card-bot/internal/domain"
	"github.com/aparra/img2card-bot/pkg/errors"
	"go.uber.org/zap"
)

type fakeProvider struct {
	name            string
	transcription   string
	transcribeErr   error
	generated       string
	generateErr     error
	transcribeCalls int
	generateCalls   int
	lastRequest     GenerateRequest
	healthy         bool
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Transcribe(_ context.Context, _ *domain.ImagePayload, _ domain.Detail) (string, error) {
	f.transcribeCalls++
	return f.transcription, f.transcribeErr
}

func (f *fakeProvider) Generate(_ context.Context, req GenerateRequest) (string, error) {
	f.generateCalls++
	f.lastRequest = req
	return f.generated, f.generateErr
}

func (f *fakeProvider) Ping(_ context.Context) bool { return f.healthy }

func testPayload() *domain.ImagePayload {
	return &domain.ImagePayload{Path: "card.png", Format: domain.FormatPNG, Encoded: "aGk="}
}

func TestTranscribePrefersPrimary(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", transcription: "Name: Jane Roe"}
	fallback := &fakeProvider{name: "Gemini", transcription: "should not be used"}
	mm := NewModelManagerWithProviders(primary, fallback, zap.NewNop())

	text, err := mm.Transcribe(context.Background(), testPayload(), domain.DetailHigh)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if text != "Name: Jane Roe" {
		t.Fatalf("unexpected transcription: %q", text)
	}
	if fallback.transcribeCalls != 0 {
		t.Fatalf("fallback must not run when the primary succeeds")
	}
}

func TestTranscribeFallsBackOnce(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", transcribeErr: fmt.Errorf("rate limited")}
	fallback := &fakeProvider{name: "Gemini", transcription: "Name: Jane Roe"}
	mm := NewModelManagerWithProviders(primary, fallback, zap.NewNop())

	text, err := mm.Transcribe(context.Background(), testPayload(), domain.DetailLow)
	if err != nil {
		t.Fatalf("expected fallback to recover, got %v", err)
	}
	if text != "Name: Jane Roe" {
		t.Fatalf("unexpected transcription: %q", text)
	}
	if primary.transcribeCalls != 1 || fallback.transcribeCalls != 1 {
		t.Fatalf("each provider gets exactly one attempt, got %d/%d", primary.transcribeCalls, fallback.transcribeCalls)
	}
}

func TestTranscribeWrapsFailureAsTranscriptionError(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", transcribeErr: fmt.Errorf("rate limited")}
	fallback := &fakeProvider{name: "Gemini", transcribeErr: fmt.Errorf("quota exhausted")}
	mm := NewModelManagerWithProviders(primary, fallback, zap.NewNop())

	_, err := mm.Transcribe(context.Background(), testPayload(), domain.DetailLow)
	if err == nil {
		t.Fatalf("expected an error when both providers fail")
	}

	var transcriptionErr *errors.TranscriptionError
	if !stderrors.As(err, &transcriptionErr) {
		t.Fatalf("expected TranscriptionError, got %T: %v", err, err)
	}
}

func TestTranscribeWithoutFallbackFailsDirectly(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", transcribeErr: fmt.Errorf("rate limited")}
	mm := NewModelManagerWithProviders(primary, nil, zap.NewNop())

	_, err := mm.Transcribe(context.Background(), testPayload(), domain.DetailLow)
	if err == nil {
		t.Fatalf("expected an error without fallback")
	}
	if primary.transcribeCalls != 1 {
		t.Fatalf("primary gets exactly one attempt, got %d", primary.transcribeCalls)
	}
}

func TestGenerateCardBuildsThreeRoleRequest(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", generated: "BEGIN:VCARD\nEND:VCARD"}
	mm := NewModelManagerWithProviders(primary, nil, zap.NewNop())

	_, err := mm.GenerateCard(context.Background(), `{"title":"Forn del St. Cristo"}`)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	req := primary.lastRequest
	if req.System == "" || req.Instruction == "" {
		t.Fatalf("system and instruction must be populated, got %+v", req)
	}
	if req.Context != `{"title":"Forn del St. Cristo"}` {
		t.Fatalf("unexpected context: %q", req.Context)
	}
}

func TestGenerateCardWrapsFailureAsGenerationError(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", generateErr: fmt.Errorf("overloaded")}
	mm := NewModelManagerWithProviders(primary, nil, zap.NewNop())

	_, err := mm.GenerateCard(context.Background(), "context")
	if err == nil {
		t.Fatalf("expected an error")
	}

	var generationErr *errors.GenerationError
	if !stderrors.As(err, &generationErr) {
		t.Fatalf("expected GenerationError, got %T: %v", err, err)
	}
}

func TestHealthCheckAnyProviderSuffices(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", healthy: false}
	fallback := &fakeProvider{name: "Gemini", healthy: true}
	mm := NewModelManagerWithProviders(primary, fallback, zap.NewNop())

	if !mm.HealthCheck(context.Background()) {
		t.Fatalf("one healthy provider must pass the health check")
	}

	fallback.healthy = false
	if mm.HealthCheck(context.Background()) {
		t.Fatalf("no healthy provider must fail the health check")
	}
}
