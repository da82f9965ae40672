package agent

import (
	"context"
	"encoding/json"

	"github.com/aparra/img2card-bot/internal/config"
	"github.com/aparra/img2card-bot/internal/domain"
	"github.com/aparra/img2card-bot/internal/imaging"
	"github.com/aparra/img2card-bot/internal/util"
	"go.uber.org/zap"
)

// Models is the AI capability surface the agent consumes.
type Models interface {
	Transcribe(ctx context.Context, payload *domain.ImagePayload, detail domain.Detail) (string, error)
	GenerateCard(ctx context.Context, contextText string) (string, error)
}

// VenueResolver is the place-resolution capability. A nil record with a nil
// error means the nearby search found nothing.
type VenueResolver interface {
	Resolve(ctx context.Context, query string, coords domain.Coordinates) (domain.Record, error)
}

// Request is one pipeline invocation. Exactly one of Path or Raw must be set.
// Coordinates, when present, are caller-supplied and take precedence over
// anything embedded in the image. Detail overrides the configured policy.
type Request struct {
	Path        string
	Raw         []byte
	Coordinates *domain.Coordinates
	Detail      domain.Detail
}

// CardAgent composes the whole image-to-card pipeline. Its caller-visible
// contract is "a card, or nothing": every internal failure is logged and
// normalized to an empty result, never surfaced as an error.
type CardAgent struct {
	models       Models
	resolver     VenueResolver
	detailPolicy config.DetailPolicy
	logger       *zap.Logger
}

func NewCardAgent(models Models, resolver VenueResolver, detailPolicy config.DetailPolicy, logger *zap.Logger) *CardAgent {
	return &CardAgent{
		models:       models,
		resolver:     resolver,
		detailPolicy: detailPolicy,
		logger:       logger,
	}
}

// CreateCard runs the pipeline and returns the extracted vCard text, or ""
// when no card could be produced.
func (a *CardAgent) CreateCard(ctx context.Context, req Request) (card string) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Pipeline panicked", zap.Any("panic", r))
			card = ""
		}
	}()

	card, err := a.run(ctx, req)
	if err != nil {
		a.logger.Error("Pipeline failed", zap.Error(err))
		return ""
	}
	return card
}

func (a *CardAgent) run(ctx context.Context, req Request) (string, error) {
	payload, err := a.encode(req)
	if err != nil {
		return "", err
	}

	coords, haveCoords := a.settleCoordinates(req, payload)
	detail := a.pickDetail(req, haveCoords)

	transcription, err := a.models.Transcribe(ctx, payload, detail)
	if err != nil {
		return "", err
	}
	a.logger.Info("Transcription received",
		zap.Int("length", len(transcription)),
		zap.String("detail", string(detail)),
	)
	a.logger.Debug("Transcription preview", zap.String("text", util.TruncateString(transcription, 120)))

	contextText := transcription
	if IsVenueTranscription(transcription) {
		query, ok := BuildVenueQuery(transcription)
		switch {
		case !ok:
			// Malformed venue JSON degrades to the personal-card path.
			a.logger.Warn("Venue-mode transcription is not parseable JSON, using raw transcription")
		case !haveCoords || a.resolver == nil:
			// A venue claim without usable coordinates degrades the same way.
			a.logger.Info("Venue mode without coordinates, using raw transcription")
		default:
			venue, err := a.resolver.Resolve(ctx, query, coords)
			if err != nil {
				return "", err
			}
			if venue == nil {
				// A venue claim that no search hit can ground yields no card.
				a.logger.Info("Venue could not be resolved, returning no card", zap.String("query", query))
				return "", nil
			}
			serialized, err := json.Marshal(venue)
			if err != nil {
				return "", err
			}
			contextText = string(serialized)
			a.logger.Info("Venue resolved",
				zap.String("query", query),
				zap.String("title", venue.GetString("title")),
			)
		}
	}

	raw, err := a.models.GenerateCard(ctx, contextText)
	if err != nil {
		return "", err
	}

	card, ok := domain.ExtractCard(raw)
	if !ok {
		a.logger.Warn("Generated output carried no card markers", zap.Int("length", len(raw)))
		return "", nil
	}
	return card, nil
}

func (a *CardAgent) encode(req Request) (*domain.ImagePayload, error) {
	if len(req.Raw) > 0 {
		return imaging.EncodeBytes(req.Path, req.Raw)
	}
	return imaging.Encode(req.Path)
}

// settleCoordinates applies the precedence rule: caller-supplied coordinates
// win over EXIF-derived ones.
func (a *CardAgent) settleCoordinates(req Request, payload *domain.ImagePayload) (domain.Coordinates, bool) {
	if req.Coordinates != nil && req.Coordinates.Valid() {
		return *req.Coordinates, true
	}
	return imaging.ExtractCoordinates(payload)
}

func (a *CardAgent) pickDetail(req Request, haveCoords bool) domain.Detail {
	if req.Detail != "" {
		return req.Detail
	}
	switch a.detailPolicy {
	case config.DetailPolicyHigh:
		return domain.DetailHigh
	case config.DetailPolicyLow:
		return domain.DetailLow
	default:
		// auto: more visual context pays off when it can be cross-checked
		// against place search.
		if haveCoords {
			return domain.DetailHigh
		}
		return domain.DetailLow
	}
}
