package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aparra/img2card-bot/internal/agent"
	"github.com/aparra/img2card-bot/internal/config"
	"github.com/aparra/img2card-bot/internal/constants"
	"github.com/aparra/img2card-bot/internal/service/ai"
	"github.com/aparra/img2card-bot/internal/service/archive"
	"github.com/aparra/img2card-bot/internal/service/cache"
	"github.com/aparra/img2card-bot/internal/service/places"
	"go.uber.org/zap"
)

// Container holds the process-wide service graph. Clients are constructed
// once here and reused by every pipeline invocation; everything inside is
// read-only after Build returns.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Agent   *agent.CardAgent
	Models  *ai.ModelManager
	Cache   *cache.CacheService
	Archive *archive.CardRepository

	closers []func()
}

// Build assembles all infrastructure services. On error every service that
// was already constructed is torn down again.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	var cacheSvc *cache.CacheService
	if cfg.Redis.Enabled {
		cacheSvc, err = cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", err)
		}
		closers = append(closers, func() {
			_ = cacheSvc.Close()
		})
	}

	models, err := ai.NewModelManager(ctx, ai.ModelManagerConfig{
		OpenAIAPIKey:          cfg.OpenAI.APIKey,
		OpenAIVisionModel:     cfg.OpenAI.VisionModel,
		OpenAIGenerationModel: cfg.OpenAI.GenerationModel,
		GeminiAPIKey:          cfg.Gemini.APIKey,
		GeminiModel:           cfg.Gemini.Model,
		EnableFallback:        cfg.Gemini.EnableFallback,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}

	var resolver agent.VenueResolver
	if cfg.PlacesEnabled() {
		httpClient := &http.Client{Timeout: constants.APIConfig.RequestTimeout}
		serpClient := places.NewSerpClient(httpClient, cfg.SerpAPI.APIKey, cacheSvc, logger)
		geoClient := places.NewGeoClient(httpClient, cfg.Geoapify.APIKey, cacheSvc, logger)
		resolver = places.NewResolver(serpClient, geoClient, logger)
	} else {
		logger.Warn("Place search disabled, venue transcriptions will degrade to personal-card generation")
	}

	var cardRepo *archive.CardRepository
	if cfg.Postgres.Enabled {
		postgresSvc, pgErr := archive.NewPostgresService(archive.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if pgErr != nil {
			err = fmt.Errorf("failed to create postgres service: %w", pgErr)
			return nil, err
		}
		closers = append(closers, func() {
			_ = postgresSvc.Close()
		})

		cardRepo = archive.NewCardRepository(postgresSvc, logger)
		if err = cardRepo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
	}

	cardAgent := agent.NewCardAgent(models, resolver, cfg.Vision.DetailPolicy, logger)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Agent:   cardAgent,
		Models:  models,
		Cache:   cacheSvc,
		Archive: cardRepo,
		closers: closers,
	}, nil
}

// Close tears down the container's services in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
