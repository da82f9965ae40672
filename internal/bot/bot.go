package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/aparra/img2card-bot/internal/agent"
	"github.com/aparra/img2card-bot/internal/config"
	"github.com/aparra/img2card-bot/internal/constants"
	"github.com/aparra/img2card-bot/internal/service/archive"
	"github.com/aparra/img2card-bot/internal/service/cache"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Bot is the Telegram transport around the card pipeline. It downloads
// incoming images, asks for a location when one is needed and replies with a
// contact built from the generated vCard.
type Bot struct {
	api        *tgbotapi.BotAPI
	agent      *agent.CardAgent
	archive    *archive.CardRepository
	state      *conversationState
	httpClient *http.Client
	logger     *zap.Logger
	devChatID  int64
}

func New(cfg config.TelegramConfig, cardAgent *agent.CardAgent, cardRepo *archive.CardRepository, cacheSvc *cache.CacheService, logger *zap.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", api.Self.UserName))

	return &Bot{
		api:        api,
		agent:      cardAgent,
		archive:    cardRepo,
		state:      newConversationState(cacheSvc),
		httpClient: &http.Client{Timeout: constants.APIConfig.RequestTimeout},
		logger:     logger,
		devChatID:  cfg.DevChatID,
	}, nil
}

// Start consumes updates until ctx is cancelled. Each update is handled on a
// bounded worker pool so one slow pipeline run does not stall the rest.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = constants.BotConfig.UpdateTimeout

	updates := b.api.GetUpdatesChan(updateConfig)
	workers := pool.New().WithMaxGoroutines(constants.BotConfig.WorkerPoolSize)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			workers.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				workers.Wait()
				return nil
			}
			workers.Go(func() {
				b.handleUpdate(ctx, update)
			})
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Update handler panicked", zap.Any("panic", r))
			b.reportToDev(fmt.Sprintf("update handler panicked: %v", r))
		}
	}()

	message := update.Message
	if message == nil {
		return
	}

	switch {
	case message.IsCommand():
		b.handleCommand(ctx, message)
	case len(message.Photo) > 0:
		b.handlePhoto(ctx, message)
	case message.Document != nil:
		b.handleDocument(ctx, message)
	case message.Location != nil:
		b.handleLocation(ctx, message)
	case message.Text != "":
		b.send(tgbotapi.NewMessage(message.Chat.ID, msgSendPhoto))
	}
}

func (b *Bot) send(chattable tgbotapi.Chattable) {
	if _, err := b.api.Send(chattable); err != nil {
		b.logger.Error("Failed to send telegram message", zap.Error(err))
	}
}

func (b *Bot) sendChatAction(chatID int64, action string) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
		b.logger.Debug("Failed to send chat action", zap.Error(err))
	}
}

// downloadFile fetches a Telegram-hosted file into memory.
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	fileURL, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, constants.BotConfig.DownloadLimit))
}

func (b *Bot) reportToDev(text string) {
	if b.devChatID == 0 {
		return
	}
	b.send(tgbotapi.NewMessage(b.devChatID, text))
}

// Shutdown stops the update stream. In-flight handlers finish through the
// worker pool wait in Start.
func (b *Bot) Shutdown(ctx context.Context) error {
	b.api.StopReceivingUpdates()
	return nil
}
