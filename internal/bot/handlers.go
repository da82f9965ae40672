package bot

import (
	"context"
	"strings"

	"github.com/aparra/img2card-bot/internal/agent"
	"github.com/aparra/img2card-bot/internal/domain"
	"github.com/aparra/img2card-bot/internal/imaging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	msgWelcome      = "Bienvenido! Para convertir una imagen en una tarjeta de contacto, envíame una imagen."
	msgHelp         = "Envíame la foto de una tarjeta de visita o de un local y te devuelvo un contacto. Comparte tu ubicación para mejorar los resultados. /last repite la última tarjeta."
	msgAskLocation  = "¿Puedes enviarme tu ubicación?"
	msgNoCard       = "No se pudo generar la tarjeta."
	msgNoLastCard   = "Todavía no he generado ninguna tarjeta en este chat."
	msgSendPhoto    = "Envíame una imagen y la convierto en una tarjeta de contacto."
	msgGotLocation  = "Ubicación recibida. Envíame una imagen cuando quieras."
)

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.send(tgbotapi.NewMessage(message.Chat.ID, msgWelcome))
	case "help":
		b.send(tgbotapi.NewMessage(message.Chat.ID, msgHelp))
	case "last":
		b.handleLast(ctx, message)
	default:
		b.send(tgbotapi.NewMessage(message.Chat.ID, msgHelp))
	}
}

func (b *Bot) handleLast(ctx context.Context, message *tgbotapi.Message) {
	card, err := b.archive.Latest(ctx, message.Chat.ID)
	if err != nil {
		b.logger.Error("Failed to load last card", zap.Error(err))
	}
	if card == nil {
		b.send(tgbotapi.NewMessage(message.Chat.ID, msgNoLastCard))
		return
	}
	b.replyWithCard(ctx, message.Chat.ID, card.VCard, false)
}

// handlePhoto handles compressed photos. Telegram strips EXIF from these, so
// a location share is required; a remembered one is reused, otherwise the
// photo is parked and the user is asked.
func (b *Bot) handlePhoto(ctx context.Context, message *tgbotapi.Message) {
	largest := message.Photo[len(message.Photo)-1]

	if coords, ok := b.state.lastLocation(ctx, senderID(message)); ok {
		b.processImage(ctx, message.Chat.ID, largest.FileID, domain.DetailHigh, &coords)
		return
	}

	b.state.parkPhoto(message.Chat.ID, largest.FileID)
	b.send(tgbotapi.NewMessage(message.Chat.ID, msgAskLocation))
}

// handleDocument handles images sent as files, which keep their metadata. If
// the file carries GPS EXIF the pipeline runs directly; otherwise a known
// location is reused or requested.
func (b *Bot) handleDocument(ctx context.Context, message *tgbotapi.Message) {
	document := message.Document
	if !strings.HasPrefix(document.MimeType, "image/") {
		b.send(tgbotapi.NewMessage(message.Chat.ID, msgSendPhoto))
		return
	}

	raw, err := b.downloadFile(ctx, document.FileID)
	if err != nil {
		b.logger.Error("Failed to download document", zap.Error(err))
		b.send(tgbotapi.NewMessage(message.Chat.ID, msgNoCard))
		return
	}

	payload, err := imaging.EncodeBytes(document.FileName, raw)
	if err != nil {
		b.logger.Warn("Unsupported document format", zap.Error(err))
		b.send(tgbotapi.NewMessage(message.Chat.ID, msgNoCard))
		return
	}

	if _, ok := imaging.ExtractCoordinates(payload); ok {
		b.runAgent(ctx, message.Chat.ID, agent.Request{Path: document.FileName, Raw: raw, Detail: domain.DetailLow})
		return
	}

	if coords, ok := b.state.lastLocation(ctx, senderID(message)); ok {
		b.runAgent(ctx, message.Chat.ID, agent.Request{Path: document.FileName, Raw: raw, Coordinates: &coords, Detail: domain.DetailLow})
		return
	}

	b.state.parkPhoto(message.Chat.ID, document.FileID)
	b.send(tgbotapi.NewMessage(message.Chat.ID, msgAskLocation))
}

// handleLocation resumes a parked photo, or just remembers the location for
// the next one.
func (b *Bot) handleLocation(ctx context.Context, message *tgbotapi.Message) {
	coords := domain.Coordinates{
		Latitude:  message.Location.Latitude,
		Longitude: message.Location.Longitude,
	}
	b.state.rememberLocation(ctx, senderID(message), coords)

	fileID, ok := b.state.takePhoto(message.Chat.ID)
	if !ok {
		b.send(tgbotapi.NewMessage(message.Chat.ID, msgGotLocation))
		return
	}

	b.processImage(ctx, message.Chat.ID, fileID, domain.DetailHigh, &coords)
}

func (b *Bot) processImage(ctx context.Context, chatID int64, fileID string, detail domain.Detail, coords *domain.Coordinates) {
	b.sendChatAction(chatID, tgbotapi.ChatUploadPhoto)

	raw, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.logger.Error("Failed to download photo", zap.Error(err))
		b.send(tgbotapi.NewMessage(chatID, msgNoCard))
		return
	}

	b.runAgent(ctx, chatID, agent.Request{Path: fileID, Raw: raw, Coordinates: coords, Detail: detail})
}

func (b *Bot) runAgent(ctx context.Context, chatID int64, req agent.Request) {
	b.sendChatAction(chatID, tgbotapi.ChatTyping)

	card := b.agent.CreateCard(ctx, req)
	if card == "" {
		b.send(tgbotapi.NewMessage(chatID, msgNoCard))
		return
	}

	b.replyWithCard(ctx, chatID, card, true)
}

func (b *Bot) replyWithCard(ctx context.Context, chatID int64, card string, archiveIt bool) {
	fullName := domain.CardFullName(card)
	phone := domain.CardPhone(card)

	contact := tgbotapi.NewContact(chatID, phone, fullName)
	contact.VCard = card
	b.send(contact)

	if archiveIt {
		if err := b.archive.Save(ctx, chatID, fullName, phone, card); err != nil {
			b.logger.Warn("Card archive failed", zap.Error(err))
		}
	}
}

// senderID keys per-user state; falls back to the chat when Telegram omits
// the sender.
func senderID(message *tgbotapi.Message) int64 {
	if message.From != nil {
		return message.From.ID
	}
	return message.Chat.ID
}
