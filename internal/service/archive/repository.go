package archive

import (
	"context"
	"database/sql"
	"time"

	"github.com/aparra/img2card-bot/pkg/errors"
	"go.uber.org/zap"
)

// StoredCard is one archived generation result.
type StoredCard struct {
	ID        int64
	ChatID    int64
	FullName  string
	Phone     string
	VCard     string
	CreatedAt time.Time
}

// CardRepository persists generated cards per chat so transports can re-send
// the most recent one. A nil repository disables archiving.
type CardRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewCardRepository(svc *PostgresService, logger *zap.Logger) *CardRepository {
	if svc == nil {
		return nil
	}
	return &CardRepository{
		db:     svc.DB(),
		logger: logger,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS cards (
	id         BIGSERIAL PRIMARY KEY,
	chat_id    BIGINT NOT NULL,
	full_name  TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	vcard      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS cards_chat_created_idx ON cards (chat_id, created_at DESC);
`

func (r *CardRepository) EnsureSchema(ctx context.Context) error {
	if r == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return errors.NewStorageError("failed to create cards schema", "ensure_schema", err)
	}
	return nil
}

func (r *CardRepository) Save(ctx context.Context, chatID int64, fullName, phone, vcard string) error {
	if r == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cards (chat_id, full_name, phone, vcard) VALUES ($1, $2, $3, $4)`,
		chatID, fullName, phone, vcard,
	)
	if err != nil {
		r.logger.Error("Failed to archive card", zap.Int64("chat_id", chatID), zap.Error(err))
		return errors.NewStorageError("failed to archive card", "save", err)
	}
	return nil
}

// Latest returns the most recent card for a chat, or nil when none exists.
func (r *CardRepository) Latest(ctx context.Context, chatID int64) (*StoredCard, error) {
	if r == nil {
		return nil, nil
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, chat_id, full_name, phone, vcard, created_at
		 FROM cards WHERE chat_id = $1
		 ORDER BY created_at DESC LIMIT 1`,
		chatID,
	)

	var card StoredCard
	err := row.Scan(&card.ID, &card.ChatID, &card.FullName, &card.Phone, &card.VCard, &card.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStorageError("failed to load latest card", "latest", err)
	}
	return &card, nil
}
