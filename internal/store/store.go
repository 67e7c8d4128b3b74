// Package store persists chat transcripts and the last good sports catalog.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/odds-chat/internal/config"
	"github.com/sells-group/odds-chat/internal/model"
)

// Store defines the persistence interface for the chat service.
type Store interface {
	// Transcripts
	AppendMessage(ctx context.Context, msg *model.ChatMessage) error
	History(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error)
	ClearHistory(ctx context.Context, userID string) error

	// Catalog snapshot
	SaveCatalog(ctx context.Context, sports []model.Sport, fetchedAt time.Time) error
	LoadCatalog(ctx context.Context) ([]model.Sport, time.Time, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the store selected by cfg.Driver. The caller runs Migrate.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, nil)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// prepareMessage fills in the ID and timestamp of a new message.
func prepareMessage(msg *model.ChatMessage, id string) error {
	if msg.UserID == "" {
		return eris.New("store: message has no user id")
	}
	if msg.ID == "" {
		msg.ID = id
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	return nil
}
