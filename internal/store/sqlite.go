package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/odds-chat/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS chat_messages (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	user_id    TEXT NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS catalog_snapshot (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	sports     TEXT NOT NULL,
	fetched_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_messages_user ON chat_messages(user_id, seq);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, msg *model.ChatMessage) error {
	if err := prepareMessage(msg, uuid.New().String()); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, user_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.UserID, string(msg.Role), msg.Content, msg.Timestamp.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert message for %s", msg.UserID)
}

// History returns the last limit messages for userID, oldest first. A
// non-positive limit returns the whole transcript.
func (s *SQLiteStore) History(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, role, content, created_at FROM chat_messages
		 WHERE user_id = ? ORDER BY seq DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: history for %s", userID)
	}
	defer rows.Close() //nolint:errcheck

	var msgs []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		var role string
		if err := rows.Scan(&m.ID, &m.UserID, &role, &m.Content, &m.Timestamp); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan message")
		}
		m.Role = model.Role(role)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: history iterate")
	}
	// Rows come newest first.
	slices.Reverse(msgs)
	return msgs, nil
}

func (s *SQLiteStore) ClearHistory(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE user_id = ?`, userID)
	return eris.Wrapf(err, "sqlite: clear history for %s", userID)
}

func (s *SQLiteStore) SaveCatalog(ctx context.Context, sports []model.Sport, fetchedAt time.Time) error {
	data, err := json.Marshal(sports)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal catalog")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO catalog_snapshot (id, sports, fetched_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET sports = excluded.sports, fetched_at = excluded.fetched_at`,
		string(data), fetchedAt.UTC(),
	)
	return eris.Wrap(err, "sqlite: save catalog")
}

func (s *SQLiteStore) LoadCatalog(ctx context.Context) ([]model.Sport, time.Time, error) {
	var data string
	var fetchedAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT sports, fetched_at FROM catalog_snapshot WHERE id = 1`,
	).Scan(&data, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, eris.Wrap(err, "sqlite: load catalog")
	}

	var sports []model.Sport
	if err := json.Unmarshal([]byte(data), &sports); err != nil {
		return nil, time.Time{}, eris.Wrap(err, "sqlite: unmarshal catalog")
	}
	return sports, fetchedAt, nil
}
