package store

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/odds-chat/internal/model"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore. pgxmock pools
// satisfy it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS chat_messages (
	seq        BIGSERIAL PRIMARY KEY,
	id         TEXT NOT NULL UNIQUE,
	user_id    TEXT NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS catalog_snapshot (
	id         SMALLINT PRIMARY KEY CHECK (id = 1),
	sports     JSONB NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_messages_user ON chat_messages(user_id, seq DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) AppendMessage(ctx context.Context, msg *model.ChatMessage) error {
	if err := prepareMessage(msg, uuid.New().String()); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_messages (id, user_id, role, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.UserID, string(msg.Role), msg.Content, msg.Timestamp,
	)
	return eris.Wrapf(err, "postgres: insert message for %s", msg.UserID)
}

// History returns the last limit messages for userID, oldest first. A
// non-positive limit returns the whole transcript.
func (s *PostgresStore) History(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, role, content, created_at FROM chat_messages
		 WHERE user_id = $1 ORDER BY seq DESC LIMIT $2`,
		userID, lim,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: history for %s", userID)
	}
	defer rows.Close()

	var msgs []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		var role string
		if err := rows.Scan(&m.ID, &m.UserID, &role, &m.Content, &m.Timestamp); err != nil {
			return nil, eris.Wrap(err, "postgres: scan message")
		}
		m.Role = model.Role(role)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: history iterate")
	}
	// Rows come newest first.
	slices.Reverse(msgs)
	return msgs, nil
}

func (s *PostgresStore) ClearHistory(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM chat_messages WHERE user_id = $1`, userID)
	return eris.Wrapf(err, "postgres: clear history for %s", userID)
}

func (s *PostgresStore) SaveCatalog(ctx context.Context, sports []model.Sport, fetchedAt time.Time) error {
	data, err := json.Marshal(sports)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal catalog")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO catalog_snapshot (id, sports, fetched_at) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET sports = EXCLUDED.sports, fetched_at = EXCLUDED.fetched_at`,
		data, fetchedAt,
	)
	return eris.Wrap(err, "postgres: save catalog")
}

func (s *PostgresStore) LoadCatalog(ctx context.Context) ([]model.Sport, time.Time, error) {
	var data []byte
	var fetchedAt time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT sports, fetched_at FROM catalog_snapshot WHERE id = 1`,
	).Scan(&data, &fetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, eris.Wrap(err, "postgres: load catalog")
	}

	var sports []model.Sport
	if err := json.Unmarshal(data, &sports); err != nil {
		return nil, time.Time{}, eris.Wrap(err, "postgres: unmarshal catalog")
	}
	return sports, fetchedAt, nil
}
