package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// sessionRow maps a session record onto Postgres: the whole document is
// kept as jsonb so the row shape matches the file-store contract.
type sessionRow struct {
	bun.BaseModel `bun:"table:conversation_sessions"`

	SessionID string          `bun:"session_id,pk"`
	Document  json.RawMessage `bun:"document,type:jsonb"`
	UpdatedAt time.Time       `bun:"updated_at,notnull"`
}

// BunStore persists session documents in Postgres via bun.
type BunStore struct {
	db *bun.DB
}

func NewBunStore(dsn string) (*BunStore, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(trimmed)))
	db := bun.NewDB(sqldb, pgdialect.New())
	return &BunStore{db: db}, nil
}

// Init creates the backing table when missing. Called once at startup.
func (s *BunStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*sessionRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (s *BunStore) Load(ctx context.Context, sessionID string) (*ConversationSession, error) {
	trimmed := strings.TrimSpace(sessionID)
	if len(trimmed) < MinSessionIDLength {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSession, sessionID)
	}

	row := new(sessionRow)
	err := s.db.NewSelect().
		Model(row).
		Where("session_id = ?", trimmed).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}

	var session ConversationSession
	if err := json.Unmarshal(row.Document, &session); err != nil {
		log.Warn().Str("session_id", trimmed).Err(err).Msg("corrupt session document, treating as not found")
		return nil, ErrSessionNotFound
	}
	if err := session.Validate(); err != nil {
		log.Warn().Str("session_id", trimmed).Err(err).Msg("invalid session document, treating as not found")
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *BunStore) Save(ctx context.Context, session *ConversationSession) error {
	if session == nil {
		return ErrNilSession
	}
	if err := session.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	row := &sessionRow{
		SessionID: session.SessionID,
		Document:  payload,
		UpdatedAt: time.Now().UTC(),
	}
	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (session_id) DO UPDATE").
		Set("document = EXCLUDED.document").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *BunStore) Close() error {
	return s.db.Close()
}
