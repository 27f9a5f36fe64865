package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	extractx "github.com/Chispasgg/personal-ai-agent-api/agent/extract"
	"github.com/rs/zerolog/log"
)

// Store is the persistence contract for session records.
type Store interface {
	Load(ctx context.Context, sessionID string) (*ConversationSession, error)
	Save(ctx context.Context, session *ConversationSession) error
}

// Config selects and parameterizes the storage backend.
type Config struct {
	Backend string `split_words:"true" default:"file"`
	Path    string `split_words:"true" default:"./data/conversations"`

	// Postgres backend only.
	DSN string `envconfig:"DSN" split_words:"true"`
}

// NewStore resolves the configured backend once at startup.
func NewStore(cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "file":
		return NewFileStore(cfg.Path)
	case "postgres":
		return NewBunStore(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// FileStore keeps one JSON document per session id under a directory.
// The file layout is the durable contract other tooling reads directly.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, errors.New("storage path is required")
	}
	if err := os.MkdirAll(trimmed, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{dir: trimmed}, nil
}

func (s *FileStore) sessionFile(sessionID string) (string, error) {
	trimmed := strings.TrimSpace(sessionID)
	if len(trimmed) < MinSessionIDLength || strings.ContainsAny(trimmed, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSession, sessionID)
	}
	return filepath.Join(s.dir, trimmed+".json"), nil
}

func (s *FileStore) Load(ctx context.Context, sessionID string) (*ConversationSession, error) {
	path, err := s.sessionFile(sessionID)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var session ConversationSession
	if err := json.Unmarshal(raw, &session); err != nil {
		// Corrupt durable data degrades to "not found" rather than
		// propagating a decode error.
		log.Warn().Str("session_id", sessionID).Err(err).Msg("corrupt session file, treating as not found")
		return nil, ErrSessionNotFound
	}
	if err := session.Validate(); err != nil {
		log.Warn().Str("session_id", sessionID).Err(err).Msg("invalid session file, treating as not found")
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *FileStore) Save(ctx context.Context, session *ConversationSession) error {
	if session == nil {
		return ErrNilSession
	}
	path, err := s.sessionFile(session.SessionID)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}

	log.Debug().Str("session_id", session.SessionID).Int("turns", session.TotalTurns).Msg("session saved")
	return nil
}

// Service layers the read-modify-write turn and finalize operations on
// top of a Store. Callers must serialize invocations per session.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	return &Service{store: store, now: time.Now}, nil
}

func (s *Service) Load(ctx context.Context, sessionID string) (*ConversationSession, error) {
	return s.store.Load(ctx, sessionID)
}

func (s *Service) Save(ctx context.Context, session *ConversationSession) error {
	return s.store.Save(ctx, session)
}

// AddTurn appends one exchange to the session record, creating the
// record on the first turn.
func (s *Service) AddTurn(ctx context.Context, sessionID string, language string, turn ConversationTurn) error {
	session, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			return err
		}
		session = NewConversationSession(sessionID, language, s.now())
	}

	if turn.Timestamp.IsZero() {
		turn.Timestamp = s.now().UTC()
	}
	session.AppendTurn(turn)
	return s.store.Save(ctx, session)
}

// Finalize closes the session with its final snapshot and summary.
// Finalizing an absent session is a logged no-op.
func (s *Service) Finalize(ctx context.Context, sessionID string, final extractx.ExtractedData, summary string) error {
	session, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			log.Warn().Str("session_id", sessionID).Msg("cannot finalize unknown session")
			return nil
		}
		return err
	}

	now := s.now().UTC()
	session.EndTime = &now
	session.FinalExtracted = &final
	session.Summary = summary

	if err := s.store.Save(ctx, session); err != nil {
		return err
	}
	log.Info().Str("session_id", sessionID).Msg("session finalized")
	return nil
}
