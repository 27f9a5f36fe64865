package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	statex "github.com/Chispasgg/personal-ai-agent-api/agent/state"
	"github.com/rs/zerolog/log"
)

type Config struct {
	MaxConversationTurns int `split_words:"true" default:"50"`
}

const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

type message struct {
	role    string
	content string
}

type history struct {
	messages []message
	pairs    int
}

// Manager holds the volatile per-session message history. It is a
// cache over the durable store: a miss hydrates by replaying persisted
// turns, and a process restart loses nothing durable.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*history
	store    statex.Store
	maxTurns int
}

func NewManager(store statex.Store, cfg Config) (*Manager, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	maxTurns := cfg.MaxConversationTurns
	if maxTurns <= 0 {
		maxTurns = 50
	}
	return &Manager{
		sessions: make(map[string]*history),
		store:    store,
		maxTurns: maxTurns,
	}, nil
}

// get returns the cached history, hydrating from storage on a miss.
// Callers must hold m.mu.
func (m *Manager) get(ctx context.Context, sessionID string) *history {
	if h, ok := m.sessions[sessionID]; ok {
		return h
	}

	h := &history{}
	session, err := m.store.Load(ctx, sessionID)
	switch {
	case err == nil:
		for _, turn := range session.Turns {
			if turn.UserMessage != "" {
				h.messages = append(h.messages, message{role: roleUser, content: turn.UserMessage})
			}
			if turn.AssistantReply != "" {
				h.messages = append(h.messages, message{role: roleAssistant, content: turn.AssistantReply})
			}
		}
		h.pairs = len(session.Turns)
		log.Info().Str("session_id", sessionID).Int("turns", h.pairs).Msg("session memory hydrated from storage")
	case errors.Is(err, statex.ErrSessionNotFound):
		log.Debug().Str("session_id", sessionID).Msg("new session memory")
	default:
		log.Warn().Str("session_id", sessionID).Err(err).Msg("memory hydration failed, starting empty")
	}

	m.sessions[sessionID] = h
	return h
}

// Append records one completed exchange. Crossing the configured turn
// ceiling is advisory only: it logs, nothing is truncated.
func (m *Manager) Append(ctx context.Context, sessionID, userMessage, assistantReply string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := m.get(ctx, sessionID)
	h.messages = append(h.messages,
		message{role: roleUser, content: userMessage},
		message{role: roleAssistant, content: assistantReply},
	)
	h.pairs++

	if h.pairs >= m.maxTurns {
		log.Warn().Str("session_id", sessionID).Int("count", h.pairs).Msg("session reached soft turn ceiling")
	}
}

// ConversationText renders the history as alternating prompt lines.
func (m *Manager) ConversationText(ctx context.Context, sessionID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := m.get(ctx, sessionID)
	lines := make([]string, 0, len(h.messages))
	for _, msg := range h.messages {
		switch msg.role {
		case roleUser:
			lines = append(lines, "User: "+msg.content)
		case roleAssistant:
			lines = append(lines, "Assistant: "+msg.content)
		}
	}
	return strings.Join(lines, "\n")
}

// Count returns the number of completed exchanges.
func (m *Manager) Count(ctx context.Context, sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(ctx, sessionID).pairs
}

// Reset drops the cached history for a session. Durable storage is
// untouched.
func (m *Manager) Reset(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; ok {
		log.Info().Str("session_id", sessionID).Msg("clearing session memory")
		delete(m.sessions, sessionID)
	}
}
