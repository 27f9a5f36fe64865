package state

import (
	"errors"
	"fmt"
	"time"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	extractx "github.com/Chispasgg/personal-ai-agent-api/agent/extract"
)

// ConversationTurn is one user/assistant exchange. Immutable once
// appended; extracted_delta holds the validated values offered by that
// turn, not the cumulative snapshot.
type ConversationTurn struct {
	TurnNumber             int                    `json:"turn_number"`
	Timestamp              time.Time              `json:"timestamp"`
	UserMessage            string                 `json:"user_message"`
	AssistantReply         string                 `json:"assistant_reply"`
	Language               string                 `json:"language"`
	Sentiment              contractx.Sentiment    `json:"sentiment"`
	SentimentPolarityValue float64                `json:"sentiment_polarity_value"`
	ExtractedDelta         extractx.ExtractedData `json:"extracted_delta"`
}

// ConversationSession is the durable per-session record. The JSON shape
// is a stable contract read by external tooling.
type ConversationSession struct {
	SessionID      string                  `json:"session_id"`
	StartTime      time.Time               `json:"start_time"`
	EndTime        *time.Time              `json:"end_time,omitempty"`
	Language       string                  `json:"language"`
	Turns          []ConversationTurn      `json:"turns"`
	FinalExtracted *extractx.ExtractedData `json:"final_extracted,omitempty"`
	Summary        string                  `json:"summary,omitempty"`
	TotalTurns     int                     `json:"total_turns"`
}

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNilSession      = errors.New("session is nil")
	ErrInvalidSession  = errors.New("session id is invalid")
)

const MinSessionIDLength = 3

func NewConversationSession(sessionID, language string, now time.Time) *ConversationSession {
	return &ConversationSession{
		SessionID: sessionID,
		StartTime: now.UTC(),
		Language:  language,
		Turns:     []ConversationTurn{},
	}
}

// AppendTurn adds a turn and keeps total_turns mirroring the list.
func (s *ConversationSession) AppendTurn(turn ConversationTurn) {
	s.Turns = append(s.Turns, turn)
	s.TotalTurns = len(s.Turns)
}

// Finalized reports whether the draft->complete transition already
// happened for this session.
func (s *ConversationSession) Finalized() bool {
	return s != nil && s.EndTime != nil
}

// CumulativeExtracted rebuilds the merged session-wide snapshot. The
// final snapshot wins when set; otherwise the per-turn deltas are
// folded in append order.
func (s *ConversationSession) CumulativeExtracted() extractx.ExtractedData {
	if s == nil {
		return extractx.ExtractedData{}
	}
	if s.FinalExtracted != nil {
		return *s.FinalExtracted
	}
	var merged extractx.ExtractedData
	for _, turn := range s.Turns {
		merged = merged.Merge(turn.ExtractedDelta)
	}
	return merged
}

func (s *ConversationSession) Validate() error {
	if s == nil {
		return ErrNilSession
	}
	if len(s.SessionID) < MinSessionIDLength {
		return fmt.Errorf("%w: %q", ErrInvalidSession, s.SessionID)
	}
	prev := 0
	for _, turn := range s.Turns {
		if turn.TurnNumber <= prev {
			return fmt.Errorf("turn numbers must be strictly increasing: %d after %d", turn.TurnNumber, prev)
		}
		prev = turn.TurnNumber
	}
	return nil
}
