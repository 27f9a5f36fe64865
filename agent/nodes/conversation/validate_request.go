package conversationnode

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	extractx "github.com/Chispasgg/personal-ai-agent-api/agent/extract"
	statex "github.com/Chispasgg/personal-ai-agent-api/agent/state"
)

var (
	ErrInvalidSession = errors.New("session id must be at least 3 characters")
	ErrInvalidMessage = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message exceeds the maximum length")
)

type GraphInput struct {
	SessionID     string
	Text          string
	LanguageHint  string
	AudioResponse bool
}

type GraphOutput struct {
	Response contractx.ChatResponse
}

type GraphState struct {
	SessionID     string
	Text          string
	LanguageHint  string
	AudioResponse bool
	Now           time.Time

	Language   contractx.LanguageData
	Sentiment  contractx.Sentiment
	Polarity   float64
	TurnNumber int
	History    string

	Result extractx.Result
	Delta  extractx.ExtractedData

	Context []string

	Reply        string
	SummaryReady bool
	Summary      string
	Audio        []byte
}

func ValidateRequest(in GraphInput, maxMessageLength int, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if len(sessionID) < statex.MinSessionIDLength {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSession, in.SessionID)
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}
	if maxMessageLength > 0 && len(text) > maxMessageLength {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLong, len(text), maxMessageLength)
	}

	return &GraphState{
		SessionID:     sessionID,
		Text:          text,
		LanguageHint:  strings.TrimSpace(in.LanguageHint),
		AudioResponse: in.AudioResponse,
		Now:           nowFn().UTC(),
	}, nil
}
