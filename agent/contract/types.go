package contract

import (
	extractx "github.com/Chispasgg/personal-ai-agent-api/agent/extract"
)

type Sentiment string

const (
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentPositive Sentiment = "positive"
)

// ChatRequest is the inbound message for one conversation turn.
type ChatRequest struct {
	SessionID     string  `json:"session_id"`
	Message       string  `json:"message"`
	Language      *string `json:"language,omitempty"`
	AudioResponse bool    `json:"audio_response,omitempty"`
}

// ChatResponse is the full per-turn result returned to the caller.
type ChatResponse struct {
	Reply           string                `json:"reply"`
	Language        string                `json:"language"`
	Sentiment       Sentiment             `json:"sentiment"`
	Extracted       extractx.ExtractedData `json:"extracted"`
	MissingFields   []string              `json:"missing_fields"`
	SummaryReady    bool                  `json:"summary_ready"`
	Summary         string                `json:"summary,omitempty"`
	SessionID       string                `json:"session_id"`
	TurnNumber      int                   `json:"turn_number"`
	SoundFileBase64 string                `json:"sound_file_base64,omitempty"`
}

// LanguageData is the outcome of language detection plus English
// normalization for sentiment scoring.
type LanguageData struct {
	Original   string
	Detected   string
	Translated string
	Confidence float64
}
