package contract

import "context"

// Retriever serves ranked knowledge-base passages. An empty slice means
// no index or a degraded lookup; callers treat both the same way.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]string, error)
}

// SentimentAnalyzer scores text into a three-way label plus a polarity
// in [-1, 1].
type SentimentAnalyzer interface {
	Analyze(text string) (Sentiment, float64)
}

// Translator detects the language of a message and produces an English
// copy for sentiment scoring.
type Translator interface {
	DetectAndTranslate(ctx context.Context, text string) (LanguageData, error)
}

// Synthesizer renders reply text to audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, language string) ([]byte, error)
}

// Transcriber converts audio bytes to text. The default implementation
// is a stub.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
