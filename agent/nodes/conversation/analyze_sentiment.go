package conversationnode

import (
	"fmt"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
)

// AnalyzeSentiment scores the translated text so the lexicon sees the
// pipeline's working language.
func AnalyzeSentiment(in *GraphState, analyzer contractx.SentimentAnalyzer) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	text := in.Language.Translated
	if text == "" {
		text = in.Text
	}

	in.Sentiment, in.Polarity = analyzer.Analyze(text)
	return in, nil
}
