package conversationnode

import (
	"context"
	"fmt"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	"github.com/rs/zerolog/log"
)

// DetectLanguage resolves the turn's language. Detection always runs
// when a translator is configured so sentiment scores translated text;
// a caller hint only replaces the default when detection is
// unavailable or fails.
func DetectLanguage(
	ctx context.Context,
	in *GraphState,
	translator contractx.Translator,
	defaultLanguage string,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	fallbackLanguage := defaultLanguage
	if in.LanguageHint != "" {
		fallbackLanguage = in.LanguageHint
	}
	fallback := contractx.LanguageData{
		Original:   in.Text,
		Detected:   fallbackLanguage,
		Translated: in.Text,
		Confidence: 0,
	}

	if translator == nil {
		in.Language = fallback
		return in, nil
	}

	data, err := translator.DetectAndTranslate(ctx, in.Text)
	if err != nil {
		log.Warn().Str("session_id", in.SessionID).Err(err).Msg("language detection failed, using default")
		in.Language = fallback
		return in, nil
	}

	in.Language = data
	return in, nil
}
