package conversationnode

import (
	"context"
	"fmt"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	"github.com/rs/zerolog/log"
)

// SynthesizeSpeech renders the reply to audio when the caller asked for
// it. Best effort: failures leave the response text-only.
func SynthesizeSpeech(ctx context.Context, in *GraphState, synthesizer contractx.Synthesizer) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if !in.AudioResponse || synthesizer == nil {
		return in, nil
	}

	audio, err := synthesizer.Synthesize(ctx, in.Reply, in.Language.Detected)
	if err != nil {
		log.Warn().Str("session_id", in.SessionID).Err(err).Msg("speech synthesis failed")
		return in, nil
	}

	in.Audio = audio
	return in, nil
}
