package conversationnode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	llmx "github.com/Chispasgg/personal-ai-agent-api/agent/llm"
	memoryx "github.com/Chispasgg/personal-ai-agent-api/agent/memory"
	statex "github.com/Chispasgg/personal-ai-agent-api/agent/state"
	"github.com/rs/zerolog/log"
)

// MaybeFinalize closes the session the first time all four fields are
// present. Sessions that are already finalized keep chatting and echo
// the stored summary; the record is never rewritten.
func MaybeFinalize(
	ctx context.Context,
	in *GraphState,
	sessions *statex.Service,
	memory *memoryx.Manager,
	chains *llmx.ChainManager,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if !in.Result.IsComplete {
		return in, nil
	}

	session, err := sessions.Load(ctx, in.SessionID)
	if err != nil && !errors.Is(err, statex.ErrSessionNotFound) {
		return nil, err
	}
	if session.Finalized() {
		in.SummaryReady = true
		in.Summary = session.Summary
		return in, nil
	}

	conversation := memory.ConversationText(ctx, in.SessionID)
	summary, err := chains.GenerateSummary(ctx, conversation, in.Result.Extracted, in.Language.Detected)
	if err != nil {
		// The session stays open so the next turn retries the summary.
		log.Warn().Str("session_id", in.SessionID).Err(err).Msg("summary generation failed")
		in.SummaryReady = true
		return in, nil
	}

	if err := sessions.Finalize(ctx, in.SessionID, in.Result.Extracted, summary); err != nil {
		log.Error().Str("session_id", in.SessionID).Err(err).Msg("session finalize failed")
	}

	in.SummaryReady = true
	in.Summary = summary
	return in, nil
}
