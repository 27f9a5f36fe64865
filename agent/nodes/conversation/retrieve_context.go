package conversationnode

import (
	"context"
	"fmt"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	"github.com/rs/zerolog/log"
)

// RetrieveContext queries the knowledge base for the user's message.
// Best effort: without a retriever, or on any failure, the turn simply
// carries no knowledge-base context.
func RetrieveContext(
	ctx context.Context,
	in *GraphState,
	retriever contractx.Retriever,
	topK int,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if retriever == nil {
		return in, nil
	}

	docs, err := retriever.Search(ctx, in.Text, topK)
	if err != nil {
		log.Warn().Str("session_id", in.SessionID).Err(err).Msg("knowledge base query failed")
		return in, nil
	}
	if len(docs) > 0 {
		log.Debug().Str("session_id", in.SessionID).Int("docs", len(docs)).Msg("retrieved knowledge base context")
	}

	in.Context = docs
	return in, nil
}
