package conversationnode

import (
	"context"
	"fmt"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	memoryx "github.com/Chispasgg/personal-ai-agent-api/agent/memory"
	statex "github.com/Chispasgg/personal-ai-agent-api/agent/state"
)

// RecordTurn appends the completed exchange to the durable session
// record and, only once that write succeeds, to the volatile history,
// so a failed save never advances the turn counter. The stored delta
// holds only the values this turn contributed.
func RecordTurn(
	ctx context.Context,
	in *GraphState,
	memory *memoryx.Manager,
	sessions *statex.Service,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	turn := statex.ConversationTurn{
		TurnNumber:             in.TurnNumber,
		Timestamp:              in.Now,
		UserMessage:            in.Text,
		AssistantReply:         in.Reply,
		Language:               in.Language.Detected,
		Sentiment:              in.Sentiment,
		SentimentPolarityValue: in.Polarity,
		ExtractedDelta:         in.Delta,
	}
	if err := sessions.AddTurn(ctx, in.SessionID, in.Language.Detected, turn); err != nil {
		return nil, fmt.Errorf("record turn %d: %w", in.TurnNumber, err)
	}
	memory.Append(ctx, in.SessionID, in.Text, in.Reply)
	return in, nil
}
