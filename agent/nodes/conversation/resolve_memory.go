package conversationnode

import (
	"context"
	"fmt"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	memoryx "github.com/Chispasgg/personal-ai-agent-api/agent/memory"
)

// ResolveMemory assigns the turn number and snapshots the history text
// before this turn is appended.
func ResolveMemory(ctx context.Context, in *GraphState, memory *memoryx.Manager) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.TurnNumber = memory.Count(ctx, in.SessionID) + 1
	in.History = memory.ConversationText(ctx, in.SessionID)
	return in, nil
}
