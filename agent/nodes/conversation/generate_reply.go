package conversationnode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	llmx "github.com/Chispasgg/personal-ai-agent-api/agent/llm"
)

// GenerateReply produces the assistant's answer for the turn. This is
// the one model call the turn cannot survive without: a failure aborts
// the graph before anything is recorded.
func GenerateReply(ctx context.Context, in *GraphState, chains *llmx.ChainManager) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	context := in.History
	if len(in.Context) > 0 {
		context += "\n\nRelevant information from knowledge base:\n" + strings.Join(in.Context, "\n\n")
	}
	if len(in.Result.MissingFields) > 0 {
		context += "\n\nMissing required fields: " + strings.Join(in.Result.MissingFields, ", ")
	}

	reply, err := chains.GenerateReply(ctx, in.Text, context, in.Language.Detected, in.Sentiment)
	if err != nil {
		return nil, err
	}

	in.Reply = reply
	return in, nil
}
