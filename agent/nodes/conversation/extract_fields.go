package conversationnode

import (
	"context"
	"fmt"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	extractx "github.com/Chispasgg/personal-ai-agent-api/agent/extract"
	extractionx "github.com/Chispasgg/personal-ai-agent-api/agent/extraction"
)

// ExtractFields merges whatever the current message contributes on top
// of the fields already collected for the session.
func ExtractFields(
	ctx context.Context,
	in *GraphState,
	extractor *extractionx.Service,
	current extractx.ExtractedData,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.Result, in.Delta = extractor.Extract(ctx, in.Text, in.History, current)
	return in, nil
}
