package conversationnode

import (
	"encoding/base64"
	"fmt"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
)

func FinalizeResponse(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	response := contractx.ChatResponse{
		Reply:         in.Reply,
		Language:      in.Language.Detected,
		Sentiment:     in.Sentiment,
		Extracted:     in.Result.Extracted,
		MissingFields: in.Result.MissingFields,
		SummaryReady:  in.SummaryReady,
		Summary:       in.Summary,
		SessionID:     in.SessionID,
		TurnNumber:    in.TurnNumber,
	}
	if len(in.Audio) > 0 {
		response.SoundFileBase64 = base64.StdEncoding.EncodeToString(in.Audio)
	}
	return GraphOutput{Response: response}, nil
}
