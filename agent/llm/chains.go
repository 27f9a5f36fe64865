package llm

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	extractx "github.com/Chispasgg/personal-ai-agent-api/agent/extract"
	promptx "github.com/Chispasgg/personal-ai-agent-api/agent/prompt"
	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

const empathySuffix = "\n\nIMPORTANT: The user seems frustrated. Be extra empathetic and helpful."

// ChainManager owns the compiled prompt->model pipelines for reply
// generation, structured extraction, and summarization. Graphs are
// compiled once at construction and safe for concurrent invocation.
type ChainManager struct {
	replyRunner   compose.Runnable[map[string]any, *schema.Message]
	extractRunner compose.Runnable[map[string]any, *schema.Message]
	summaryRunner compose.Runnable[map[string]any, *schema.Message]
}

func NewChainManager(ctx context.Context, chatModel einomodel.BaseChatModel) (*ChainManager, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}

	replyRunner, err := compileTextGraph(ctx, chatModel, "chains.reply",
		schema.SystemMessage("{system_prompt}"),
		schema.UserMessage("Context:\n{context}\n\nUser: {message}\n\nAssistant:"),
	)
	if err != nil {
		return nil, err
	}

	extractRunner, err := compileTextGraph(ctx, chatModel, "chains.extraction",
		schema.UserMessage(promptx.Extraction()),
	)
	if err != nil {
		return nil, err
	}

	summaryRunner, err := compileTextGraph(ctx, chatModel, "chains.summary",
		schema.UserMessage(promptx.Summary()),
	)
	if err != nil {
		return nil, err
	}

	return &ChainManager{
		replyRunner:   replyRunner,
		extractRunner: extractRunner,
		summaryRunner: summaryRunner,
	}, nil
}

// GenerateReply produces the assistant reply for one turn. Negative
// sentiment appends an explicit empathetic-tone instruction.
func (c *ChainManager) GenerateReply(
	ctx context.Context,
	message string,
	conversationContext string,
	language string,
	sentiment contractx.Sentiment,
) (string, error) {
	systemPrompt := promptx.System(language)
	if sentiment == contractx.SentimentNegative {
		systemPrompt += empathySuffix
	}

	out, err := c.replyRunner.Invoke(ctx, map[string]any{
		"system_prompt": systemPrompt,
		"context":       conversationContext,
		"message":       message,
	})
	if err != nil {
		return "", fmt.Errorf("%w: reply generation: %v", contractx.ErrModelInvoke, err)
	}

	reply := strings.TrimSpace(out.Content)
	if reply == "" {
		return "", fmt.Errorf("%w: model returned empty reply", contractx.ErrModelInvoke)
	}
	return reply, nil
}

// ExtractRaw asks the model for a JSON object with the structured
// fields and returns the raw response text. Parsing and validation
// happen at the extraction boundary, where failures are absorbed.
func (c *ChainManager) ExtractRaw(ctx context.Context, message, history string) (string, error) {
	out, err := c.extractRunner.Invoke(ctx, map[string]any{
		"message": message,
		"history": history,
	})
	if err != nil {
		return "", fmt.Errorf("%w: extraction invoke: %v", contractx.ErrModelInvoke, err)
	}
	return out.Content, nil
}

// GenerateSummary renders the closing summary from the full dialogue
// and the cumulative fields.
func (c *ChainManager) GenerateSummary(
	ctx context.Context,
	conversation string,
	data extractx.ExtractedData,
	language string,
) (string, error) {
	out, err := c.summaryRunner.Invoke(ctx, map[string]any{
		"language":     promptx.LanguageName(language),
		"conversation": conversation,
		"order_id":     fieldOrNA(data.OrderID),
		"category":     enumOrNA(data.Category),
		"description":  fieldOrNA(data.Description),
		"urgency":      enumOrNA(data.Urgency),
	})
	if err != nil {
		return "", fmt.Errorf("%w: summary generation: %v", contractx.ErrModelInvoke, err)
	}
	return strings.TrimSpace(out.Content), nil
}

func fieldOrNA(v *string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "N/A"
	}
	return *v
}

func enumOrNA[T ~string](v *T) string {
	if v == nil {
		return "N/A"
	}
	return string(*v)
}

func compileTextGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	graphName string,
	messages ...schema.MessagesTemplate,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(schema.FString, messages...)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile %s graph: %w", graphName, err)
	}
	return runner, nil
}
