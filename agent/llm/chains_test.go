package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	extractx "github.com/Chispasgg/personal-ai-agent-api/agent/extract"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type fakeChatModel struct {
	responses []*schema.Message
	err       error
	idx       int
	inputs    [][]*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func TestGenerateReplySuccess(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{{Content: "  Sure, I can help with that.  "}},
	}

	manager, err := NewChainManager(context.Background(), fake)
	if err != nil {
		t.Fatalf("NewChainManager() error = %v", err)
	}

	reply, err := manager.GenerateReply(context.Background(), "my package is late", "User: hi\nAssistant: hello", "en", contractx.SentimentNeutral)
	if err != nil {
		t.Fatalf("GenerateReply() error = %v", err)
	}
	if reply != "Sure, I can help with that." {
		t.Fatalf("unexpected reply: %q", reply)
	}

	if len(fake.inputs) != 1 {
		t.Fatalf("expected one model call, got %d", len(fake.inputs))
	}
	system := fake.inputs[0][0]
	if system.Role != schema.System {
		t.Fatalf("expected system message first, got role %s", system.Role)
	}
	if !strings.Contains(system.Content, "English") {
		t.Fatalf("system prompt should carry the language name, got %q", system.Content)
	}
	if strings.Contains(system.Content, "frustrated") {
		t.Fatalf("neutral sentiment must not add the empathy instruction")
	}
}

func TestGenerateReplyNegativeSentimentAddsEmpathy(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{{Content: "I am sorry about this."}},
	}

	manager, err := NewChainManager(context.Background(), fake)
	if err != nil {
		t.Fatalf("NewChainManager() error = %v", err)
	}

	if _, err := manager.GenerateReply(context.Background(), "this is terrible", "", "es", contractx.SentimentNegative); err != nil {
		t.Fatalf("GenerateReply() error = %v", err)
	}

	system := fake.inputs[0][0]
	if !strings.Contains(system.Content, "Be extra empathetic and helpful.") {
		t.Fatalf("negative sentiment should append the empathy instruction, got %q", system.Content)
	}
}

func TestGenerateReplyModelFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{err: errors.New("upstream timeout")}

	manager, err := NewChainManager(context.Background(), fake)
	if err != nil {
		t.Fatalf("NewChainManager() error = %v", err)
	}

	_, err = manager.GenerateReply(context.Background(), "hello", "", "es", contractx.SentimentNeutral)
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestGenerateReplyEmptyContent(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{responses: []*schema.Message{{Content: "   "}}}

	manager, err := NewChainManager(context.Background(), fake)
	if err != nil {
		t.Fatalf("NewChainManager() error = %v", err)
	}

	_, err = manager.GenerateReply(context.Background(), "hello", "", "es", contractx.SentimentNeutral)
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke for empty reply, got %v", err)
	}
}

func TestExtractRawPassesMessageAndHistory(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{{Content: `{"order_id":"ABC123456"}`}},
	}

	manager, err := NewChainManager(context.Background(), fake)
	if err != nil {
		t.Fatalf("NewChainManager() error = %v", err)
	}

	raw, err := manager.ExtractRaw(context.Background(), "my order is abc123456", "User: hi")
	if err != nil {
		t.Fatalf("ExtractRaw() error = %v", err)
	}
	if raw != `{"order_id":"ABC123456"}` {
		t.Fatalf("unexpected raw extraction: %q", raw)
	}

	prompt := fake.inputs[0][0].Content
	if !strings.Contains(prompt, "my order is abc123456") {
		t.Fatalf("extraction prompt should embed the message, got %q", prompt)
	}
	if !strings.Contains(prompt, "User: hi") {
		t.Fatalf("extraction prompt should embed the history, got %q", prompt)
	}
}

func TestGenerateSummaryFillsMissingFieldsWithNA(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{{Content: "Resumen final."}},
	}

	manager, err := NewChainManager(context.Background(), fake)
	if err != nil {
		t.Fatalf("NewChainManager() error = %v", err)
	}

	orderID := "ABC123456"
	category := extractx.CategoryShipping
	data := extractx.ExtractedData{OrderID: &orderID, Category: &category}

	summary, err := manager.GenerateSummary(context.Background(), "User: hola", data, "es")
	if err != nil {
		t.Fatalf("GenerateSummary() error = %v", err)
	}
	if summary != "Resumen final." {
		t.Fatalf("unexpected summary: %q", summary)
	}

	prompt := fake.inputs[0][0].Content
	if !strings.Contains(prompt, "ABC123456") {
		t.Fatalf("summary prompt should include the order id, got %q", prompt)
	}
	if !strings.Contains(prompt, "shipping") {
		t.Fatalf("summary prompt should include the category, got %q", prompt)
	}
	if !strings.Contains(prompt, "N/A") {
		t.Fatalf("absent fields should render as N/A, got %q", prompt)
	}
	if !strings.Contains(prompt, "Spanish") {
		t.Fatalf("summary prompt should name the language, got %q", prompt)
	}
}

func TestNewChainManagerNilModel(t *testing.T) {
	t.Parallel()

	if _, err := NewChainManager(context.Background(), nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for nil model, got %v", err)
	}
}
