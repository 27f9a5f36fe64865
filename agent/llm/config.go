package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"

	openRouterBaseURL = "https://openrouter.ai/api/v1"
)

type Config struct {
	Provider           string        `split_words:"true" default:"openai"`
	BaseURL            string        `split_words:"true"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `split_words:"true" default:"gpt-4o-mini"`
	MaxCompletionToken int           `split_words:"true" default:"1000"`
	Temperature        float32       `split_words:"true" default:"0.7"`
	Timeout            time.Duration `split_words:"true" default:"30s"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: llm api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: llm model is required", contractx.ErrValidation)
	}
	if _, ok := builders[normalizeProvider(c.Provider)]; !ok {
		return fmt.Errorf("%w: unsupported llm provider %q", contractx.ErrValidation, c.Provider)
	}
	return nil
}

type builderFunc func(ctx context.Context, cfg Config) (model.BaseChatModel, error)

// builders maps provider names to chat-model constructors. Resolution
// happens once at startup; there is no runtime provider switching.
var builders = map[string]builderFunc{
	ProviderOpenAI:     newOpenAICompatibleModel(""),
	ProviderOpenRouter: newOpenAICompatibleModel(openRouterBaseURL),
}

func normalizeProvider(provider string) string {
	p := strings.ToLower(strings.TrimSpace(provider))
	if p == "" {
		return ProviderOpenAI
	}
	return p
}

// NewChatModel builds the configured completion backend.
func NewChatModel(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	build := builders[normalizeProvider(cfg.Provider)]
	return build(ctx, cfg)
}

func newOpenAICompatibleModel(defaultBaseURL string) builderFunc {
	return func(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
		baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
		if baseURL == "" {
			baseURL = defaultBaseURL
		}

		maxTokens := cfg.MaxCompletionToken
		temperature := cfg.Temperature

		conf := &openaimodel.ChatModelConfig{
			BaseURL:     baseURL,
			APIKey:      strings.TrimSpace(cfg.APIKey),
			Model:       strings.TrimSpace(cfg.Model),
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
			Timeout:     cfg.Timeout,
		}

		m, err := openaimodel.NewChatModel(ctx, conf)
		if err != nil {
			return nil, fmt.Errorf("%w: create chat model: %v", contractx.ErrModelInvoke, err)
		}
		return m, nil
	}
}
