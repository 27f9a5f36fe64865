package extraction

import (
	"context"
	"encoding/json"
	"strings"

	extractx "github.com/Chispasgg/personal-ai-agent-api/agent/extract"
	"github.com/rs/zerolog/log"
)

// RawExtractor produces the model's raw JSON response for one message.
type RawExtractor interface {
	ExtractRaw(ctx context.Context, message, history string) (string, error)
}

type Config struct {
	MinDescriptionLength int `envconfig:"MIN_DESCRIPTION_LENGTH" default:"10"`
}

// Service turns free-form user messages into validated structured
// fields. Extraction is best effort: any model or parse failure
// degrades to "no new information" so a turn never fails on it.
type Service struct {
	extractor      RawExtractor
	minDescription int
}

func NewService(extractor RawExtractor, cfg Config) *Service {
	minDescription := cfg.MinDescriptionLength
	if minDescription <= 0 {
		minDescription = extractx.DefaultMinDescriptionLength
	}
	return &Service{extractor: extractor, minDescription: minDescription}
}

// Extract merges whatever the current message adds on top of the
// already collected fields. It returns the cumulative result and the
// per-turn delta of newly accepted values.
func (s *Service) Extract(
	ctx context.Context,
	message string,
	history string,
	current extractx.ExtractedData,
) (extractx.Result, extractx.ExtractedData) {
	raw, err := s.extractor.ExtractRaw(ctx, message, history)
	if err != nil {
		log.Warn().Err(err).Msg("field extraction failed, keeping previous data")
		return extractx.NewResult(current, nil), extractx.ExtractedData{}
	}

	draft, err := parseDraft(raw)
	if err != nil {
		log.Warn().Err(err).Str("raw", raw).Msg("unparseable extraction response, keeping previous data")
		return extractx.NewResult(current, nil), extractx.ExtractedData{}
	}

	delta, fieldErrors := draft.Sanitize(s.minDescription)
	for field, reason := range fieldErrors {
		log.Debug().Str("field", field).Str("reason", reason).Msg("extracted value rejected")
	}

	merged := current.Merge(delta)
	return extractx.NewResult(merged, fieldErrors), delta
}

func parseDraft(raw string) (extractx.Draft, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return extractx.Draft{}, err
	}
	return extractx.Draft{
		OrderID:     stringField(payload, "order_id"),
		Category:    stringField(payload, "category"),
		Description: stringField(payload, "description"),
		Urgency:     stringField(payload, "urgency"),
	}, nil
}

// stripFences removes a surrounding markdown code fence, which models
// often wrap JSON responses in despite instructions.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func stringField(payload map[string]any, key string) *string {
	value, ok := payload[key]
	if !ok || value == nil {
		return nil
	}
	text, ok := value.(string)
	if !ok {
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return &text
}
