package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
	"github.com/rs/zerolog/log"
)

type Config struct {
	URL                string        `split_words:"true"`
	APIKey             string        `split_words:"true"`
	Timeout            time.Duration `split_words:"true" default:"10s"`
	DefaultLanguage    string        `split_words:"true" default:"es"`
	TargetLanguage     string        `split_words:"true" default:"en"`
	SupportedLanguages string        `split_words:"true" default:"es,en"`
}

// Client detects the language of a message and translates it into the
// pipeline's working language through a LibreTranslate-compatible API.
// Without a configured URL every message passes through untouched and
// is assumed to be in the default language.
type Client struct {
	baseURL         string
	apiKey          string
	defaultLanguage string
	targetLanguage  string
	supported       map[string]bool
	httpClient      *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL != "" {
		if _, err := url.ParseRequestURI(baseURL); err != nil {
			return nil, err
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	defaultLanguage := strings.TrimSpace(cfg.DefaultLanguage)
	if defaultLanguage == "" {
		defaultLanguage = "es"
	}
	targetLanguage := strings.TrimSpace(cfg.TargetLanguage)
	if targetLanguage == "" {
		targetLanguage = "en"
	}

	supported := make(map[string]bool)
	for _, lang := range strings.Split(cfg.SupportedLanguages, ",") {
		if trimmed := strings.TrimSpace(lang); trimmed != "" {
			supported[trimmed] = true
		}
	}

	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		apiKey:          strings.TrimSpace(cfg.APIKey),
		defaultLanguage: defaultLanguage,
		targetLanguage:  targetLanguage,
		supported:       supported,
		httpClient:      &http.Client{Timeout: timeout},
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// DetectAndTranslate resolves the message's language. Detection
// failures, unsupported languages, and very short texts all fall back
// to the default language with the text untouched.
func (c *Client) DetectAndTranslate(ctx context.Context, text string) (contractx.LanguageData, error) {
	fallback := contractx.LanguageData{
		Original:   text,
		Detected:   c.defaultLanguage,
		Translated: text,
		Confidence: 0,
	}

	if c.baseURL == "" || len(strings.TrimSpace(text)) < 3 {
		return fallback, nil
	}

	detected, confidence, err := c.detect(ctx, text)
	if err != nil {
		log.Warn().Err(err).Msg("language detection failed, using default language")
		return fallback, nil
	}
	if !c.supported[detected] {
		return fallback, nil
	}

	translated := text
	if detected != c.targetLanguage {
		translated, err = c.translate(ctx, text, detected)
		if err != nil {
			log.Warn().Err(err).Str("language", detected).Msg("translation failed, keeping original text")
			translated = text
		}
	}

	return contractx.LanguageData{
		Original:   text,
		Detected:   detected,
		Translated: translated,
		Confidence: confidence,
	}, nil
}

func (c *Client) detect(ctx context.Context, text string) (string, float64, error) {
	payload := map[string]string{"q": text}
	if c.apiKey != "" {
		payload["api_key"] = c.apiKey
	}

	var detections []struct {
		Language   string  `json:"language"`
		Confidence float64 `json:"confidence"`
	}
	if err := c.post(ctx, "/detect", payload, &detections); err != nil {
		return "", 0, err
	}
	if len(detections) == 0 {
		return "", 0, fmt.Errorf("empty detection response")
	}
	return detections[0].Language, detections[0].Confidence, nil
}

func (c *Client) translate(ctx context.Context, text, source string) (string, error) {
	payload := map[string]string{
		"q":      text,
		"source": source,
		"target": c.targetLanguage,
		"format": "text",
	}
	if c.apiKey != "" {
		payload["api_key"] = c.apiKey
	}

	var result struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := c.post(ctx, "/translate", payload, &result); err != nil {
		return "", err
	}
	if result.TranslatedText == "" {
		return "", fmt.Errorf("empty translation response")
	}
	return result.TranslatedText, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
