package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://translate.google.com/translate_tts"

// maxFragmentLength is the longest text the upstream endpoint accepts
// in a single request.
const maxFragmentLength = 100

type Config struct {
	Enabled bool          `split_words:"true" default:"false"`
	BaseURL string        `split_words:"true"`
	Timeout time.Duration `split_words:"true" default:"15s"`
}

// Synthesizer renders reply text to MP3 audio through the public
// Google Translate speech endpoint. Long texts are synthesized in
// fragments and concatenated, which works because the endpoint
// returns standalone MP3 streams.
type Synthesizer struct {
	enabled    bool
	baseURL    string
	httpClient *http.Client
}

func NewSynthesizer(cfg Config) *Synthesizer {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Synthesizer{
		enabled:    cfg.Enabled,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *Synthesizer) Enabled() bool { return s.enabled }

// Synthesize returns MP3 bytes for the text, or nil when synthesis is
// disabled or the text is empty.
func (s *Synthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if !s.enabled {
		return nil, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if language == "" {
		language = "es"
	}

	var audio []byte
	for _, fragment := range splitFragments(text, maxFragmentLength) {
		data, err := s.fetch(ctx, fragment, language)
		if err != nil {
			return nil, err
		}
		audio = append(audio, data...)
	}
	return audio, nil
}

func (s *Synthesizer) fetch(ctx context.Context, text, language string) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("q", text)
	params.Set("tl", language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech endpoint returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// splitFragments breaks text into pieces of at most limit characters,
// cutting at word boundaries where possible.
func splitFragments(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var fragments []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+1+len(word) > limit {
			fragments = append(fragments, current.String())
			current.Reset()
		}
		if len(word) > limit {
			for len(word) > limit {
				fragments = append(fragments, word[:limit])
				word = word[limit:]
			}
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		fragments = append(fragments, current.String())
	}
	return fragments
}

// NoOpTranscriber is the speech-to-text stub used until a real
// provider is wired in.
type NoOpTranscriber struct{}

func (NoOpTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return "[Audio transcription not available]", nil
}
