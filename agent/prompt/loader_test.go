package prompt

import (
	"strings"
	"testing"
)

func TestSystemRendersLanguageName(t *testing.T) {
	t.Parallel()

	got := System("en")
	if !strings.Contains(got, "Answer in English language.") {
		t.Fatalf("system prompt missing language name: %q", got)
	}
	if strings.Contains(got, "[USER_LANGUAGE]") {
		t.Fatal("language token not replaced")
	}
}

func TestLanguageNameFallback(t *testing.T) {
	t.Parallel()

	if got := LanguageName("xx"); got != "Spanish" {
		t.Fatalf("LanguageName(xx) = %q, want Spanish", got)
	}
	if got := LanguageName(" ES "); got != "Spanish" {
		t.Fatalf("LanguageName(ES) = %q, want Spanish", got)
	}
}

func TestSummaryKeepsPlaceholders(t *testing.T) {
	t.Parallel()

	got := Summary()
	for _, placeholder := range []string{"{language}", "{conversation}", "{order_id}", "{category}", "{description}", "{urgency}"} {
		if !strings.Contains(got, placeholder) {
			t.Fatalf("summary prompt missing %s: %q", placeholder, got)
		}
	}
}

func TestExtractionKeepsPlaceholders(t *testing.T) {
	t.Parallel()

	got := Extraction()
	if !strings.Contains(got, "{message}") || !strings.Contains(got, "{history}") {
		t.Fatalf("extraction prompt missing placeholders: %q", got)
	}
}
