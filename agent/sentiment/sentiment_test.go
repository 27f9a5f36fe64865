package sentiment

import (
	"testing"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
)

func TestAnalyzeNegativeEnglish(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(Config{})

	label, polarity := analyzer.Analyze("this is terrible, I am furious")
	if label != contractx.SentimentNegative {
		t.Fatalf("Analyze() label = %s, want negative", label)
	}
	if polarity >= -0.3 {
		t.Fatalf("Analyze() polarity = %f, want below -0.3", polarity)
	}
}

func TestAnalyzeNegativeSpanish(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(Config{})

	label, _ := analyzer.Analyze("el pedido llega tarde y estoy muy frustrado")
	if label != contractx.SentimentNegative {
		t.Fatalf("Analyze() label = %s, want negative", label)
	}
}

func TestAnalyzePositive(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(Config{})

	label, polarity := analyzer.Analyze("gracias, todo perfecto")
	if label != contractx.SentimentPositive {
		t.Fatalf("Analyze() label = %s, want positive", label)
	}
	if polarity <= 0.3 {
		t.Fatalf("Analyze() polarity = %f, want above 0.3", polarity)
	}
}

func TestAnalyzeNeutralWhenNoLexiconHits(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(Config{})

	label, polarity := analyzer.Analyze("my order number is ABC123456")
	if label != contractx.SentimentNeutral || polarity != 0 {
		t.Fatalf("Analyze() = %s, %f, want neutral, 0", label, polarity)
	}
}

func TestAnalyzeEmptyTextIsNeutral(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(Config{})

	for _, text := range []string{"", " ", "a"} {
		label, polarity := analyzer.Analyze(text)
		if label != contractx.SentimentNeutral || polarity != 0 {
			t.Fatalf("Analyze(%q) = %s, %f, want neutral, 0", text, label, polarity)
		}
	}
}

func TestAnalyzeNegationFlipsPolarity(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(Config{})

	label, polarity := analyzer.Analyze("this is not good")
	if label != contractx.SentimentNegative {
		t.Fatalf("Analyze() label = %s, want negative after negation", label)
	}
	if polarity >= 0 {
		t.Fatalf("Analyze() polarity = %f, want negative", polarity)
	}
}

func TestAnalyzeCustomThresholds(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(Config{ThresholdNegative: -0.95, ThresholdPositive: 0.95})

	label, _ := analyzer.Analyze("this is bad")
	if label != contractx.SentimentNeutral {
		t.Fatalf("Analyze() label = %s, want neutral under wide thresholds", label)
	}
}
