package sentiment

import (
	"strings"

	contractx "github.com/Chispasgg/personal-ai-agent-api/agent/contract"
)

type Config struct {
	ThresholdNegative float64 `envconfig:"THRESHOLD_NEGATIVE" default:"-0.3"`
	ThresholdPositive float64 `envconfig:"THRESHOLD_POSITIVE" default:"0.3"`
}

// Analyzer scores message polarity with a bilingual word lexicon.
// Tokens following a negation word flip their polarity.
type Analyzer struct {
	thresholdNegative float64
	thresholdPositive float64
}

func NewAnalyzer(cfg Config) *Analyzer {
	thresholdNegative := cfg.ThresholdNegative
	thresholdPositive := cfg.ThresholdPositive
	if thresholdNegative == 0 && thresholdPositive == 0 {
		thresholdNegative = -0.3
		thresholdPositive = 0.3
	}
	return &Analyzer{
		thresholdNegative: thresholdNegative,
		thresholdPositive: thresholdPositive,
	}
}

// Analyze returns the sentiment label and a polarity score in [-1, 1].
// Empty or near-empty text is neutral.
func (a *Analyzer) Analyze(text string) (contractx.Sentiment, float64) {
	if len(strings.TrimSpace(text)) < 2 {
		return contractx.SentimentNeutral, 0.0
	}

	tokens := tokenize(text)

	var sum float64
	var scored int
	negated := false
	for _, token := range tokens {
		if negations[token] {
			negated = true
			continue
		}
		polarity, ok := lexicon[token]
		if !ok {
			continue
		}
		if negated {
			polarity = -polarity
			negated = false
		}
		sum += polarity
		scored++
	}

	if scored == 0 {
		return contractx.SentimentNeutral, 0.0
	}

	polarity := clamp(sum/float64(scored), -1, 1)
	switch {
	case polarity < a.thresholdNegative:
		return contractx.SentimentNegative, polarity
	case polarity > a.thresholdPositive:
		return contractx.SentimentPositive, polarity
	default:
		return contractx.SentimentNeutral, polarity
	}
}

func tokenize(text string) []string {
	lowered := strings.ToLower(text)
	return strings.FieldsFunc(lowered, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= '0' && r <= '9':
			return false
		case r == '\'':
			return false
		case r >= 0x00C0:
			// accented letters
			return false
		default:
			return true
		}
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var negations = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"n't":     true,
	"don't":   true,
	"doesn't": true,
	"didn't":  true,
	"isn't":   true,
	"wasn't":  true,
	"can't":   true,
	"won't":   true,
	"nunca":   true,
	"jamás":   true,
	"tampoco": true,
	"ni":      true,
}

// Word polarities, English and Spanish. Scores follow the usual
// lexicon convention of [-1, 1] per word.
var lexicon = map[string]float64{
	"good":       0.6,
	"great":      0.8,
	"excellent":  0.9,
	"perfect":    0.9,
	"amazing":    0.8,
	"wonderful":  0.8,
	"love":       0.7,
	"happy":      0.7,
	"thanks":     0.5,
	"thank":      0.5,
	"helpful":    0.6,
	"fast":       0.4,
	"solved":     0.6,
	"resolved":   0.6,
	"working":    0.4,
	"works":      0.4,
	"fine":       0.4,
	"pleased":    0.6,
	"satisfied":  0.6,

	"bad":          -0.6,
	"terrible":     -0.9,
	"horrible":     -0.9,
	"awful":        -0.8,
	"worst":        -0.9,
	"hate":         -0.8,
	"angry":        -0.7,
	"furious":      -0.9,
	"frustrated":   -0.7,
	"frustrating":  -0.7,
	"annoyed":      -0.6,
	"annoying":     -0.6,
	"useless":      -0.7,
	"broken":       -0.5,
	"late":         -0.4,
	"delay":        -0.4,
	"delayed":      -0.4,
	"lost":         -0.5,
	"wrong":        -0.5,
	"problem":      -0.3,
	"issue":        -0.3,
	"disappointed": -0.7,
	"unacceptable": -0.8,
	"slow":         -0.4,
	"waiting":      -0.3,
	"refund":       -0.2,
	"complaint":    -0.5,

	"bueno":        0.6,
	"buena":        0.6,
	"excelente":    0.9,
	"perfecto":     0.9,
	"genial":       0.8,
	"gracias":      0.5,
	"contento":     0.7,
	"contenta":     0.7,
	"feliz":        0.7,
	"encanta":      0.7,
	"rápido":       0.4,
	"resuelto":     0.6,
	"funciona":     0.4,
	"amable":       0.6,
	"satisfecho":   0.6,
	"satisfecha":   0.6,

	"malo":       -0.6,
	"mala":       -0.6,
	"pésimo":     -0.9,
	"pésima":      -0.9,
	"odio":        -0.8,
	"enfadado":    -0.7,
	"enfadada":    -0.7,
	"enojado":     -0.7,
	"enojada":     -0.7,
	"furioso":     -0.9,
	"furiosa":     -0.9,
	"frustrado":   -0.7,
	"frustrada":   -0.7,
	"molesto":     -0.6,
	"molesta":     -0.6,
	"inútil":      -0.7,
	"roto":        -0.5,
	"rota":        -0.5,
	"tarde":       -0.4,
	"retraso":     -0.4,
	"retrasado":   -0.4,
	"perdido":     -0.5,
	"perdida":     -0.5,
	"problema":    -0.3,
	"queja":       -0.5,
	"decepcionado": -0.7,
	"decepcionada": -0.7,
	"inaceptable":  -0.8,
	"lento":        -0.4,
	"lenta":        -0.4,
	"esperando":    -0.3,
	"reembolso":    -0.2,
	"urgente":      -0.3,
	"fatal":        -0.8,
}
