package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/system.txt
	systemRaw string

	//go:embed template/extraction.txt
	extractionRaw string

	//go:embed template/summary.txt
	summaryRaw string
)

const languageToken = "[USER_LANGUAGE]"

// languageNames maps supported language codes to the display name used
// inside prompts. Unknown codes fall back to Spanish, the default
// conversation language.
var languageNames = map[string]string{
	"es": "Spanish",
	"en": "English",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ca": "Catalan",
}

func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(strings.TrimSpace(code))]; ok {
		return name
	}
	return "Spanish"
}

// System returns the system prompt rendered for the user's language.
func System(languageCode string) string {
	return strings.ReplaceAll(strings.TrimSpace(systemRaw), languageToken, LanguageName(languageCode))
}

// Extraction returns the extraction prompt template. The {message} and
// {history} placeholders are filled by the chat template at invoke time.
func Extraction() string {
	return strings.TrimSpace(extractionRaw)
}

// Summary returns the summary prompt template. The {language},
// {conversation} and field placeholders are filled at invoke time.
func Summary() string {
	return strings.TrimSpace(summaryRaw)
}
