// Package i18n provides the bilingual (English/Arabic) message tables for
// user-facing templated answers: refusals, no-source notices, the scholar
// reminder, and hard-failure apologies.
//
// Unlike UI string tables, lookups are per-request: the answer language
// comes with each question, so there is no process-wide current language.
package i18n

import (
	"fmt"
	"strings"
)

// Supported languages.
const (
	LangEN = "en"
	LangAR = "ar"
)

// messages stores all translations, keyed by language then message key.
// Loaded once at init; read-only afterwards.
var messages = map[string]map[string]string{}

func init() {
	loadEnglishMessages()
	loadArabicMessages()
}

// Normalize maps a requested language code to a supported one.
// Unknown codes fall back to English.
func Normalize(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "ar", "ar-sa", "arabic":
		return LangAR
	default:
		return LangEN
	}
}

// T returns the translated message for the given language and key.
// Falls back to English, then to the key itself.
func T(lang, key string) string {
	if msg, ok := messages[Normalize(lang)][key]; ok {
		return msg
	}
	if msg, ok := messages[LangEN][key]; ok {
		return msg
	}
	return key
}

// Sprintf returns the translated and formatted message.
func Sprintf(lang, key string, args ...any) string {
	return fmt.Sprintf(T(lang, key), args...)
}

// Supported returns the supported language codes.
func Supported() []string {
	return []string{LangEN, LangAR}
}
