// Package analysis builds the audience-analysis prompt for the text model
// and parses its JSON reply into an AnalysisResult.
package analysis

// Language selects the prompt template language. Template text is chosen
// from a fixed per-language table, never translated at runtime.
type Language string

const (
	LangUK Language = "uk"
	LangRU Language = "ru"
	LangEN Language = "en"
)

// NormalizeLanguage maps an arbitrary language code to a supported one.
// Unknown or empty codes default to Ukrainian.
func NormalizeLanguage(code string) Language {
	switch Language(code) {
	case LangRU:
		return LangRU
	case LangEN:
		return LangEN
	default:
		return LangUK
	}
}
