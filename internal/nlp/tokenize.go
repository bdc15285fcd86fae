package nlp

import (
	"strings"
	"unicode"
)

// words splits text into lower-cased runs of letters and digits. Hyphens and
// apostrophes separate tokens, so "coming-of-age" yields three words.
func words(text string) []string {
	var tokens []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}
