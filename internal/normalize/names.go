package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Name canonicalizes an author name: every whitespace separated token gets an
// upper-case first letter and a lower-case remainder, joined by single spaces.
func Name(raw string) string {
	fields := strings.Fields(norm.NFC.String(raw))
	for i, f := range fields {
		fields[i] = capitalize(f)
	}
	return strings.Join(fields, " ")
}

func capitalize(word string) string {
	lower := strings.ToLower(word)
	r, size := utf8.DecodeRuneInString(lower)
	if r == utf8.RuneError {
		return lower
	}
	return string(unicode.ToTitle(r)) + lower[size:]
}
