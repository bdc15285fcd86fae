package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := map[string]string{
		"":                       "",
		"   ":                    "",
		"stephen king":           "Stephen King",
		"  STEPHEN   KING  ":     "Stephen King",
		"j.r.r. tolkien":         "J.r.r. Tolkien",
		"ursula k. le guin":      "Ursula K. Le Guin",
		"gabriel garcía márquez": "Gabriel García Márquez",
		"\tmary\nshelley":        "Mary Shelley",
	}
	for in, want := range tests {
		assert.Equal(t, want, Name(in), "Name(%q)", in)
	}
}

func TestNameIsIdempotent(t *testing.T) {
	inputs := []string{
		"", "a", "McDONALD", "o'brien", "jean-paul sartre", "ÉMILE zola", "  x  y  z ", "ǆemal",
	}
	for _, in := range inputs {
		once := Name(in)
		assert.Equal(t, once, Name(once), "input %q", in)
	}
}
