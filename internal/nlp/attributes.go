package nlp

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const sentimentWindow = 512

const (
	TonePositive = "Positive"
	ToneNegative = "Negative"
	ToneNeutral  = "Neutral"
)

// Attributes are the three tag sets attached to books and authors.
type Attributes struct {
	Themes       []string
	WritingStyle []string
	Tone         []string
}

// ExtractAttributes tags text with themes and writing styles by phrase match
// and with exactly one tone from the sentiment classifier.
func (e *Engine) ExtractAttributes(text string) Attributes {
	lower := strings.ToLower(text)
	return Attributes{
		Themes:       e.themes.Match(lower),
		WritingStyle: e.styles.Match(lower),
		Tone:         []string{e.tone(text)},
	}
}

func (e *Engine) tone(text string) string {
	switch e.sentiment.Classify(truncateRunes(text, sentimentWindow)) {
	case LabelPositive:
		return TonePositive
	case LabelNegative:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

// AssignAttributes extracts attributes from description and unions them with
// the baseline attributes of mainGenre. It reports false and does nothing
// when mainGenre is empty.
func (e *Engine) AssignAttributes(mainGenre, description string) (Attributes, bool) {
	if mainGenre == "" {
		e.logger.Warn().Msg("no genre found for book, skipping attributes")
		return Attributes{}, false
	}
	extracted := e.ExtractAttributes(description)
	base, _ := e.taxonomy.Genre(mainGenre)
	return Attributes{
		Themes:       Union(extracted.Themes, base.Themes),
		WritingStyle: Union(extracted.WritingStyle, base.WritingStyles),
		Tone:         Union(extracted.Tone, base.Tones),
	}, true
}

// InferAuthorGenres lists the author-table genres with at least one keyword
// present in the biography.
func (e *Engine) InferAuthorGenres(biography string) []string {
	found := make(map[string]struct{})
	for _, g := range e.taxonomy.AuthorGenres {
		for _, re := range g.patterns {
			if re.MatchString(biography) {
				found[g.Name] = struct{}{}
				break
			}
		}
	}
	return sortedKeys(found)
}

// Union merges tag sets, dropping empties and duplicates. The result is sorted.
func Union(sets ...[]string) []string {
	seen := make(map[string]struct{})
	for _, s := range sets {
		for _, v := range s {
			if v != "" {
				seen[v] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
