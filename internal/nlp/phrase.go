package nlp

import "sort"

// PhraseMatcher tags text whenever one of a tag's phrases appears as a
// contiguous run of whole words.
type PhraseMatcher struct {
	byFirst map[string][]phrase
}

type phrase struct {
	tag    string
	tokens []string
}

// NewPhraseMatcher indexes the phrases of every tag by their first word.
func NewPhraseMatcher(tags []Tag) *PhraseMatcher {
	m := &PhraseMatcher{byFirst: make(map[string][]phrase)}
	for _, tag := range tags {
		for _, p := range tag.Phrases {
			toks := words(p)
			if len(toks) == 0 {
				continue
			}
			m.byFirst[toks[0]] = append(m.byFirst[toks[0]], phrase{tag: tag.Name, tokens: toks})
		}
	}
	return m
}

// Match returns the distinct tags found in text, sorted.
func (m *PhraseMatcher) Match(text string) []string {
	toks := words(text)
	found := make(map[string]struct{})
	for i, tok := range toks {
		for _, p := range m.byFirst[tok] {
			if _, seen := found[p.tag]; seen {
				continue
			}
			if hasPrefix(toks[i:], p.tokens) {
				found[p.tag] = struct{}{}
			}
		}
	}
	return sortedKeys(found)
}

func hasPrefix(toks, prefix []string) bool {
	if len(prefix) > len(toks) {
		return false
	}
	for i := range prefix {
		if toks[i] != prefix[i] {
			return false
		}
	}
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
