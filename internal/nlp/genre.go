package nlp

import (
	"sort"
	"strings"
)

const (
	UnknownGenre = "Unknown"
	sportsGenre  = "Sports"
	keywordCount = 10
)

// GenreInput carries the volume fields genre inference looks at. Categories
// and Authors are accepted for completeness but do not influence the result.
type GenreInput struct {
	Description string
	Categories  []string
	Title       string
	Subtitle    string
	Authors     []string
}

// InferGenres ranks genres by additive evidence from named entities, TF-IDF
// keywords and keyword matches in description and subtitle, falling back to
// the title only when nothing else matched. Sports is dropped when any other
// genre is present; an empty ranking becomes ["Unknown"].
func (e *Engine) InferGenres(in GenreInput) []string {
	genres := e.taxonomy.Genres
	freq := make([]int, len(genres))

	for _, ent := range e.entities.Entities(in.Description) {
		text := strings.ToLower(ent)
		for i, g := range genres {
			if g.hasKeyword(text) {
				freq[i]++
			}
		}
	}

	for _, term := range ExtractKeywords([]string{in.Description}, keywordCount) {
		for i, g := range genres {
			if g.hasKeyword(term) {
				freq[i]++
			}
		}
	}

	for i, g := range genres {
		for _, re := range g.patterns {
			if re.MatchString(in.Description) {
				freq[i]++
			}
			if in.Subtitle != "" && re.MatchString(in.Subtitle) {
				freq[i]++
			}
		}
	}

	if !anyPositive(freq) && in.Title != "" {
		for i, g := range genres {
			for _, re := range g.patterns {
				if re.MatchString(in.Title) {
					freq[i]++
				}
			}
		}
	}

	ranked := make([]int, 0, len(genres))
	for i, n := range freq {
		if n > 0 {
			ranked = append(ranked, i)
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return freq[ranked[a]] > freq[ranked[b]]
	})

	out := make([]string, 0, len(ranked))
	for _, i := range ranked {
		out = append(out, genres[i].Name)
	}
	if len(out) > 1 {
		out = remove(out, sportsGenre)
	}
	if len(out) == 0 {
		return []string{UnknownGenre}
	}
	e.logger.Debug().Strs("genres", out).Str("title", in.Title).Msg("genres inferred")
	return out
}

func anyPositive(xs []int) bool {
	for _, x := range xs {
		if x > 0 {
			return true
		}
	}
	return false
}

func remove(xs []string, v string) []string {
	out := xs[:0]
	for _, x := range xs {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
