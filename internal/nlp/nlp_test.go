package nlp

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecognizer []string

func (s stubRecognizer) Entities(string) []string { return s }

type stubClassifier string

func (s stubClassifier) Classify(string) string { return string(s) }

type recordingClassifier struct{ got string }

func (r *recordingClassifier) Classify(text string) string {
	r.got = text
	return LabelPositive
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	tax, err := DefaultTaxonomy()
	require.NoError(t, err)
	base := []Option{WithEntityRecognizer(stubRecognizer(nil)), WithSentimentClassifier(stubClassifier(""))}
	return NewEngine(tax, append(base, opts...)...)
}

func TestInferGenres(t *testing.T) {
	e := newTestEngine(t)

	t.Run("single keyword", func(t *testing.T) {
		assert.Equal(t, []string{"Mystery"}, e.InferGenres(GenreInput{Description: "detective"}))
	})

	t.Run("no matches and empty title", func(t *testing.T) {
		assert.Equal(t, []string{UnknownGenre}, e.InferGenres(GenreInput{Description: "A quiet afternoon passes by."}))
	})

	t.Run("sports dropped next to fiction", func(t *testing.T) {
		got := e.InferGenres(GenreInput{Description: "A novel about a football coach."})
		assert.Equal(t, []string{"Fiction"}, got)
	})

	t.Run("sports kept when alone", func(t *testing.T) {
		assert.Equal(t, []string{"Sports"}, e.InferGenres(GenreInput{Description: "The football season begins."}))
	})

	t.Run("title only used as fallback", func(t *testing.T) {
		got := e.InferGenres(GenreInput{Description: "A quiet afternoon.", Title: "The Dragon Throne"})
		assert.Equal(t, []string{"Fantasy"}, got)

		got = e.InferGenres(GenreInput{Description: "A detective story.", Title: "The Dragon Throne"})
		assert.Equal(t, []string{"Mystery"}, got)
	})

	t.Run("subtitle counts separately", func(t *testing.T) {
		// Horror scores 3 (keyword, description match, subtitle match),
		// Mystery 2.
		got := e.InferGenres(GenreInput{
			Description: "A haunted detective.",
			Subtitle:    "A haunted tale",
		})
		assert.Equal(t, []string{"Horror", "Mystery"}, got)
	})

	t.Run("entities add evidence", func(t *testing.T) {
		withNER := newTestEngine(t, WithEntityRecognizer(stubRecognizer{"Magic", "London"}))
		got := withNER.InferGenres(GenreInput{Description: "A detective meets magic."})
		assert.Equal(t, []string{"Fantasy", "Mystery"}, got)
	})
}

func TestExtractAttributes(t *testing.T) {
	e := newTestEngine(t)

	attrs := e.ExtractAttributes("A coming-of-age story about Love, loss and a fast-paced escape.")
	assert.Subset(t, attrs.Themes, []string{"Love", "Loss", "Coming of Age", "Freedom"})
	assert.Contains(t, attrs.WritingStyle, "Fast-Paced")
	assert.Equal(t, []string{ToneNeutral}, attrs.Tone)

	attrs = e.ExtractAttributes("Lovers of gloves.")
	assert.NotContains(t, attrs.Themes, "Love", "phrases must match whole words")

	empty := e.ExtractAttributes("")
	assert.Empty(t, empty.Themes)
	assert.Empty(t, empty.WritingStyle)
	assert.Equal(t, []string{ToneNeutral}, empty.Tone)
}

func TestToneMapping(t *testing.T) {
	assert.Equal(t, []string{TonePositive}, newTestEngine(t, WithSentimentClassifier(stubClassifier(LabelPositive))).ExtractAttributes("x").Tone)
	assert.Equal(t, []string{ToneNegative}, newTestEngine(t, WithSentimentClassifier(stubClassifier(LabelNegative))).ExtractAttributes("x").Tone)
	assert.Equal(t, []string{ToneNeutral}, newTestEngine(t, WithSentimentClassifier(stubClassifier("LABEL_1"))).ExtractAttributes("x").Tone)
}

func TestToneWindow(t *testing.T) {
	rec := &recordingClassifier{}
	e := newTestEngine(t, WithSentimentClassifier(rec))
	e.ExtractAttributes(strings.Repeat("é", 600))
	assert.Equal(t, 512, len([]rune(rec.got)))
}

func TestAssignAttributes(t *testing.T) {
	e := newTestEngine(t)

	_, ok := e.AssignAttributes("", "anything")
	assert.False(t, ok)

	attrs, ok := e.AssignAttributes("Mystery", "A tale of betrayal.")
	require.True(t, ok)
	assert.Equal(t, []string{"Betrayal", "Justice"}, attrs.Themes)
	assert.Equal(t, []string{"Plot-Driven", "Suspenseful"}, attrs.WritingStyle)
	assert.Equal(t, []string{"Neutral", "Tense"}, attrs.Tone)

	attrs, ok = e.AssignAttributes(UnknownGenre, "A tale of betrayal.")
	require.True(t, ok)
	assert.Equal(t, []string{"Betrayal"}, attrs.Themes)
}

func TestInferAuthorGenres(t *testing.T) {
	e := newTestEngine(t)
	got := e.InferAuthorGenres("An American novelist known for horror and supernatural fiction, and a journalist.")
	assert.Equal(t, []string{"Horror", "Literary Fiction", "Non-Fiction"}, got)
	assert.Empty(t, e.InferAuthorGenres(""))
}

func TestModelClassifier(t *testing.T) {
	c, err := NewModelClassifier()
	require.NoError(t, err)

	assert.Equal(t, LabelPositive, c.Classify("I loved this wonderful, beautiful and heartwarming book. A great read."))
	assert.Equal(t, LabelNegative, c.Classify("This was a terrible, awful and boring book. The worst waste of time."))
	assert.Equal(t, "", c.Classify("Un roman bouleversant sur la famille, la mémoire et le pardon. Dans un petit village de Bretagne, trois sœurs se retrouvent après la mort de leur mère et découvrent les secrets de leur enfance."))
	assert.Equal(t, "", c.Classify("   "))
}

func TestModelClassifier_Concurrent(t *testing.T) {
	c, err := NewModelClassifier()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, LabelPositive, c.Classify("I loved this wonderful, beautiful and heartwarming book. A great read."))
		}()
	}
	wg.Wait()
}

func TestProseRecognizer_LoadsModelOnce(t *testing.T) {
	r := NewProseRecognizer()
	assert.Nil(t, r.Entities(""))
	assert.Nil(t, r.model)

	text := "Sherlock Holmes and Doctor Watson travel from London to Paris."
	first := r.Entities(text)
	require.NotNil(t, r.model)
	loaded := r.model

	assert.Equal(t, first, r.Entities(text))
	assert.Same(t, loaded, r.model)
}

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords([]string{"The detective and the other detective found a clue in the garden."}, 2)
	assert.Equal(t, []string{"detective", "clue"}, got)
	assert.Nil(t, ExtractKeywords([]string{"the and of"}, 10))
	assert.Nil(t, ExtractKeywords([]string{"detective"}, 0))
}

func TestParseTaxonomy(t *testing.T) {
	_, err := ParseTaxonomy([]byte("genres: []"))
	assert.Error(t, err)

	_, err = ParseTaxonomy([]byte("genres:\n  - name: A\n    keywords: [x]\n  - name: A\n    keywords: [y]\n"))
	assert.Error(t, err)

	tax, err := ParseTaxonomy([]byte("genres:\n  - name: Noir\n    keywords: [Hardboiled]\n"))
	require.NoError(t, err)
	g, ok := tax.Genre("Noir")
	require.True(t, ok)
	assert.Equal(t, []string{"hardboiled"}, g.Keywords)
	assert.Equal(t, []string{"Noir"}, tax.GenreNames())
}

func TestPhraseMatcher(t *testing.T) {
	m := NewPhraseMatcher([]Tag{{Name: "Good vs Evil", Phrases: []string{"good and evil"}}})
	assert.Equal(t, []string{"Good vs Evil"}, m.Match("between GOOD and Evil."))
	assert.Empty(t, m.Match("good, and then evil"))
}
