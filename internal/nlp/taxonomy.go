package nlp

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTaxonomy []byte

// Genre is one row of the genre keyword table together with the baseline
// attributes every book of that genre inherits.
type Genre struct {
	Name          string   `yaml:"name"`
	Keywords      []string `yaml:"keywords"`
	Themes        []string `yaml:"themes"`
	WritingStyles []string `yaml:"writingStyles"`
	Tones         []string `yaml:"tones"`

	patterns []*regexp.Regexp
}

// Tag maps a theme or writing-style label to its trigger phrases.
type Tag struct {
	Name    string   `yaml:"name"`
	Phrases []string `yaml:"phrases"`
}

// Taxonomy holds every fixed table the attribute and genre logic relies on.
type Taxonomy struct {
	Genres        []Genre `yaml:"genres"`
	Themes        []Tag   `yaml:"themes"`
	WritingStyles []Tag   `yaml:"writingStyles"`
	AuthorGenres  []Genre `yaml:"authorGenres"`

	index map[string]int
}

// DefaultTaxonomy returns the tables compiled into the binary.
func DefaultTaxonomy() (*Taxonomy, error) {
	return ParseTaxonomy(defaultTaxonomy)
}

// LoadTaxonomy reads a taxonomy file. An empty path yields the default tables.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	if path == "" {
		return DefaultTaxonomy()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	return ParseTaxonomy(data)
}

// ParseTaxonomy decodes and validates YAML taxonomy data.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	if err := t.compile(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Taxonomy) compile() error {
	if len(t.Genres) == 0 {
		return errors.New("taxonomy: at least one genre is required")
	}
	t.index = make(map[string]int, len(t.Genres))
	for i := range t.Genres {
		g := &t.Genres[i]
		if g.Name == "" {
			return fmt.Errorf("taxonomy: genre %d has no name", i)
		}
		if _, dup := t.index[g.Name]; dup {
			return fmt.Errorf("taxonomy: duplicate genre %q", g.Name)
		}
		t.index[g.Name] = i
		if err := g.compile(); err != nil {
			return err
		}
	}
	for i := range t.AuthorGenres {
		if err := t.AuthorGenres[i].compile(); err != nil {
			return err
		}
	}
	return nil
}

func (g *Genre) compile() error {
	if len(g.Keywords) == 0 {
		return fmt.Errorf("taxonomy: genre %q has no keywords", g.Name)
	}
	g.patterns = make([]*regexp.Regexp, len(g.Keywords))
	for i, kw := range g.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		g.Keywords[i] = kw
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		if err != nil {
			return fmt.Errorf("taxonomy: genre %q keyword %q: %w", g.Name, kw, err)
		}
		g.patterns[i] = re
	}
	return nil
}

// Genre looks up a genre row by its exact name.
func (t *Taxonomy) Genre(name string) (Genre, bool) {
	i, ok := t.index[name]
	if !ok {
		return Genre{}, false
	}
	return t.Genres[i], true
}

// GenreNames lists genres in declaration order.
func (t *Taxonomy) GenreNames() []string {
	out := make([]string, len(t.Genres))
	for i, g := range t.Genres {
		out[i] = g.Name
	}
	return out
}

// hasKeyword reports whether kw (any case) is one of the genre's keywords.
func (g Genre) hasKeyword(kw string) bool {
	kw = strings.ToLower(kw)
	for _, k := range g.Keywords {
		if k == kw {
			return true
		}
	}
	return false
}
