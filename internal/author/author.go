package author

import (
	"errors"
	"time"

	"bookfeed/internal/nlp"
)

// ErrNotFound is returned when no author has the requested name.
var ErrNotFound = errors.New("author not found")

// Author is keyed by its normalized display name. Tag sets only ever grow.
type Author struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Biography     string    `json:"biography"`
	ImageURL      string    `json:"imageURL"`
	GenresWritten []string  `json:"genresWritten"`
	Themes        []string  `json:"themes"`
	WritingStyle  []string  `json:"writingStyle"`
	Tone          []string  `json:"tone"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Merge folds incoming into existing. Tag sets are unioned; biography and
// image are replaced only by non-empty values.
func Merge(existing, incoming Author) Author {
	out := existing
	if incoming.Biography != "" {
		out.Biography = incoming.Biography
	}
	if incoming.ImageURL != "" {
		out.ImageURL = incoming.ImageURL
	}
	out.GenresWritten = nlp.Union(existing.GenresWritten, incoming.GenresWritten)
	out.Themes = nlp.Union(existing.Themes, incoming.Themes)
	out.WritingStyle = nlp.Union(existing.WritingStyle, incoming.WritingStyle)
	out.Tone = nlp.Union(existing.Tone, incoming.Tone)
	return out
}

// Profile is what the knowledge lookup knows about a person.
type Profile struct {
	Name      string `json:"name"`
	Biography string `json:"biography"`
	ImageURL  string `json:"imageURL"`
}
