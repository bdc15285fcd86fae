package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookfeed/internal/platform/googlebooks"
)

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"capitalizes", "quiet start.", "Quiet start."},
		{"markup", "<p>Hello <b>world</b></p><p>again</p>", "Hello world again"},
		{"triple star span", "***Bestseller*** the story begins.", "The story begins."},
		{"double star span", "**Starred review** then it rains.", "Then it rains."},
		{"leading caps", "NEW RELEASE the story.", "The story."},
		{"markup and caps", "<b>INSTANT BESTSELLER</b><br>she ran.", "She ran."},
		{"keeps mixed case opening", "The story begins.", "The story begins."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanDescription(tt.in))
		})
	}
}

func TestFilter_Apply(t *testing.T) {
	f := NewFilter(newTestEngine(t))

	t.Run("accepts and normalizes", func(t *testing.T) {
		v := volume("v1", "The Silent Clue", "9780000000001", "2030-07-01")
		v.VolumeInfo.Authors = []string{"jane  DOE"}
		v.VolumeInfo.IndustryIdentifiers = append([]googlebooks.IndustryIdentifier{{Type: "ISBN_10", Identifier: "0000000001"}}, v.VolumeInfo.IndustryIdentifiers...)

		b, reason := f.Apply(v)
		require.Empty(t, reason)
		require.NotNil(t, b)
		assert.Equal(t, "9780000000001", b.ISBN)
		assert.Equal(t, []string{"Jane Doe"}, b.Authors)
		assert.Equal(t, "2030-07-01", b.PublishedDate.String())
		assert.Equal(t, "https://books.google.com/v1.jpg", b.CoverImage)
		assert.Equal(t, []string{"Mystery"}, b.Genres)
		assert.Equal(t, "Mystery", b.MainGenre)
		assert.Equal(t, []string{"Betrayal", "Justice"}, b.Themes)
		assert.Equal(t, []string{"Plot-Driven", "Suspenseful"}, b.WritingStyle)
		assert.Equal(t, []string{"Neutral", "Tense"}, b.Tone)
		require.NotNil(t, b.PageCount)
		assert.Equal(t, 320, *b.PageCount)
		assert.Empty(t, b.AmazonAffiliateLink)
	})

	t.Run("no isbn-13 leaves isbn empty", func(t *testing.T) {
		v := volume("v2", "The Silent Clue", "", "2030-07-01")
		b, reason := f.Apply(v)
		require.Empty(t, reason)
		assert.Empty(t, b.ISBN)
	})

	t.Run("categories without description", func(t *testing.T) {
		v := volume("v3", "The Dragon Throne", "9780000000003", "2030")
		v.VolumeInfo.Description = ""
		b, reason := f.Apply(v)
		require.Empty(t, reason)
		assert.Equal(t, []string{"Fantasy"}, b.Genres)
		assert.Equal(t, "year", string(b.PublishedDate.Precision))
	})

	rejections := []struct {
		name   string
		mutate func(v *googlebooks.Volume)
		want   Rejection
	}{
		{"missing volume info", func(v *googlebooks.Volume) { v.VolumeInfo = nil }, RejectMissingVolumeInfo},
		{"missing title", func(v *googlebooks.Volume) { v.VolumeInfo.Title = "" }, RejectTitle},
		{"46 character title", func(v *googlebooks.Volume) { v.VolumeInfo.Title = strings.Repeat("a", 46) }, RejectTitle},
		{"missing authors", func(v *googlebooks.Volume) { v.VolumeInfo.Authors = nil }, RejectAuthors},
		{"placeholder author", func(v *googlebooks.Volume) {
			v.VolumeInfo.Authors = []string{"Jane Doe", "To Be Announced"}
		}, RejectAuthors},
		{"missing date", func(v *googlebooks.Volume) { v.VolumeInfo.PublishedDate = "" }, RejectMissingDate},
		{"no categories or description", func(v *googlebooks.Volume) {
			v.VolumeInfo.Categories = nil
			v.VolumeInfo.Description = ""
		}, RejectNoContent},
		{"no thumbnail", func(v *googlebooks.Volume) { v.VolumeInfo.ImageLinks.Thumbnail = "" }, RejectNoImage},
		{"unparseable date", func(v *googlebooks.Volume) { v.VolumeInfo.PublishedDate = "July 2030" }, RejectInvalidDate},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			v := volume("vx", "The Silent Clue", "9780000000001", "2030-07-01")
			tt.mutate(&v)
			b, reason := f.Apply(v)
			assert.Nil(t, b)
			assert.Equal(t, tt.want, reason)
		})
	}

	t.Run("45 character title is accepted", func(t *testing.T) {
		v := volume("v4", strings.Repeat("a", 45), "9780000000004", "2030-07-01")
		_, reason := f.Apply(v)
		assert.Empty(t, reason)
	})
}
