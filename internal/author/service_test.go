package author

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookfeed/internal/nlp"
	"bookfeed/internal/platform/googlebooks"
	"bookfeed/internal/platform/knowledgegraph"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) PopularVolumes(ctx context.Context, max int) ([]googlebooks.Volume, error) {
	args := m.Called(ctx, max)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]googlebooks.Volume), args.Error(1)
}

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) LookupPerson(ctx context.Context, name string) (*knowledgegraph.Person, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*knowledgegraph.Person), args.Error(1)
}

type noEntities struct{}

func (noEntities) Entities(string) []string { return nil }

type silentClassifier struct{}

func (silentClassifier) Classify(string) string { return "" }

func newTestEngine(t *testing.T) *nlp.Engine {
	t.Helper()
	tax, err := nlp.DefaultTaxonomy()
	require.NoError(t, err)
	return nlp.NewEngine(tax, nlp.WithEntityRecognizer(noEntities{}), nlp.WithSentimentClassifier(silentClassifier{}))
}

func volume(authors ...string) googlebooks.Volume {
	return googlebooks.Volume{VolumeInfo: &googlebooks.VolumeInfo{Authors: authors}}
}

func TestUniqueAuthorNames(t *testing.T) {
	got := UniqueAuthorNames([]googlebooks.Volume{
		volume("jane doe", "JOHN  smith"),
		{VolumeInfo: nil},
		volume("Jane Doe", " "),
	})
	assert.Equal(t, []string{"Jane Doe", "John Smith"}, got)
}

func TestEnrichPopular(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	require.NoError(t, repo.Create(ctx, &Author{
		Name:      "Jane Doe",
		Biography: "old",
		ImageURL:  "https://img/jane.jpg",
		Themes:    []string{"Loss"},
	}))

	src := new(mockSource)
	src.On("PopularVolumes", mock.Anything, 500).Return([]googlebooks.Volume{
		volume("jane doe"),
		volume("Jane Doe", "John Smith"),
		volume("Ghost Writer"),
		volume("Flaky Author"),
	}, nil)

	kg := new(mockLookup)
	kg.On("LookupPerson", mock.Anything, "Jane Doe").Return(&knowledgegraph.Person{
		Name:      "Jane Doe",
		Biography: "A novelist whose books are about redemption.",
	}, nil).Once()
	kg.On("LookupPerson", mock.Anything, "John Smith").Return(&knowledgegraph.Person{Name: "John Smith"}, nil).Once()
	kg.On("LookupPerson", mock.Anything, "Ghost Writer").Return(nil, nil).Once()
	kg.On("LookupPerson", mock.Anything, "Flaky Author").Return(nil, errors.New("timeout")).Once()

	cache := NewLRUCache(16, 0)
	svc := NewService(repo, src, kg, cache, newTestEngine(t), Config{}, nil)

	res, err := svc.EnrichPopular(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, res.BooksScanned)
	assert.Equal(t, 4, res.AuthorsFound)
	assert.Equal(t, 2, res.AuthorsUpserted)
	assert.ElementsMatch(t, []string{"Jane Doe", "John Smith"}, res.Authors)

	jane, err := repo.GetByName(ctx, "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, []string{"Loss", "Redemption"}, jane.Themes)
	assert.Equal(t, []string{"Literary Fiction"}, jane.GenresWritten)
	assert.Equal(t, []string{"Neutral"}, jane.Tone)
	assert.Equal(t, "A novelist whose books are about redemption.", jane.Biography)
	assert.Equal(t, "https://img/jane.jpg", jane.ImageURL)

	john, err := repo.GetByName(ctx, "John Smith")
	require.NoError(t, err)
	assert.Empty(t, john.Themes)
	assert.Empty(t, john.Biography)

	_, hit, _ := cache.Get(ctx, "Ghost Writer")
	assert.True(t, hit, "misses are cached")
	_, hit, _ = cache.Get(ctx, "Flaky Author")
	assert.False(t, hit, "transport errors are not cached")

	kg.AssertExpectations(t)
}

func TestEnrichPopular_UsesCache(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCache(16, 0)
	require.NoError(t, cache.Set(ctx, "Jane Doe", nil))

	src := new(mockSource)
	src.On("PopularVolumes", mock.Anything, 40).Return([]googlebooks.Volume{volume("Jane Doe")}, nil)
	kg := new(mockLookup)

	svc := NewService(NewMemoryRepo(), src, kg, cache, newTestEngine(t), Config{PopularBooksMax: 40, Concurrency: 4}, nil)
	res, err := svc.EnrichPopular(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.AuthorsUpserted)
	kg.AssertNotCalled(t, "LookupPerson", mock.Anything, mock.Anything)
}

func TestEnrichPopular_Concurrent(t *testing.T) {
	ctx := context.Background()
	names := []string{"A One", "B Two", "C Three", "D Four", "E Five", "F Six"}

	var vols []googlebooks.Volume
	kg := new(mockLookup)
	for _, n := range names {
		vols = append(vols, volume(n))
		// Every name resolves to the same person, so merges contend on one record.
		kg.On("LookupPerson", mock.Anything, n).Return(&knowledgegraph.Person{
			Name:      "Shared Person",
			Biography: "A poet writing about " + n + " and grief.",
		}, nil)
	}
	src := new(mockSource)
	src.On("PopularVolumes", mock.Anything, 500).Return(vols, nil)

	repo := NewMemoryRepo()
	svc := NewService(repo, src, kg, nil, newTestEngine(t), Config{Concurrency: 3}, nil)
	res, err := svc.EnrichPopular(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(names), res.AuthorsUpserted)

	got, err := repo.GetByName(ctx, "Shared Person")
	require.NoError(t, err)
	assert.Equal(t, []string{"Grief"}, got.Themes)
	assert.Equal(t, []string{"Poetry"}, got.GenresWritten)
}

func TestEnrichPopular_SourceFailure(t *testing.T) {
	src := new(mockSource)
	src.On("PopularVolumes", mock.Anything, 500).Return(nil, errors.New("403"))

	svc := NewService(NewMemoryRepo(), src, new(mockLookup), nil, newTestEngine(t), Config{}, nil)
	_, err := svc.EnrichPopular(context.Background())
	assert.Error(t, err)
}

func TestEnrichPopular_PartialSource(t *testing.T) {
	src := new(mockSource)
	src.On("PopularVolumes", mock.Anything, 500).Return([]googlebooks.Volume{volume("Jane Doe")}, errors.New("503"))
	kg := new(mockLookup)
	kg.On("LookupPerson", mock.Anything, "Jane Doe").Return(&knowledgegraph.Person{Name: "Jane Doe"}, nil)

	svc := NewService(NewMemoryRepo(), src, kg, nil, newTestEngine(t), Config{}, nil)
	res, err := svc.EnrichPopular(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.AuthorsUpserted)
}
