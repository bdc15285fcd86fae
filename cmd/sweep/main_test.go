package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookfeed/internal/app"
	"bookfeed/internal/config"
	"bookfeed/internal/platform/crypto"
)

func memoryBuilder(t *testing.T) appBuilder {
	t.Helper()
	cfg := config.Config{
		StoreDriver:       config.StoreMemory,
		GoogleBooksRPS:    1,
		PopularBooksMax:   500,
		AuthorConcurrency: 1,
		AuthorCacheSize:   16,
	}
	logger := zerolog.Nop()
	a, err := app.New(context.Background(), cfg, &logger)
	require.NoError(t, err)
	return func(context.Context) (*app.App, config.Config, error) { return a, cfg, nil }
}

func run(t *testing.T, build appBuilder, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(build)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedThenPrune(t *testing.T) {
	build := memoryBuilder(t)
	path := filepath.Join(t.TempDir(), "books.jsonl")
	lines := `{"isbn":"9780000000001","description":"A detective follows a clue.","publishedDate":"2001-04-01"}

{"isbn":"9780000000002","description":"Dragons guard the kingdom.","publishedDate":"2999"}
`
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))

	out, err := run(t, build, "seed", "--file", path)
	require.NoError(t, err)
	var seeded struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &seeded))
	assert.Equal(t, 2, seeded.Count)

	out, err = run(t, build, "prune")
	require.NoError(t, err)
	assert.JSONEq(t, `{"deleted_books_count":1}`, out)
}

func TestSeed_InvalidRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"isbn":"9780000000003"}]`), 0o644))

	_, err := run(t, memoryBuilder(t), "seed", "--file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description is required")
}

func TestRequiredFlags(t *testing.T) {
	build := memoryBuilder(t)
	_, err := run(t, build, "unreleased")
	assert.EqualError(t, err, "--genre is required")
	_, err = run(t, build, "query")
	assert.EqualError(t, err, "--q is required")
	_, err = run(t, build, "seed")
	assert.EqualError(t, err, "--file is required")
}

func TestUnreleased_UnknownGenre(t *testing.T) {
	_, err := run(t, memoryBuilder(t), "unreleased", "--genre", "Westerns")
	assert.Error(t, err)
}

func TestTokenCmd(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Chdir(t.TempDir())

	out, err := run(t, nil, "token", "--subject", "nightly")
	require.NoError(t, err)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	claims, err := crypto.Authorize("test-secret", body["token"], crypto.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "nightly", claims.Subject)
	assert.Equal(t, body["jti"], claims.ID)
}

func TestTokenCmd_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Chdir(t.TempDir())
	_, err := run(t, nil, "token")
	assert.EqualError(t, err, "JWT_SECRET is not set")
}
