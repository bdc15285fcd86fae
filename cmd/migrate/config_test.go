package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsDir(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "")
	assert.Equal(t, "db/migrations", migrationsDir())

	t.Setenv("MIGRATIONS_DIR", "/srv/bookfeed/migrations")
	assert.Equal(t, "/srv/bookfeed/migrations", migrationsDir())
}

func TestLoadEnvFiles(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("DB_DSN=from_file\nMIGRATIONS_DIR=from_file\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env.local"), []byte("GOOSE_TABLE_HINT=local\n"), 0o644))

	t.Setenv("DB_DSN", "from_env")
	t.Setenv("MIGRATIONS_DIR", "")
	require.NoError(t, os.Unsetenv("MIGRATIONS_DIR"))
	t.Setenv("GOOSE_TABLE_HINT", "")
	require.NoError(t, os.Unsetenv("GOOSE_TABLE_HINT"))
	t.Chdir(tmp)

	loadEnvFiles()

	assert.Equal(t, "from_env", os.Getenv("DB_DSN"), "process environment wins")
	assert.Equal(t, "from_file", migrationsDir())
	assert.Equal(t, "local", os.Getenv("GOOSE_TABLE_HINT"))
}
