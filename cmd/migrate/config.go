package main

import (
	"os"

	"bookfeed/internal/config"
)

func loadEnvFiles() {
	config.LoadEnvFiles()
}

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return "db/migrations"
}
