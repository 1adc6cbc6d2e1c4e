package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with environment variables, loading a .env file
// from the working directory first when one exists. Recognized variables:
//
//	PORT             port number or full bind address
//	SQLITE_PATH      embedded SQLite database file
//	TURSO_URL        remote Turso database URL
//	TURSO_AUTH_TOKEN Turso auth token
//	DATABASE_DSN     PostgreSQL DSN
//	SYNC_PASSWORD    shared backend password
func parseEnv(config *Config) {
	// missing .env is the normal case
	_ = godotenv.Load()

	if v := os.Getenv("PORT"); v != "" {
		if strings.Contains(v, ":") {
			config.Address = v
		} else {
			config.Address = ":" + v
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		config.SQLitePath = v
	}
	if v := os.Getenv("TURSO_URL"); v != "" {
		config.TursoURL = v
	}
	if v := os.Getenv("TURSO_AUTH_TOKEN"); v != "" {
		config.TursoAuthToken = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("SYNC_PASSWORD"); v != "" {
		config.SyncPassword = v
	}
}
