// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment variables, and
// command-line flags.
package config

// Config holds runtime settings for the sync server.
//
// Fields:
//   - Address: bind address for the HTTP endpoint.
//   - SQLitePath: path of the embedded SQLite database file.
//   - TursoURL / TursoAuthToken: remote Turso (libsql) database settings.
//   - DatabaseDSN: PostgreSQL DSN (pgx).
//   - SyncPassword: optional shared password; empty leaves the backend open.
//
// Exactly one storage backend is used, selected in the order
// DatabaseDSN, TursoURL, SQLitePath.
type Config struct {
	Address        string
	SQLitePath     string
	TursoURL       string
	TursoAuthToken string
	DatabaseDSN    string
	SyncPassword   string
}

// LoadDefaults populates Config with development defaults: an open server
// on :8080 backed by a local SQLite file.
func (c *Config) LoadDefaults() {
	c.Address = ":8080"
	c.SQLitePath = "./intervals.db"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment (including a .env file) and
// finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
