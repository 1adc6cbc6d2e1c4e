// Package config handles configuration for the client component.
package config

import "time"

// Config holds runtime settings for the sync client.
//
// Fields:
//   - ServerAddr: base URL of the backend HTTP endpoint.
//   - DBFile: path of the local SQLite replica database.
//   - DebounceInterval: how long the client waits after a local change
//     before starting a sync, so bursts of edits coalesce into one request.
//   - RequestTimeout: per-request deadline for calls to the backend.
//
// Units: the intervals are time.Duration (e.g., 5*time.Second).
type Config struct {
	ServerAddr       string
	DBFile           string
	DebounceInterval time.Duration
	RequestTimeout   time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "http://127.0.0.1:8080"
	c.DBFile = "./intervals-client.db"
	c.DebounceInterval = 5 * time.Second
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
