package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	saved := os.Args
	os.Args = append([]string{"server"}, args...)
	t.Cleanup(func() { os.Args = saved })
}

func TestLoadDefaults(t *testing.T) {
	withArgs(t)

	cfg := LoadConfig()
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, "./intervals.db", cfg.SQLitePath)
	assert.Empty(t, cfg.DatabaseDSN)
	assert.Empty(t, cfg.SyncPassword)
}

func TestEnvOverridesDefaults(t *testing.T) {
	withArgs(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SYNC_PASSWORD", "secret")
	t.Setenv("DATABASE_DSN", "postgres://localhost/intervals")

	cfg := LoadConfig()
	assert.Equal(t, ":9090", cfg.Address)
	assert.Equal(t, "secret", cfg.SyncPassword)
	assert.Equal(t, "postgres://localhost/intervals", cfg.DatabaseDSN)
}

func TestEnvPortFullAddress(t *testing.T) {
	withArgs(t)
	t.Setenv("PORT", "127.0.0.1:9090")

	cfg := LoadConfig()
	assert.Equal(t, "127.0.0.1:9090", cfg.Address)
}

func TestFlagsOverrideEnv(t *testing.T) {
	withArgs(t, "-a", ":7070", "-p", "flagpass")
	t.Setenv("PORT", "9090")

	cfg := LoadConfig()
	assert.Equal(t, ":7070", cfg.Address)
	assert.Equal(t, "flagpass", cfg.SyncPassword)
}

func TestJsonConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"address": ":6060",
		"turso_url": "libsql://db.example.turso.io",
		"turso_auth_token": "tok"
	}`), 0o600))

	withArgs(t, "-c", path)

	cfg := LoadConfig()
	assert.Equal(t, ":6060", cfg.Address)
	assert.Equal(t, "libsql://db.example.turso.io", cfg.TursoURL)
	assert.Equal(t, "tok", cfg.TursoAuthToken)
	// untouched values keep their defaults
	assert.Equal(t, "./intervals.db", cfg.SQLitePath)
}
