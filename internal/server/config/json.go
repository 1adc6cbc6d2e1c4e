package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/intervals/internal/flagx"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, its fields are copied into the
// runtime Config struct.
type JsonConfig struct {
	Address        string `json:"address"`
	SQLitePath     string `json:"sqlite_path"`
	TursoURL       string `json:"turso_url"`
	TursoAuthToken string `json:"turso_auth_token"`
	DatabaseDSN    string `json:"database_dsn"`
	SyncPassword   string `json:"sync_password"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
//
// Only non-empty JSON values override the existing Config fields, so the
// file may contain a subset of the settings.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.Address != "" {
		config.Address = c.Address
	}
	if c.SQLitePath != "" {
		config.SQLitePath = c.SQLitePath
	}
	if c.TursoURL != "" {
		config.TursoURL = c.TursoURL
	}
	if c.TursoAuthToken != "" {
		config.TursoAuthToken = c.TursoAuthToken
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SyncPassword != "" {
		config.SyncPassword = c.SyncPassword
	}
}
