package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/intervals/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-f string   SQLite database file path
//	-u string   Turso database URL
//	-t string   Turso auth token
//	-d string   PostgreSQL DSN
//	-p string   shared backend password
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-f", "-u", "-t", "-d", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Address, "a", config.Address, "address and port to run server")
	fs.StringVar(&config.SQLitePath, "f", config.SQLitePath, "SQLite database file")
	fs.StringVar(&config.TursoURL, "u", config.TursoURL, "Turso database URL")
	fs.StringVar(&config.TursoAuthToken, "t", config.TursoAuthToken, "Turso auth token")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SyncPassword, "p", config.SyncPassword, "shared backend password")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
