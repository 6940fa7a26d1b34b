// Package assets provides access to embedded files: SQL migrations and the default port pattern table.
package assets

import (
	"embed"
	"io/fs"
)

// DefaultPatterns is the name of the embedded port pattern table.
const DefaultPatterns = "ports.toml"

//go:embed migrations/*.sql ports.toml
var embedFS embed.FS

// ReadFile returns the content of a specific file from the embedded assets by its name.
func ReadFile(name string) ([]byte, error) {
	return embedFS.ReadFile(name)
}

// Migrations returns the SQL migrations directory as its own file system.
func Migrations() (fs.FS, error) {
	return fs.Sub(embedFS, "migrations")
}
