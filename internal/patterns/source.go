package patterns

import (
	"errors"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/mclens/assets"
)

var (
	_ Source = File("")
	_ Source = Embedded{}
	_ Source = Optional{}
	_ Source = (*Table)(nil)
)

// Source provides a pattern table. Load is called once per analysis.
type Source interface {
	Load() (*Table, error)
}

// File loads the table from a path on disk, decoded by extension.
type File string

// Load reads and decodes the file. A missing or inaccessible file yields ErrMissing,
// anything that fails to read or decode yields ErrMalformed.
func (path File) Load() (*Table, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, &LoadError{Path: string(path), Kind: ErrMissing, Err: err}
		}
		return nil, &LoadError{Path: string(path), Kind: ErrMalformed, Err: err}
	}

	table, err := Decode(data, FormatOf(string(path)))
	if err != nil {
		return nil, &LoadError{Path: string(path), Kind: ErrMalformed, Err: err}
	}

	log.Trace().
		Str("path", string(path)).
		Int("plugins", len(table.Plugins)).
		Int("mods", len(table.Mods)).
		Msg("Port pattern table loaded")

	return table, nil
}

// Embedded loads the default table shipped with the binary.
type Embedded struct{}

func (Embedded) Load() (*Table, error) {
	data, err := assets.ReadFile(assets.DefaultPatterns)
	if err != nil {
		return nil, &LoadError{Path: assets.DefaultPatterns, Kind: ErrMissing, Err: err}
	}

	table, err := Decode(data, FormatTOML)
	if err != nil {
		return nil, &LoadError{Path: assets.DefaultPatterns, Kind: ErrMalformed, Err: err}
	}
	return table, nil
}

// Load returns the table itself, so an already decoded table can be injected as a Source.
func (table *Table) Load() (*Table, error) {
	if table == nil {
		return Empty(), nil
	}
	return table, nil
}

// Optional wraps a Source and degrades to an empty table when it fails.
type Optional struct {
	Source Source
}

func (opt Optional) Load() (*Table, error) {
	if opt.Source == nil {
		return Empty(), nil
	}

	table, err := opt.Source.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Port pattern table unavailable, plugin and mod ports disabled")
		return Empty(), nil
	}
	return table, nil
}
