// Package patterns defines the port pattern table: per logical service name,
// the substrings whose presence in a log line marks that service's port announcement.
// It decodes the table from TOML, YAML or JSON documents and reports load failures
// as typed errors.
package patterns

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissing   = errors.New("port pattern table not found")  // Table file does not exist or cannot be accessed
	ErrMalformed = errors.New("port pattern table malformed") // Table file exists but does not decode into the expected shape
)

// LoadError describes a failed table load. Kind is ErrMissing or ErrMalformed,
// so callers can branch with errors.Is.
type LoadError struct {
	Path string
	Kind error
	Err  error
}

func (err *LoadError) Error() string {
	if err.Path == "" && err.Err == nil {
		return err.Kind.Error()
	} else if err.Err == nil {
		return fmt.Sprintf("%s: %s", err.Kind, err.Path)
	}
	return fmt.Sprintf("%s: %s: %s", err.Kind, err.Path, err.Err)
}

func (err *LoadError) Unwrap() []error {
	if err.Err == nil {
		return []error{err.Kind}
	}
	return []error{err.Kind, err.Err}
}

// Table holds the two pattern sections. Each maps a logical port name to
// alternative trigger substrings, checked independently.
type Table struct {
	Plugins map[string][]string `toml:"plugins" yaml:"plugins" json:"plugins"`
	Mods    map[string][]string `toml:"mods" yaml:"mods" json:"mods"`
}

// document is the on-disk layout, both sections live under "ports".
type document struct {
	Ports *Table `toml:"ports" yaml:"ports" json:"ports"`
}

// Empty returns a table without entries.
func Empty() *Table {
	return &Table{Plugins: map[string][]string{}, Mods: map[string][]string{}}
}

// Len returns the total number of entries in both sections.
func (table *Table) Len() int {
	if table == nil {
		return 0
	}
	return len(table.Plugins) + len(table.Mods)
}

// Format of a table document.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
	FormatJSON
)

func (format Format) String() string {
	switch format {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "toml"
	}
}

// FormatOf picks the document format from the file extension, TOML by default.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatTOML
	}
}

// Decode parses a table document. Both "ports.plugins" and "ports.mods" must be present,
// empty sections are allowed.
func Decode(data []byte, format Format) (*Table, error) {
	var doc document

	switch format {
	case FormatTOML:
		meta, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, err
		}
		for _, section := range []string{"plugins", "mods"} {
			if !meta.IsDefined("ports", section) {
				return nil, fmt.Errorf("missing section ports.%s", section)
			}
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format %d", format)
	}

	if doc.Ports == nil {
		return nil, errors.New("missing section ports")
	} else if doc.Ports.Plugins == nil && format != FormatTOML {
		return nil, errors.New("missing section ports.plugins")
	} else if doc.Ports.Mods == nil && format != FormatTOML {
		return nil, errors.New("missing section ports.mods")
	}

	// TOML leaves empty tables as nil maps
	if doc.Ports.Plugins == nil {
		doc.Ports.Plugins = map[string][]string{}
	}
	if doc.Ports.Mods == nil {
		doc.Ports.Mods = map[string][]string{}
	}

	return doc.Ports, nil
}
