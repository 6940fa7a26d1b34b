package patterns

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

const tomlTable = `
[ports.plugins]
dynmap = ["Web server started on address", "[dynmap] Web server started"]

[ports.mods]
voicechat = ["Voice chat server started at port"]
`

const yamlTable = `
ports:
  plugins:
    dynmap: ["Web server started on address"]
  mods: {}
`

const jsonTable = `{"ports": {"plugins": {}, "mods": {"voicechat": ["Voice chat server started at port"]}}}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		content string
		plugins int
		mods    int
	}{
		{"ports.toml", tomlTable, 1, 1},
		{"ports.yaml", yamlTable, 1, 0},
		{"ports.json", jsonTable, 0, 1},
	}

	for _, tt := range tests {
		table, err := File(writeFile(t, tt.name, tt.content)).Load()
		if err != nil {
			t.Errorf("%s: %s", tt.name, err)
			continue
		}
		if len(table.Plugins) != tt.plugins || len(table.Mods) != tt.mods {
			t.Errorf("%s: got %d plugins %d mods, want %d %d", tt.name, len(table.Plugins), len(table.Mods), tt.plugins, tt.mods)
		}
	}
}

func TestTriggerOrderKept(t *testing.T) {
	table, err := Decode([]byte(tomlTable), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Web server started on address", "[dynmap] Web server started"}
	if !slices.Equal(table.Plugins["dynmap"], want) {
		t.Errorf("got %q, want %q", table.Plugins["dynmap"], want)
	}
}

func TestFileMissing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "configuration", "ports.toml")).Load()
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("got %v, want ErrMissing", err)
	}
	if errors.Is(err, ErrMalformed) {
		t.Error("missing file also reported as malformed")
	}

	var loadErr *LoadError
	if !errors.As(err, &loadErr) || loadErr.Path == "" {
		t.Errorf("expected *LoadError with path, got %#v", err)
	}
}

func TestFileMalformed(t *testing.T) {
	tests := map[string]string{
		"syntax.toml":      "[ports.plugins\ndynmap = [",
		"no-mods.toml":     "[ports.plugins]\ndynmap = [\"x\"]\n",
		"no-ports.toml":    "[other]\nkey = 1\n",
		"wrong-type.toml":  "[ports.plugins]\ndynmap = 8123\n[ports.mods]\n",
		"no-plugins.yaml":  "ports:\n  mods: {}\n",
		"syntax.json":      `{"ports": `,
		"wrong-shape.json": `{"ports": {"plugins": [], "mods": {}}}`,
	}

	for name, content := range tests {
		_, err := File(writeFile(t, name, content)).Load()
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: got %v, want ErrMalformed", name, err)
		}
	}
}

func TestDirectoryIsMalformed(t *testing.T) {
	_, err := File(t.TempDir()).Load()
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("got %v, want ErrMalformed", err)
	}
}

func TestEmbedded(t *testing.T) {
	table, err := Embedded{}.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Plugins) == 0 || len(table.Mods) == 0 {
		t.Errorf("embedded table has empty sections: %+v", table)
	}
}

func TestOptional(t *testing.T) {
	table, err := Optional{Source: File(filepath.Join(t.TempDir(), "missing.toml"))}.Load()
	if err != nil {
		t.Fatalf("optional source failed: %s", err)
	}
	if table.Len() != 0 {
		t.Errorf("expected empty table, got %d entries", table.Len())
	}
}

func TestStaticTable(t *testing.T) {
	var nilTable *Table
	table, err := nilTable.Load()
	if err != nil || table == nil || table.Len() != 0 {
		t.Errorf("nil table should load as empty, got %v %v", table, err)
	}

	static := &Table{Plugins: map[string][]string{"a": {"b"}}}
	if got, _ := static.Load(); got != static {
		t.Error("static table not returned as is")
	}
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{
		"configuration/ports.toml": FormatTOML,
		"ports.YML":                FormatYAML,
		"ports.yaml":               FormatYAML,
		"ports.json":               FormatJSON,
		"ports":                    FormatTOML,
	} {
		if got := FormatOf(path); got != want {
			t.Errorf("%s: got %s, want %s", path, got, want)
		}
	}
}
