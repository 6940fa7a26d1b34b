package config

import (
	"errors"
	"testing"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/woozymasta/mclens/internal/patterns"
)

func TestDefaults(t *testing.T) {
	cfg, err := ParseArgs([]string{"latest.log"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Analyzer.Patterns != "configuration/ports.toml" {
		t.Errorf("patterns %q", cfg.Analyzer.Patterns)
	}
	if cfg.Analyzer.PluginLines != 1000 || cfg.Analyzer.PortLines != 1000 {
		t.Errorf("budgets %d/%d", cfg.Analyzer.PluginLines, cfg.Analyzer.PortLines)
	}
	if cfg.Input.Timeout != 30*time.Second || cfg.Input.DockerTail != "all" {
		t.Errorf("input %+v", cfg.Input)
	}
	if len(cfg.Args.Files) != 1 || cfg.Args.Files[0] != "latest.log" {
		t.Errorf("files %q", cfg.Args.Files)
	}
	if _, ok := cfg.PatternSource().(patterns.File); !ok {
		t.Errorf("source %T, want patterns.File", cfg.PatternSource())
	}
}

func TestNamespacedFlags(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"--analyzer-builtin-patterns",
		"--analyzer-optional-patterns",
		"--analyzer-port-lines", "50",
		"--input-docker", "mc",
		"--input-mclogs", "abc123",
	})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Analyzer.PortLines != 50 {
		t.Errorf("port lines %d", cfg.Analyzer.PortLines)
	}
	optional, ok := cfg.PatternSource().(patterns.Optional)
	if !ok {
		t.Fatalf("source %T, want patterns.Optional", cfg.PatternSource())
	}
	if _, ok := optional.Source.(patterns.Embedded); !ok {
		t.Errorf("wrapped source %T, want patterns.Embedded", optional.Source)
	}

	builder := cfg.Builder()
	if builder.PortLines != 50 || builder.PluginLines != 1000 {
		t.Errorf("builder %+v", builder)
	}
}

func TestEnvironment(t *testing.T) {
	t.Setenv("MCLENS_ANALYZER_PATTERNS", "/etc/mclens/ports.yaml")
	t.Setenv("MCLENS_INPUT_DOCKER", "survival,creative")

	cfg, err := ParseArgs(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Analyzer.Patterns != "/etc/mclens/ports.yaml" {
		t.Errorf("patterns %q", cfg.Analyzer.Patterns)
	}
	if len(cfg.Input.Docker) != 2 {
		t.Errorf("docker %q", cfg.Input.Docker)
	}
}

func TestValidation(t *testing.T) {
	if _, err := ParseArgs(nil); !errors.Is(err, ErrNoInput) {
		t.Errorf("no input: %v", err)
	}
	if _, err := ParseArgs([]string{"--serve"}); !errors.Is(err, ErrNoAuthToken) {
		t.Errorf("serve without token: %v", err)
	}
	if _, err := ParseArgs([]string{"--serve", "-t", "secret"}); err != nil {
		t.Errorf("serve: %v", err)
	}
	if _, err := ParseArgs([]string{"--db-reanalyze=Folia"}); err == nil {
		t.Error("unknown platform accepted")
	}
	if _, err := ParseArgs([]string{"--analyzer-plugin-lines=-1", "a.log"}); err == nil {
		t.Error("negative budget accepted")
	}
}

func TestMaintenanceFilters(t *testing.T) {
	cfg, err := ParseArgs([]string{"--db-reanalyze"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Reanalyze != AnyPlatform || cfg.ReanalyzePlatform() != "" {
		t.Errorf("reanalyze %q -> %q", cfg.Storage.Reanalyze, cfg.ReanalyzePlatform())
	}

	cfg, err = ParseArgs([]string{"--db-reanalyze=Paper", "--db-prune-older", "720h", "--db-prune-platform", "Forge"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ReanalyzePlatform() != "Paper" || cfg.PrunePlatform() != "Forge" {
		t.Errorf("filters %q %q", cfg.ReanalyzePlatform(), cfg.PrunePlatform())
	}
	if cfg.Storage.PruneOlder != 720*time.Hour {
		t.Errorf("prune older %s", cfg.Storage.PruneOlder)
	}
}

func TestHelp(t *testing.T) {
	_, err := ParseArgs([]string{"--help"})
	var flagsErr *flags.Error
	if !errors.As(err, &flagsErr) || flagsErr.Type != flags.ErrHelp {
		t.Errorf("got %v, want help error", err)
	}
}
