// Package config handles the parsing and validation of application configuration
// from command-line arguments and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/woozymasta/mclens/internal/analyzer"
	"github.com/woozymasta/mclens/internal/logger"
	"github.com/woozymasta/mclens/internal/patterns"
	"github.com/woozymasta/mclens/internal/vars"
)

// AnyPlatform mark for maintenance any (all) platform
const AnyPlatform = "AnyPlatform"

var (
	// ErrNoInput is returned when neither inputs, serve mode nor a maintenance task are requested.
	ErrNoInput = errors.New("no log input given, pass a file, --input-docker, --input-mclogs or --serve")

	// ErrNoAuthToken is returned in serve mode without an admin token.
	ErrNoAuthToken = errors.New("required flag `-t, --auth-token' or environment variable `MCLENS_AUTH_TOKEN` was not specified")
)

// Config represents the complete application flags configuration.
type Config struct {
	// betteralign:ignore

	Analyzer  Analyzer      `group:"Analyzer Options" namespace:"analyzer" env-namespace:"MCLENS_ANALYZER"`
	Input     Input         `group:"Input Options" namespace:"input" env-namespace:"MCLENS_INPUT"`
	Server    Server        `group:"Server Options" env-namespace:"MCLENS"`
	Storage   Storage       `group:"Storage Options" namespace:"db" env-namespace:"MCLENS_DB"`
	RateLimit RateLimit     `group:"Rate Limit Options" namespace:"rate-limit" env-namespace:"MCLENS_RATE_LIMIT"`
	Logger    logger.Config `group:"Logger Options" namespace:"log" env-namespace:"MCLENS_LOG"`

	Args struct {
		Files []string `positional-arg-name:"log" description:"Log files to analyze, - for stdin"`
	} `positional-args:"yes"`

	Version bool `short:"v" long:"version" description:"Print version and build info"`
}

// Analyzer holds the pattern table location and scan budgets.
type Analyzer struct {
	// betteralign:ignore

	Patterns    string `short:"p" long:"patterns" env:"PATTERNS" description:"Path to port pattern table (toml, yaml or json)" default:"configuration/ports.toml"`
	Builtin     bool   `long:"builtin-patterns" env:"BUILTIN_PATTERNS" description:"Use the embedded port pattern table instead of --analyzer-patterns"`
	Optional    bool   `long:"optional-patterns" env:"OPTIONAL_PATTERNS" description:"Continue with an empty pattern table when it cannot be loaded"`
	PluginLines int    `long:"plugin-lines" env:"PLUGIN_LINES" description:"Leading log lines scanned for plugins" default:"1000"`
	PortLines   int    `long:"port-lines" env:"PORT_LINES" description:"Leading log lines scanned for plugin and mod ports" default:"1000"`
}

// Input holds log sources besides positional files.
type Input struct {
	// betteralign:ignore

	Docker     []string      `long:"docker" env:"DOCKER" description:"Docker container ID or name to read logs from" env-delim:","`
	Mclogs     []string      `long:"mclogs" env:"MCLOGS" description:"mclo.gs log ID or URL" env-delim:","`
	MclogsAPI  string        `long:"mclogs-api" env:"MCLOGS_API" description:"mclo.gs API base URL" default:"https://api.mclo.gs"`
	DockerTail string        `long:"docker-tail" env:"DOCKER_TAIL" description:"Container log lines from the end, all for the whole log" default:"all"`
	Timeout    time.Duration `long:"timeout" env:"TIMEOUT" description:"Timeout for fetching remote logs" default:"30s"`
	Store      bool          `long:"store" env:"STORE" description:"Store one-shot reports in the database"`
	Compact    bool          `long:"compact" env:"COMPACT" description:"Print reports as compact single-line JSON"`
}

// Server holds web server configuration.
type Server struct {
	// betteralign:ignore

	Serve       bool   `short:"s" long:"serve" env:"SERVE" description:"Run the HTTP analysis service"`
	Address     string `short:"l" long:"address" env:"LISTEN_ADDRESS" description:"Server listen address" default:":8080"`
	AuthToken   string `short:"t" long:"auth-token" env:"AUTH_TOKEN" description:"Admin authentication token"`
	MaxBodySize int64  `long:"max-body-size" env:"MAX_BODY_SIZE" description:"Max body size for submitted logs" default:"4194304"`
	TrustProxy  bool   `long:"trust-proxy" env:"TRUST_PROXY" description:"Trust X-Forwarded-For headers"`
	QueueSize   int    `long:"queue-size" env:"QUEUE_SIZE" description:"Pending report writes before new ones are dropped" default:"1000"`
	Workers     int    `long:"workers" env:"WORKERS" description:"Report writer workers" default:"4"`
}

// Storage holds database configuration.
type Storage struct {
	// betteralign:ignore

	Path          string        `short:"d" long:"path" env:"PATH" description:"Path to SQLite database" default:"mclens.db"`
	PruneOlder    time.Duration `long:"prune-older" description:"Delete reports not seen within duration"`
	PrunePlatform string        `long:"prune-platform" description:"Restrict --db-prune-older to one platform"`
	Reanalyze     string        `long:"reanalyze" description:"Re-analyze stored logs with the current pattern table. Optional arg: platform name." optional:"true" optional-value:"AnyPlatform"`
	GenerateCount int           `long:"gen-fake-data" hidden:"true"`
}

// RateLimit holds API rate limiting configuration.
type RateLimit struct {
	// betteralign:ignore

	HardLimitCount int           `long:"hard-count" env:"HARD_COUNT" description:"Hard IP limit: requests count" default:"8"`
	HardLimitWin   time.Duration `long:"hard-window" env:"HARD_WINDOW" description:"Hard IP limit: window duration" default:"1m"`
	SoftLimitDur   time.Duration `long:"soft" env:"SOFT" description:"Soft limit: do not store a resubmitted log seen within duration" default:"5m"`
}

// Parse reads the configuration from flags and environment variables.
// It terminates the application if the configuration is invalid or if the help flag is invoked.
func Parse() *Config {
	cfg, err := ParseArgs(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cfg.Version {
		vars.Print()
		os.Exit(0)
	}

	return cfg
}

// ParseArgs parses args and the environment without exiting.
func ParseArgs(args []string) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	parser.NamespaceDelimiter = "-"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if cfg.Version {
		return &cfg, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks option combinations go-flags cannot express.
func (cfg *Config) Validate() error {
	if cfg.Server.Serve && cfg.Server.AuthToken == "" {
		return ErrNoAuthToken
	}
	if cfg.Analyzer.PluginLines < 0 || cfg.Analyzer.PortLines < 0 {
		return errors.New("scan line budgets must not be negative")
	}
	if cfg.Input.Timeout <= 0 {
		return errors.New("input timeout must be positive")
	}
	if cfg.Server.Workers < 1 || cfg.Server.QueueSize < 1 {
		return errors.New("workers and queue size must be positive")
	}
	if cfg.Storage.PrunePlatform != "" {
		if _, err := platformFilter(cfg.Storage.PrunePlatform); err != nil {
			return err
		}
	}
	if cfg.Storage.Reanalyze != "" {
		if _, err := platformFilter(cfg.Storage.Reanalyze); err != nil {
			return err
		}
	}

	if !cfg.Server.Serve && !cfg.Maintenance() && !cfg.HasInput() {
		return ErrNoInput
	}

	return nil
}

// HasInput reports whether any log input was given.
func (cfg *Config) HasInput() bool {
	return len(cfg.Args.Files) > 0 || len(cfg.Input.Docker) > 0 || len(cfg.Input.Mclogs) > 0
}

// Maintenance reports whether a database task was requested instead of analysis.
func (cfg *Config) Maintenance() bool {
	return cfg.Storage.PruneOlder > 0 || cfg.Storage.Reanalyze != "" || cfg.Storage.GenerateCount > 0
}

// PatternSource returns the pattern table source selected by the analyzer options.
func (cfg *Config) PatternSource() patterns.Source {
	var source patterns.Source = patterns.File(cfg.Analyzer.Patterns)
	if cfg.Analyzer.Builtin {
		source = patterns.Embedded{}
	}
	if cfg.Analyzer.Optional {
		source = patterns.Optional{Source: source}
	}
	return source
}

// ReanalyzePlatform returns the platform filter for --db-reanalyze, empty for all.
func (cfg *Config) ReanalyzePlatform() string {
	platform, _ := platformFilter(cfg.Storage.Reanalyze)
	return platform
}

// PrunePlatform returns the platform filter for --db-prune-older, empty for all.
func (cfg *Config) PrunePlatform() string {
	platform, _ := platformFilter(cfg.Storage.PrunePlatform)
	return platform
}

// platformFilter converts AnyPlatform to an empty filter and checks platform names.
func platformFilter(input string) (string, error) {
	if input == "" || input == AnyPlatform {
		return "", nil
	}

	platform, err := analyzer.ParsePlatform(input)
	if err != nil {
		return "", err
	}
	return platform.String(), nil
}

// Builder returns an analysis builder with the configured table source and scan budgets.
func (cfg *Config) Builder() analyzer.Builder {
	return analyzer.Builder{
		Patterns:    cfg.PatternSource(),
		PluginLines: cfg.Analyzer.PluginLines,
		PortLines:   cfg.Analyzer.PortLines,
	}
}
