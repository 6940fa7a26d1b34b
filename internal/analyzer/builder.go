package analyzer

import (
	"github.com/rs/zerolog/log"
	"github.com/woozymasta/mclens/internal/patterns"
)

// Build loads the port pattern table from source and assembles the report.
// A table that cannot be loaded fails the whole build with a *patterns.LoadError,
// no partial report is returned.
func (an *Analyzer) Build(source patterns.Source, pluginLimit, portLimit int) (*Report, error) {
	if source == nil {
		return nil, &patterns.LoadError{Kind: patterns.ErrMissing}
	}

	table, err := source.Load()
	if err != nil {
		return nil, err
	}

	report := &Report{
		Platform: an.platform,
		Plugins:  an.Plugins(pluginLimit),
		Ports: Ports{
			Vanilla: an.VanillaPorts(),
			Plugins: an.PluginPorts(table, portLimit),
			Mods:    an.ModPorts(table, portLimit),
		},
	}
	if version, ok := an.Version(); ok {
		report.Version = &version
	}

	log.Debug().
		Stringer("platform", report.Platform).
		Int("lines", len(an.lines)).
		Int("plugins", len(report.Plugins)).
		Int("plugin_ports", len(report.Ports.Plugins)).
		Int("mod_ports", len(report.Ports.Mods)).
		Msg("Log analyzed")

	return report, nil
}

// Builder carries the pattern table source and scan budgets shared by many analyses.
type Builder struct {
	Patterns    patterns.Source // Port pattern table, loaded on every Build
	PluginLines int             // Leading lines scanned for plugin announcements
	PortLines   int             // Leading lines scanned for plugin and mod ports
}

// Build analyzes lines with the builder settings.
func (b Builder) Build(lines []string) (*Report, error) {
	return New(lines).Build(b.Patterns, b.PluginLines, b.PortLines)
}
