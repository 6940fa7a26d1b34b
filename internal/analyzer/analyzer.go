// Package analyzer classifies Minecraft server startup logs: it detects the server platform
// and extracts the version, loaded plugins and bound ports into a Report.
package analyzer

import (
	"slices"

	"github.com/woozymasta/mclens/internal/extract"
	"github.com/woozymasta/mclens/internal/patterns"
)

// Vanilla port announcement markers.
const (
	ServerPortMessage = "Starting Minecraft server on"
	QueryPortMessage  = "Query running on"
	RconPortMessage   = "RCON running on"
)

// Analyzer holds one log and its platform, detected once on creation.
type Analyzer struct {
	lines    []string
	platform Platform
}

// New copies lines and detects their platform.
func New(lines []string) *Analyzer {
	return &Analyzer{
		lines:    slices.Clone(lines),
		platform: Detect(lines),
	}
}

// Platform returns the detected platform.
func (an *Analyzer) Platform() Platform { return an.platform }

// Plugins returns plugin versions announced in the first limit lines of a Bukkit-family log.
// Proxy plugin listings are not supported and yield an empty map.
func (an *Analyzer) Plugins(limit int) map[string]string {
	plugins := map[string]string{}
	if !an.platform.IsBukkitBased() {
		return plugins
	}

	for _, line := range head(an.lines, limit) {
		if plugin, ok := extract.BukkitPlugin(line); ok {
			plugins[plugin.Name] = plugin.Version
		}
	}
	return plugins
}

// Version returns the first game version announced in the log. Proxies never report one.
func (an *Analyzer) Version() (string, bool) {
	if an.platform.IsProxy() {
		return "", false
	}

	for _, line := range an.lines {
		if version, ok := extract.ServerVersion(line); ok {
			return version, true
		}
	}
	return "", false
}

// VanillaPorts scans every line regardless of platform, the last announcement of each port wins.
func (an *Analyzer) VanillaPorts() VanillaPorts {
	var ports VanillaPorts
	for _, line := range an.lines {
		if port, ok := extract.VanillaPort(line, ServerPortMessage); ok {
			ports.Server = &port
		}
		if port, ok := extract.VanillaPort(line, QueryPortMessage); ok {
			ports.Query = &port
		}
		if port, ok := extract.VanillaPort(line, RconPortMessage); ok {
			ports.Rcon = &port
		}
	}
	return ports
}

// PluginPorts matches the plugins section of table against the first limit lines of a Bukkit-family log.
func (an *Analyzer) PluginPorts(table *patterns.Table, limit int) map[string]uint16 {
	if table == nil || !an.platform.IsBukkitBased() {
		return map[string]uint16{}
	}
	return matchPorts(an.lines, limit, table.Plugins)
}

// ModPorts matches the mods section of table against the first limit lines of a modded log.
func (an *Analyzer) ModPorts(table *patterns.Table, limit int) map[string]uint16 {
	if table == nil || !an.platform.IsModded() {
		return map[string]uint16{}
	}
	return matchPorts(an.lines, limit, table.Mods)
}

// matchPorts tries every trigger of every entry on every line; triggers are alternatives.
// Later lines overwrite earlier ones, and within a line later triggers overwrite earlier ones.
func matchPorts(lines []string, limit int, section map[string][]string) map[string]uint16 {
	ports := map[string]uint16{}
	for _, line := range head(lines, limit) {
		for name, triggers := range section {
			for _, mustContain := range triggers {
				if key, port, ok := extract.Port(name, line, mustContain); ok {
					ports[key] = port
				}
			}
		}
	}
	return ports
}

// head returns at most limit leading lines, none for a negative limit.
func head(lines []string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	return lines[:min(limit, len(lines))]
}
