// Package extract holds the single-line extractors used by the analyzer:
// plugin announcements, server version banners and port announcements.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// "[LuckPerms] Loading LuckPerms v5.4.0" and Paper's "Loading server plugin LuckPerms v5.4.102"
	pluginLine = regexp.MustCompile(`Loading (?:server plugin )?(?P<name>[^\s\[\]]+) v(?P<version>\S+)`)

	// "Starting minecraft server version 1.21.4"
	versionLine = regexp.MustCompile(`(?i)Starting minecraft server version (?P<version>\S+)`)

	// ":8123", "port 24454", "port: 25575"
	portToken = regexp.MustCompile(`(?i)(?:[:/]|\bport\s*[:=]?\s*)(?P<port>\d{1,5})\b`)
)

// Plugin is a plugin name and version announced by a Bukkit-family server.
type Plugin struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// groups returns the named submatches of the first match of re in s, nil when nothing matches.
func groups(re *regexp.Regexp, s string) map[string]string {
	matches := re.FindStringSubmatch(s)
	if matches == nil {
		return nil
	}

	named := make(map[string]string, len(matches))
	for i, name := range re.SubexpNames() {
		if name != "" {
			named[name] = matches[i]
		}
	}
	return named
}

// BukkitPlugin extracts the plugin announced by a Bukkit plugin loader line.
func BukkitPlugin(line string) (Plugin, bool) {
	found := groups(pluginLine, line)
	if found == nil {
		return Plugin{}, false
	}

	return Plugin{Name: found["name"], Version: found["version"]}, true
}

// ServerVersion extracts the game version from the server start banner.
// Proxies do not print it.
func ServerVersion(line string) (string, bool) {
	found := groups(versionLine, line)
	if found == nil || found["version"] == "" {
		return "", false
	}
	return found["version"], true
}

// VanillaPort extracts the port from a line containing marker followed by
// a bind address, e.g. "Starting Minecraft server on *:25565".
func VanillaPort(line, marker string) (uint16, bool) {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return 0, false
	}

	fields := strings.Fields(line[idx+len(marker):])
	if len(fields) == 0 {
		return 0, false
	}

	addr := strings.TrimRight(fields[0], ".,")
	if colon := strings.LastIndexByte(addr, ':'); colon >= 0 {
		addr = addr[colon+1:]
	}
	return parsePort(addr)
}

// Port extracts the first port announced after mustContain in line.
// The name is returned unchanged so callers can insert the pair directly.
func Port(name, line, mustContain string) (string, uint16, bool) {
	if mustContain == "" {
		return "", 0, false
	}

	idx := strings.Index(line, mustContain)
	if idx < 0 {
		return "", 0, false
	}

	tail := line[idx:]
	for _, loc := range portToken.FindAllStringSubmatchIndex(tail, -1) {
		start, end := loc[2], loc[3]

		// first octet of a dotted address, not a port
		if end+1 < len(tail) && tail[end] == '.' && isDigit(tail[end+1]) {
			continue
		}

		if port, ok := parsePort(tail[start:end]); ok {
			return name, port, true
		}
	}

	return "", 0, false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func parsePort(s string) (uint16, bool) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint16(n), true
}
