package analyzer

import "fmt"

// Platform is the server software that produced a log.
type Platform int

const (
	Vanilla Platform = iota
	CraftBukkit
	Spigot
	Paper
	Pufferfish
	Purpur
	Fabric
	Forge
	BungeeCord
	Waterfall
	Velocity
)

var platformNames = []string{
	Vanilla:     "Vanilla",
	CraftBukkit: "CraftBukkit",
	Spigot:      "Spigot",
	Paper:       "Paper",
	Pufferfish:  "Pufferfish",
	Purpur:      "Purpur",
	Fabric:      "Fabric",
	Forge:       "Forge",
	BungeeCord:  "BungeeCord",
	Waterfall:   "Waterfall",
	Velocity:    "Velocity",
}

// Platforms returns every platform in declaration order.
func Platforms() []Platform {
	all := make([]Platform, len(platformNames))
	for i := range platformNames {
		all[i] = Platform(i)
	}
	return all
}

func (p Platform) String() string {
	if p >= 0 && int(p) < len(platformNames) {
		return platformNames[p]
	}
	return fmt.Sprintf("Platform(%d)", int(p))
}

func (p Platform) MarshalText() ([]byte, error) {
	if p < 0 || int(p) >= len(platformNames) {
		return nil, fmt.Errorf("unknown platform %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Platform) UnmarshalText(data []byte) error {
	parsed, err := ParsePlatform(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePlatform returns the platform with the given name.
func ParsePlatform(name string) (Platform, error) {
	for i, known := range platformNames {
		if known == name {
			return Platform(i), nil
		}
	}
	return Vanilla, fmt.Errorf("unknown platform: %s", name)
}

// IsProxy reports whether the platform routes players to backend servers.
func (p Platform) IsProxy() bool {
	switch p {
	case BungeeCord, Waterfall, Velocity:
		return true
	}
	return false
}

// IsModded reports whether the platform is a mod loader.
func (p Platform) IsModded() bool {
	switch p {
	case Forge, Fabric:
		return true
	}
	return false
}

// IsBukkitBased reports whether the platform runs the CraftBukkit plugin API.
func (p Platform) IsBukkitBased() bool {
	switch p {
	case CraftBukkit, Spigot, Paper, Pufferfish, Purpur:
		return true
	}
	return false
}
