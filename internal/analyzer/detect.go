package analyzer

import "strings"

// Startup banners used for platform detection.
const (
	PaperBanner       = "This server is running Paper version"
	CraftBukkitBanner = "This server is running CraftBukkit version"
	PurpurBanner      = "This server is running Purpur version"
	PufferfishBanner  = "This server is running Pufferfish version"
	BungeeCordBanner  = "Enabled BungeeCord version"
	WaterfallBanner   = "Enabled Waterfall version"
	VelocityBanner    = "Booting up Velocity"
	ForgeBanner       = "Forge mod loading, version"
	FabricBanner      = "with Fabric Loader"
)

// Rule resolves a platform from the full line set, ok is false when the rule does not apply.
type Rule struct {
	Name   string
	Detect func(lines []string) (platform Platform, ok bool)
}

// Rules returns the detection rules in precedence order.
// Derivative platforms come before the platform whose banner they embed.
func Rules() []Rule {
	return []Rule{
		bannerRule("paper", PaperBanner, Paper),
		{Name: "craftbukkit", Detect: craftBukkitFamily},
		bannerRule("purpur", PurpurBanner, Purpur),
		bannerRule("pufferfish", PufferfishBanner, Pufferfish),
		bannerRule("bungeecord", BungeeCordBanner, BungeeCord),
		bannerRule("waterfall", WaterfallBanner, Waterfall),
		bannerRule("velocity", VelocityBanner, Velocity),
		bannerRule("forge", ForgeBanner, Forge),
		bannerRule("fabric", FabricBanner, Fabric),
	}
}

// Detect returns the platform that produced lines, Vanilla when no rule matches.
func Detect(lines []string) Platform {
	return DetectWith(lines, Rules())
}

// DetectWith evaluates rules top to bottom and returns the first match.
func DetectWith(lines []string, rules []Rule) Platform {
	for _, rule := range rules {
		if platform, ok := rule.Detect(lines); ok {
			return platform
		}
	}
	return Vanilla
}

func bannerRule(name, banner string, platform Platform) Rule {
	return Rule{
		Name: name,
		Detect: func(lines []string) (Platform, bool) {
			return platform, containsAny(lines, banner)
		},
	}
}

// craftBukkitFamily inspects only the first CraftBukkit banner,
// Spigot and older Paper builds print it with their own name inside.
func craftBukkitFamily(lines []string) (Platform, bool) {
	for _, line := range lines {
		if !strings.Contains(line, CraftBukkitBanner) {
			continue
		}

		switch {
		case strings.Contains(line, "-Spigot"):
			return Spigot, true
		case strings.Contains(line, "Paper"):
			return Paper, true
		default:
			return CraftBukkit, true
		}
	}
	return Vanilla, false
}

func containsAny(lines []string, substr string) bool {
	for _, line := range lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
