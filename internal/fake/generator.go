// Package fake generates synthetic server startup logs for development databases and tests.
package fake

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/mclens/internal/analyzer"
	"github.com/woozymasta/mclens/internal/models"
	"github.com/woozymasta/mclens/internal/storage"
)

type plugin struct {
	name    string
	version string
	port    func(rng *rand.Rand) string // Port announcement, nil when the plugin opens none
}

var (
	gameVersions  = []string{"1.19.4", "1.20.1", "1.20.4", "1.20.6", "1.21.1", "1.21.4"}
	forgeVersions = []string{"45.2.0", "47.2.0", "47.3.0", "49.0.31"}
	loaderVersion = []string{"0.15.11", "0.16.5", "0.16.9"}

	plugins = []plugin{
		{name: "LuckPerms", version: "5.4.102"},
		{name: "EssentialsX", version: "2.20.1"},
		{name: "WorldEdit", version: "7.2.15+6463-5ca4dff"},
		{name: "Vault", version: "1.7.3-b131"},
		{name: "dynmap", version: "3.7-beta-4-935", port: func(rng *rand.Rand) string {
			return fmt.Sprintf("[dynmap] Web server started on address 0.0.0.0:%d", 8123+rng.Intn(10))
		}},
		{name: "Votifier", version: "2.7.3", port: func(rng *rand.Rand) string {
			return fmt.Sprintf("[Votifier] Votifier enabled on socket /0.0.0.0:%d.", 8192+rng.Intn(10))
		}},
		{name: "Geyser-Spigot", version: "2.2.0-SNAPSHOT", port: func(rng *rand.Rand) string {
			return fmt.Sprintf("[Geyser-Spigot] Started Geyser on 0.0.0.0:%d", 19132+rng.Intn(4))
		}},
	}

	mods = []func(rng *rand.Rand) string{
		func(rng *rand.Rand) string {
			return fmt.Sprintf("[voicechat] Voice chat server started at port %d", 24454+rng.Intn(10))
		},
		func(rng *rand.Rand) string {
			return fmt.Sprintf("Webserver bound to: 0.0.0.0:%d", 8100+rng.Intn(10))
		},
	}
)

// StartupLog returns a plausible startup log of platform. Every log detects as its platform.
func StartupLog(platform analyzer.Platform, rng *rand.Rand) []string {
	game := gameVersions[rng.Intn(len(gameVersions))]
	clock := time.Date(2024, 1, 1, rng.Intn(24), rng.Intn(60), 0, 0, time.UTC)

	var lines []string
	add := func(format string, args ...any) {
		clock = clock.Add(time.Duration(rng.Intn(1500)) * time.Millisecond)
		prefix := fmt.Sprintf("[%s INFO]: ", clock.Format("15:04:05"))
		if platform.IsModded() || platform == analyzer.Vanilla {
			prefix = fmt.Sprintf("[%s] [Server thread/INFO]: ", clock.Format("15:04:05"))
		}
		lines = append(lines, prefix+fmt.Sprintf(format, args...))
	}

	switch platform {
	case analyzer.BungeeCord, analyzer.Waterfall:
		add("%s %s", banner(platform, game, rng), "by md_5")
		add("Loaded plugin cmd_find version git:cmd_find:1.20-R0.2-SNAPSHOT by SpigotMC")
		add("Listening on /0.0.0.0:%d", 25577+rng.Intn(3))
		return lines
	case analyzer.Velocity:
		add("%s", banner(platform, game, rng))
		add("Loaded plugin luckperms 5.4.102 by Luck")
		add("Listening on /[0:0:0:0:0:0:0:0%%0]:%d", 25577+rng.Intn(3))
		add("Done (%.2fs)!", 1+rng.Float64()*3)
		return lines
	case analyzer.Forge, analyzer.Fabric:
		add("%s", banner(platform, game, rng))
	}

	add("Starting minecraft server version %s", game)
	add("Loading properties")
	add("Default game type: SURVIVAL")

	if platform.IsBukkitBased() {
		add("%s", banner(platform, game, rng))

		var announce []string
		for _, i := range rng.Perm(len(plugins))[:1+rng.Intn(len(plugins))] {
			p := plugins[i]
			add("[%s] Loading server plugin %s v%s", p.name, p.name, p.version)
			if p.port != nil {
				announce = append(announce, p.port(rng))
			}
		}
		for _, line := range announce {
			add("%s", line)
		}
	}

	server := 25565 + rng.Intn(10)
	add("Starting Minecraft server on *:%d", server)
	add("Preparing level \"world\"")

	if platform.IsModded() {
		for _, i := range rng.Perm(len(mods))[:rng.Intn(len(mods)+1)] {
			add("%s", mods[i](rng))
		}
	}

	if rng.Intn(2) == 0 {
		add("Starting GS4 status listener")
		add("Query running on 0.0.0.0:%d", server)
	}
	if rng.Intn(2) == 0 {
		add("Starting remote control listener")
		add("RCON running on 0.0.0.0:%d", 25575+rng.Intn(10))
	}

	add("Done (%.3fs)! For help, type \"help\"", 2+rng.Float64()*20)
	return lines
}

func banner(platform analyzer.Platform, game string, rng *rand.Rand) string {
	build := 100 + rng.Intn(400)

	switch platform {
	case analyzer.Paper:
		return fmt.Sprintf("%s git-Paper-%d (MC: %s) (Implementing API version %s-R0.1-SNAPSHOT)", analyzer.PaperBanner, build, game, game)
	case analyzer.Spigot:
		return fmt.Sprintf("%s %d-Spigot-%07x-%07x (MC: %s)", analyzer.CraftBukkitBanner, 3000+build, rng.Intn(1<<28), rng.Intn(1<<28), game)
	case analyzer.CraftBukkit:
		return fmt.Sprintf("%s %d-Bukkit-%07x (MC: %s)", analyzer.CraftBukkitBanner, 3000+build, rng.Intn(1<<28), game)
	case analyzer.Purpur:
		return fmt.Sprintf("%s git-Purpur-%d (MC: %s)", analyzer.PurpurBanner, 2000+build, game)
	case analyzer.Pufferfish:
		return fmt.Sprintf("%s git-Pufferfish-%d (MC: %s)", analyzer.PufferfishBanner, build/10, game)
	case analyzer.BungeeCord:
		return fmt.Sprintf("%s git:BungeeCord-Bootstrap:1.20-R0.2-SNAPSHOT:%07x:%d", analyzer.BungeeCordBanner, rng.Intn(1<<28), 1700+build)
	case analyzer.Waterfall:
		return fmt.Sprintf("%s git:Waterfall-Bootstrap:1.20-R0.2-SNAPSHOT:%07x:%d", analyzer.WaterfallBanner, rng.Intn(1<<28), 500+build)
	case analyzer.Velocity:
		return fmt.Sprintf("%s 3.3.0-SNAPSHOT (git-%08x-b%d)...", analyzer.VelocityBanner, rng.Uint32(), build)
	case analyzer.Forge:
		return fmt.Sprintf("%s %s, for MC %s with MCP 20230612.114412", analyzer.ForgeBanner, forgeVersions[rng.Intn(len(forgeVersions))], game)
	case analyzer.Fabric:
		return fmt.Sprintf("Loading Minecraft %s %s %s", game, analyzer.FabricBanner, loaderVersion[rng.Intn(len(loaderVersion))])
	}
	return ""
}

// GenerateData populates the storage with count analyzed synthetic logs.
// It simulates platform popularity, resubmissions and last-seen dates over 30 days.
func GenerateData(store *storage.Repository, builder analyzer.Builder, count int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Rough popularity order
	weighted := []analyzer.Platform{
		analyzer.Paper, analyzer.Paper, analyzer.Paper, analyzer.Paper,
		analyzer.Vanilla, analyzer.Vanilla, analyzer.Purpur, analyzer.Spigot,
		analyzer.Fabric, analyzer.Fabric, analyzer.Forge, analyzer.Forge,
		analyzer.Velocity, analyzer.Waterfall, analyzer.BungeeCord,
		analyzer.Pufferfish, analyzer.CraftBukkit,
	}

	for range count {
		platform := weighted[rng.Intn(len(weighted))]
		lines := StartupLog(platform, rng)

		report, err := builder.Build(lines)
		if err != nil {
			log.Error().Err(err).Msg("Failed to analyze fake log, generation stopped")
			return
		}

		// Random date-time in 30 days range
		seenTime := time.Now().Add(-time.Duration(rng.Intn(30)) * 24 * time.Hour).
			Add(-time.Duration(rng.Intn(1440)) * time.Minute)

		rec := models.Record{
			Fingerprint: storage.Fingerprint(lines),
			Source:      "fake:" + strings.ToLower(platform.String()),
			RawLog:      strings.Join(lines, "\n"),
			Report:      *report,
			FirstSeen:   seenTime.Add(-time.Hour * 24 * 7),
			LastSeen:    seenTime,
		}

		if _, _, err := store.UpsertReport(rec); err != nil {
			log.Warn().Err(err).Msg("Failed to generate fake report")
			continue
		}

		if rng.Float32() < 0.3 { // 30% chance resubmitted
			_, _, _ = store.UpsertReport(rec)
		}
	}

	log.Info().Int("count", count).Msg("Fake reports generated")
}
