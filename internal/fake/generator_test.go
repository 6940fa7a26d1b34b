package fake

import (
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/mclens/internal/analyzer"
	"github.com/woozymasta/mclens/internal/patterns"
	"github.com/woozymasta/mclens/internal/storage"
)

func TestStartupLogDetectsAsPlatform(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, platform := range analyzer.Platforms() {
		for range 25 {
			lines := StartupLog(platform, rng)
			if got := analyzer.Detect(lines); got != platform {
				t.Fatalf("%s log detected as %s:\n%s", platform, got, strings.Join(lines, "\n"))
			}
		}
	}
}

func TestStartupLogReport(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	builder := analyzer.Builder{Patterns: patterns.Embedded{}, PluginLines: 1000, PortLines: 1000}

	for _, platform := range analyzer.Platforms() {
		lines := StartupLog(platform, rng)
		report, err := builder.Build(lines)
		if err != nil {
			t.Fatal(err)
		}

		if platform.IsProxy() {
			if report.Version != nil || len(report.Plugins) != 0 {
				t.Errorf("%s: proxy report %+v", platform, report)
			}
			continue
		}

		if report.Version == nil {
			t.Errorf("%s: no version", platform)
		}
		if report.Ports.Vanilla.Server == nil {
			t.Errorf("%s: no server port", platform)
		}
		if platform.IsBukkitBased() && len(report.Plugins) == 0 {
			t.Errorf("%s: no plugins", platform)
		}
		if !platform.IsBukkitBased() && len(report.Ports.Plugins) != 0 {
			t.Errorf("%s: plugin ports %v", platform, report.Ports.Plugins)
		}
	}
}

func TestPluginPortsMatchAnnouncedPlugins(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	builder := analyzer.Builder{Patterns: patterns.Embedded{}, PluginLines: 1000, PortLines: 1000}

	for range 50 {
		report, err := builder.Build(StartupLog(analyzer.Paper, rng))
		if err != nil {
			t.Fatal(err)
		}

		_, dynmap := report.Plugins["dynmap"]
		_, dynmapPort := report.Ports.Plugins["dynmap"]
		if dynmap != dynmapPort {
			t.Errorf("dynmap plugin %v, port %v", dynmap, dynmapPort)
		}

		_, votifier := report.Plugins["Votifier"]
		_, votifierPort := report.Ports.Plugins["votifier"]
		if votifier != votifierPort {
			t.Errorf("Votifier plugin %v, port %v", votifier, votifierPort)
		}
	}
}

func TestGenerateData(t *testing.T) {
	store, err := storage.New(filepath.Join(t.TempDir(), "fake.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = store.Close() }()

	GenerateData(store, analyzer.Builder{Patterns: patterns.Embedded{}, PluginLines: 1000, PortLines: 1000}, 20)

	records, err := store.GetReportsSubset("")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) == 0 || len(records) > 20 {
		t.Fatalf("got %d records", len(records))
	}

	for _, rec := range records {
		lines := strings.Split(rec.RawLog, "\n")
		if analyzer.Detect(lines) != rec.Report.Platform {
			t.Errorf("%s: stored platform %s", rec.ID, rec.Report.Platform)
		}
		if storage.Fingerprint(lines) != rec.Fingerprint {
			t.Errorf("%s: fingerprint mismatch", rec.ID)
		}
	}
}
