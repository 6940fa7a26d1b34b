package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/mclens/internal/analyzer"
	"github.com/woozymasta/mclens/internal/config"
	"github.com/woozymasta/mclens/internal/patterns"
	"github.com/woozymasta/mclens/internal/storage"
)

const (
	vanillaLog = "[12:00:00] [Server thread/INFO]: Starting minecraft server version 1.21.4\n" +
		"[12:00:00] [Server thread/INFO]: Starting Minecraft server on *:25565\n"
	velocityLog = "[11:00:00 INFO]: Booting up Velocity 3.3.0-SNAPSHOT (git-2016d148-b436)...\n"
)

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func parse(t *testing.T, args ...string) *config.Config {
	t.Helper()

	cfg, err := config.ParseArgs(args)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestAnalyzeSingleInput(t *testing.T) {
	dir := t.TempDir()
	cfg := parse(t, "--analyzer-builtin-patterns", writeLog(t, dir, "latest.log", vanillaLog))

	var out bytes.Buffer
	if err := analyzeInputs(context.Background(), cfg, nil, &out); err != nil {
		t.Fatal(err)
	}

	var report analyzer.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("%v: %s", err, out.String())
	}
	if report.Platform != analyzer.Vanilla || report.Version == nil || *report.Version != "1.21.4" {
		t.Errorf("report %+v", report)
	}
}

func TestAnalyzeMultipleInputsKeepOrder(t *testing.T) {
	dir := t.TempDir()
	cfg := parse(t, "--analyzer-builtin-patterns", "--input-compact",
		writeLog(t, dir, "vanilla.log", vanillaLog),
		writeLog(t, dir, "velocity.log", velocityLog),
	)

	var out bytes.Buffer
	if err := analyzeInputs(context.Background(), cfg, nil, &out); err != nil {
		t.Fatal(err)
	}
	if bytes.Count(bytes.TrimSpace(out.Bytes()), []byte("\n")) != 0 {
		t.Errorf("compact output spans lines: %s", out.String())
	}

	var results []result
	if err := json.Unmarshal(out.Bytes(), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].Report.Platform != analyzer.Vanilla || results[1].Report.Platform != analyzer.Velocity {
		t.Errorf("results %+v", results)
	}
}

func TestAnalyzeMissingPatterns(t *testing.T) {
	dir := t.TempDir()
	cfg := parse(t, "--analyzer-patterns", filepath.Join(dir, "ports.toml"), writeLog(t, dir, "latest.log", vanillaLog))

	var out bytes.Buffer
	err := analyzeInputs(context.Background(), cfg, nil, &out)
	if !errors.Is(err, patterns.ErrMissing) {
		t.Errorf("got %v, want ErrMissing", err)
	}
	if out.Len() != 0 {
		t.Errorf("partial output %q", out.String())
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	cfg := parse(t, "--analyzer-builtin-patterns", filepath.Join(t.TempDir(), "none.log"))

	if err := analyzeInputs(context.Background(), cfg, nil, &bytes.Buffer{}); err == nil {
		t.Error("missing input analyzed")
	}
}

func TestAnalyzeStore(t *testing.T) {
	dir := t.TempDir()
	cfg := parse(t, "--analyzer-builtin-patterns", "--input-store", writeLog(t, dir, "latest.log", vanillaLog))

	store, err := storage.New(filepath.Join(dir, "mclens.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = store.Close() }()

	for range 2 {
		if err := analyzeInputs(context.Background(), cfg, store, &bytes.Buffer{}); err != nil {
			t.Fatal(err)
		}
	}

	records, err := store.GetReports("Vanilla")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Count != 2 {
		t.Errorf("records %+v", records)
	}
}
