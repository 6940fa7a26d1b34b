// Package maintenance provide tools for clean and update database
package maintenance

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/mclens/internal/analyzer"
	"github.com/woozymasta/mclens/internal/config"
	"github.com/woozymasta/mclens/internal/models"
	"github.com/woozymasta/mclens/internal/storage"
)

const workers = 10

// Stats counts the outcome of a re-analysis.
type Stats struct {
	Checked int64
	Changed int64
	Failed  int64
}

// Run checks if any maintenance flags are set and executes the corresponding tasks.
// Returns true if a maintenance task was executed (indicating the program should exit).
func Run(cfg *config.Config, store *storage.Repository) bool {
	ran := false

	if cfg.Storage.PruneOlder > 0 {
		ran = true
		platform := cfg.PrunePlatform()
		log.Info().
			Dur("older_than", cfg.Storage.PruneOlder).
			Str("platform_filter", platform).
			Msg("Pruning stale reports...")

		count, err := Prune(store, cfg.Storage.PruneOlder, platform)
		if err != nil {
			log.Error().Err(err).Msg("Failed to prune reports")
		} else {
			log.Info().Int64("deleted", count).Msg("Prune finished")
		}
	}

	if cfg.Storage.Reanalyze != "" {
		ran = true
		platform := cfg.ReanalyzePlatform()
		log.Info().Str("platform_filter", platform).Msg("Re-analyzing stored logs...")

		stats, err := Reanalyze(store, cfg.Builder(), platform)
		if err != nil {
			log.Error().Err(err).Msg("Failed to re-analyze reports")
		} else {
			log.Info().
				Int64("checked", stats.Checked).
				Int64("changed", stats.Changed).
				Int64("failed", stats.Failed).
				Msg("Maintenance task completed")
		}
	}

	return ran
}

// Prune deletes reports not seen within olderThan. Empty platform means any platform.
func Prune(store *storage.Repository, olderThan time.Duration, platform string) (int64, error) {
	return store.DeleteOlderThan(time.Now().Add(-olderThan), platform)
}

// Reanalyze rebuilds stored reports from their raw logs and saves those that changed.
// The pattern table is loaded once, a table that cannot be loaded aborts before any record is touched.
func Reanalyze(store *storage.Repository, builder analyzer.Builder, platform string) (Stats, error) {
	var stats Stats

	if builder.Patterns != nil {
		table, err := builder.Patterns.Load()
		if err != nil {
			return stats, err
		}
		builder.Patterns = table
	}

	records, err := store.GetReportsSubset(platform)
	if err != nil {
		return stats, err
	}

	if len(records) == 0 {
		log.Info().Msg("No reports found for maintenance")
		return stats, nil
	}

	log.Info().Int("count", len(records)).Msgf("Starting re-analysis with %d workers...", workers)
	runWorkerPool(records, func(rec models.Record) {
		atomic.AddInt64(&stats.Checked, 1)

		changed, err := processRecord(rec, store, builder)
		switch {
		case err != nil:
			atomic.AddInt64(&stats.Failed, 1)
		case changed:
			atomic.AddInt64(&stats.Changed, 1)
		}
	})

	return stats, nil
}

func runWorkerPool(records []models.Record, process func(models.Record)) {
	jobs := make(chan models.Record, len(records))
	var wg sync.WaitGroup

	// Start workers
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				process(rec)
			}
		}()
	}

	// Send jobs
	for _, rec := range records {
		jobs <- rec
	}
	close(jobs)

	wg.Wait()
}

func processRecord(rec models.Record, store *storage.Repository, builder analyzer.Builder) (bool, error) {
	logCtx := log.With().
		Str("id", rec.ID).
		Str("source", rec.Source).
		Logger()

	report, err := builder.Build(strings.Split(rec.RawLog, "\n"))
	if err != nil {
		logCtx.Error().Err(err).Msg("Failed to analyze stored log")
		return false, err
	}

	before, errBefore := json.Marshal(rec.Report)
	after, errAfter := json.Marshal(report)
	if errBefore == nil && errAfter == nil && bytes.Equal(before, after) {
		logCtx.Trace().Msg("Report unchanged")
		return false, nil
	}

	if err := store.UpdateReport(rec.ID, *report); err != nil {
		logCtx.Error().Err(err).Msg("Failed to update report")
		return false, err
	}

	logCtx.Debug().
		Stringer("platform", report.Platform).
		Msg("Report updated")
	return true, nil
}
