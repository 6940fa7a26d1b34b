package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/docker/docker/client"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/woozymasta/mclens/internal/analyzer"
	"github.com/woozymasta/mclens/internal/config"
	"github.com/woozymasta/mclens/internal/models"
	"github.com/woozymasta/mclens/internal/source"
	"github.com/woozymasta/mclens/internal/storage"
)

// result is one analyzed input in multi-input output.
type result struct {
	Source string           `json:"source"`
	Report *analyzer.Report `json:"report"`
}

// analyzeInputs fetches and analyzes every input concurrently, then prints the reports as JSON.
// A single input prints its bare report, several print an array in input order.
// The first failure cancels the remaining inputs.
func analyzeInputs(ctx context.Context, cfg *config.Config, store *storage.Repository, out io.Writer) error {
	sources, closeSources, err := inputSources(cfg)
	if err != nil {
		return err
	}
	defer closeSources()

	builder := cfg.Builder()
	results := make([]result, len(sources))
	raw := make([][]string, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, cfg.Input.Timeout)
			defer cancel()

			lines, err := src.Lines(fetchCtx)
			if err != nil {
				return fmt.Errorf("%s: %w", src, err)
			}

			report, err := builder.Build(lines)
			if err != nil {
				return fmt.Errorf("%s: %w", src, err)
			}

			log.Debug().Str("source", src.String()).Int("lines", len(lines)).Msg("Input analyzed")
			results[i] = result{Source: src.String(), Report: report}
			raw[i] = lines
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if store != nil && cfg.Input.Store {
		for i, res := range results {
			id, created, err := store.UpsertReport(models.Record{
				Fingerprint: storage.Fingerprint(raw[i]),
				Source:      res.Source,
				RawLog:      strings.Join(raw[i], "\n"),
				Report:      *res.Report,
				LastSeen:    time.Now(),
			})
			if err != nil {
				return fmt.Errorf("store %s: %w", res.Source, err)
			}
			log.Info().Str("id", id).Str("source", res.Source).Bool("new", created).Msg("Report stored")
		}
	}

	enc := json.NewEncoder(out)
	if !cfg.Input.Compact {
		enc.SetIndent("", "  ")
	}
	if len(results) == 1 {
		return enc.Encode(results[0].Report)
	}
	return enc.Encode(results)
}

// inputSources lists sources in flag order: files, containers, mclo.gs logs.
// The returned function releases the Docker client when one was created.
func inputSources(cfg *config.Config) ([]source.Source, func(), error) {
	var sources []source.Source
	for _, path := range cfg.Args.Files {
		sources = append(sources, source.File(path))
	}

	closer := func() {}
	if len(cfg.Input.Docker) > 0 {
		docker, err := source.NewDockerClient()
		if err != nil {
			return nil, closer, fmt.Errorf("docker client: %w", err)
		}
		closer = func() { _ = docker.Close() }

		sources = append(sources, dockerSources(docker, cfg)...)
	}

	httpClient := &http.Client{Timeout: cfg.Input.Timeout}
	for _, id := range cfg.Input.Mclogs {
		sources = append(sources, source.Mclogs{API: cfg.Input.MclogsAPI, ID: id, Client: httpClient})
	}

	return sources, closer, nil
}

func dockerSources(docker *client.Client, cfg *config.Config) []source.Source {
	sources := make([]source.Source, 0, len(cfg.Input.Docker))
	for _, name := range cfg.Input.Docker {
		sources = append(sources, source.Docker{Client: docker, Container: name, Tail: cfg.Input.DockerTail})
	}
	return sources
}
