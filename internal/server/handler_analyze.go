package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/mclens/internal/models"
	"github.com/woozymasta/mclens/internal/patterns"
	"github.com/woozymasta/mclens/internal/source"
	"github.com/woozymasta/mclens/internal/storage"
)

// handleAnalyze analyzes a submitted log and returns its report.
// The body is either JSON (models.AnalyzeRequest) or the plain log text.
// Persistence is queued so the response does not wait for the database.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ip := GetRealIP(r, s.trustProxy)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	req, err := decodeAnalyzeRequest(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			log.Debug().Str("ip", ip).Int64("limit", maxErr.Limit).Msg("Log too large")
			respondError(w, http.StatusRequestEntityTooLarge, "log too large")
			return
		}

		log.Debug().Err(err).Str("ip", ip).Msg("Invalid request body")
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines, err := source.ReadLines(strings.NewReader(req.Log))
	switch {
	case errors.Is(err, bufio.ErrTooLong):
		log.Debug().Err(err).Str("ip", ip).Msg("Log line too long")
		respondError(w, http.StatusRequestEntityTooLarge, "log line too long")
		return
	case err != nil:
		log.Debug().Err(err).Str("ip", ip).Msg("Invalid log")
		respondError(w, http.StatusBadRequest, "invalid log")
		return
	case len(lines) == 0:
		respondError(w, http.StatusBadRequest, "empty log")
		return
	}

	report, err := s.builder.Build(lines)
	if err != nil {
		// Only the pattern table can fail a build, the submitted log is not at fault
		log.Error().Err(err).
			Bool("missing", errors.Is(err, patterns.ErrMissing)).
			Str("ip", ip).
			Msg("Failed to analyze log")
		respondError(w, http.StatusInternalServerError, "port pattern table unavailable")
		return
	}

	label := req.Source
	if label == "" {
		label = "http:" + ip
	}

	rec := models.Record{
		Fingerprint: storage.Fingerprint(lines),
		Source:      label,
		RawLog:      strings.Join(lines, "\n"),
		Report:      *report,
		LastSeen:    time.Now(),
	}

	stored := false
	if req.Store == nil || *req.Store {
		stored = s.enqueue(reportJob{Record: rec, IP: ip})
	}

	respondJSON(w, http.StatusOK, models.AnalyzeResponse{
		Report:      *report,
		Fingerprint: rec.Fingerprint,
		Stored:      stored,
	})
}

// enqueue hands a record to the writers unless its fingerprint was queued within the soft limit.
// It reports whether the record is, or recently was, accepted for storage.
func (s *Server) enqueue(job reportJob) bool {
	key := job.Record.Fingerprint

	// Handlers may outlive a timed out shutdown, the queue must not be sent on once closed
	s.queueMu.RLock()
	defer s.queueMu.RUnlock()

	select {
	case <-s.shutdown:
		log.Warn().
			Str("ip", job.IP).
			Str("fingerprint", key).
			Msg("Server stopping, report not stored")
		return false
	default:
	}

	if val, ok := s.seenCache.Load(key); ok {
		if lastSeen, ok := val.(time.Time); ok && time.Since(lastSeen) < s.softLimitDur {
			log.Trace().
				Str("ip", job.IP).
				Str("fingerprint", key).
				Msg("Dropped by soft limit hit")
			return true
		}
	}

	select {
	case s.queue <- job:
		s.seenCache.Store(key, time.Now())
		log.Trace().
			Str("ip", job.IP).
			Str("fingerprint", key).
			Msg("Report queued")
		return true
	default:
		log.Warn().
			Str("ip", job.IP).
			Str("fingerprint", key).
			Msg("Queue full, report not stored")
		return false
	}
}

// worker is a background goroutine that writes queued reports.
func (s *Server) worker() {
	defer s.wg.Done()

	for job := range s.queue {
		s.processJob(job)
	}
}

// processJob stores a single analyzed log.
func (s *Server) processJob(job reportJob) {
	id, created, err := s.storage.UpsertReport(job.Record)
	if err != nil {
		log.Error().Err(err).Str("fingerprint", job.Record.Fingerprint).Msg("Failed to save report to DB")
		s.seenCache.Delete(job.Record.Fingerprint)
		return
	}

	log.Debug().
		Str("id", id).
		Str("ip", job.IP).
		Stringer("platform", job.Record.Report.Platform).
		Bool("new", created).
		Msg("Report saved")
}

// decodeAnalyzeRequest reads a JSON or plain text body.
func decodeAnalyzeRequest(r *http.Request) (models.AnalyzeRequest, error) {
	var req models.AnalyzeRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return req, err
	}
	req.Log = string(body)
	req.Source = r.URL.Query().Get("source")
	if r.URL.Query().Get("store") == "false" {
		store := false
		req.Store = &store
	}

	return req, nil
}
