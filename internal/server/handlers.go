package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/mclens/internal/analyzer"
	"github.com/woozymasta/mclens/internal/models"
	"github.com/woozymasta/mclens/internal/vars"
)

// handleVersion returns build information.
func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, vars.Info())
}

// handleReports returns stored reports, newest first.
// Query params: ?platform=Paper (optional)
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	platform := r.URL.Query().Get("platform")
	if platform != "" {
		if _, err := analyzer.ParsePlatform(platform); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	records, err := s.storage.GetReports(platform)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch reports")
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	if records == nil {
		records = []models.Record{}
	}

	respondJSON(w, http.StatusOK, records)
}

// handleGetReport returns a single stored report.
// Query params: ?id=<uuid>
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// handleGetRawLog returns the stored log text of a report.
// Query params: ?id=<uuid>
func (s *Server) handleGetRawLog(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rec.RawLog))
}

// handleDeleteReport removes a stored report.
// Query params: ?id=<uuid>
func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing id")
		return
	}

	deleted, err := s.storage.DeleteReport(id)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to delete report")
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "report not found")
		return
	}

	log.Info().Str("id", id).Msg("Report deleted manually")

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Report deleted"})
}

// lookup loads the record named by the id query parameter, writing the error response itself.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*models.Record, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing id")
		return nil, false
	}

	rec, err := s.storage.GetReport(id)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("Failed to fetch report")
		respondError(w, http.StatusInternalServerError, "database error")
		return nil, false
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, "report not found")
		return nil, false
	}

	return rec, true
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
