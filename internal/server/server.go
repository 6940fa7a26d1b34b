// Package server implements the HTTP analysis service, its middleware and request handlers.
package server

import (
	"net/http"
	"time"

	"github.com/woozymasta/mclens/internal/config"
	"github.com/woozymasta/mclens/internal/storage"
)

// New creates a new Server instance with the provided storage and configuration.
func New(store *storage.Repository, cfg *config.Config) *Server {
	return &Server{
		storage:        store,
		builder:        cfg.Builder(),
		authToken:      cfg.Server.AuthToken,
		maxBody:        cfg.Server.MaxBodySize,
		trustProxy:     cfg.Server.TrustProxy,
		workers:        cfg.Server.Workers,
		hardLimitCount: cfg.RateLimit.HardLimitCount,
		hardLimitWin:   cfg.RateLimit.HardLimitWin,
		softLimitDur:   cfg.RateLimit.SoftLimitDur,

		queue:    make(chan reportJob, cfg.Server.QueueSize),
		shutdown: make(chan struct{}),
	}
}

// StartWorkers initializes the background worker pool writing reports
// and the cache cleanup routine.
func (s *Server) StartWorkers() {
	for range max(s.workers, 1) {
		s.wg.Add(1)
		go s.worker()
	}

	go s.gcSoftLimitCache()
}

// StopWorkers stops background goroutines and waits until queued reports are written.
// Reports submitted after this call are not stored.
func (s *Server) StopWorkers() {
	s.queueMu.Lock()
	close(s.shutdown)
	close(s.queue)
	s.queueMu.Unlock()

	s.wg.Wait()
}

// Run configures the HTTP routes and returns the main handler.
func (s *Server) Run() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /api/analyze", s.RateLimitMiddleware(http.HandlerFunc(s.handleAnalyze)))
	mux.Handle("GET /api/version", http.HandlerFunc(s.handleVersion))
	mux.Handle("GET /api/reports", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handleReports)))
	mux.Handle("GET /api/report", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handleGetReport)))
	mux.Handle("GET /api/report/raw", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handleGetRawLog)))
	mux.Handle("DELETE /api/report", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handleDeleteReport)))

	return s.LoggingMiddleware(mux)
}

// gcSoftLimitCache periodically cleans up expired entries from the soft rate-limit cache.
func (s *Server) gcSoftLimitCache() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			now := time.Now()
			s.seenCache.Range(func(key, value any) bool {
				if t, ok := value.(time.Time); !ok || now.Sub(t) > s.softLimitDur {
					s.seenCache.Delete(key)
				}
				return true
			})
		}
	}
}
