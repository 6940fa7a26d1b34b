package server

import (
	"sync"
	"time"

	"github.com/woozymasta/mclens/internal/analyzer"
	"github.com/woozymasta/mclens/internal/models"
	"github.com/woozymasta/mclens/internal/storage"
)

// Server holds the dependencies, configuration, and runtime state required
// to handle HTTP requests and background report persistence.
type Server struct {
	// storage keeps analyzed logs and serves the admin endpoints.
	storage *storage.Repository

	// builder analyzes submitted logs, loading the pattern table on every request
	// so edits to the table apply without a restart.
	builder analyzer.Builder

	// queue passes analyzed logs from HTTP handlers to the writer workers.
	queue chan reportJob

	// shutdown broadcasts a stop signal to background goroutines.
	shutdown chan struct{}

	// queueMu orders sends on queue against its close in StopWorkers.
	queueMu sync.RWMutex

	// seenCache maps log fingerprints to the time they were last queued.
	// Resubmissions within softLimitDur are not written again.
	seenCache sync.Map

	// authToken guards the admin endpoints.
	authToken string

	// wg waits for writer workers to drain the queue.
	wg sync.WaitGroup

	// maxBody is the largest accepted log submission in bytes.
	maxBody int64

	// hardLimitCount is the number of analyze requests allowed per IP within hardLimitWin.
	hardLimitCount int

	// hardLimitWin is the time window of the hard rate limiter.
	hardLimitWin time.Duration

	// softLimitDur is how long a stored fingerprint is not written again.
	softLimitDur time.Duration

	// workers is the number of writer goroutines.
	workers int

	// trustProxy enables CF-Connecting-IP and X-Forwarded-For for client addresses.
	trustProxy bool
}

// reportJob is an analyzed log waiting to be stored.
type reportJob struct {
	Record models.Record
	IP     string
}
