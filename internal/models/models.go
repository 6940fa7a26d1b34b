// Package models defines the data structures used for API requests and database persistence.
package models

import (
	"time"

	"github.com/woozymasta/mclens/internal/analyzer"
)

// AnalyzeRequest is the JSON payload accepted by the analyze endpoint.
// Plain text bodies are accepted as Log as well.
type AnalyzeRequest struct {
	Log    string `json:"log"`
	Source string `json:"source,omitempty"`
	Store  *bool  `json:"store,omitempty"`
}

// AnalyzeResponse wraps a report with the fingerprint it is stored under.
type AnalyzeResponse struct {
	Report      analyzer.Report `json:"report"`
	Fingerprint string          `json:"fingerprint"`
	Stored      bool            `json:"stored"`
}

// Record represents an analyzed log stored in the database.
type Record struct {
	FirstSeen   time.Time       `json:"first_seen"`
	LastSeen    time.Time       `json:"last_seen"`
	ID          string          `json:"id"`
	Fingerprint string          `json:"fingerprint"`
	Source      string          `json:"source"`
	RawLog      string          `json:"-"`
	Report      analyzer.Report `json:"report"`
	Count       int64           `json:"count"`
}
