// Package export persists finished conversation transcripts. The runner hands
// a Record to a Sink on every terminal path; the server reads Records back for
// the transcript download endpoint.
package export

import (
	"context"
	"time"

	"github.com/hupe1980/agora/core"
)

// Record is the exported form of a completed run: the final ordered
// transcript keyed by run identifier, topic and mode.
type Record struct {
	RunID       string          `json:"run_id"`
	Topic       string          `json:"topic"`
	Mode        core.Mode       `json:"mode"`
	Status      core.Status     `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt time.Time       `json:"completed_at"`
	Transcript  core.Transcript `json:"transcript"`
}

// Sink stores transcript records for terminal runs.
type Sink interface {
	// Save persists the record, replacing any previous record for the same run.
	Save(ctx context.Context, rec Record) error

	// Load returns the record for a run id, or core.ErrNotFound.
	Load(ctx context.Context, runID string) (Record, error)
}
