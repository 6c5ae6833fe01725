// Package store persists run history. Each completed run is written as one
// record so outcomes can be compared across sandbox releases.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Store errors
var (
	// ErrRunNotFound indicates the run record does not exist
	ErrRunNotFound = errors.New("run record not found")

	// ErrRunAlreadyExists indicates a record with the run ID already exists
	ErrRunAlreadyExists = errors.New("run record already exists")
)

// RunRecord is one persisted run.
type RunRecord struct {
	// ID is the auto-increment primary key.
	ID int64 `db:"id" json:"id"`

	// RunID is the unique run identifier.
	RunID string `db:"run_id" json:"run_id"`

	// Currency is the ISO currency code the run was driven with.
	Currency string `db:"currency" json:"currency"`

	// AmountMinor is the simulated amount in minor units.
	AmountMinor int64 `db:"amount_minor" json:"amount_minor"`

	// MerchantRef is the run's merchant reference.
	MerchantRef string `db:"merchant_ref" json:"merchant_ref"`

	// FinalState is the run's terminal state (DONE or FAILED).
	FinalState string `db:"final_state" json:"final_state"`

	// Report is the full run report as JSON.
	Report json.RawMessage `db:"report" json:"report"`

	// DurationMS is the run duration in milliseconds.
	DurationMS int64 `db:"duration_ms" json:"duration_ms"`

	// CreatedAt is when the record was written.
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RunFilter restricts ListRuns.
type RunFilter struct {
	Currency   string // Filter by currency, empty means all
	FinalState string // Filter by final state, empty means all
	Limit      int    // Maximum records returned, 0 means a server-side default
	Offset     int    // Offset into the result set
}

// RunStore persists run records.
type RunStore interface {
	// SaveRun writes one run record.
	SaveRun(ctx context.Context, record *RunRecord) error

	// GetRun returns the record for a run ID.
	GetRun(ctx context.Context, runID string) (*RunRecord, error)

	// ListRuns returns records matching the filter, newest first.
	ListRuns(ctx context.Context, filter *RunFilter) ([]*RunRecord, error)
}
