// Package diag persists diagnostic traces. When a gateway error body cannot
// be classified, the full exchange is written to a uniquely named sink and
// its location is surfaced to the operator; this is the only durable
// artifact the core produces.
package diag

import (
	"context"
	"encoding/json"
	"time"
)

// Trace is a full record of one failed exchange, carrying enough detail to
// reproduce the scenario: the request as sent, the response as received.
type Trace struct {
	RunID        string          `json:"run_id"`
	Stage        string          `json:"stage"`
	Method       string          `json:"method"`
	Path         string          `json:"path"`
	StatusCode   int             `json:"status_code"`
	RequestBody  json.RawMessage `json:"request_body,omitempty"`
	ResponseBody string          `json:"response_body"`
	Note         string          `json:"note,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

// TraceStore persists traces and returns an operator-readable location.
type TraceStore interface {
	// Save persists the trace and returns where it can be found.
	Save(ctx context.Context, trace *Trace) (location string, err error)
}
