// Package expectation provides the lookup table mapping simulated-amount and
// gateway error codes to the outcome the sandbox documents for them.
// Expectation checking is diagnostic only: a mismatch or an unknown code is
// reported as a warning and never blocks the workflow.
package expectation

import (
	"encoding/json"
	"fmt"
	"os"
)

// Registry maps a code to its documented expected outcome. Read-only after
// load.
type Registry struct {
	entries map[string]string
}

// Builtin returns a registry seeded with the sandbox's documented simulation
// codes.
func Builtin() *Registry {
	return &Registry{entries: map[string]string{
		// Simulated amount codes
		"4":   "Approved",
		"5":   "Declined",
		"11":  "Approved with AVS mismatch",
		"50":  "Approved, partial settlement simulated",
		"90":  "Approved after delay",
		"91":  "Approved after delay",
		"96":  "Declined with delay, timed out after 30s",
		"100": "Approved",

		// Structured error codes
		"3002": "Card number or brand is invalid",
		"3015": "Bank requested step-up, process manually",
		"3022": "Card has insufficient funds",
		"5068": "Field validation error",
		"5279": "Invalid authentication credentials",
	}}
}

// Load reads a registry from a JSON file of the form {"code": "expected"}.
// Entries override the builtin table.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read expectation table: %w", err)
	}

	var overrides map[string]string
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse expectation table: %w", err)
	}

	r := Builtin()
	for code, expected := range overrides {
		r.entries[code] = expected
	}
	return r, nil
}

// Lookup returns the expected outcome for a code.
func (r *Registry) Lookup(code string) (string, bool) {
	expected, ok := r.entries[code]
	return expected, ok
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}
