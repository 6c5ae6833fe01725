package payconf

import "errors"

// Workflow errors
var (
	// ErrRunFailed indicates the run reached the FAILED state
	ErrRunFailed = errors.New("run failed")

	// ErrInvalidRunState indicates an invalid run state transition
	ErrInvalidRunState = errors.New("invalid run state")

	// ErrMissingField indicates a required response field was empty or absent
	ErrMissingField = errors.New("required response field missing")
)

// Handoff errors
var (
	// ErrHandoffAbandoned indicates the waiter's context ended before a value was published
	ErrHandoffAbandoned = errors.New("handoff wait abandoned")
)

// Classification errors
var (
	// ErrErrorBodyUnparsable indicates an error body not in the structured-error shape
	ErrErrorBodyUnparsable = errors.New("error body unparsable")

	// ErrDiagnosticTrace indicates classification failed and a diagnostic
	// trace was persisted; the error message carries the trace location
	ErrDiagnosticTrace = errors.New("unclassifiable gateway error, diagnostic trace persisted")
)

// Lock errors
var (
	// ErrAccountLocked indicates another run holds the sandbox account lock
	ErrAccountLocked = errors.New("sandbox account locked by another run")
)

// Config errors
var (
	// ErrInvalidConfig indicates the configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")
)
