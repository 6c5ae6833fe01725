package payconf

// RunState represents the state of a conformance run
type RunState string

const (
	// StateInit indicates the run has been created but no call has been made
	StateInit RunState = "INIT"
	// StateHealthOK indicates the gateway health check passed
	StateHealthOK RunState = "HEALTH_OK"
	// StateMethodsListed indicates payment methods were fetched
	StateMethodsListed RunState = "METHODS_LISTED"
	// StateHandleCreated indicates a payment handle token was obtained
	StateHandleCreated RunState = "HANDLE_CREATED"
	// StateSubmitted indicates the payment was submitted and has an identifier
	StateSubmitted RunState = "SUBMITTED"
	// StateCompleted indicates the payment was observed COMPLETED by polling
	StateCompleted RunState = "COMPLETED"
	// StateTimedOut indicates polling exhausted without observing completion
	StateTimedOut RunState = "TIMED_OUT"
	// StateSettled indicates a settlement was created for the payment
	StateSettled RunState = "SETTLED"
	// StateRefunded indicates a refund was created against the settlement
	StateRefunded RunState = "REFUNDED"
	// StateCancelRequested indicates the cancellation task issued its request
	StateCancelRequested RunState = "CANCEL_REQUESTED"
	// StateCancelled indicates the gateway acknowledged the cancellation
	StateCancelled RunState = "CANCELLED"
	// StateFailed indicates an unrecovered gateway error or parse failure
	StateFailed RunState = "FAILED"
	// StateDone indicates the run finished and both tasks were joined
	StateDone RunState = "DONE"
)

// TxStatus represents a remote transaction, settlement, or refund status.
// Statuses outside the known set are passed through verbatim.
type TxStatus string

const (
	// TxStatusPending indicates the remote object is still processing
	TxStatusPending TxStatus = "PENDING"
	// TxStatusCompleted indicates the remote object reached its success state
	TxStatusCompleted TxStatus = "COMPLETED"
	// TxStatusFailed indicates the remote object failed
	TxStatusFailed TxStatus = "FAILED"
	// TxStatusCancelled indicates the remote object was cancelled
	TxStatusCancelled TxStatus = "CANCELLED"
)

// validRunTransitions defines the main-branch transitions. The cancellation
// branch (CANCEL_REQUESTED -> CANCELLED) runs parallel to SUBMITTED and
// later states; FAILED is reachable from any non-terminal state.
var validRunTransitions = map[RunState][]RunState{
	StateInit:          {StateHealthOK},
	StateHealthOK:      {StateMethodsListed},
	StateMethodsListed: {StateHandleCreated},
	StateHandleCreated: {StateSubmitted},
	StateSubmitted:     {StateCompleted, StateTimedOut, StateCancelRequested},
	StateCompleted:     {StateSettled},
	StateTimedOut:      {StateDone},
	StateSettled:       {StateRefunded, StateDone},
	StateRefunded:      {StateDone},
	StateCancelRequested: {
		StateCancelled,
		StateDone,
	},
	StateCancelled: {StateDone},
	StateFailed:    {},
	StateDone:      {},
}

// ValidateRunTransition checks if a run state transition is valid.
// A transition to FAILED is valid from any non-terminal state.
func ValidateRunTransition(from, to RunState) bool {
	if to == StateFailed {
		return !IsRunTerminal(from)
	}
	targets, ok := validRunTransitions[from]
	if !ok {
		return false
	}
	for _, target := range targets {
		if target == to {
			return true
		}
	}
	return false
}

// IsRunTerminal returns true if the run state admits no further transitions
func IsRunTerminal(state RunState) bool {
	switch state {
	case StateFailed, StateDone:
		return true
	default:
		return false
	}
}

// IsRunFailed returns true if the run ended in failure.
// A soft timeout is not a failure.
func IsRunFailed(state RunState) bool {
	return state == StateFailed
}

// String returns the string representation of the run state.
func (s RunState) String() string {
	return string(s)
}

// String returns the string representation of the transaction status.
func (s TxStatus) String() string {
	return string(s)
}
