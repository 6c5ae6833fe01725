package payconf

import (
	"fmt"
	"io"
	"time"
)

// Cancellation summarizes the cancellation branch of a run. The branch has
// two entry points: the operator-requested task armed by the cancel flag,
// and the defensive cancellation fired on an inconsistent settlement.
type Cancellation struct {
	// Armed reports whether the operator-requested task was spawned.
	Armed bool `json:"armed"`

	// Requested reports whether a cancellation request reached the gateway.
	Requested bool `json:"requested"`

	// Acknowledged reports whether the gateway confirmed CANCELLED.
	Acknowledged bool `json:"acknowledged"`

	// Defensive reports whether the request came from the settlement
	// safety valve rather than the operator flag.
	Defensive bool `json:"defensive"`

	// Note carries the gateway's response when the request was declined.
	Note string `json:"note,omitempty"`
}

// RunReport is the complete observable outcome of one conformance run. It is
// rendered for the operator and persisted verbatim to the run store.
type RunReport struct {
	RunID       string `json:"run_id"`
	Currency    string `json:"currency"`
	AmountMinor int64  `json:"amount_minor"`
	MerchantRef string `json:"merchant_ref"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	// FinalState is DONE or FAILED. A soft poll timeout still ends DONE.
	FinalState RunState `json:"final_state"`

	// MainState is the furthest state the main branch reached before the
	// run terminated. The cancellation branch is reported separately.
	MainState RunState `json:"main_state"`

	// PaymentMethods lists the methods advertised for the currency.
	// Informational only; an empty list does not fail the run.
	PaymentMethods []string `json:"payment_methods,omitempty"`

	Transaction *Transaction `json:"transaction,omitempty"`
	Settlement  *Settlement  `json:"settlement,omitempty"`
	Refund      *Refund      `json:"refund,omitempty"`

	Cancellation Cancellation `json:"cancellation"`

	// Expectations are the diagnostic registry comparisons made during the
	// run. A mismatch is surfaced as a warning, never a failure.
	Expectations []ExpectationOutcome `json:"expectations,omitempty"`

	// Warnings are non-fatal observations: exhausted polls, declined
	// cancellations, inconsistent settlements, expectation drift.
	Warnings []string `json:"warnings,omitempty"`

	// Failure is the fatal error message when FinalState is FAILED.
	Failure string `json:"failure,omitempty"`
}

// Failed reports whether the run ended in the FAILED state. This is the only
// condition under which the harness exits non-zero.
func (r *RunReport) Failed() bool {
	return IsRunFailed(r.FinalState)
}

// Render writes a human-readable summary of the run.
func (r *RunReport) Render(w io.Writer) {
	fmt.Fprintf(w, "run %s: %s\n", r.RunID, r.FinalState)
	fmt.Fprintf(w, "  currency=%s amount=%d merchantRef=%s duration=%s\n",
		r.Currency, r.AmountMinor, r.MerchantRef, r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  main branch reached: %s\n", r.MainState)

	if len(r.PaymentMethods) > 0 {
		fmt.Fprintf(w, "  payment methods: %v\n", r.PaymentMethods)
	}
	if r.Transaction != nil {
		fmt.Fprintf(w, "  transaction %s: %s\n", r.Transaction.ID, r.Transaction.Status)
	}
	if r.Settlement != nil {
		fmt.Fprintf(w, "  settlement %s: %s availableToRefund=%d\n",
			r.Settlement.ID, r.Settlement.Status, r.Settlement.AvailableToRefund)
	}
	if r.Refund != nil {
		fmt.Fprintf(w, "  refund %s: %s\n", r.Refund.ID, r.Refund.Status)
	}

	c := r.Cancellation
	if c.Armed || c.Requested {
		kind := "requested"
		if c.Defensive {
			kind = "defensive"
		}
		fmt.Fprintf(w, "  cancellation (%s): requested=%v acknowledged=%v\n", kind, c.Requested, c.Acknowledged)
		if c.Note != "" {
			fmt.Fprintf(w, "    note: %s\n", c.Note)
		}
	}

	for _, exp := range r.Expectations {
		verdict := "match"
		if !exp.Known {
			verdict = "unknown code"
		} else if !exp.Match {
			verdict = "MISMATCH"
		}
		fmt.Fprintf(w, "  expectation %s: %s (expected %q, observed %q)\n",
			exp.Code, verdict, exp.Expected, exp.Observed)
	}

	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
	if r.Failure != "" {
		fmt.Fprintf(w, "  failure: %s\n", r.Failure)
	}
}
