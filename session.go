package payconf

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session holds the fixed inputs of a single conformance run. The merchant
// reference is generated once per session and reused across the handle
// creation and payment submission calls so the remote system can deduplicate
// the logical attempt. A Session is immutable after Build.
type Session struct {
	// currency is the ISO currency code driven through the run
	currency string

	// amountMinor is the simulated amount in minor units. Sandbox
	// convention maps specific amounts to deterministic gateway behavior.
	amountMinor int64

	// accountID is the gateway merchant account for the currency
	accountID string

	// merchantRef is the run-unique idempotency token
	merchantRef string

	// refund requests a refund after settlement
	refund bool

	// cancel requests the competing cancellation task
	cancel bool
}

// SessionBuilder provides a fluent API for building sessions.
type SessionBuilder struct {
	s      *Session
	errors []error
}

// NewSession creates a session builder for the given currency and simulated
// amount. The merchant reference is generated using UUID.
func NewSession(currency string, amountMinor int64) *SessionBuilder {
	return &SessionBuilder{
		s: &Session{
			currency:    currency,
			amountMinor: amountMinor,
			merchantRef: uuid.New().String(),
		},
	}
}

// WithAccountID sets the gateway merchant account identifier.
func (b *SessionBuilder) WithAccountID(accountID string) *SessionBuilder {
	b.s.accountID = accountID
	return b
}

// WithRefund requests a refund after a successful settlement.
func (b *SessionBuilder) WithRefund(refund bool) *SessionBuilder {
	b.s.refund = refund
	return b
}

// WithCancel requests the competing cancellation task. The task is only
// spawned when the simulated amount falls in the delayed-approval bucket.
func (b *SessionBuilder) WithCancel(cancel bool) *SessionBuilder {
	b.s.cancel = cancel
	return b
}

// Build validates and returns the session.
func (b *SessionBuilder) Build() (*Session, error) {
	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}
	if b.s.currency == "" {
		return nil, fmt.Errorf("%w: currency cannot be empty", ErrInvalidConfig)
	}
	if b.s.amountMinor <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidConfig)
	}
	if b.s.accountID == "" {
		return nil, fmt.Errorf("%w: account id cannot be empty", ErrInvalidConfig)
	}
	return b.s, nil
}

// MustBuild validates and returns the session, panicking on error.
func (b *SessionBuilder) MustBuild() *Session {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Session getter methods

// Currency returns the ISO currency code.
func (s *Session) Currency() string {
	return s.currency
}

// AmountMinor returns the simulated amount in minor units.
func (s *Session) AmountMinor() int64 {
	return s.amountMinor
}

// AccountID returns the merchant account identifier.
func (s *Session) AccountID() string {
	return s.accountID
}

// MerchantRef returns the run-unique merchant reference.
func (s *Session) MerchantRef() string {
	return s.merchantRef
}

// RefundRequested returns true if a refund should follow settlement.
func (s *Session) RefundRequested() bool {
	return s.refund
}

// CancelRequested returns true if the cancellation task was requested.
func (s *Session) CancelRequested() bool {
	return s.cancel
}

// Transaction is the gateway's view of a submitted payment. The identifier
// is assigned by the gateway at submission; it is absent before. Only the
// polling reads mutate Status — the cancellation task requests cancellation
// remotely and never applies it locally.
type Transaction struct {
	ID          string
	Status      TxStatus
	AmountMinor int64
	Currency    string
}

// Settlement finalizes a completed payment into a collected amount.
// At most one settlement is attempted per completed transaction.
type Settlement struct {
	ID                string
	Status            TxStatus
	AvailableToRefund int64
	TxnTime           time.Time
}

// Inconsistent reports whether the settlement must be treated as partial:
// a PENDING status or a refundable amount below the requested one.
func (s *Settlement) Inconsistent(requestedMinor int64) bool {
	return s.Status == TxStatusPending || s.AvailableToRefund < requestedMinor
}

// Refund is created at most once per settlement, only when requested.
type Refund struct {
	ID     string
	Status TxStatus
}
