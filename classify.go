package payconf

import (
	"encoding/json"
	"fmt"
	"strings"

	"payconf/expectation"
	"payconf/gateway"
)

// AdvisoryCode is the sentinel detail code marking a structured error as a
// step-up / bank-referral advisory. An advisory error changes presentation
// only; the originating call still fails.
const AdvisoryCode = "BANK_REFERRAL"

// AdvisoryEntry is one advisory annotation on a classified error.
type AdvisoryEntry struct {
	Type    string
	Code    string
	Message string
}

// ClassifiedError is the structured form of a gateway error body.
type ClassifiedError struct {
	Code            string
	Message         string
	AdvisoryEntries []AdvisoryEntry
}

// Advisory reports whether any advisory entry carries the sentinel code.
func (e *ClassifiedError) Advisory() bool {
	for _, entry := range e.AdvisoryEntries {
		if entry.Code == AdvisoryCode {
			return true
		}
	}
	return false
}

// ExpectationOutcome is the diagnostic result of comparing a classified
// error code against the expectation registry.
type ExpectationOutcome struct {
	Code     string
	Expected string
	Observed string
	Known    bool
	Match    bool
}

// Classifier parses failed response bodies into structured errors and
// compares their codes against the expectation registry.
type Classifier struct {
	registry *expectation.Registry
}

// NewClassifier creates a classifier backed by the given registry.
func NewClassifier(registry *expectation.Registry) *Classifier {
	return &Classifier{registry: registry}
}

// Classify parses a raw error body into a ClassifiedError. Bodies that are
// not JSON-shaped or miss the required code field fail with
// ErrErrorBodyUnparsable; the caller escalates those by persisting a
// diagnostic trace.
func (c *Classifier) Classify(rawBody []byte) (*ClassifiedError, error) {
	var envelope gateway.ErrorEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrErrorBodyUnparsable, err)
	}
	if envelope.Error == nil || envelope.Error.Code == "" {
		return nil, fmt.Errorf("%w: no structured error code", ErrErrorBodyUnparsable)
	}

	classified := &ClassifiedError{
		Code:    envelope.Error.Code,
		Message: envelope.Error.Message,
	}
	for _, detail := range envelope.Error.AdditionalDetails {
		classified.AdvisoryEntries = append(classified.AdvisoryEntries, AdvisoryEntry{
			Type:    detail.Type,
			Code:    detail.Code,
			Message: detail.Message,
		})
	}
	return classified, nil
}

// ClassifyAPIError classifies the body of an APIError.
func (c *Classifier) ClassifyAPIError(apiErr *gateway.APIError) (*ClassifiedError, error) {
	return c.Classify(apiErr.Body)
}

// CheckExpectation compares a code and its observed message against the
// registry. Diagnostic only: the orchestrator turns a mismatch or an
// unknown code into a warning, never an error.
func (c *Classifier) CheckExpectation(code, observed string) ExpectationOutcome {
	outcome := ExpectationOutcome{Code: code, Observed: observed}
	if c.registry == nil {
		return outcome
	}

	expected, known := c.registry.Lookup(code)
	outcome.Expected = expected
	outcome.Known = known
	if !known {
		return outcome
	}

	outcome.Match = messagesAgree(expected, observed)
	return outcome
}

// messagesAgree applies a loose comparison: sandbox wording drifts across
// releases, so either message containing the other counts as agreement.
func messagesAgree(expected, observed string) bool {
	e := strings.ToLower(strings.TrimSpace(expected))
	o := strings.ToLower(strings.TrimSpace(observed))
	if e == "" || o == "" {
		return e == o
	}
	return strings.Contains(o, e) || strings.Contains(e, o)
}
