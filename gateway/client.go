// Package gateway provides the transport client for the payment gateway
// sandbox: a raw authenticated HTTP capability plus typed request and
// response records for each consumed endpoint.
package gateway

import (
	"context"
	"fmt"
)

// Role selects the credential used to authenticate a call.
type Role int

const (
	// AuthPublic uses the public key. Read-only calls.
	AuthPublic Role = iota
	// AuthPrivate uses the private key. Mutating calls and payment reads.
	AuthPrivate
)

// String returns the string representation of the role.
func (r Role) String() string {
	switch r {
	case AuthPublic:
		return "public"
	case AuthPrivate:
		return "private"
	default:
		return "unknown"
	}
}

// Client is the raw transport capability the harness consumes. Paths are
// relative to the environment's base path. A call returns the response body
// on 2xx, a *APIError on a non-success status with a body, or a
// *TransportError when the call could not complete at all.
type Client interface {
	// Get issues an authenticated GET.
	Get(ctx context.Context, path string, role Role) ([]byte, error)

	// Post issues an authenticated POST with a JSON body.
	Post(ctx context.Context, path string, role Role, body any) ([]byte, error)

	// Put issues an authenticated PUT with a JSON body.
	Put(ctx context.Context, path string, role Role, body any) ([]byte, error)
}

// TransportError indicates the gateway could not complete a call at the
// network or connection level. Always fatal to the enclosing task; never
// retried outside the explicit polling loops.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %s %s: %v", e.Method, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError indicates a call returned a non-success status. Body holds the
// raw error body for classification; RequestBody holds the payload that was
// sent, unchanged, so failed settlement and refund requests can be
// reproduced from the diagnostic alone.
type APIError struct {
	Method      string
	Path        string
	StatusCode  int
	Body        []byte
	RequestBody []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("gateway error: %s %s: status %d", e.Method, e.Path, e.StatusCode)
}
