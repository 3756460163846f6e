package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure. Callers branch on this closed set
// instead of matching error message substrings.
type Kind int

const (
	// KindTransport covers network failures, timeouts, and unexpected
	// backend responses.
	KindTransport Kind = iota

	// KindNotFound means the addressed row does not exist.
	KindNotFound

	// KindSchemaMissing means the notification table itself is absent,
	// e.g. a backend that has not run its migrations yet.
	KindSchemaMissing

	// KindUnauthorized means the backend rejected our credentials.
	KindUnauthorized
)

// String returns the kind name for error formatting.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindSchemaMissing:
		return "schema missing"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "transport"
	}
}

// Error is the tagged failure type returned by every Gateway operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a tagged gateway error for operation op.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// kindOf extracts the Kind from err, defaulting to KindTransport.
func kindOf(err error) (Kind, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return KindTransport, false
}

// IsNotFound reports whether err is a gateway NotFound error.
func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNotFound
}

// IsSchemaMissing reports whether err indicates the notification table
// is absent on the backend.
func IsSchemaMissing(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindSchemaMissing
}

// IsUnauthorized reports whether err is an authentication failure.
func IsUnauthorized(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindUnauthorized
}
