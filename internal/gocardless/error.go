package gocardless

import "fmt"

// ErrorKind classifies a failed gateway call.
type ErrorKind int

const (
	// KindConnection is a transport-level failure. The call may never have
	// reached GoCardless and is safe to retry.
	KindConnection ErrorKind = iota

	// KindAPI is a well-formed rejection from GoCardless (validation error,
	// invalid mandate, permission problem). Retrying without changing the
	// request will fail again.
	KindAPI

	// KindMalformedResponse means GoCardless answered with something the
	// client could not decode. Treated as transient.
	KindMalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindAPI:
		return "api"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by the client. Callers switch on
// Kind instead of unwrapping provider exceptions.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gocardless %s error [%s]: %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("gocardless %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts a *Error from err, or wraps err as a connection failure so
// callers always see the typed form.
func AsError(err error) *Error {
	if gcErr, ok := err.(*Error); ok {
		return gcErr
	}
	return &Error{Kind: KindConnection, Message: err.Error(), Err: err}
}
