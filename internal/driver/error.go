package driver

import "errors"

// Internal precondition violations. These surface to callers as a Failed
// ChargeResult carrying the specific message for logs and a generic message
// for the end user.
var (
	ErrMissingMandateID      = errors.New("missing mandate id")
	ErrMissingRedirectFlowID = errors.New("missing redirect_flow_id")
	ErrMissingSessionToken   = errors.New("missing session token")
	ErrMissingSessionScope   = errors.New("missing session context")
	ErrNoTransactionID       = errors.New("gateway returned no transaction id")
	ErrNotAuthenticated      = errors.New("user is not authenticated")
	ErrInactiveMandate       = errors.New("mandate is not active")
)
