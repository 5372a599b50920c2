package settings

import "errors"

var (
	// ErrMissingAccessToken means no GoCardless access token is configured
	// for the resolved environment. Operator intervention required.
	ErrMissingAccessToken = errors.New("gocardless access token is not configured")
)
