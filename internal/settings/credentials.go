package settings

import (
	"context"

	"gc-invoice-driver/internal/gocardless"
)

// Setting keys written by the host application's admin panel. The names are
// kept verbatim so existing installations keep working.
const (
	KeyLabel              = "sLabel"
	KeyAccessTokenSandbox = "sAccessTokenSandbox"
	KeyAccessTokenLive    = "sAccessTokenLive"

	defaultLabel = "GoCardless"
)

// Credentials is the (access token, environment) pair every gateway call runs
// under.
type Credentials struct {
	AccessToken string
	Environment gocardless.Environment
}

// ResolveCredentials picks sandbox or live credentials from the settings
// store. A production deployment must never fall back to sandbox keys, so the
// choice is driven solely by the environment flag.
func ResolveCredentials(ctx context.Context, store Store, production bool) (Credentials, error) {
	key := KeyAccessTokenSandbox
	env := gocardless.EnvironmentSandbox
	if production {
		key = KeyAccessTokenLive
		env = gocardless.EnvironmentLive
	}

	token, err := store.Get(ctx, key)
	if err != nil {
		return Credentials{}, err
	}
	if token == "" {
		return Credentials{}, ErrMissingAccessToken
	}

	return Credentials{AccessToken: token, Environment: env}, nil
}

// Label returns the provider name shown to customers.
func Label(ctx context.Context, store Store) string {
	label, err := store.Get(ctx, KeyLabel)
	if err != nil || label == "" {
		return defaultLabel
	}
	return label
}
