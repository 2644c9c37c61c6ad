// Package etrade provides an OAuth1.0a gateway to the E*TRADE API.
package etrade

import "errors"

var (
	// ErrNoAccounts indicates the account list came back empty.
	ErrNoAccounts = errors.New("no E*TRADE accounts returned")

	// ErrMissingCallbackParams indicates the redirect lacked oauth_token or oauth_verifier.
	ErrMissingCallbackParams = errors.New("oauth_token and oauth_verifier are required")
)
