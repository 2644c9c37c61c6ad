package broker

import (
	"context"
	"encoding/json"
)

// Credentials is an OAuth1 access token pair. It is only ever stored encrypted.
type Credentials struct {
	OAuthToken       string `json:"oauth_token"`
	OAuthTokenSecret string `json:"oauth_token_secret"`
}

// LoginResult tells the caller where to send the user next.
type LoginResult struct {
	Redirect string `json:"redirect"`
	DemoMode bool   `json:"demo_mode,omitempty"`
	Message  string `json:"message,omitempty"`
}

// PortfolioResult wraps the broker's portfolio payload for the first account.
type PortfolioResult struct {
	AccountID string          `json:"account_id"`
	Portfolio json.RawMessage `json:"portfolio"`
	Beta      float64         `json:"beta"`
	DemoMode  bool            `json:"demo_mode,omitempty"`
}

// ConnectionStatus reports whether broker credentials are stored.
type ConnectionStatus struct {
	Broker    string `json:"broker"`
	Connected bool   `json:"connected"`
	DemoMode  bool   `json:"demo_mode"`
}

// Gateway defines the interface for OAuth1 broker integrations.
type Gateway interface {
	// Login starts the OAuth flow and returns the authorization redirect.
	Login(ctx context.Context) (*LoginResult, error)

	// LoginQR starts the OAuth flow and renders the redirect as a PNG QR code.
	LoginQR(ctx context.Context) ([]byte, error)

	// Callback completes the OAuth flow and returns the dashboard redirect.
	Callback(ctx context.Context, oauthToken, verifier string) (string, error)

	// Accounts returns the broker's account list verbatim.
	Accounts(ctx context.Context) (json.RawMessage, error)

	// Portfolio returns the positions of the first account.
	Portfolio(ctx context.Context) (*PortfolioResult, error)

	// Status reports whether credentials are stored.
	Status(ctx context.Context) (*ConnectionStatus, error)

	// Disconnect removes all stored credentials and returns how many were removed.
	Disconnect(ctx context.Context) (int, error)
}
