package etrade

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"

	"adaptivebeta/internal/broker"
	apperrors "adaptivebeta/internal/errors"
	"adaptivebeta/internal/kvstore"
)

// Login requests a temporary token and returns the E*TRADE authorization URL.
func (g *Gateway) Login(ctx context.Context) (*broker.LoginResult, error) {
	if g.cfg.DemoMode {
		return &broker.LoginResult{
			Redirect: g.cfg.DashboardURL,
			DemoMode: true,
			Message:  demoMessage,
		}, nil
	}

	// A token we cannot persist is useless to the callback.
	if err := g.store.Ping(ctx); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "OAuth initiation failed", err)
	}

	rt, err := g.requestToken(ctx)
	if err != nil {
		log.Printf("[E*TRADE] Request token failed: %v", err)
		return nil, apperrors.Upstream("OAuth initiation failed", err)
	}

	if err := g.store.Set(ctx, rt.Token, []byte(rt.TokenSecret), requestTokenTTL); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "OAuth initiation failed", err)
	}

	log.Printf("[E*TRADE] Issued request token, awaiting authorization")
	return &broker.LoginResult{Redirect: g.authorizationURL(rt.Token)}, nil
}

func (g *Gateway) requestToken(ctx context.Context) (*RequestToken, error) {
	token, secret, err := g.handshake(ctx).RequestToken()
	if err != nil {
		return nil, err
	}
	return &RequestToken{Token: token, TokenSecret: secret}, nil
}

// LoginQR runs Login and renders the redirect as a PNG QR code.
func (g *Gateway) LoginQR(ctx context.Context) ([]byte, error) {
	result, err := g.Login(ctx)
	if err != nil {
		return nil, err
	}

	png, err := broker.RenderQR(result.Redirect)
	if err != nil {
		return nil, apperrors.Internal("Failed to render QR code", err)
	}
	return png, nil
}

// Callback exchanges the authorized request token for an access token and
// stores it encrypted. It returns the dashboard URL.
func (g *Gateway) Callback(ctx context.Context, oauthToken, verifier string) (string, error) {
	if g.cfg.DemoMode {
		return g.cfg.DashboardURL, nil
	}

	if oauthToken == "" || verifier == "" {
		return "", apperrors.Wrap(apperrors.ErrTokenExpired, "OAuth token expired or not found", ErrMissingCallbackParams)
	}

	secret, err := g.store.Get(ctx, oauthToken)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", apperrors.TokenExpired("")
	}
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternal, "OAuth callback failed", err)
	}

	accessToken, accessSecret, err := g.handshake(ctx).AccessToken(oauthToken, string(secret), verifier)
	if err != nil {
		log.Printf("[E*TRADE] Access token exchange failed: %v", err)
		return "", apperrors.Upstream("OAuth callback failed", err)
	}

	encrypted, err := g.enc.EncryptJSON(broker.Credentials{
		OAuthToken:       accessToken,
		OAuthTokenSecret: accessSecret,
	})
	if err != nil {
		return "", apperrors.Internal("OAuth callback failed", err)
	}

	if err := g.store.Set(ctx, CredentialsPrefix+oauthToken, []byte(encrypted), credentialsTTL); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternal, "OAuth callback failed", err)
	}

	if err := g.store.Delete(ctx, oauthToken); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternal, "OAuth callback failed", err)
	}

	log.Printf("[E*TRADE] Stored access token")
	return g.cfg.DashboardURL, nil
}

// Status reports whether any access token is stored.
func (g *Gateway) Status(ctx context.Context) (*broker.ConnectionStatus, error) {
	status := &broker.ConnectionStatus{Broker: brokerName, DemoMode: g.cfg.DemoMode}
	if g.cfg.DemoMode {
		status.Connected = true
		return status, nil
	}

	keys, err := g.store.Keys(ctx, CredentialsPrefix)
	if err != nil {
		return nil, err
	}
	status.Connected = len(keys) > 0
	return status, nil
}

// Disconnect deletes every stored access token.
func (g *Gateway) Disconnect(ctx context.Context) (int, error) {
	if g.cfg.DemoMode {
		return 0, nil
	}

	keys, err := g.store.Keys(ctx, CredentialsPrefix)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, key := range keys {
		if err := g.store.Delete(ctx, key); err != nil {
			return removed, fmt.Errorf("failed to delete %s: %w", key, err)
		}
		removed++
	}

	if removed > 0 {
		log.Printf("[E*TRADE] Removed %d stored credential(s)", removed)
	}
	return removed, nil
}

func (g *Gateway) authorizationURL(token string) string {
	q := url.Values{}
	q.Set("key", g.cfg.ConsumerKey)
	q.Set("token", token)
	return g.authorizeURL + "?" + q.Encode()
}
