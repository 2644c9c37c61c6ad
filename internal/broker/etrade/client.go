package etrade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/google/uuid"

	"adaptivebeta/internal/broker"
	apperrors "adaptivebeta/internal/errors"
	"adaptivebeta/internal/kvstore"
)

const (
	// API base URLs
	apiURLSandbox = "https://apisb.etrade.com"
	apiURLLive    = "https://api.etrade.com"

	defaultAuthorizeURL = "https://us.etrade.com/e/t/etws/authorize"

	requestTokenPath = "/oauth/request_token"
	accessTokenPath  = "/oauth/access_token"
	accountsListPath = "/v1/accounts/list.json"
	portfolioPath    = "/v1/accounts/%s/portfolio.json"

	// CredentialsPrefix namespaces stored access tokens in the key-value store.
	CredentialsPrefix = "etrade_creds_"

	requestTokenTTL = 900 * time.Second
	credentialsTTL  = 86400 * time.Second

	httpClientTimeout = 30 * time.Second

	// maxResponseSize caps upstream bodies read into memory.
	maxResponseSize = 10 << 20

	brokerName = "etrade"
)

// Gateway implements broker.Gateway for E*TRADE.
type Gateway struct {
	cfg          Config
	store        kvstore.Store
	enc          *broker.Encryptor
	oauth        *oauth1.Config
	httpClient   *http.Client
	apiBaseURL   string
	authorizeURL string
}

var _ broker.Gateway = (*Gateway)(nil)

// NewGateway creates an E*TRADE gateway backed by the given store.
func NewGateway(cfg Config, store kvstore.Store, enc *broker.Encryptor) *Gateway {
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = apiURLSandbox
		if strings.EqualFold(cfg.Environment, "live") {
			baseURL = apiURLLive
		}
	}
	baseURL = strings.TrimRight(baseURL, "/")

	authorizeURL := cfg.AuthorizeURL
	if authorizeURL == "" {
		authorizeURL = defaultAuthorizeURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpClientTimeout}
	}

	return &Gateway{
		cfg:   cfg,
		store: store,
		enc:   enc,
		oauth: &oauth1.Config{
			ConsumerKey:    cfg.ConsumerKey,
			ConsumerSecret: cfg.ConsumerSecret,
			CallbackURL:    cfg.CallbackURL,
			Endpoint: oauth1.Endpoint{
				RequestTokenURL: baseURL + requestTokenPath,
				AuthorizeURL:    authorizeURL,
				AccessTokenURL:  baseURL + accessTokenPath,
			},
			Noncer:     uuidNoncer{},
			HTTPClient: httpClient,
		},
		httpClient:   httpClient,
		apiBaseURL:   baseURL,
		authorizeURL: authorizeURL,
	}
}

// handshake returns a copy of the OAuth config whose token requests are
// bound to ctx.
func (g *Gateway) handshake(ctx context.Context) *oauth1.Config {
	cfg := *g.oauth
	cfg.HTTPClient = &http.Client{
		Transport: ctxTransport{ctx: ctx, base: g.httpClient.Transport},
		Timeout:   g.httpClient.Timeout,
	}
	return &cfg
}

// ctxTransport attaches a fixed context to every outgoing request.
type ctxTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t ctxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req.WithContext(t.ctx))
}

// uuidNoncer generates OAuth nonces from random UUIDs.
type uuidNoncer struct{}

func (uuidNoncer) Nonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Accounts returns the upstream account list verbatim.
func (g *Gateway) Accounts(ctx context.Context) (json.RawMessage, error) {
	if g.cfg.DemoMode {
		return demoAccountsJSON(), nil
	}

	client, err := g.signedClient(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Accounts retrieval failed", err)
	}

	accounts, err := g.get(ctx, client, accountsListPath)
	if err != nil {
		return nil, apperrors.Upstream("Accounts retrieval failed", err)
	}
	return accounts, nil
}

// Portfolio returns the portfolio of the first listed account.
func (g *Gateway) Portfolio(ctx context.Context) (*broker.PortfolioResult, error) {
	if g.cfg.DemoMode {
		return &broker.PortfolioResult{
			AccountID: demoAccountID,
			Portfolio: demoPortfolioJSON(),
			Beta:      demoBeta,
			DemoMode:  true,
		}, nil
	}

	client, err := g.signedClient(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, "Portfolio retrieval failed", err)
	}

	accounts, err := g.get(ctx, client, accountsListPath)
	if err != nil {
		return nil, apperrors.Upstream("Portfolio retrieval failed", err)
	}

	accountID, err := firstAccountID(accounts)
	if err != nil {
		return nil, apperrors.Upstream("Portfolio retrieval failed", err)
	}

	portfolio, err := g.get(ctx, client, fmt.Sprintf(portfolioPath, url.PathEscape(accountID)))
	if err != nil {
		return nil, apperrors.Upstream("Portfolio retrieval failed", err)
	}

	return &broker.PortfolioResult{
		AccountID: accountID,
		Portfolio: portfolio,
		Beta:      1.0,
	}, nil
}

// signedClient loads the stored access token and returns an HTTP client
// that signs every request with it.
func (g *Gateway) signedClient(ctx context.Context) (*http.Client, error) {
	creds, err := g.loadCredentials(ctx)
	if err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, oauth1.HTTPClient, g.httpClient)
	client := g.oauth.Client(ctx, oauth1.NewToken(creds.OAuthToken, creds.OAuthTokenSecret))
	client.Timeout = g.httpClient.Timeout
	return client, nil
}

// loadCredentials decrypts the first stored credential entry.
func (g *Gateway) loadCredentials(ctx context.Context) (*broker.Credentials, error) {
	keys, err := g.store.Keys(ctx, CredentialsPrefix)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, apperrors.Unauthorized("No E*TRADE credentials found")
	}

	blob, err := g.store.Get(ctx, keys[0])
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, apperrors.Unauthorized("No E*TRADE credentials found")
	}
	if err != nil {
		return nil, err
	}

	var creds broker.Credentials
	if err := g.enc.DecryptJSON(string(blob), &creds); err != nil {
		log.Printf("[E*TRADE] Failed to decrypt credentials %s: %v", keys[0], err)
		return nil, apperrors.Decryption("Stored E*TRADE credentials could not be decrypted", err)
	}
	return &creds, nil
}

// get performs a signed GET and returns the JSON body.
func (g *Gateway) get(ctx context.Context, client *http.Client, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiBaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[E*TRADE] GET %s returned status %d", path, resp.StatusCode)
		return nil, fmt.Errorf("%d %s: %s", resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(body)))
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("invalid JSON in response from %s", path)
	}
	return json.RawMessage(body), nil
}
