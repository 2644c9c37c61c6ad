package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adaptivebeta/internal/broker"
	apperrors "adaptivebeta/internal/errors"
	"adaptivebeta/internal/kvstore"
	"adaptivebeta/internal/news"
)

// fakeGateway returns canned results and records callback arguments.
type fakeGateway struct {
	err error

	login     *broker.LoginResult
	qr        []byte
	redirect  string
	accounts  json.RawMessage
	portfolio *broker.PortfolioResult
	status    *broker.ConnectionStatus
	removed   int

	gotToken    string
	gotVerifier string
}

func (f *fakeGateway) Login(context.Context) (*broker.LoginResult, error) { return f.login, f.err }
func (f *fakeGateway) LoginQR(context.Context) ([]byte, error) { return f.qr, f.err }
func (f *fakeGateway) Callback(_ context.Context, token, verifier string) (string, error) {
	f.gotToken, f.gotVerifier = token, verifier
	return f.redirect, f.err
}
func (f *fakeGateway) Accounts(context.Context) (json.RawMessage, error) { return f.accounts, f.err }
func (f *fakeGateway) Portfolio(context.Context) (*broker.PortfolioResult, error) {
	return f.portfolio, f.err
}
func (f *fakeGateway) Status(context.Context) (*broker.ConnectionStatus, error) { return f.status, f.err }
func (f *fakeGateway) Disconnect(context.Context) (int, error) { return f.removed, f.err }

type fakeNews struct {
	headlines *news.HeadlinesResult
}

func (f *fakeNews) Headlines(context.Context) *news.HeadlinesResult { return f.headlines }
func (f *fakeNews) MarketSentiment() news.Sentiment {
	return news.Sentiment{FearGreedIndex: 65, VIX: 18.5, MarketMood: "Bullish", Timestamp: "2024-07-15T14:00:00Z"}
}

func serve(h http.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestBrokerHandler_Login(t *testing.T) {
	gw := &fakeGateway{login: &broker.LoginResult{Redirect: "https://us.etrade.com/e/t/etws/authorize?key=k&token=t"}}
	h := NewBrokerHandler(NewDependencies().WithBroker(gw))

	rec := serve(h.Login, http.MethodGet, "/api/v1/brokers/etrade/login")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"redirect":"https://us.etrade.com/e/t/etws/authorize?key=k&token=t"}`, rec.Body.String())
}

func TestBrokerHandler_LoginDemo(t *testing.T) {
	gw := &fakeGateway{login: &broker.LoginResult{
		Redirect: "http://localhost:3000/dashboard",
		DemoMode: true,
		Message:  "Demo mode - skipping OAuth for development",
	}}
	h := NewBrokerHandler(NewDependencies().WithBroker(gw))

	rec := serve(h.Login, http.MethodGet, "/api/v1/brokers/etrade/login")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"redirect":"http://localhost:3000/dashboard","demo_mode":true,"message":"Demo mode - skipping OAuth for development"}`,
		rec.Body.String())
}

func TestBrokerHandler_LoginQR(t *testing.T) {
	gw := &fakeGateway{qr: []byte("\x89PNG\r\n")}
	h := NewBrokerHandler(NewDependencies().WithBroker(gw))

	rec := serve(h.LoginQR, http.MethodGet, "/api/v1/brokers/etrade/login/qr")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG\r\n", rec.Body.String())
}

func TestBrokerHandler_Callback(t *testing.T) {
	gw := &fakeGateway{redirect: "http://localhost:3000/dashboard"}
	h := NewBrokerHandler(NewDependencies().WithBroker(gw))

	rec := serve(h.Callback, http.MethodGet, "/api/v1/brokers/etrade/callback?oauth_token=tok&oauth_verifier=ver")
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "http://localhost:3000/dashboard", rec.Header().Get("Location"))
	assert.Equal(t, "tok", gw.gotToken)
	assert.Equal(t, "ver", gw.gotVerifier)
}

func TestBrokerHandler_CallbackExpired(t *testing.T) {
	gw := &fakeGateway{err: apperrors.TokenExpired("")}
	h := NewBrokerHandler(NewDependencies().WithBroker(gw))

	rec := serve(h.Callback, http.MethodGet, "/api/v1/brokers/etrade/callback")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, "OAuth token expired or not found", body.Detail)
	assert.Equal(t, "token_expired", body.Error.Code)
	assert.Equal(t, body.Detail, body.Error.Message)
}

func TestBrokerHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDetail string
	}{
		{
			name:       "no credentials",
			err:        apperrors.Unauthorized("No E*TRADE credentials found"),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "unauthorized",
			wantDetail: "No E*TRADE credentials found",
		},
		{
			name:       "upstream",
			err:        apperrors.Upstream("Accounts retrieval failed", errors.New("502 Bad Gateway")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "upstream_error",
			wantDetail: "Accounts retrieval failed: 502 Bad Gateway",
		},
		{
			name:       "store unavailable",
			err:        apperrors.ServiceUnavailable("Key-value store not available"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "service_unavailable",
			wantDetail: "Key-value store not available",
		},
		{
			name:       "decryption",
			err:        apperrors.Decryption("Stored E*TRADE credentials could not be decrypted", errors.New("message authentication failed")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "decryption_error",
			wantDetail: "Stored E*TRADE credentials could not be decrypted: message authentication failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBrokerHandler(NewDependencies().WithBroker(&fakeGateway{err: tt.err}))

			for _, fn := range []http.HandlerFunc{h.Accounts, h.Portfolio, h.Status, h.Login, h.LoginQR, h.Disconnect} {
				rec := serve(fn, http.MethodGet, "/")
				assert.Equal(t, tt.wantStatus, rec.Code)
				body := decodeError(t, rec)
				assert.Equal(t, tt.wantCode, body.Error.Code)
				assert.Equal(t, tt.wantDetail, body.Detail)
			}
		})
	}
}

func TestBrokerHandler_Accounts(t *testing.T) {
	raw := json.RawMessage(`{"Accounts":{"Account":[{"accountIdKey":"ABC"}]}}`)
	h := NewBrokerHandler(NewDependencies().WithBroker(&fakeGateway{accounts: raw}))

	rec := serve(h.Accounts, http.MethodGet, "/api/v1/brokers/etrade/accounts")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(raw), rec.Body.String())
}

func TestBrokerHandler_Portfolio(t *testing.T) {
	gw := &fakeGateway{portfolio: &broker.PortfolioResult{
		AccountID: "ABC",
		Portfolio: json.RawMessage(`{"PortfolioResponse":{}}`),
		Beta:      1.0,
	}}
	h := NewBrokerHandler(NewDependencies().WithBroker(gw))

	rec := serve(h.Portfolio, http.MethodGet, "/api/v1/brokers/etrade/portfolio")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"account_id":"ABC","portfolio":{"PortfolioResponse":{}},"beta":1}`, rec.Body.String())
}

func TestBrokerHandler_StatusAndDisconnect(t *testing.T) {
	gw := &fakeGateway{
		status:  &broker.ConnectionStatus{Broker: "etrade", Connected: true},
		removed: 2,
	}
	h := NewBrokerHandler(NewDependencies().WithBroker(gw))

	rec := serve(h.Status, http.MethodGet, "/api/v1/brokers/etrade/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"broker":"etrade","connected":true,"demo_mode":false}`, rec.Body.String())

	rec = serve(h.Disconnect, http.MethodDelete, "/api/v1/brokers/etrade/credentials")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":2}`, rec.Body.String())
}

func TestNewsHandler(t *testing.T) {
	fallback := news.Fallback(errors.New("news API error: status 500"), time.Date(2024, 7, 15, 14, 0, 0, 0, time.UTC))
	h := NewNewsHandler(NewDependencies().WithNews(&fakeNews{headlines: fallback}))

	rec := serve(h.Headlines, http.MethodGet, "/api/v1/news/headlines")
	assert.Equal(t, http.StatusOK, rec.Code)

	var headlines news.HeadlinesResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &headlines))
	assert.Equal(t, "error", headlines.Status)
	assert.True(t, headlines.DemoMode)
	assert.Len(t, headlines.Articles, 2)
	assert.Equal(t, "news API error: status 500", headlines.Error)

	rec = serve(h.MarketSentiment, http.MethodGet, "/api/v1/news/market-sentiment")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"fear_greed_index":65,"vix":18.5,"market_mood":"Bullish","timestamp":"2024-07-15T14:00:00Z"}`,
		rec.Body.String())
}

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(NewDependencies().WithStore(kvstore.Unavailable{}))

	rec := serve(h.Root, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Adaptive Beta API","version":"1.0.0"}`, rec.Body.String())

	rec = serve(h.Health, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name       string
		store      kvstore.Store
		wantStatus int
		wantBody   string
	}{
		{"memory", kvstore.NewMemory(), http.StatusOK, `{"status":"ready","store":"ok"}`},
		{"unavailable", kvstore.Unavailable{}, http.StatusServiceUnavailable, `{"status":"degraded","store":"Key-value store not available"}`},
		{"not configured", nil, http.StatusServiceUnavailable, `{"status":"degraded","store":"not configured"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(NewDependencies().WithStore(tt.store))
			rec := serve(h.Ready, http.MethodGet, "/ready")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
