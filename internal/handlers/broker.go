package handlers

import (
	"log"
	"net/http"

	"adaptivebeta/internal/broker"
)

// BrokerHandler exposes the broker OAuth gateway.
type BrokerHandler struct {
	gateway broker.Gateway
}

// NewBrokerHandler creates a new BrokerHandler.
func NewBrokerHandler(deps *Dependencies) *BrokerHandler {
	return &BrokerHandler{gateway: deps.Broker}
}

// Login starts the OAuth flow and returns the authorization redirect.
func (h *BrokerHandler) Login(w http.ResponseWriter, r *http.Request) {
	result, err := h.gateway.Login(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// LoginQR serves the authorization URL as a PNG QR code.
func (h *BrokerHandler) LoginQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.gateway.LoginQR(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Printf("Error writing QR code: %v", err)
	}
}

// Callback completes the OAuth flow and redirects to the dashboard.
func (h *BrokerHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	redirect, err := h.gateway.Callback(r.Context(), q.Get("oauth_token"), q.Get("oauth_verifier"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

// Accounts returns the broker account list.
func (h *BrokerHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.gateway.Accounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRawJSON(w, http.StatusOK, accounts)
}

// Portfolio returns the first account's portfolio.
func (h *BrokerHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.gateway.Portfolio(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, portfolio)
}

// Status reports whether broker credentials are stored.
func (h *BrokerHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.gateway.Status(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// Disconnect removes stored broker credentials.
func (h *BrokerHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	removed, err := h.gateway.Disconnect(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
