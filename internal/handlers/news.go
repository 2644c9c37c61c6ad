package handlers

import "net/http"

// NewsHandler exposes headlines and market sentiment.
type NewsHandler struct {
	news NewsService
}

// NewNewsHandler creates a new NewsHandler.
func NewNewsHandler(deps *Dependencies) *NewsHandler {
	return &NewsHandler{news: deps.News}
}

// Headlines returns ticker headlines. It always responds 200.
func (h *NewsHandler) Headlines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.news.Headlines(r.Context()))
}

// MarketSentiment returns the sentiment snapshot.
func (h *NewsHandler) MarketSentiment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.news.MarketSentiment())
}
