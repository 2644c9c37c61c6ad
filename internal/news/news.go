// Package news proxies business headlines from NewsAPI for the dashboard ticker.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gregjones/httpcache"
)

const (
	// DefaultAPIURL is the NewsAPI top-headlines endpoint.
	DefaultAPIURL = "https://newsapi.org/v2/top-headlines"

	// DemoAPIKey selects the built-in demo headlines.
	DemoAPIKey = "demo_key"

	// MaxHeadlines is the most articles returned to the ticker.
	MaxHeadlines = 8

	pageSize          = 10
	httpClientTimeout = 10 * time.Second
	maxResponseSize   = 5 << 20
)

// Config configures the news service.
type Config struct {
	APIKey string
	APIURL string
	// HTTPClient overrides the default caching client.
	HTTPClient *http.Client
}

// Article is a single ticker headline.
type Article struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
	URL         string `json:"url"`
}

// HeadlinesResult is the ticker payload.
type HeadlinesResult struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	DemoMode     bool      `json:"demo_mode"`
	Error        string    `json:"error,omitempty"`
}

// Sentiment is a snapshot of market sentiment indicators.
type Sentiment struct {
	FearGreedIndex int     `json:"fear_greed_index"`
	VIX            float64 `json:"vix"`
	MarketMood     string  `json:"market_mood"`
	Timestamp      string  `json:"timestamp"`
}

// upstreamResponse is the subset of the NewsAPI response we read.
type upstreamResponse struct {
	Status       string `json:"status"`
	TotalResults *int   `json:"totalResults"`
	Articles     []struct {
		Title  string `json:"title"`
		Source *struct {
			Name *string `json:"name"`
		} `json:"source"`
		PublishedAt *string `json:"publishedAt"`
		URL         *string `json:"url"`
	} `json:"articles"`
}

// Service fetches headlines and market sentiment.
type Service struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
	now        func() time.Time
}

// NewService creates a news service. Without an explicit HTTPClient it uses
// an in-memory HTTP cache so repeated ticker polls can be served by
// conditional requests.
func NewService(cfg Config) *Service {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		transport := httpcache.NewMemoryCacheTransport()
		transport.MarkCachedResponses = true
		httpClient = &http.Client{
			Transport: transport,
			Timeout:   httpClientTimeout,
		}
	}

	return &Service{
		apiKey:     cfg.APIKey,
		apiURL:     apiURL,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// DemoMode reports whether the service serves built-in headlines.
func (s *Service) DemoMode() bool {
	return s.apiKey == "" || s.apiKey == DemoAPIKey
}

// Headlines returns up to MaxHeadlines business headlines. It never fails:
// upstream errors produce the Fallback result.
func (s *Service) Headlines(ctx context.Context) *HeadlinesResult {
	if s.DemoMode() {
		return demoHeadlines(s.now())
	}

	result, err := s.fetch(ctx)
	if err != nil {
		log.Printf("[News] Headlines unavailable, serving fallback: %v", err)
		return Fallback(err, s.now())
	}
	return result
}

// Fallback is the result served when the upstream cannot be used.
func Fallback(err error, now time.Time) *HeadlinesResult {
	ts := now.Format(time.RFC3339)
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &HeadlinesResult{
		Status:       "error",
		TotalResults: MaxHeadlines,
		Articles: []Article{
			{
				Title:       "Market Update: S&P 500 Continues Bullish Trend",
				Source:      "Market Data",
				PublishedAt: ts,
				URL:         "https://finance.yahoo.com/quote/%5EGSPC",
			},
			{
				Title:       "Tech Sector Leads Market Gains Today",
				Source:      "Market Data",
				PublishedAt: ts,
				URL:         "https://finance.yahoo.com/quote/%5EIXIC",
			},
		},
		DemoMode: true,
		Error:    msg,
	}
}

// MarketSentiment returns the current sentiment snapshot.
func (s *Service) MarketSentiment() Sentiment {
	return Sentiment{
		FearGreedIndex: 65,
		VIX:            18.5,
		MarketMood:     "Bullish",
		Timestamp:      s.now().Format(time.RFC3339),
	}
}

func (s *Service) fetch(ctx context.Context) (*HeadlinesResult, error) {
	u, err := url.Parse(s.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid news API URL: %w", err)
	}
	q := u.Query()
	q.Set("country", "us")
	q.Set("category", "business")
	q.Set("apiKey", s.apiKey)
	q.Set("pageSize", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news API error: status %d", resp.StatusCode)
	}
	if resp.Header.Get(httpcache.XFromCache) != "" {
		log.Printf("[News] Serving cached headlines")
	}

	var data upstreamResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode news API response: %w", err)
	}

	articles := make([]Article, 0, len(data.Articles))
	for _, a := range data.Articles {
		if a.Title == "" || a.Title == "[Removed]" {
			continue
		}
		article := Article{
			Title:  a.Title,
			Source: "Unknown",
			URL:    "#",
		}
		if a.Source != nil && a.Source.Name != nil {
			article.Source = *a.Source.Name
		}
		if a.PublishedAt != nil {
			article.PublishedAt = *a.PublishedAt
		}
		if a.URL != nil {
			article.URL = *a.URL
		}
		articles = append(articles, article)
	}

	result := &HeadlinesResult{
		Status:       data.Status,
		TotalResults: len(articles),
		DemoMode:     false,
	}
	if result.Status == "" {
		result.Status = "ok"
	}
	if data.TotalResults != nil {
		result.TotalResults = *data.TotalResults
	}
	if len(articles) > MaxHeadlines {
		articles = articles[:MaxHeadlines]
	}
	result.Articles = articles
	return result, nil
}
