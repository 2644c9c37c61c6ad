package handlers

import (
	"context"

	"adaptivebeta/internal/broker"
	"adaptivebeta/internal/kvstore"
	"adaptivebeta/internal/news"
)

// NewsService is the news gateway used by NewsHandler.
type NewsService interface {
	Headlines(ctx context.Context) *news.HeadlinesResult
	MarketSentiment() news.Sentiment
}

// Dependencies holds all handler dependencies.
type Dependencies struct {
	Broker broker.Gateway
	News   NewsService
	Store  kvstore.Store
}

// NewDependencies creates an empty Dependencies container.
// Use the builder methods to set required dependencies.
func NewDependencies() *Dependencies {
	return &Dependencies{}
}

// WithBroker sets the broker gateway.
func (d *Dependencies) WithBroker(g broker.Gateway) *Dependencies {
	d.Broker = g
	return d
}

// WithNews sets the news service.
func (d *Dependencies) WithNews(s NewsService) *Dependencies {
	d.News = s
	return d
}

// WithStore sets the key-value store pinged by the readiness check.
func (d *Dependencies) WithStore(s kvstore.Store) *Dependencies {
	d.Store = s
	return d
}
