package main

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"adaptivebeta/internal/broker"
	"adaptivebeta/internal/broker/etrade"
	"adaptivebeta/internal/config"
	"adaptivebeta/internal/handlers"
	"adaptivebeta/internal/kvstore"
	"adaptivebeta/internal/middleware"
	"adaptivebeta/internal/news"
)

const (
	storeOpenTimeout = 5 * time.Second
	janitorInterval  = 5 * time.Minute
)

// App holds the application dependencies.
type App struct {
	config        *config.Config
	router        *chi.Mux
	brokerHandler *handlers.BrokerHandler
	newsHandler   *handlers.NewsHandler
	healthHandler *handlers.HealthHandler
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Open the key-value store; the API still serves health and news without it
	store := openStore(cfg.StoreURL)
	defer store.Close()

	enc, err := broker.NewEncryptor(cfg.EncryptionSecret)
	if err != nil {
		log.Fatalf("Failed to create credential encryptor: %v", err)
	}
	if cfg.EncryptionSecret == config.DefaultEncryptionSecret && !cfg.IsDevelopment() {
		log.Printf("Warning: using the development encryption secret in %q; set FERNET_KEY", cfg.Environment)
	}

	gateway := etrade.NewGateway(etrade.Config{
		ConsumerKey:    cfg.ConsumerKey,
		ConsumerSecret: cfg.ConsumerSecret,
		Environment:    cfg.ETradeEnv,
		CallbackURL:    cfg.BrokerCallback,
		DashboardURL:   cfg.DashboardURL,
		DemoMode:       cfg.BrokerDemoMode(),
	}, store, enc)
	newsService := news.NewService(news.Config{
		APIKey: cfg.NewsAPIKey,
		APIURL: cfg.NewsAPIURL,
	})

	if cfg.BrokerDemoMode() {
		log.Println("[E*TRADE] Demo mode enabled (ETRADE_CONSUMER_KEY not set)")
	} else {
		log.Printf("[E*TRADE] Using %s environment", cfg.ETradeEnv)
	}
	if cfg.NewsDemoMode() {
		log.Println("[News] Demo mode enabled (NEWS_API_KEY not set)")
	}

	deps := handlers.NewDependencies().
		WithBroker(gateway).
		WithNews(newsService).
		WithStore(store)

	app := newApp(cfg, deps)

	// Sweep expired tokens for backends without native expiry
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go kvstore.RunJanitor(janitorCtx, store, janitorInterval)

	// Create server
	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      app.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://%s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// newApp creates the handlers and router.
func newApp(cfg *config.Config, deps *handlers.Dependencies) *App {
	app := &App{
		config:        cfg,
		brokerHandler: handlers.NewBrokerHandler(deps),
		newsHandler:   handlers.NewNewsHandler(deps),
		healthHandler: handlers.NewHealthHandler(deps),
	}
	app.setupRouter()
	return app
}

func (app *App) setupRouter() {
	r := chi.NewRouter()

	// Chi middleware (aliased as chimw to avoid conflict with our middleware package)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	if app.config.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.RequestID)
	r.Use(chimw.Compress(5))

	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(app.config.CORSOrigin))

	r.Get("/", app.healthHandler.Root)
	r.Get("/health", app.healthHandler.Health)
	r.Get("/ready", app.healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/brokers/etrade", func(r chi.Router) {
			r.Use(middleware.NoStore)

			// OAuth handshake, rate limited per client IP
			r.Group(func(r chi.Router) {
				r.Use(middleware.LimitAuth)
				r.Get("/login", app.brokerHandler.Login)
				r.Get("/login/qr", app.brokerHandler.LoginQR)
				r.Get("/callback", app.brokerHandler.Callback)
			})

			r.Get("/accounts", app.brokerHandler.Accounts)
			r.Get("/portfolio", app.brokerHandler.Portfolio)
			r.Get("/status", app.brokerHandler.Status)
			r.Delete("/credentials", app.brokerHandler.Disconnect)
		})

		r.Route("/news", func(r chi.Router) {
			r.Use(middleware.LimitAPI)
			r.Get("/headlines", app.newsHandler.Headlines)
			r.Get("/market-sentiment", app.newsHandler.MarketSentiment)
		})
	})

	app.router = r
}

// openStore opens the configured store, falling back to one that fails every
// operation so the process still starts.
func openStore(dsn string) kvstore.Store {
	ctx, cancel := context.WithTimeout(context.Background(), storeOpenTimeout)
	defer cancel()

	store, err := kvstore.Open(ctx, dsn)
	if err != nil {
		log.Printf("[KV] Warning: store %s unavailable, broker endpoints will fail: %v", redactDSN(dsn), err)
		return kvstore.Unavailable{}
	}
	log.Printf("[KV] Using store %s", redactDSN(dsn))
	return store
}

// redactDSN hides any password in a store URL.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "(unparseable DSN)"
	}
	return u.Redacted()
}
