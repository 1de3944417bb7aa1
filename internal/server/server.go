package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hongminglow/fintrack-be/internal/alerts"
	"github.com/hongminglow/fintrack-be/internal/auth"
	"github.com/hongminglow/fintrack-be/internal/config"
	"github.com/hongminglow/fintrack-be/internal/dashboard"
	"github.com/hongminglow/fintrack-be/internal/http/handlers"
	"github.com/hongminglow/fintrack-be/internal/logging"
	"github.com/hongminglow/fintrack-be/internal/middleware"
	"github.com/hongminglow/fintrack-be/internal/reports"
	"github.com/hongminglow/fintrack-be/internal/storage"
	"github.com/hongminglow/fintrack-be/internal/validation"
)

// Options carries the collaborators that differ between production and tests.
type Options struct {
	Logger zerolog.Logger
	// Publisher receives budget alerts. Nil logs them instead.
	Publisher alerts.Publisher
	// Now is the clock used for "today". Nil means time.Now.
	Now func() time.Time
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, opts Options) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, store, opts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return &Server{inner: httpServer}
}

// NewHandler builds the routed handler with the full middleware chain.
func NewHandler(cfg config.Config, store storage.Store, opts Options) http.Handler {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = alerts.NewLogPublisher(logging.Component(opts.Logger, "alerts"))
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, cfg.JWTRefreshTTL)
	validate := validation.New()
	engine := reports.NewEngine(store)
	checker := alerts.NewChecker(store, store, engine, publisher, cfg.Location).WithClock(now)
	summaries := dashboard.NewService(store, cfg.Location, cfg.LegacyMonthlyChange).WithClock(now)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(store, tokens, validate).Register(mux, tokens.Middleware)
	handlers.NewTransactionHandler(store, checker, validate).Register(mux, tokens.Middleware)
	handlers.NewBudgetHandler(store, engine, validate, cfg.Location, now).Register(mux, tokens.Middleware)
	handlers.NewReportHandler(engine, cfg.LegacyCSV).Register(mux, tokens.Middleware)
	handlers.NewDashboardHandler(summaries).Register(mux, tokens.Middleware)

	return middleware.Logging(opts.Logger)(middleware.CORS(cfg.CORSOrigins)(mux))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
