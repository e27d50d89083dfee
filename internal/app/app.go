package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/civic-registry/internal/adapter/memory/record"
	"github.com/heartmarshall/civic-registry/internal/config"
	"github.com/heartmarshall/civic-registry/internal/metrics"
	"github.com/heartmarshall/civic-registry/internal/notify"
	"github.com/heartmarshall/civic-registry/internal/service/query"
	"github.com/heartmarshall/civic-registry/internal/service/registry"
	"github.com/heartmarshall/civic-registry/internal/transport/graphql"
	"github.com/heartmarshall/civic-registry/internal/transport/middleware"
	"github.com/heartmarshall/civic-registry/internal/transport/rest"
	"github.com/heartmarshall/civic-registry/internal/transport/ws"
)

// Run is the application entry point. It loads configuration, wires the
// registry and serves HTTP until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("addr", cfg.Server.Addr()),
	)

	srv := New(*cfg, logger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		// Fail readiness first, then end observer streams so hijacked
		// websocket connections do not hold Shutdown open.
		srv.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		return err
	}
	logger.Info("server stopped")
	return nil
}

// Server is the wired registry: store, notifier, services and HTTP routes.
type Server struct {
	handler  http.Handler
	health   *rest.HealthHandler
	notifier *notify.Notifier
	limiter  *middleware.RateLimiter
}

// New wires every component from cfg. It starts no listeners.
func New(cfg config.Config, logger *slog.Logger) *Server {
	m := metrics.New()

	repo := record.New()
	m.TrackRecords(repo.Count)

	notifier := notify.New(logger, cfg.Notifier.BufferSize, m)
	registrySvc := registry.NewService(logger, repo, notifier, m)
	resolver := query.NewResolver(logger, repo, m)

	originCheck := middleware.OriginChecker(cfg.CORS)

	health := rest.NewHealthHandler(repo, notifier, BuildVersion())
	services := rest.NewServicesHandler(registrySvc, cfg.API.ServicesPath(), logger)
	queries := rest.NewQueryHandler(resolver, cfg.API.QueryPath(), logger)
	events := ws.NewHandler(notifier, ws.Options{
		WriteTimeout: cfg.Notifier.WriteTimeout,
		PingInterval: cfg.Notifier.PingInterval,
		CheckOrigin:  originCheck,
	}, logger)
	gql := graphql.NewHandler(graphql.NewExecutableSchema(resolver, notifier, logger), graphql.Options{
		ComplexityLimit:   cfg.GraphQL.ComplexityLimit,
		QueryCacheSize:    cfg.GraphQL.QueryCacheSize,
		KeepAliveInterval: cfg.GraphQL.KeepAliveInterval,
		CheckOrigin:       originCheck,
	}, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)
	services.Register(mux)
	queries.Register(mux)
	mux.Handle("GET "+cfg.Notifier.Path, events)
	mux.Handle(cfg.GraphQL.Path, gql)

	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, m.Handler())
	}
	if cfg.Debug.Enabled {
		debug := rest.NewDebugHandler(repo, logger)
		mux.HandleFunc("GET /debug/services", debug.Services)
		logger.Warn("debug endpoints enabled")
	}

	stack := middleware.Stack{
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled() {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
		stack = stack.Use(limiter.LimitWrites(cfg.RateLimit.WritesPerMinute))
	}

	return &Server{
		handler:  stack.Then(mux),
		health:   health,
		notifier: notifier,
		limiter:  limiter,
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Close marks the server as draining, ends every observer stream and stops
// background workers. It does not close listeners.
func (s *Server) Close() {
	s.health.Drain()
	s.notifier.Close()
	if s.limiter != nil {
		s.limiter.Stop()
	}
}
