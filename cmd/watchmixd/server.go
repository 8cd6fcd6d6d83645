package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"golang.org/x/sync/errgroup"

	v1 "github.com/watchmix/watchmix/internal/api/v1"
	"github.com/watchmix/watchmix/internal/config"
	"github.com/watchmix/watchmix/internal/events"
	"github.com/watchmix/watchmix/internal/migrations"
	"github.com/watchmix/watchmix/internal/providers"
	"github.com/watchmix/watchmix/internal/session"
	"github.com/watchmix/watchmix/pkg/letterboxd"
	"github.com/watchmix/watchmix/pkg/motn"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 200 { // Only capture first WriteHeader call
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func runServer(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	// Ensure database directory exists
	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// === Provider clients ===
	var lbOpts []letterboxd.Option
	if cfg.Letterboxd.BaseURL != "" {
		lbOpts = append(lbOpts, letterboxd.WithBaseURL(cfg.Letterboxd.BaseURL))
	}
	lbOpts = append(lbOpts, letterboxd.WithLogger(logger))
	lbClient := letterboxd.New(lbOpts...)

	var motnOpts []motn.Option
	if cfg.Availability.URL != "" {
		motnOpts = append(motnOpts, motn.WithBaseURL(cfg.Availability.URL))
	}
	motnOpts = append(motnOpts, motn.WithLogger(logger))
	motnClient := motn.New(cfg.Availability.APIKey, motnOpts...)

	// === Cached services ===
	cache := providers.NewCache(db)
	watchlists := providers.NewWatchlistService(lbClient, cache, cfg.Letterboxd.WatchlistTTL, logger)
	availability := providers.NewAvailabilityService(
		motnClient, watchlists, cache, cfg.Availability.Country, cfg.Availability.TTL, logger)

	// === Session engine ===
	bus := events.NewBus(logger.With("component", "bus"))
	defer bus.Close()

	sess := session.New(watchlists, availability, bus, logger,
		session.WithDebounce(cfg.Session.Debounce))
	defer sess.Close()

	// === HTTP server ===
	mux := http.NewServeMux()
	apiServer := v1.New(watchlists, availability, sess, logger)
	apiServer.RegisterRoutes(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: logRequests(mux, logger),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server started", "addr", addr, "version", version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
