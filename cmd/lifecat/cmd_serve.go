package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lifecat/internal/cache"
	"lifecat/internal/handlers"
	"lifecat/internal/middleware"
	"lifecat/internal/router"
	"lifecat/internal/watch"
)

// shutdownTimeout bounds how long in-flight requests may take to finish.
const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string
	var watchFlag bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the category JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Host, a.cfg.Port = splitAddr(addr, a.cfg.Port)
			}
			if cmd.Flags().Changed("watch") {
				a.cfg.Watch = watchFlag
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address host:port (default from APP_HOST/APP_PORT)")
	cmd.Flags().BoolVar(&watchFlag, "watch", false, "reload when files under --fixtures change")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"fixtures", fixturesLabel(cfg.FixturesDir),
	)

	// Fail fast on broken fixtures rather than serving 503s.
	if err := a.svc.Initialize(ctx); err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	if cfg.SyncOnStart {
		if _, err := a.sync(ctx); err != nil {
			return err
		}
	}

	// The search cache is optional; without Valkey every search is computed.
	var searchCache *cache.SearchCache
	if cfg.CacheEnabled() {
		client, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
		if err != nil {
			return fmt.Errorf("connect valkey: %w", err)
		}
		defer client.Close()
		searchCache = cache.NewSearchCache(client, cfg.SearchCacheTTL)
	} else {
		slog.Warn("valkey not configured, search cache disabled")
	}

	limiter := middleware.NewRateLimiter(cfg.SearchRateLimit, time.Minute)
	r := router.New(a.svc, handlers.NewCategories(a.svc, searchCache), router.Options{
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     limiter,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		slog.Info("server stopped gracefully")
		return nil
	})

	g.Go(func() error {
		limiter.Run(ctx)
		return nil
	})

	if cfg.Watch {
		if cfg.FixturesDir == "" {
			slog.Warn("watch requested but fixtures are embedded, nothing to watch")
		} else {
			w := watch.New(cfg.FixturesDir, watch.DefaultDebounce, func(ctx context.Context) {
				if _, err := a.svc.Reload(ctx); err != nil {
					slog.Error("fixture reload failed, keeping previous snapshot", "error", err)
					return
				}
				searchCache.InvalidateAll(ctx)
			})
			g.Go(func() error { return w.Run(ctx) })
		}
	}

	return g.Wait()
}

// splitAddr accepts "host:port" or ":port". A bare host keeps the
// configured port.
func splitAddr(addr, defaultPort string) (string, string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, defaultPort
	}
	return host, port
}

func fixturesLabel(dir string) string {
	if dir == "" {
		return "embedded"
	}
	return dir
}
