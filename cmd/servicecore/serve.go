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
	"syscall"

	"github.com/goliatone/go-service-core/internal/auction"
	"github.com/goliatone/go-service-core/internal/config"
	"github.com/goliatone/go-service-core/internal/httpapi"
	"github.com/goliatone/go-service-core/internal/logging"
	"github.com/goliatone/go-service-core/internal/memstore"
	"github.com/goliatone/go-service-core/internal/search"
	"github.com/goliatone/go-service-core/pkg/di"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

var serviceName string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("service") {
			cfg = cfg.WithService(serviceName)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err := logging.New(os.Stderr, cfg.Log)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serviceName, "service", config.ServiceAuction, "service to run: auction or search")
}

// serve runs the server until ctx is cancelled, then drains it.
func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	container, err := di.NewContainer(cfg.Cache, di.WithLogger(logger), di.WithRegisterer(reg))
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Error("failed to release resources", "error", err)
		}
	}()

	handler, err := newHandler(ctx, cfg, container, reg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			"addr", cfg.HTTP.Addr,
			"service", cfg.Service,
			"store", cfg.Store.Driver,
			"cache", cfg.Cache.Backend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.HTTP.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// newHandler wires the configured service's store, cached repository and
// routes. Resources it opens are handed to container.
func newHandler(ctx context.Context, cfg config.Config, container *di.Container, gatherer prometheus.Gatherer) (http.Handler, error) {
	logger := container.Logger()

	var db *bun.DB
	if cfg.Store.Driver == config.StorePostgres {
		db = openPostgres(cfg.Store.DSN)
		container.Own(db)
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
	}

	var resource httpapi.Resource
	switch cfg.Service {
	case config.ServiceAuction:
		var base auction.Repository = memstore.New[*auction.Auction]("auction")
		if db != nil {
			if cfg.Store.CreateSchema {
				if err := auction.CreateSchema(ctx, db); err != nil {
					return nil, err
				}
			}
			base = auction.NewBunRepository(db)
		}
		repo := di.NewCachedRepository[*auction.Auction](container, base)
		resource = httpapi.NewAuctions(auction.NewService(repo, logger))

	case config.ServiceSearch:
		var base search.Repository = search.NewMemoryRepository()
		if db != nil {
			if cfg.Store.CreateSchema {
				if err := search.CreateSchema(ctx, db); err != nil {
					return nil, err
				}
			}
			base = search.NewBunRepository(db)
		}
		cached := search.Cached(base, di.NewCachedSearchRepository[*search.Item, search.Query](container, base))
		resource = httpapi.NewItems(search.NewService(cached, logger))

	default:
		return nil, fmt.Errorf("unknown service %q", cfg.Service)
	}

	return httpapi.NewRouter(httpapi.Options{
		Logger:   logger,
		Health:   container,
		Gatherer: gatherer,
	}, resource), nil
}

func openPostgres(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}
