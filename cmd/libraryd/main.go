// Command libraryd serves the library catalog HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/openshelf/library-catalog/catalog/postgresengine"
	"github.com/openshelf/library-catalog/catalog/promadapter"
	"github.com/openshelf/library-catalog/catalog/zapadapter"
	"github.com/openshelf/library-catalog/httpapi"
	"github.com/openshelf/library-catalog/internal/config"
)

func main() {
	cfg := config.Load()

	logger, loggerErr := buildLogger(cfg.LogLevel)
	if loggerErr != nil {
		panic(loggerErr)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("libraryd failed", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolConfig, configErr := config.PGXPoolConfig(cfg)
	if configErr != nil {
		return configErr
	}

	connPool, poolErr := pgxpool.NewWithConfig(ctx, poolConfig)
	if poolErr != nil {
		return poolErr
	}
	defer connPool.Close()

	store, storeErr := postgresengine.NewCatalogStoreFromPGXPool(
		connPool,
		postgresengine.WithLogger(zapadapter.NewLogger(logger)),
		postgresengine.WithMetrics(promadapter.NewCollector(prometheus.DefaultRegisterer)),
	)
	if storeErr != nil {
		return storeErr
	}

	schema, schemaErr := store.IntrospectBookSchema(ctx)
	if schemaErr != nil {
		return schemaErr
	}

	if schema.IsEmpty() {
		return errors.New("books table has no columns, is the database initialized?")
	}

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.MakeHandler(store, schema, logger, httpapi.WithPageSize(cfg.PageSize)),
	}

	serverErrs := make(chan error, 1)

	go func() {
		logger.Info("libraryd listening", zap.String("addr", cfg.HTTPAddr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrs <- err
		}
	}()

	select {
	case err := <-serverErrs:
		return err

	case <-ctx.Done():
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}
