package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/bidscout/internal/engine"
	"github.com/spigell/bidscout/internal/httpapi"
	"github.com/spigell/bidscout/internal/logger"
	"github.com/spigell/bidscout/internal/secrets"
	"github.com/spigell/bidscout/internal/storage"
	"github.com/spigell/bidscout/internal/storage/postgres"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scoring API over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8080)")
	serveCmd.Flags().Bool("migrate", false, "apply database migrations before serving")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("database.migrate", serveCmd.Flags().Lookup("migrate"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the bidscout api", zap.String("version", version), zap.String("listen", config.Server.Listen))

	store, closeStore, err := openStore(ctx, config, viper.GetBool("database.migrate"), logger)
	if err != nil {
		logger.Fatal("opening store", zap.Error(err))
	}
	defer closeStore()

	oracle, err := prepareOracle(ctx, config, logger)
	if err != nil {
		logger.Warn("skipping semantic similarity", zap.Error(err))
	}

	eng := engine.New(engine.Config{Oracle: oracle, Concurrency: config.Concurrency, Logger: logger})
	api := httpapi.New(eng, store, httpapi.NewMetrics(), logger)

	server := &http.Server{
		Addr:         config.Server.Listen,
		Handler:      api.Router(),
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serving", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("reason", "signal received"))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}

// openStore connects to PostgreSQL when a database url is configured and
// falls back to the in-memory store otherwise.
func openStore(ctx context.Context, config *Config, migrate bool, logger *zap.Logger) (storage.Store, func(), error) {
	databaseURL, err := secrets.Load(secrets.Source{
		Name:  "database url",
		File:  config.Database.URLFile,
		Value: config.Database.URL,
	})
	if errors.Is(err, secrets.ErrNotConfigured) {
		logger.Warn("database is not configured; using the in-memory store")
		return storage.NewMemory(), func() {}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	db, err := postgres.Connect(ctx, databaseURL, config.Database.MaxConns, logger)
	if err != nil {
		return nil, nil, err
	}
	store := postgres.New(db)

	if migrate {
		if err := postgres.RunMigrations(ctx, db, logger); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("migrations: %w", err)
		}
	}

	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing database", zap.Error(err))
		}
	}, nil
}
