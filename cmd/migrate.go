package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/bidscout/internal/logger"
	"github.com/spigell/bidscout/internal/secrets"
	"github.com/spigell/bidscout/internal/storage/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded database migrations",
	Run: func(_ *cobra.Command, _ []string) {
		migrate()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func migrate() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	databaseURL, err := secrets.Load(secrets.Source{
		Name:  "database url",
		File:  config.Database.URLFile,
		Value: config.Database.URL,
	})
	if err != nil {
		logger.Fatal("loading database url", zap.Error(err),
			zap.String("hint", "set BIDSCOUT_DATABASE_URL or the 'database.url-file' key in the configuration file"),
		)
	}

	db, err := postgres.Connect(ctx, databaseURL, 1, logger)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer postgres.New(db).Close()

	if err := postgres.RunMigrations(ctx, db, logger); err != nil {
		logger.Fatal("applying migrations", zap.Error(err))
	}

	names, _ := postgres.Migrations()
	logger.Info("migrations applied", zap.Strings("migrations", names))
}
