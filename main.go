package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mamacare/mamacare-api/internal/config"
	"github.com/mamacare/mamacare-api/internal/database"
	"github.com/mamacare/mamacare-api/internal/store"
	"github.com/mamacare/mamacare-api/pkg/logger"
)

var (
	logLevel  string
	useMemory bool
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mamacare",
	Short: "MamaCare maternal-health API",
	Long: `MamaCare serves the maternal-health REST API: accounts, wellness logs,
reminders, the community forum, pregnancy content and the clinic directory.

Configuration comes from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		logger.Init(level)
		if cfg.Logging.Console {
			logger.UseConsole()
		}
		if cfg.Logging.FileEnabled {
			if err := logger.EnableFile(logger.FileOptions{Directory: cfg.Logging.Directory, Filename: cfg.Logging.Filename}); err != nil {
				return fmt.Errorf("enable file logging: %w", err)
			}
		}
		logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug|info|warn|error)")
	rootCmd.AddCommand(serveCmd, seedCmd, promoteCmd, loginCmd, logoutCmd, profileCmd)
}

// openDatabase connects to MongoDB and ensures indexes. Without MONGODB_URI,
// or with --memory, it returns the in-memory store.
func openDatabase(ctx context.Context) (store.Database, func(), error) {
	if useMemory || cfg.MongoDB.URI == "" {
		if !useMemory {
			logger.Warnf("MONGODB_URI is not set; using the in-memory store (data is lost on exit)")
		}
		return store.NewMemoryDatabase(), func() {}, nil
	}
	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	closeFn := func() { _ = client.Disconnect(context.Background()) }
	db := client.Database(cfg.MongoDB.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		closeFn()
		return nil, nil, err
	}
	logger.Infof("connected to MongoDB database %q", cfg.MongoDB.Database)
	return store.NewMongoDatabase(db), closeFn, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
