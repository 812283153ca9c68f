package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/mamacare/mamacare-api/handlers"
	"github.com/mamacare/mamacare-api/internal/app"
	"github.com/mamacare/mamacare-api/internal/storage"
	"github.com/mamacare/mamacare-api/pkg/logger"
	"github.com/mamacare/mamacare-api/pkg/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&useMemory, "memory", false, "use the in-memory store instead of MongoDB")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.JWT.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, closeDB, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	checks := map[string]handlers.Check{}
	if pinger, ok := db.(interface{ Ping(context.Context) error }); ok {
		checks["mongodb"] = pinger.Ping
	}

	var rdb *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("redis %s unreachable, continuing without it: %v", addr, err)
			_ = rdb.Close()
			rdb = nil
		} else {
			logger.Infof("connected to Redis at %s", addr)
			defer rdb.Close()
		}
	}

	var media storage.MediaStore
	if cfg.MinIO.Endpoint != "" {
		m, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("media storage disabled: %v", err)
		} else {
			media = m
			logger.Infof("media storage at %s/%s", cfg.MinIO.Endpoint, cfg.MinIO.Bucket)
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	a := app.New(cfg, db, app.Options{
		Redis:    rdb,
		Media:    media,
		Checks:   checks,
		Gatherer: prometheus.DefaultGatherer,
	})
	if _, err := seedIfEmpty(ctx, db); err != nil {
		logger.Warnf("seed content: %v", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      a.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("MamaCare API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	drain := cfg.Server.ShutdownTimeout
	if drain <= 0 {
		drain = 10 * time.Second
	}
	logger.Infof("shutting down (drain %s)", drain)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
