/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the allocation tracker server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and layered configuration
  2. Configure logging
  3. Initialize SQLite store and run migrations
  4. Seed default lookup values (unless disabled)
  5. Configure HTTP router
  6. Start server with graceful shutdown

CONFIGURATION:
  Defaults < YAML file (TRACKER_CONFIG) < environment (TRACKER_ prefix).
  See config/config.go for the full key list.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  TRACKER_DB_PATH=./data/tracker.db ./server

  # Run with in-memory database on another port
  TRACKER_DB_PATH=:memory: TRACKER_ADDR=:3000 ./server
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/warp/allocation-tracker/api"
	"github.com/warp/allocation-tracker/config"
	"github.com/warp/allocation-tracker/store/sqlite"
)

func main() {
	// .env is optional; real env vars win either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	if cfg.Seed {
		if err := api.Seed(context.Background(), store, log); err != nil {
			log.WithError(err).Warn("failed to seed default lookup values")
		}
	}

	handler := api.NewHandler(store, log)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr": cfg.Addr,
			"db":   cfg.DBPath,
			"auth": cfg.AuthEnabled,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}
