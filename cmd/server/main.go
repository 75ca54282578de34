/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the roster rules engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (defaults, config.yaml, .env, ROSTER_* env)
  3. Build the logger
  4. Open the storage backend and initialise every rule domain
  5. Create API handler and start the flush scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to a YAML config file (default: ./config/config.yaml or ./config.yaml)
  -port    Overrides server.port

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the flush scheduler (one last flush of unsaved rules)
  4. Close the storage backend
  5. Exit

EXAMPLES:
  # Run with defaults (sqlite at ./roster.db)
  ./server

  # Run against Redis
  ROSTER_STORAGE_DRIVER=redis ROSTER_STORAGE_REDIS_ADDR=localhost:6379 ./server

  # Run fully in memory on a different port
  ROSTER_STORAGE_DRIVER=memory ./server -port=3000

SEE ALSO:
  - config/config.go: Settings and environment variables
  - factory/backend.go: Storage wiring
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/roster-engine/api"
	"github.com/warp/roster-engine/config"
	"github.com/warp/roster-engine/factory"
	"github.com/warp/roster-engine/logging"
	"github.com/warp/roster-engine/rules"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "Path to a YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides server.port)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	backend, err := factory.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer backend.Close()

	// Load persisted rules; failures fall back to defaults
	reg := backend.Registry(rules.WithStorageTimeout(cfg.Storage.Timeout))
	for domain, outcome := range reg.InitAll(ctx) {
		logger.Info("rule domain initialised", zap.String("domain", string(domain)), zap.String("outcome", string(outcome)))
	}

	handler := api.NewHandler(reg, backend.Resolver(), backend.Roster, cfg, logger)
	handler.Audit = backend.Audit
	handler.Storage = backend.Health
	if backend.SQLite != nil {
		handler.Holidays = backend.SQLite
	}

	flusher := api.NewFlushScheduler(reg, cfg.Rules.FlushInterval, logger)
	handler.Flusher = flusher
	flusher.Start()

	router := api.NewRouter(handler, cfg.Server.CORS.AllowOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("driver", backend.Driver),
			zap.String("api", fmt.Sprintf("http://localhost:%d/api", cfg.Server.Port)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		flusher.Stop()
		return err
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	flusher.Stop()

	logger.Info("server stopped")
	return nil
}
