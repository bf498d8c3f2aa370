/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the absence tracker server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite sync adapter
  3. Wire the tracker and start its subscription loops
  4. Configure HTTP router
  5. Start server with graceful shutdown

CONFIGURATION:
  Flags take precedence over environment variables:
    -port / PORT           HTTP server port (default: 8080)
    -db / DATABASE_PATH    SQLite database path (default: absence.db)
                           Use ":memory:" for in-memory database
    -log-level / LOG_LEVEL debug, info, warn, error (default: info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the tracker subscription loops
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/absence.db"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - absence/tracker.go: Store wiring
  - store/sqlite/sqlite.go: Durable adapter
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/warp/absence-engine/absence"
	"github.com/warp/absence-engine/api"
	"github.com/warp/absence-engine/store/sqlite"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE_PATH", "absence.db"), "SQLite database path")
	logLevel := flag.String("log-level", envStr("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level %q: %v", *logLevel, err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Durable store
	adapter, err := sqlite.New(*dbPath)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer adapter.Close()

	// Tracker with running subscription loops
	trackerCtx, stopTracker := context.WithCancel(context.Background())
	defer stopTracker()

	tracker := absence.NewTracker(adapter)
	go tracker.Start(trackerCtx)

	// HTTP layer
	handler := api.NewHandler(tracker)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"port": *port,
			"db":   *dbPath,
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}
	stopTracker()

	logrus.Info("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
