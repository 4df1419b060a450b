/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the aid analytics report server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags (and optional YAML config file)
  2. Initialize the warehouse source (SQLite, or the seeded demo set)
  3. Create API handler with report defaults
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -addr    Listen address (default: from config, ":8080")
  -db      SQLite database path; "demo" serves the built-in demo
           dataset from memory, ":memory:" an empty in-memory database
  -config  Optional YAML configuration file
  -seed    Load the demo dataset into the SQLite database on startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the database connection
  4. Exit

EXAMPLES:
  # Serve the demo dataset without a database
  ./server -db=demo

  # Serve from a warehouse file, seeding it first
  ./server -db=./data/aid.db -seed

SEE ALSO:
  - api/server.go: Router configuration
  - warehouse/sqlite/sqlite.go: Database implementation
  - config/config.go: YAML configuration
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/aid-analytics/api"
	"github.com/warp/aid-analytics/config"
	"github.com/warp/aid-analytics/warehouse"
	"github.com/warp/aid-analytics/warehouse/sqlite"
)

func main() {
	addr := flag.String("addr", "", "listen address (overrides config)")
	dbPath := flag.String("db", "", `SQLite database path, ":memory:", or "demo" (overrides config)`)
	configPath := flag.String("config", "", "YAML configuration file")
	seed := flag.Bool("seed", false, "load the demo dataset into the database on startup")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.WithError(err).Fatal("failed to load config")
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	defaults, err := cfg.ReportOptions()
	if err != nil {
		log.WithError(err).Fatal("invalid report configuration")
	}

	var source warehouse.Source
	if cfg.Database.Path == "demo" {
		mem := warehouse.NewMemory()
		mem.Replace(warehouse.DemoDataset())
		source = mem
		log.Info("serving the built-in demo dataset")
	} else {
		store, err := sqlite.New(cfg.Database.Path)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize database")
		}
		defer store.Close()
		if *seed {
			if err := store.Load(context.Background(), warehouse.DemoDataset()); err != nil {
				log.WithError(err).Fatal("failed to seed database")
			}
			log.WithField("db", cfg.Database.Path).Info("seeded demo dataset")
		}
		source = store
	}

	handler := api.NewHandler(source, defaults, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("server starting")
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
