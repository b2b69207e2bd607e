// Command server serves the randomizer HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MJE43/trainerrand/internal/api"
	"github.com/MJE43/trainerrand/internal/config"
	"github.com/MJE43/trainerrand/internal/store"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file read before the environment")
	noDB := flag.Bool("no-db", false, "serve without run history")
	flag.Parse()

	logger := log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		logger.Fatalf("legality tables: %v", err)
	}

	var db store.DB
	if !*noDB {
		sqlite, err := store.NewSQLiteDB(cfg.DBPath)
		if err != nil {
			logger.Fatalf("open database %s: %v", cfg.DBPath, err)
		}
		defer sqlite.Close()
		if err := sqlite.Migrate(); err != nil {
			logger.Fatalf("migrate database: %v", err)
		}
		db = sqlite
	}

	srv := api.NewServer(db, api.Options{
		Addr:           cfg.Addr,
		Catalog:        catalog,
		RequestTimeout: cfg.RequestTimeout,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server error: %v", err)
		}
	case <-ctx.Done():
		logger.Printf("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
	srv.Shutdown("signal")
}
