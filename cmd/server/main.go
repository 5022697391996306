package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fin-advisor-go/internal/advisory"
	"fin-advisor-go/internal/api"
	"fin-advisor-go/internal/config"
	"fin-advisor-go/internal/database"
	"fin-advisor-go/internal/gateway"
	"fin-advisor-go/internal/logger"
	"fin-advisor-go/internal/snapshot"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	mode := gateway.ParseMode(cfg.UseMock)
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format, string(mode))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Order journal and history snapshots
	store, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer store.Close()
	log.Info("Database connection successful and schema migrated.")

	gw, err := gateway.NewFromConfig(&cfg, log)
	if err != nil {
		log.Fatal("Failed to build data gateway", zap.Error(err))
	}
	if mode == gateway.ModeLive {
		// Credentials are only checked per call; surface a missing key early.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if _, err := gw.ListInstruments(ctx); err != nil {
			log.Warn("Market data provider not reachable at startup", zap.Error(err))
		}
		cancel()
	}

	advisor := advisory.NewAdvisor(gw, advisory.NewHTTPFlow(&cfg.Advisory, log), log)
	snapshots := snapshot.NewService(gw, store, log)

	server := api.NewAPIServer(cfg.Server, gw, store, advisor, snapshots, log)
	server.Start()

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	<-sigchan
	log.Info("Shutdown signal received, gracefully shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Error("Failed to stop API server", zap.Error(err))
	}

	log.Info("Server has been shut down.")
}
