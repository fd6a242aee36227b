package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/agencyuptime/dashboard-api/internal/api"
	"github.com/agencyuptime/dashboard-api/internal/config"
	"github.com/agencyuptime/dashboard-api/internal/db"
	"github.com/agencyuptime/dashboard-api/internal/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	var logger *zap.Logger
	if cfg.Server.Mode == "release" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatal("Failed to init logger:", err)
	}
	defer logger.Sync()

	// Store
	var store db.Store
	switch cfg.Storage.Driver {
	case "postgres":
		conn, err := db.NewConnection(cfg.Database.URL, cfg.Database.MaxConnections, cfg.Database.MaxIdleConns)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer conn.Close()

		if err := db.Migrate(conn, cfg.Database.MigrationsPath); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		store = db.NewPostgresStore(conn)
	default:
		memStore := db.NewMemoryStore(cfg.Checks.HistoryWindow)
		if err := db.Seed(memStore); err != nil {
			logger.Fatal("Failed to seed demo data", zap.Error(err))
		}
		store = memStore
		logger.Info("Using in-memory store with demo dataset")
	}

	collector := metrics.NewCollector()

	// API Server
	server := api.NewServer(cfg, store, collector, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.Router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("API server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
