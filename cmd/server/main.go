// cmd/server/main.go
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

	"github.com/Annany2002/arteesan-backend/api"    // Import router setup
	"github.com/Annany2002/arteesan-backend/config" // Import config loading
	"github.com/Annany2002/arteesan-backend/internal/domain"
	"github.com/Annany2002/arteesan-backend/internal/logger"
	"github.com/Annany2002/arteesan-backend/internal/storage" // Import document store
)

func main() {
	bootLog := logger.NewLogger()
	bootLog.Info("Starting Arteesan Backend server...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig(bootLog)
	if err != nil {
		bootLog.Fatalf("Failed to load configuration: %v", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		bootLog.Fatalf("Failed to configure logger: %v", err)
	}
	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Open the document store
	store, err := storage.Open(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", cfg.StoreDriver, err)
	}
	defer func() {
		log.Info("Closing document store...")
		if err := store.Close(); err != nil {
			log.Errorf("Error closing document store: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	for _, collection := range domain.Collections() {
		if err := store.EnsureCollection(ctx, collection); err != nil {
			cancel()
			log.Fatalf("Failed to prepare collection %s: %v", collection, err)
		}
	}
	cancel()

	// 3. Setup Router (passing dependencies)
	router := api.SetupRouter(store, cfg, log)

	// 4. Start Server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server listening on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
}
