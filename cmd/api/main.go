package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hilthontt/ephemera/dependency"
	"go.uber.org/zap"
)

func main() {
	container, err := dependency.NewContainer()
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing dependencies: %w", err))
	}

	cfg := container.Config
	loggerInstance := container.Logger

	loggerInstance.Info("Starting Ephemera API")

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.Server.ExternalPort),
		Handler:        container.SetupRouter(),
		ReadTimeout:    15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		loggerInstance.Info("Server starting",
			zap.String("port", cfg.Server.ExternalPort),
			zap.String("mode", cfg.Server.RunMode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	loggerInstance.Info("Server started successfully",
		zap.String("port", cfg.Server.ExternalPort),
		zap.String("domain", cfg.Server.Domain),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	loggerInstance.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown; the
	// container closes them.
	if err := srv.Shutdown(ctx); err != nil {
		loggerInstance.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := container.Shutdown(); err != nil {
		loggerInstance.Error("Dependencies failed to shut down", zap.Error(err))
	}

	loggerInstance.Info("Server exited successfully")
}
