/*
Package main is the entry point for the draw-it realtime server.

It is responsible for loading configuration, initializing the global logging system,
connecting to PostgreSQL and applying migrations, wiring the realtime core
(registry, broadcaster, router) with its external collaborators (credential
verifier, persistence gateway), and gracefully handling operating system
interrupt signals (SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/binay-das/draw-it/internal/app/db"
	"github.com/binay-das/draw-it/internal/app/store"
	"github.com/binay-das/draw-it/internal/app/ws"
	"github.com/binay-das/draw-it/internal/configs"
	"github.com/binay-das/draw-it/internal/handler"
	"github.com/binay-das/draw-it/internal/pkg/auth/jwt"
	"github.com/binay-das/draw-it/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Int("slug_min_len", cfg.SlugMinLen).
		Int("slug_max_len", cfg.SlugMaxLen).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL and apply migrations
	pool, err := db.NewPool(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to initialize database")
	}
	defer pool.Close()

	// Wire the realtime core and its external collaborators
	gateway := store.NewPGStore(pool)
	verifier := jwt.NewVerifier(cfg.JWTSecret)

	registry := ws.NewRegistry()
	broadcaster := ws.NewBroadcaster(registry)
	wsRouter := ws.NewRouter(registry, broadcaster, gateway)
	codec := ws.NewCodec(cfg.SlugMinLen, cfg.SlugMaxLen)

	deps := &handler.AppDeps{
		Config:   cfg,
		Registry: registry,
		Router:   wsRouter,
		Codec:    codec,
		Gateway:  gateway,
		Verifier: verifier,
	}

	// Setup HTTP server and routes
	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("draw-it realtime server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	registry.Shutdown()

	logx.Info("Server gracefully stopped.")
}
