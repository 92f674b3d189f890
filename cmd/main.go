/*
Package main is the entry point for the Backbench server.

It is responsible for loading configuration, initializing the global logging system,
opening the configured store, starting the chat Manager and the unverified account
sweeper, serving HTTP, and gracefully handling operating system interrupt signals
(SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
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

	"backbench/internal/app/chat"
	"backbench/internal/app/sweeper"
	"backbench/internal/configs"
	"backbench/internal/handler"
	"backbench/internal/pkg/logx"
	"backbench/internal/pkg/pow"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Int("pow_difficulty", cfg.PowDifficulty).
		Str("store_driver", cfg.StoreDriver).
		Bool("mail_enabled", cfg.MailEnabled()).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancelOpen := context.WithTimeout(ctx, 15*time.Second)
	st, err := openStore(openCtx, cfg)
	cancelOpen()
	if err != nil {
		logx.Fatal(err, "Failed to open store", "driver", cfg.StoreDriver)
	}

	// Initialize Chat Manager
	manager := chat.NewManager(cfg, st)

	// Purge accounts whose OTP window closed without verification
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		sweeper.New(st, cfg.OTPTTL, sweeper.DefaultInterval).Run(ctx)
	}()

	deps := &handler.AppDeps{
		Manager: manager,
		Config:  cfg,
		Store:   st,
		Mailer:  newMailer(cfg),
		Pow:     pow.NewManager(ctx, cfg.PowDifficulty),
		Now:     time.Now,
	}

	// Setup HTTP server and routes
	router := handler.Router(ctx, deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Backbench Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	manager.Shutdown()
	<-sweeperDone

	if err := st.Close(shutdownCtx); err != nil {
		logx.Error(err, "Failed to close store")
	}

	logx.Info("Server gracefully stopped.")
}
