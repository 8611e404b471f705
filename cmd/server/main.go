// Package main initializes and starts the GophNotes API server,
// setting up configuration, logging, database connections, repositories,
// services, handlers, and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/GophNotes/internal/ai"
	"github.com/atinyakov/GophNotes/internal/config"
	"github.com/atinyakov/GophNotes/internal/db"
	"github.com/atinyakov/GophNotes/internal/logger"
	"github.com/atinyakov/GophNotes/internal/repository"
	"github.com/atinyakov/GophNotes/internal/server/handler/http"
	"github.com/atinyakov/GophNotes/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	// Drop expired sessions in the background.
	db.StartSessionCleaner(ctx, postgresDB, time.Hour, zapLogger)

	// Initialize repositories.
	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	noteRepo := repository.NewPostgresNoteRepository(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(authRepo, options.SessionTTL)
	noteService := service.NewNoteService(noteRepo)

	var summarizeService *service.SummarizeService
	if options.GeminiAPIKey == "" {
		zapLogger.Warn("GEMINI_API_KEY is not set, summarization is disabled")
		summarizeService = service.NewSummarizeService(nil)
	} else {
		gemini, err := ai.NewGemini(ctx, options.GeminiAPIKey, options.GeminiModel)
		if err != nil {
			zapLogger.Fatal("cannot init Gemini client", zap.Error(err))
		}
		summarizeService = service.NewSummarizeService(gemini)
	}

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{AuthService: authService}
	notesHandler := &http.NotesHandler{NoteService: noteService}
	summarizeHandler := &http.SummarizeHandler{Summarizer: summarizeService, Logger: zapLogger}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, notesHandler, summarizeHandler, authService, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if options.TLSEnabled() {
			// Load server TLS certificate and key.
			cert, err := tls.LoadX509KeyPair(options.TLSCert, options.TLSKey)
			if err != nil {
				errCh <- fmt.Errorf("failed to load server TLS cert/key: %w", err)
				return
			}
			server.TLSConfig = &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			}
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
			errCh <- server.ListenAndServeTLS("", "")
			return
		}
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
