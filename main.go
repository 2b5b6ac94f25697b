package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/talakhisi-be/internal/api"
	"github.com/isdelr/talakhisi-be/internal/auth"
	"github.com/isdelr/talakhisi-be/internal/config"
	"github.com/isdelr/talakhisi-be/internal/controller"
	"github.com/isdelr/talakhisi-be/internal/genai"
	"github.com/isdelr/talakhisi-be/internal/kv"
	"github.com/isdelr/talakhisi-be/internal/logger"
	"github.com/isdelr/talakhisi-be/internal/monitoring"
	"github.com/isdelr/talakhisi-be/internal/services"
	"github.com/isdelr/talakhisi-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up storage
	store, closer, err := kv.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer closer.Close()

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run(ctx)

	// Set up services
	libraryService := services.NewLibraryService(store)
	accountService := services.NewAccountService(store, libraryService, cfg.OwnerEmail, cfg.OwnerPassword)
	sessionService := services.NewSessionService(store)
	feedbackService := services.NewFeedbackService(store)
	messageService := services.NewMessageService(store, hub)
	dashboardService := services.NewDashboardService(accountService, libraryService, feedbackService, messageService, monitoring.HostStats)

	gemini := genai.NewClient(cfg.Gemini)
	if !gemini.Configured() {
		log.Warn().Msg("No API key configured; summarization, chat and speech will fail until API_KEY is set")
	}

	app := controller.New(sessionService, accountService, gemini)
	if _, err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to restore session")
	}

	// Set up and run the background retention job
	scheduler, err := monitoring.NewFeedbackAndMessageScheduler(cfg.RetentionCron, feedbackService, cfg.FeedbackLimit, messageService, cfg.MessageLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure retention scheduler")
	}
	go scheduler.Run()

	// Set up router
	router := api.NewRouter(api.Dependencies{
		App:            app,
		Tokens:         auth.NewManager(cfg.JWTSecret, auth.DefaultTTL),
		Hub:            hub,
		Accounts:       accountService,
		Library:        libraryService,
		Feedback:       feedbackService,
		Messages:       messageService,
		Dashboard:      dashboardService,
		Chat:           gemini,
		Speech:         gemini,
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  cfg.IsProduction(),
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("store", cfg.StoreBackend).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	cancel()

	log.Info().Msg("Server exiting")
}
