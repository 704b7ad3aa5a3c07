package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/quizflash/internal/api"
	"github.com/vytor/quizflash/internal/auth"
	"github.com/vytor/quizflash/internal/config"
	"github.com/vytor/quizflash/internal/db"
	"github.com/vytor/quizflash/internal/jobs"
	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/questions"
	"github.com/vytor/quizflash/internal/repository/sqlite"
	"github.com/vytor/quizflash/internal/services"
	"github.com/vytor/quizflash/internal/session"
	"github.com/vytor/quizflash/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(cfg.LogLevelValue()),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("QuizFlash Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("token_ttl=%s", cfg.TokenTTL)
	log.Debug("save_worker_count=%d", cfg.SaveWorkerCount)
	log.Debug("save_queue_size=%d", cfg.SaveQueueSize)
	log.Debug("question_bank_path=%q", cfg.QuestionBankPath)
	if cfg.UsesDefaultSecret() {
		log.Warn("JWT_SECRET is not set, using the development default")
	}

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Load question bank
	bank, err := questions.LoadBankFile(cfg.QuestionBankPath)
	if err != nil {
		log.Error("failed to load question bank: %v", err)
		os.Exit(1)
	}
	log.Info("question bank loaded with %d subjects", len(bank.Subjects()))

	// Repositories and services
	profileRepo := sqlite.NewProfileRepository(database.DB)
	attemptService := services.NewAttemptService(sqlite.NewAttemptRepository(database.DB), profileRepo)
	settingsService := services.NewSettingsService(sqlite.NewSettingsRepository(database.DB))
	profileService := services.NewProfileService(profileRepo)

	// Attempt saves run off the request path
	savePool := worker.NewPool(cfg.SaveWorkerCount, cfg.SaveQueueSize)
	queue := jobs.NewWorkerQueue(savePool, attemptService)

	sessions := session.NewManager(bank, questions.NewLibrary(), queue)
	authService := auth.NewService(sqlite.NewUserRepository(database.DB), cfg.JWTSecret, cfg.TokenTTL,
		auth.WithSignOutHook(sessions.Reset),
	)

	srv := &api.Server{
		Auth:            authService,
		ProfileService:  profileService,
		SettingsService: settingsService,
		AttemptService:  attemptService,
		QuizService:     services.NewQuizService(sessions, settingsService),
		Bank:            bank,
		DB:              database,
		TokenTTL:        cfg.TokenTTL,
		SecureCookies:   cfg.SecureCookies,
	}

	ctx, cancel := context.WithCancel(context.Background())
	savePool.Start(ctx)

	// Configure HTTP server. No WriteTimeout: the events socket is long-lived
	// and JSON routes carry their own timeout.
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Stop timers before draining so no new saves arrive mid-drain.
	log.Debug("closing quiz sessions")
	sessions.Close()

	log.Debug("draining save pool")
	savePool.Stop()
	cancel()

	log.Info("===========================================")
	log.Info("QuizFlash Server Stopped")
	log.Info("===========================================")
}
