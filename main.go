package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	database "github.com/kristinefung/personal-website-sub000/app/db"
	appLogger "github.com/kristinefung/personal-website-sub000/app/logger"
	"github.com/kristinefung/personal-website-sub000/app/observability/metrics"
	"github.com/kristinefung/personal-website-sub000/app/tracer"
	"github.com/kristinefung/personal-website-sub000/config"
	"github.com/kristinefung/personal-website-sub000/internal/api/auth"
	"github.com/kristinefung/personal-website-sub000/internal/api/enquiry"
	"github.com/kristinefung/personal-website-sub000/internal/api/image"
	"github.com/kristinefung/personal-website-sub000/internal/api/journey"
	"github.com/kristinefung/personal-website-sub000/internal/api/profile"
	"github.com/kristinefung/personal-website-sub000/internal/api/project"
	"github.com/kristinefung/personal-website-sub000/internal/api/technology"
	"github.com/kristinefung/personal-website-sub000/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger(cfg.Mode)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracer.InitTracingAndMetrics(cfg.Handlers.Prometheus.Port)
	metrics.InitAppMetrics()

	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	// Migrations run before the main pool comes up.
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- Dependency Injection ---
	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewAuthService(authRepo, &cfg, logger)
	authHandler := auth.NewAuthHandler(authService, logger)

	techRepo := technology.NewPostgresTechnologyRepo(pool, logger)
	techHandler := technology.NewTechnologyHandler(techRepo, logger)

	projectRepo := project.NewPostgresProjectRepo(pool, logger)
	projectService := project.NewProjectService(projectRepo, techRepo, logger)
	projectHandler := project.NewProjectHandler(projectService, logger)

	profileRepo := profile.NewPostgresProfileRepo(pool, logger)
	profileHandler := profile.NewProfileHandler(profileRepo, techRepo, logger)

	journeyRepo := journey.NewPostgresJourneyRepo(pool, logger)
	journeyHandler := journey.NewJourneyHandler(journeyRepo, logger)

	enquiryRepo := enquiry.NewPostgresEnquiryRepo(pool, logger)
	enquiryHandler := enquiry.NewEnquiryHandler(enquiryRepo, logger)

	imageStore, err := image.NewImageStore(cfg.Uploads.Dir, logger)
	if err != nil {
		logger.Error("Failed to initialize image store", slog.Any("error", err))
		os.Exit(1)
	}
	imageHandler := image.NewImageHandler(imageStore, cfg.Uploads.MaxUploadMB, logger)

	mainRouter := router.SetupRouter(&router.Config{
		AuthHandler:            authHandler,
		ProfileHandler:         profileHandler,
		ProjectHandler:         projectHandler,
		JourneyHandler:         journeyHandler,
		TechnologyHandler:      techHandler,
		EnquiryHandler:         enquiryHandler,
		ImageHandler:           imageHandler,
		AuthenticateMiddleware: auth.Authenticate(logger, cfg.JWT, authService),
	})

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Timeout(cfg.Server.Timeout))
	mux.Use(middleware.Compress(5, "application/json"))
	mux.Mount("/", mainRouter)

	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Expired session rows are deleted on a fixed interval so revoked
	// and stale sessions do not accumulate.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.Sessions.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				swept, err := authService.SweepExpiredSessions(gCtx)
				if err != nil {
					logger.Error("Session sweep failed", slog.Any("error", err))
					continue
				}
				if swept > 0 {
					metrics.Get().SessionsSweptTotal.Add(gCtx, swept)
					logger.Info("Swept expired sessions", slog.Int64("count", swept))
				}
			}
		}
	})

	g.Go(func() error {
		<-gCtx.Done()

		logger.Info("Shutdown signal received, starting graceful shutdown...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server graceful shutdown failed: %w", err)
		}
		logger.Info("HTTP server gracefully stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger(mode string) *slog.Logger {
	if mode == "development" || mode == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		return slog.New(tint.NewHandler(os.Stdout, tintOpts))
	}

	jsonOpts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
}
