package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hemato/consult/internal/config"
	"github.com/hemato/consult/internal/domain/alert"
	"github.com/hemato/consult/internal/domain/antibiotic"
	"github.com/hemato/consult/internal/domain/audit"
	"github.com/hemato/consult/internal/domain/culture"
	"github.com/hemato/consult/internal/domain/dashboard"
	"github.com/hemato/consult/internal/domain/evolution"
	"github.com/hemato/consult/internal/domain/media"
	"github.com/hemato/consult/internal/domain/message"
	"github.com/hemato/consult/internal/domain/patient"
	"github.com/hemato/consult/internal/domain/template"
	"github.com/hemato/consult/internal/domain/user"
	"github.com/hemato/consult/internal/platform/auth"
	"github.com/hemato/consult/internal/platform/db"
	"github.com/hemato/consult/internal/platform/llm"
	"github.com/hemato/consult/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "consult-server",
		Short: "Hemato-infectious consult service API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// OpenAI client covers note generation, chat, voice and OCR.
	llmClient := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIAudioModel)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLHrs)*time.Hour)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M", "20M"))
	e.Use(middleware.RequestTimeout(60 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Services
	auditSvc := audit.NewService(audit.NewRepo(pool), logger)
	alertSvc := alert.NewService(alert.NewRepo(pool), logger)
	patientSvc := patient.NewService(patient.NewRepo(pool))
	antibioticSvc := antibiotic.NewService(antibiotic.NewRepo(pool), alertSvc, logger)
	cultureSvc := culture.NewService(culture.NewRepo(pool), alertSvc, logger)
	evolutionSvc := evolution.NewService(evolution.NewRepo(pool), patientSvc, antibioticSvc, cultureSvc, llmClient, logger)
	messageSvc := message.NewService(message.NewRepo(pool), patientSvc, evolutionSvc, llmClient, evolution.NotePrompt(), logger)
	dashboardSvc := dashboard.NewService(patientSvc, antibioticSvc, cultureSvc, alertSvc, logger)
	userSvc := user.NewService(user.NewRepo(pool), issuer, auditSvc, logger)
	templateSvc := template.NewService(template.NewRepo(pool))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Auth middleware
	var authMW echo.MiddlewareFunc
	if cfg.IsDev() {
		authMW = auth.DevAuthMiddleware()
	} else {
		authMW = auth.JWTMiddleware(issuer)
	}

	// Login and registration stay outside the auth wall.
	public := e.Group("/api/v1")
	public.Use(middleware.RateLimit(middleware.DefaultRequestsPerSecond, middleware.DefaultBurstSize))

	apiV1 := e.Group("/api/v1", authMW, middleware.Audit(logger, auditSvc))
	apiV1.Use(middleware.RateLimit(middleware.DefaultRequestsPerSecond, middleware.DefaultBurstSize))

	// Handlers
	userHandler := user.NewHandler(userSvc)
	userHandler.RegisterPublicRoutes(public)
	userHandler.RegisterRoutes(apiV1)

	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	evolution.NewHandler(evolutionSvc).RegisterRoutes(apiV1)
	antibiotic.NewHandler(antibioticSvc).RegisterRoutes(apiV1)
	culture.NewHandler(cultureSvc).RegisterRoutes(apiV1)
	alert.NewHandler(alertSvc).RegisterRoutes(apiV1)
	message.NewHandler(messageSvc).RegisterRoutes(apiV1)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(apiV1)
	audit.NewHandler(auditSvc).RegisterRoutes(apiV1)
	template.NewHandler(templateSvc).RegisterRoutes(apiV1)
	media.NewHandler(llmClient, llmClient, llmClient, llmClient).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
