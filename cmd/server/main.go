// Command server runs the salon booking API.
//
// @title                      Salon Booking API
// @version                    1.0
// @description                Salon marketplace backend: salons, services, reviews, bookings and favorites.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-salon-backend/internal/auth"
	"github.com/tbourn/go-salon-backend/internal/config"
	httpapi "github.com/tbourn/go-salon-backend/internal/http"
	"github.com/tbourn/go-salon-backend/internal/jobs"
	"github.com/tbourn/go-salon-backend/internal/observability"
	"github.com/tbourn/go-salon-backend/internal/repo"
	"github.com/tbourn/go-salon-backend/internal/services"
	"github.com/tbourn/go-salon-backend/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := sysutil.InitLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.Setup(ctx, cfg.OTEL, observability.Build{
		Version:     sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version),
		Environment: os.Getenv("APP_ENV"),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migrate database")
	}

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	if cfg.SeedDemo {
		if err := services.SeedDemo(ctx, db, hasher); err != nil {
			logger.Fatal().Err(err).Msg("seed demo data")
		}
	}

	tokens, err := auth.NewTokenMaker(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("token maker")
	}

	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.AddIdempotencyPurge(db, cfg.IdempotencyPurgeSchedule); err != nil {
		logger.Fatal().Err(err).Msg("schedule jobs")
	}
	scheduler.Start()

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{DB: db, Tokens: tokens, Hasher: hasher}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("db", cfg.DBDriver).Str("base_path", cfg.APIBasePath).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	scheduler.Stop(shutdownCtx)
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("otel shutdown")
	}
	logger.Info().Msg("bye")
}
