package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/genomike/citasmedicas/internal/citas"
	"github.com/genomike/citasmedicas/internal/config"
	"github.com/genomike/citasmedicas/internal/middleware"
	"github.com/genomike/citasmedicas/internal/models"
	"github.com/genomike/citasmedicas/internal/repository"
	"github.com/genomike/citasmedicas/internal/routes"
)

func main() {
	// .env is optional; environment variables win in deployment
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Environment)

	store, err := newStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("error connecting to storage")
	}
	svc := citas.NewService(store)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimit(middleware.NewIPRateLimiter(
		rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, store, svc)

	logger.Info().
		Str("port", cfg.Port).
		Str("driver", cfg.Database.Driver).
		Msg("servidor de citas médicas iniciado")
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}

func newLogger(environment string) zerolog.Logger {
	if environment == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// newStore picks the storage binding: GORM over MySQL by default, the
// in-memory store when DB_DRIVER=memory.
func newStore(cfg *config.Config) (*repository.Store, error) {
	if cfg.Database.Driver == "memory" {
		return repository.NewMemoryStore().Store(), nil
	}
	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		return nil, err
	}
	return repository.NewGormStore(db), nil
}
