package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ptdat2/Magpie/config"
	"github.com/ptdat2/Magpie/database"
	_ "github.com/ptdat2/Magpie/docs" // Swagger docs - auto-generated
	"github.com/ptdat2/Magpie/internal/controller"
	ingestctrl "github.com/ptdat2/Magpie/internal/controller/ingest"
	reviewctrl "github.com/ptdat2/Magpie/internal/controller/review"
	"github.com/ptdat2/Magpie/internal/dedup"
	"github.com/ptdat2/Magpie/internal/logger"
	"github.com/ptdat2/Magpie/internal/metrics"
	"github.com/ptdat2/Magpie/internal/model"
	"github.com/ptdat2/Magpie/internal/repository"
	"github.com/ptdat2/Magpie/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Magpie Ingestion API
// @version 1.0
// @description Ingestion decision engine for messy test-attempt submissions: identity resolution, near-duplicate detection, deterministic scoring, and the review surface on top.
// @contact.name API Support
// @contact.url https://github.com/ptdat2/Magpie/issues
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init() // Call this early so provider construction can log

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
		),

		// Repositories Layer
		fx.Provide(
			repository.NewStudentRepository,
			repository.NewTestRepository,
			repository.NewAttemptRepository,
			repository.NewScoreRepository,
			repository.NewFlagRepository,
			repository.NewMaintenanceRepository,
		),

		// Shared pipeline pieces
		fx.Provide(
			service.NewKeyLocks,
			metrics.NewIngestMetrics,
			func(cfg *config.Config) *dedup.Engine {
				return dedup.NewEngine(cfg.Dedup.Similarity)
			},
		),

		// Services Layer
		fx.Provide(
			service.NewIdentityService,
			func(
				identity service.IdentityService,
				attemptRepo repository.AttemptRepository,
				engine *dedup.Engine,
				locks *service.KeyLocks,
				m *metrics.IngestMetrics,
				cfg *config.Config,
			) service.IngestService {
				return service.NewIngestService(identity, attemptRepo, engine, cfg.Dedup.Window(), locks, m)
			},
			service.NewAttemptService,
			service.NewLeaderboardService,
			service.NewUploadService,
		),

		// API Controllers Layer
		fx.Provide(
			ingestctrl.NewIngestController,
			reviewctrl.NewReviewController,
		),

		// Invokers - Functions that are executed by Fx
		fx.Invoke(ConfigureLogging),
		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	// Wait for a shutdown signal
	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

// ConfigureLogging reapplies the configured level and sinks to the global
// logger once the config is available.
func ConfigureLogging(cfg *config.Config) {
	logger.Configure(cfg.Log.Level, cfg.Log.File, cfg.Log.Pretty)
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	// Pretty console logging doubles as the local-development switch.
	if !cfg.Log.Pretty {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Request id + request-scoped logger + access log, then panic recovery.
	r.Use(controller.RequestContext())
	r.Use(gin.Recovery())

	// CORS Configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Be more specific in production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", controller.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", controller.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI
	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	ingestCtrl *ingestctrl.IngestController,
	reviewCtrl *reviewctrl.ReviewController,
) {
	router.GET("/api/health", controller.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/ingest/attempts", ingestCtrl.IngestAttempts)

		uploadGroup := api.Group("/upload")
		uploadGroup.POST("/analyze", ingestCtrl.AnalyzeUpload)
		uploadGroup.POST("/ingest", ingestCtrl.IngestUpload)

		api.POST("/data/reset", ingestCtrl.ResetData)

		attemptsGroup := api.Group("/attempts")
		attemptsGroup.GET("", reviewCtrl.ListAttempts)
		attemptsGroup.GET("/:attempt_id", reviewCtrl.GetAttempt)
		attemptsGroup.POST("/:attempt_id/recompute", reviewCtrl.RecomputeAttempt)
		attemptsGroup.POST("/:attempt_id/flag", reviewCtrl.FlagAttempt)
		attemptsGroup.GET("/:attempt_id/duplicates", reviewCtrl.GetDuplicateThread)

		api.GET("/leaderboard", reviewCtrl.GetLeaderboard)
		api.GET("/tests", reviewCtrl.ListTests)
		api.GET("/stats", reviewCtrl.GetStats)
	}

	// HTTP Server Setup and Lifecycle
	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Magpie ingestion API starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Student{},
		&model.Test{},
		&model.Attempt{},
		&model.Score{},
		&model.Flag{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
