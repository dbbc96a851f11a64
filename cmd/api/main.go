package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/siwes-hub/logbook-api/api/swagger"
	"github.com/siwes-hub/logbook-api/internal/handler"
	"github.com/siwes-hub/logbook-api/internal/legacy"
	"github.com/siwes-hub/logbook-api/internal/middleware"
	"github.com/siwes-hub/logbook-api/internal/models"
	"github.com/siwes-hub/logbook-api/internal/repository"
	"github.com/siwes-hub/logbook-api/internal/service"
	"github.com/siwes-hub/logbook-api/pkg/cache"
	"github.com/siwes-hub/logbook-api/pkg/config"
	"github.com/siwes-hub/logbook-api/pkg/database"
	"github.com/siwes-hub/logbook-api/pkg/kvstore"
	"github.com/siwes-hub/logbook-api/pkg/logger"
	corsmiddleware "github.com/siwes-hub/logbook-api/pkg/middleware/cors"
	reqidmiddleware "github.com/siwes-hub/logbook-api/pkg/middleware/requestid"
	"github.com/siwes-hub/logbook-api/pkg/storage"
)

// @title SIWES Logbook API
// @version 1.0.0
// @description Role-based logbook portal: daily entries, supervision, assessment
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	supervisionRepo := repository.NewSupervisionRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	logbookRepo := repository.NewLogbookRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	exportRepo := repository.NewExportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "logbook-api",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, logr)
	supervisionSvc := service.NewSupervisionService(supervisionRepo, userRepo, notificationSvc, validate, logr)
	entrySvc := service.NewEntryService(entryRepo, logbookRepo, supervisionRepo, userRepo, cacheRepo, notificationSvc, validate, logr, cfg.Logbook.DefaultWeeks)
	logbookSvc := service.NewLogbookService(logbookRepo, entryRepo, supervisionRepo, cacheRepo, logr, cfg.Logbook.DefaultWeeks, cfg.Progress.CacheTTL)
	assessmentSvc := service.NewAssessmentService(assessmentRepo, logbookRepo, userRepo, notificationSvc, validate, logr)

	var uiStore kvstore.Store
	if redisClient != nil {
		uiStore = kvstore.NewRedisStore(redisClient, "uistate")
	} else {
		uiStore = kvstore.NewMemoryStore()
	}
	uistateSvc := service.NewUIStateService(uiStore, logr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(exportRepo, entryRepo, store, signer, service.ExportServiceConfig{
			Workers: cfg.Exports.WorkerConcurrency,
			Retries: cfg.Exports.WorkerRetries,
		}, validate, logr)
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
	}

	var legacySvc *service.LegacySyncService
	if cfg.Legacy.Enabled {
		legacyClient := legacy.NewClient(cfg.Legacy.BaseURL, cfg.Legacy.Timeout)
		legacySvc = service.NewLegacySyncService(legacyClient, entryRepo, logbookRepo, cacheRepo, logr)
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	supervisionHandler := handler.NewSupervisionHandler(supervisionSvc, metricsSvc)
	entryHandler := handler.NewEntryHandler(entrySvc, metricsSvc)
	logbookHandler := handler.NewLogbookHandler(logbookSvc, uistateSvc)
	assessmentHandler := handler.NewAssessmentHandler(assessmentSvc, metricsSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.PUT("/password", middleware.JWT(authSvc), authHandler.ChangePassword)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.GET("/users/me", userHandler.Me)
		protected.POST("/users/me/onboarding", userHandler.CompleteOnboarding)
		protected.GET("/users/supervisors",
			middleware.RequireRoles(models.RoleStudent, models.RoleAdmin), userHandler.Supervisors)
		protected.GET("/users", middleware.RequireRoles(models.RoleAdmin), userHandler.List)
		protected.POST("/users", middleware.RequireRoles(models.RoleAdmin), userHandler.Create)
		protected.PUT("/users/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.Update)
		protected.DELETE("/users/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.Delete)

		protected.GET("/supervision",
			middleware.RequireRoles(models.RoleStudent), supervisionHandler.Status)
		protected.POST("/supervision/request",
			middleware.RequireRoles(models.RoleStudent), supervisionHandler.Request)
		protected.POST("/supervision/:studentId/decide",
			middleware.RequireRoles(models.RoleSupervisor), supervisionHandler.Decide)
		protected.GET("/supervision/pending",
			middleware.RequireRoles(models.RoleSupervisor), supervisionHandler.Pending)
		protected.GET("/supervision/students",
			middleware.RequireRoles(models.RoleSupervisor), supervisionHandler.Students)

		protected.PUT("/entries",
			middleware.RequireRoles(models.RoleStudent), entryHandler.SaveDay)
		protected.POST("/entries/:id/review",
			middleware.RequireRoles(models.RoleSupervisor), entryHandler.Review)
		protected.GET("/students/:studentId/weeks", entryHandler.Weeks)
		protected.GET("/students/:studentId/weeks/:week", entryHandler.GetWeek)
		protected.GET("/students/:studentId/logbook", logbookHandler.Get)
		protected.GET("/students/:studentId/progress", logbookHandler.Progress)

		protected.GET("/logbooks",
			middleware.RequireRoles(models.RoleAssessor, models.RoleAdmin), logbookHandler.AssessorList)
		protected.POST("/logbooks/:id/assessment",
			middleware.RequireRoles(models.RoleAssessor), assessmentHandler.Submit)
		protected.GET("/logbooks/:id/assessment",
			middleware.RequireRoles(models.RoleAssessor, models.RoleAdmin), assessmentHandler.Get)

		protected.GET("/uistate", logbookHandler.GetUIState)
		protected.PUT("/uistate", logbookHandler.SetUIState)

		protected.GET("/notifications", notificationHandler.List)
		protected.POST("/notifications/:id/read", notificationHandler.MarkRead)

		if exportSvc != nil {
			exportHandler := handler.NewExportHandler(exportSvc)
			protected.POST("/exports", exportHandler.Enqueue)
			protected.GET("/exports/:id", exportHandler.Status)
			api.GET("/exports/download", exportHandler.Download)
		}

		if legacySvc != nil {
			legacyHandler := handler.NewLegacyHandler(legacySvc)
			protected.POST("/legacy/sync/:studentId",
				middleware.RequireRoles(models.RoleAdmin), legacyHandler.SyncStudent)
			protected.GET("/legacy/assessors/:id/logbooks",
				middleware.RequireRoles(models.RoleAssessor, models.RoleAdmin), legacyHandler.AssessorWorklist)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
