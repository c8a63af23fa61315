package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/alxtrnr/roster-api/api/swagger"
	internalhandler "github.com/alxtrnr/roster-api/internal/handler"
	internalmiddleware "github.com/alxtrnr/roster-api/internal/middleware"
	"github.com/alxtrnr/roster-api/internal/models"
	"github.com/alxtrnr/roster-api/internal/repository"
	"github.com/alxtrnr/roster-api/internal/service"
	"github.com/alxtrnr/roster-api/pkg/cache"
	"github.com/alxtrnr/roster-api/pkg/config"
	"github.com/alxtrnr/roster-api/pkg/database"
	"github.com/alxtrnr/roster-api/pkg/jobs"
	"github.com/alxtrnr/roster-api/pkg/logger"
	corsmiddleware "github.com/alxtrnr/roster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/alxtrnr/roster-api/pkg/middleware/requestid"
	"github.com/alxtrnr/roster-api/pkg/storage"
)

// @title Ward Roster API
// @version 0.1.0
// @description Constraint-based shift scheduler for clinical ward observation rosters
// @BasePath /
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	metricsHandler := internalhandler.NewMetricsHandler(metricsSvc)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("cache disabled, redis unreachable", "error", err)
		} else {
			defer client.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(client, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	userRepo := repository.NewUserRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	patientRepo := repository.NewPatientRepository(db, staffRepo)
	solveRunRepo := repository.NewSolveRunRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "roster-api",
		Audience:           []string{"roster-api-clients"},
	})
	authHandler := internalhandler.NewAuthHandler(authSvc)

	authRoutes := api.Group("/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
	authRoutes.POST("/reset-password", authHandler.ResetPassword)
	protectedAuth := authRoutes.Group("")
	protectedAuth.Use(internalmiddleware.JWT(authSvc))
	protectedAuth.GET("/me", authHandler.Me)
	protectedAuth.POST("/logout", authHandler.Logout)
	protectedAuth.POST("/change-password", authHandler.ChangePassword)

	userSvc := service.NewUserService(userRepo, nil, logr)
	userHandler := internalhandler.NewUserHandler(userSvc)

	staffSvc := service.NewStaffService(staffRepo, nil, logr)
	patientSvc := service.NewPatientService(patientRepo, nil, logr)
	repairSvc := service.NewRepairService(staffRepo, patientRepo, logr)
	staffHandler := internalhandler.NewStaffHandler(staffSvc, repairSvc)
	patientHandler := internalhandler.NewPatientHandler(patientSvc)

	rosterSvc := service.NewRosterService(staffSvc, patientSvc, solveRunRepo, cacheSvc, nil, logr, cfg.Solver)

	exportStore, err := storage.NewLocalStorage(cfg.Export.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	exportSigner := storage.NewSignedURLSigner(cfg.Export.SignedURLSecret, cfg.Export.SignedURLTTL)
	rosterExportSvc := service.NewRosterExportService(solveRunRepo, exportStore, exportSigner, service.RosterExportConfig{APIPrefix: cfg.APIPrefix}, logr, nil, nil)

	exportWorker := service.NewExportJobWorker(exportJobRepo, rosterExportSvc, cfg.Export.WorkerRetries, logr)
	workers := cfg.Export.WorkerCount
	if workers <= 0 {
		workers = 1
	}
	exportQueue := jobs.NewQueue("roster-exports", exportWorker.Handle, jobs.QueueConfig{
		Workers:    workers,
		BufferSize: workers * 4,
		MaxRetries: cfg.Export.WorkerRetries,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
	})
	queueCtx, cancelQueue := context.WithCancel(context.Background())
	exportQueue.Start(queueCtx)
	defer func() {
		cancelQueue()
		exportQueue.Stop()
	}()

	exportJobSvc := service.NewExportJobService(exportJobRepo, exportQueue, rosterExportSvc, logr, service.ExportJobServiceConfig{
		ResultTTL:  cfg.Export.SignedURLTTL,
		MaxRetries: cfg.Export.WorkerRetries,
	})

	rosterHandler := internalhandler.NewRosterHandler(rosterSvc, rosterExportSvc, exportJobSvc)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))

	usersGroup := secured.Group("/users")
	usersGroup.Use(internalmiddleware.RBAC(string(models.RoleAdmin)))
	usersGroup.GET("", userHandler.List)
	usersGroup.POST("", userHandler.Create)
	usersGroup.GET("/:id", userHandler.Get)
	usersGroup.PUT("/:id", userHandler.Update)
	usersGroup.DELETE("/:id", userHandler.Delete)

	coordinatorRoles := internalmiddleware.RBAC(string(models.RoleCoordinator), string(models.RoleAdmin))

	staffGroup := secured.Group("/staff")
	staffGroup.Use(coordinatorRoles)
	staffGroup.GET("", staffHandler.List)
	staffGroup.POST("", staffHandler.Create)
	staffGroup.POST("/repair", staffHandler.Repair)
	staffGroup.GET("/:id", staffHandler.Get)
	staffGroup.PUT("/:id", staffHandler.Update)
	staffGroup.DELETE("/:id", staffHandler.Delete)

	patientsGroup := secured.Group("/patients")
	patientsGroup.Use(coordinatorRoles)
	patientsGroup.GET("", patientHandler.List)
	patientsGroup.POST("", patientHandler.Create)
	patientsGroup.GET("/:id", patientHandler.Get)
	patientsGroup.PUT("/:id", patientHandler.Update)
	patientsGroup.DELETE("/:id", patientHandler.Delete)

	rosterGroup := secured.Group("/roster")
	rosterGroup.Use(coordinatorRoles)
	rosterGroup.POST("/solve", rosterHandler.Solve)
	rosterGroup.GET("/runs", rosterHandler.ListRuns)
	rosterGroup.GET("/runs/:id", rosterHandler.GetRun)
	rosterGroup.POST("/runs/:id/export", rosterHandler.ExportRun)
	rosterGroup.POST("/runs/:id/export/async", rosterHandler.QueueExport)
	rosterGroup.GET("/exports/:jobId", rosterHandler.ExportStatus)
	secured.GET("/export/:token", rosterHandler.DownloadExport)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
