package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/schedule-conflict-api/api/swagger"
	"github.com/noah-isme/schedule-conflict-api/internal/handler"
	"github.com/noah-isme/schedule-conflict-api/internal/middleware"
	"github.com/noah-isme/schedule-conflict-api/internal/models"
	"github.com/noah-isme/schedule-conflict-api/internal/repository"
	"github.com/noah-isme/schedule-conflict-api/internal/service"
	"github.com/noah-isme/schedule-conflict-api/pkg/cache"
	"github.com/noah-isme/schedule-conflict-api/pkg/config"
	"github.com/noah-isme/schedule-conflict-api/pkg/database"
	"github.com/noah-isme/schedule-conflict-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/schedule-conflict-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/schedule-conflict-api/pkg/middleware/requestid"
)

// @title Schedule Conflict API
// @version 0.1.0
// @description Read-only conflict analysis over the school scheduling snapshot
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	if cfg.Reports.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, report caching disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}
	var cacheSvc *service.CacheService
	if cacheRepo != nil {
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Reports.CacheTTL, logr, true)
	}

	snapshotRepo := repository.NewSnapshotRepository(db)

	conflictSvc := service.NewConflictService(snapshotRepo, logr, metricsSvc, cfg.Analysis.MaxSlotsPerAnalysis)
	entitySvc := service.NewEntityConflictService(snapshotRepo, logr)
	enrollmentSvc := service.NewEnrollmentCheckService(snapshotRepo, logr)
	availabilitySvc := service.NewAvailabilityService(snapshotRepo, logr)
	reportingSvc := service.NewReportingService(service.ReportingServiceParams{
		Analyzer: conflictSvc,
		Repo:     snapshotRepo,
		Cache:    cacheSvc,
		Logger:   logr,
		CacheTTL: cfg.Reports.CacheTTL,
	})
	tokenSvc := service.NewTokenService(cfg.JWT.Secret)

	conflictHandler := handler.NewConflictHandler(reportingSvc)
	scheduleHandler := handler.NewScheduleHandler(conflictSvc, availabilitySvc)
	studentHandler := handler.NewStudentHandler(entitySvc, enrollmentSvc)
	teacherHandler := handler.NewTeacherHandler(entitySvc)
	roomHandler := handler.NewRoomHandler(entitySvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	adminRoles := []string{string(models.RoleAdmin), string(models.RoleScheduler)}

	v1 := r.Group(cfg.APIPrefix)
	v1.Use(middleware.JWT(tokenSvc))
	{
		conflicts := v1.Group("/conflicts")
		conflicts.Use(middleware.RBAC(adminRoles...))
		{
			conflicts.GET("", conflictHandler.List)
			conflicts.GET("/dashboard", conflictHandler.Dashboard)
			conflicts.GET("/violations", conflictHandler.Violations)
			conflicts.GET("/opportunities", conflictHandler.Opportunities)
			conflicts.GET("/quality", conflictHandler.Quality)
		}

		schedule := v1.Group("/schedule")
		schedule.Use(middleware.RBAC(adminRoles...))
		{
			schedule.GET("/completion", scheduleHandler.Completion)
			schedule.GET("/alternative-slots", scheduleHandler.AlternativeSlots)
		}

		v1.GET("/students/:id/conflicts", middleware.RBAC(adminRoles...), studentHandler.Conflicts)
		v1.GET("/students/:id/enrollment-check", middleware.RBAC(adminRoles...), studentHandler.EnrollmentCheck)

		teacherRoles := append([]string{"SELF"}, adminRoles...)
		v1.GET("/teachers/:id/conflicts", middleware.RBAC(teacherRoles...), teacherHandler.Conflicts)
		v1.GET("/teachers/:id/availability", middleware.RBAC(teacherRoles...), teacherHandler.Availability)

		v1.GET("/rooms/:id/conflicts", middleware.RBAC(adminRoles...), roomHandler.Conflicts)
		v1.GET("/rooms/:id/availability", middleware.RBAC(adminRoles...), roomHandler.Availability)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
