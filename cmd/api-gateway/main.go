package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/campus-timetable-api/api/swagger"
	"github.com/noah-isme/campus-timetable-api/internal/handler"
	"github.com/noah-isme/campus-timetable-api/internal/middleware"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/internal/repository"
	"github.com/noah-isme/campus-timetable-api/internal/service"
	"github.com/noah-isme/campus-timetable-api/pkg/cache"
	"github.com/noah-isme/campus-timetable-api/pkg/config"
	"github.com/noah-isme/campus-timetable-api/pkg/database"
	"github.com/noah-isme/campus-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-timetable-api/pkg/middleware/requestid"
)

// @title Campus Timetable API
// @version 1.0.0
// @description Scheduling conflict detection and resolution engine
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, audits will not be cached", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	slotRepo := repository.NewTimeSlotRepository(db)
	refRepo := repository.NewReferenceRepository(db)
	userRepo := repository.NewUserRepository(db)

	registry := service.NewConstraintRegistry(logr)
	checker := service.NewCandidateValidator(cfg.Engine, logr)
	resolver := service.NewScheduleResolver(registry, cfg.Engine, logr)

	auditSvc := service.NewAuditService(slotRepo, refRepo, resolver, redisClient, metrics, cfg.Audit, cfg.Engine, logr)
	slotSvc := service.NewTimeSlotService(slotRepo, refRepo, checker, auditSvc, validate, logr)
	draftSvc := service.NewDraftService(slotRepo, refRepo, checker, validate, logr)
	reportSvc := service.NewReportService(auditSvc, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	auditSvc.Start(rootCtx)
	defer auditSvc.Stop()

	scheduleHandler := handler.NewScheduleHandler(slotSvc, auditSvc, draftSvc, metrics)
	slotHandler := handler.NewTimeSlotHandler(slotSvc)
	constraintHandler := handler.NewConstraintHandler(registry)
	referenceHandler := handler.NewReferenceHandler(refRepo)
	reportHandler := handler.NewReportHandler(reportSvc)
	authHandler := handler.NewAuthHandler(authSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	schedule := authed.Group("/schedule")
	{
		schedule.POST("/validate", scheduleHandler.Validate)
		schedule.GET("/conflicts", scheduleHandler.Conflicts)
		schedule.POST("/conflicts/resolve", middleware.RequireRoles(models.RoleAdmin, models.RoleScheduler), scheduleHandler.Resolve)
		if cfg.Reports.Enabled {
			schedule.GET("/conflicts/report", reportHandler.ConflictReport)
		}
		schedule.POST("/draft", middleware.RequireRoles(models.RoleAdmin, models.RoleScheduler), scheduleHandler.Draft)
	}

	slots := authed.Group("/timeslots")
	{
		slots.GET("", slotHandler.List)
		slots.GET("/:id", slotHandler.Get)
		writers := middleware.RequireRoles(models.RoleAdmin, models.RoleScheduler)
		slots.POST("", writers, slotHandler.Create)
		slots.PUT("/:id", writers, slotHandler.Update)
		slots.DELETE("/:id", writers, slotHandler.Delete)
		slots.POST("/joint", writers, slotHandler.CreateJoint)
		slots.POST("/split", writers, slotHandler.CreateSplit)
		slots.DELETE("/groups/:groupId", writers, slotHandler.DeleteGroup)
	}

	constraints := authed.Group("/constraints")
	{
		constraints.GET("", constraintHandler.List)
		admins := middleware.RequireRoles(models.RoleAdmin)
		constraints.POST("", admins, constraintHandler.Create)
		constraints.DELETE("/dynamic", admins, constraintHandler.ClearDynamic)
		constraints.DELETE("/:id", admins, constraintHandler.Delete)
	}

	authed.GET("/departments", referenceHandler.Departments)
	authed.GET("/courses", referenceHandler.Courses)
	authed.GET("/faculty", referenceHandler.Faculty)
	authed.GET("/rooms", referenceHandler.Rooms)
	authed.GET("/students", referenceHandler.Students)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
