package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-teamwork-api/api/swagger"
	"github.com/noah-isme/sma-teamwork-api/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-teamwork-api/internal/middleware"
	"github.com/noah-isme/sma-teamwork-api/internal/repository"
	"github.com/noah-isme/sma-teamwork-api/internal/scheduler"
	"github.com/noah-isme/sma-teamwork-api/internal/service"
	"github.com/noah-isme/sma-teamwork-api/pkg/cache"
	"github.com/noah-isme/sma-teamwork-api/pkg/config"
	"github.com/noah-isme/sma-teamwork-api/pkg/database"
	"github.com/noah-isme/sma-teamwork-api/pkg/jobs"
	"github.com/noah-isme/sma-teamwork-api/pkg/lock"
	"github.com/noah-isme/sma-teamwork-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-teamwork-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-teamwork-api/pkg/middleware/requestid"
)

// @title SMA Teamwork API
// @version 1.0.0
// @description Team formation, stages and divisions for major assignments
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, falling back to in-process lock without cache", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()
	tx := database.NewTransactor(db)

	assignmentRepo := repository.NewMajorAssignmentRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	leaveRepo := repository.NewLeaveRequestRepository(db)
	dissolveRepo := repository.NewDissolveRequestRepository(db)
	stageRepo := repository.NewStageRepository(db)
	divisionRepo := repository.NewDivisionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	rosterCache := service.NewRosterCache(
		repository.NewCacheRepository(redisClient, logr),
		metricsSvc,
		cfg.Teamwork.RosterCacheTTL,
		logr,
		cfg.Teamwork.RosterCache && redisClient != nil,
	)
	if err := rosterCache.Flush(ctx); err != nil {
		logr.Warn("failed to flush roster cache", zap.Error(err))
	}

	notificationSvc := service.NewNotificationService(notificationRepo, metricsSvc, logr)
	notificationQueue := jobs.New("notifications", notificationSvc.HandleJob, jobs.Config{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	})
	notificationQueue.OnDiscard(notificationSvc.DiscardJob)
	notificationQueue.Start(context.Background())
	notificationSvc.UseQueue(notificationQueue)

	strategy, err := service.NewGroupingStrategy(cfg.Teamwork.GroupingStrategy)
	if err != nil {
		logr.Fatal("invalid grouping strategy", zap.Error(err))
	}

	autoAssignSvc := service.NewAutoAssignService(service.AutoAssignServiceDeps{
		Tx:          tx,
		Assignments: assignmentRepo,
		Teams:       teamRepo,
		Stages:      stageRepo,
		Divisions:   divisionRepo,
		Users:       userRepo,
		Notifier:    notificationSvc,
		Rosters:     rosterCache,
		Metrics:     metricsSvc,
		Strategy:    strategy,
		Logger:      logr,
	})
	stageSvc := service.NewStageService(service.StageServiceDeps{
		Tx:          tx,
		Assignments: assignmentRepo,
		Stages:      stageRepo,
		Auto:        autoAssignSvc,
		Audit:       auditRepo,
		Metrics:     metricsSvc,
		Validator:   validate,
		Logger:      logr,
	})
	teamSvc := service.NewTeamService(service.TeamServiceDeps{
		Tx:          tx,
		Assignments: assignmentRepo,
		Teams:       teamRepo,
		Invitations: invitationRepo,
		Leaves:      leaveRepo,
		Dissolves:   dissolveRepo,
		Stages:      stageRepo,
		Users:       userRepo,
		Notifier:    notificationSvc,
		Audit:       auditRepo,
		Rosters:     rosterCache,
		Validator:   validate,
		Logger:      logr,
	})
	divisionSvc := service.NewDivisionService(service.DivisionServiceDeps{
		Tx:          tx,
		Assignments: assignmentRepo,
		Teams:       teamRepo,
		Stages:      stageRepo,
		Divisions:   divisionRepo,
		Notifier:    notificationSvc,
		Audit:       auditRepo,
		Validator:   validate,
		Logger:      logr,
	})
	assignmentSvc := service.NewMajorAssignmentService(service.MajorAssignmentServiceDeps{
		Tx:          tx,
		Assignments: assignmentRepo,
		Teams:       teamRepo,
		Users:       userRepo,
		Audit:       auditRepo,
		Rosters:     rosterCache,
		Validator:   validate,
		Logger:      logr,
	})

	var sweeper *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		var locker lock.Locker = lock.NewLocalLocker()
		if redisClient != nil {
			locker = lock.NewRedisLocker(redisClient)
		}
		sweeper, err = scheduler.New(cfg.Scheduler, stageSvc, locker, logr)
		if err != nil {
			logr.Fatal("failed to configure stage scheduler", zap.Error(err))
		}
		sweeper.Start()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/health", "/ready", "/metrics"))

	checks := []handler.ReadinessCheck{{Name: "postgres", Check: db.PingContext}}
	if redisClient != nil {
		checks = append(checks, handler.ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks...)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		MajorAssignments: handler.NewMajorAssignmentHandler(assignmentSvc),
		Teams:            handler.NewTeamHandler(teamSvc),
		Stages:           handler.NewStageHandler(stageSvc),
		Divisions:        handler.NewDivisionHandler(divisionSvc),
		Notifications:    handler.NewNotificationHandler(notificationSvc),
		Metrics:          metricsHandler,
	}, service.NewTokenService(cfg.JWT))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown", zap.Error(err))
	}
	if sweeper != nil {
		sweeper.Stop()
	}
	notificationQueue.Stop()
}
