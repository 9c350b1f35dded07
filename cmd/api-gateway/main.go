package main

import (
	"context"
	"errors"
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
	"go.uber.org/zap"

	_ "github.com/noah-isme/uni-timetable-api/api/swagger"
	"github.com/noah-isme/uni-timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/uni-timetable-api/internal/middleware"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	"github.com/noah-isme/uni-timetable-api/internal/repository"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	"github.com/noah-isme/uni-timetable-api/pkg/cache"
	"github.com/noah-isme/uni-timetable-api/pkg/config"
	"github.com/noah-isme/uni-timetable-api/pkg/database"
	"github.com/noah-isme/uni-timetable-api/pkg/logger"
	"github.com/noah-isme/uni-timetable-api/pkg/messaging"
	corsmiddleware "github.com/noah-isme/uni-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uni-timetable-api/pkg/middleware/requestid"
)

const shutdownTimeout = 15 * time.Second

// @title University Timetable API
// @version 0.1.0
// @description Slot allocation and conflict detection for course sections and exams
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
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		migrator, err := database.NewMigrator(db)
		if err != nil {
			logr.Fatal("failed to prepare migrations", zap.Error(err))
		}
		applied, err := migrator.Up(context.Background())
		if err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
		logr.Info("migrations applied", zap.Int64s("versions", applied))
	}

	checks := map[string]handler.HealthCheck{
		"postgres": db.PingContext,
	}

	metricsSvc := service.NewMetricsService()

	// A nil interface keeps the cache service in pass-through mode. Redis
	// backs generation locks even when ENABLE_CACHE is off.
	var cacheRepo service.CacheRepository
	if cfg.Redis.Configured() {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, running without grid cache or generation locks", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
			checks["redis"] = func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.GridTTL, logr, cfg.Cache.Enabled)

	var events service.EventPublisher
	if cfg.Events.URL != "" {
		publisher, err := messaging.NewRabbitMQ(cfg.Events)
		if err != nil {
			logr.Warn("rabbitmq unavailable, timetable events disabled", zap.Error(err))
		} else {
			defer publisher.Close() //nolint:errcheck
			events = publisher
			checks["rabbitmq"] = publisher.Ping
		}
	}

	timetableCfg, err := service.NewTimetableConfig(cfg.Timetable, cfg.Cache)
	if err != nil {
		logr.Fatal("invalid timetable configuration", zap.Error(err))
	}

	timetableSvc := service.NewTimetableService(
		repository.NewSectionRepository(db),
		repository.NewExamRepository(db),
		repository.NewPlacementRepository(db),
		cacheSvc,
		metricsSvc,
		validator.New(),
		logr,
		timetableCfg,
		events,
	)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret)

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	timetable := api.Group("/timetable")
	timetable.GET("/grid", internalmiddleware.OptionalJWT(tokenSvc), timetableHandler.Grid)
	timetable.GET("/export", internalmiddleware.OptionalJWT(tokenSvc), timetableHandler.Export)

	admin := timetable.Group("")
	admin.Use(internalmiddleware.JWT(tokenSvc))
	admin.Use(internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleRegistrar))
	admin.POST("/sections/generate", timetableHandler.GenerateSections)
	admin.POST("/exams/generate", timetableHandler.GenerateExams)
	admin.DELETE("/:kind", timetableHandler.Reset)

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

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logr.Info("shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
