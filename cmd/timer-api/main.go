package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hyukudan/enroltimer/internal/handler"
	"github.com/hyukudan/enroltimer/internal/middleware"
	"github.com/hyukudan/enroltimer/internal/models"
	"github.com/hyukudan/enroltimer/internal/repository"
	"github.com/hyukudan/enroltimer/internal/service"
	"github.com/hyukudan/enroltimer/pkg/cache"
	"github.com/hyukudan/enroltimer/pkg/config"
	"github.com/hyukudan/enroltimer/pkg/database"
	"github.com/hyukudan/enroltimer/pkg/logger"
	corsmiddleware "github.com/hyukudan/enroltimer/pkg/middleware/cors"
	reqidmiddleware "github.com/hyukudan/enroltimer/pkg/middleware/requestid"
)

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
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, widget caching disabled", "error", err)
		redisClient = nil
	}

	enrolmentRepo := repository.NewEnrolmentRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	lookupSvc := service.NewLookupService(enrolmentRepo, logr)
	widgetSvc := service.NewWidgetService(lookupSvc, cfg.Widget, logr)
	privacySvc := service.NewPrivacyService(alertRepo, prefRepo, auditRepo, logr)

	widgetHandler := handler.NewWidgetHandler(widgetSvc, cacheRepo, cfg.Widget)
	privacyHandler := handler.NewPrivacyHandler(privacySvc)
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
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group("/api/v1")
	api.Use(middleware.JWT(cfg.JWT))
	{
		api.GET("/courses/:courseId/timer", widgetHandler.Timer)
		api.GET("/courses/:courseId/timer/html", widgetHandler.TimerHTML)

		privacy := api.Group("/privacy", middleware.RequireRole(models.RoleAdmin))
		privacy.GET("/users/:userId", privacyHandler.Export)
		privacy.DELETE("/users/:userId", privacyHandler.Erase)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
