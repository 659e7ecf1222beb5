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
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/gym-dashboard/api/swagger"
	"github.com/noah-isme/gym-dashboard/internal/gateway"
	"github.com/noah-isme/gym-dashboard/internal/handler"
	"github.com/noah-isme/gym-dashboard/internal/middleware"
	"github.com/noah-isme/gym-dashboard/internal/models"
	"github.com/noah-isme/gym-dashboard/internal/repository"
	"github.com/noah-isme/gym-dashboard/internal/service"
	"github.com/noah-isme/gym-dashboard/pkg/cache"
	"github.com/noah-isme/gym-dashboard/pkg/config"
	"github.com/noah-isme/gym-dashboard/pkg/database"
	"github.com/noah-isme/gym-dashboard/pkg/logger"
	corsmiddleware "github.com/noah-isme/gym-dashboard/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/gym-dashboard/pkg/middleware/requestid"
	"github.com/noah-isme/gym-dashboard/pkg/storage"
)

// @title Gym Dashboard API
// @version 1.0.0
// @description Backend-for-frontend for the gym admin dashboard
// @BasePath /
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	metrics := service.NewMetricsService()
	client := gateway.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, metrics, logr.Named("gateway"))
	checks := map[string]handler.ReadinessCheck{}

	cacheRepo := repository.NewCacheRepository(nil, logr)
	cacheEnabled := false
	if cfg.LookupCache.Enabled {
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, lookup cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			cacheEnabled = true
			checks["redis"] = cacheRepo.Ping
		}
	}
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Screens.IdleTTL, logr, cacheEnabled)

	db, auditSvc := setupAudit(ctx, cfg, metrics, logr)
	if db != nil {
		defer db.Close() //nolint:errcheck
		checks["postgres"] = db.PingContext
	}
	auditSvc.Start(ctx)

	screens := service.NewScreenManager(service.ScreenManagerConfig{
		Client: client,
		Clock:  clock,
		Settings: service.ScreenSettings{
			PageSize:        cfg.Screens.DefaultPageSize,
			SearchDebounce:  cfg.Screens.SearchDebounce,
			NotificationTTL: cfg.Screens.NotificationTTL,
			IdleTTL:         cfg.Screens.IdleTTL,
		},
		DefaultTimezone: cfg.DefaultTZName,
		Cache:           cacheSvc,
		Audit:           auditSvc,
		Metrics:         metrics,
		Logger:          logr.Named("screens"),
	})
	go screens.Run(ctx)

	store, err := storage.NewLocalStorage(cfg.Exports.Dir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SigningSecret, cfg.Exports.LinkTTL, clock.Now)
	exports := service.NewExportArchive(store, signer, clock, logr.Named("exports"))
	go exports.Run(ctx)

	sessions := service.NewSessionService(cfg.Session.JWTSecret, logr)
	screenHandler := handler.NewScreenHandler(screens, exports)
	auditHandler := handler.NewAuditHandler(auditSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics", "/health", "/ready"))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/exports/:token", screenHandler.Download)

	secured := api.Group("", middleware.Session(sessions, cfg.Session.LoginURL), middleware.RequireDashboardRole())
	secured.GET("/metrics/summary", metricsHandler.Summary)
	secured.GET("/audit-logs", middleware.RBAC(models.RoleOwner, models.RoleAdmin), auditHandler.List)

	screenRoutes := secured.Group("/screens")
	screenRoutes.GET("", screenHandler.Definitions)
	screenRoutes.POST("", screenHandler.Mount)
	screenRoutes.GET("/:id", screenHandler.View)
	screenRoutes.DELETE("/:id", screenHandler.Unmount)
	screenRoutes.PUT("/:id/criteria", screenHandler.SetCriteria)
	screenRoutes.PUT("/:id/page", screenHandler.SetPage)
	screenRoutes.POST("/:id/reload", screenHandler.Reload)
	screenRoutes.POST("/:id/modal", screenHandler.OpenModal)
	screenRoutes.DELETE("/:id/modal", screenHandler.CloseModal)
	screenRoutes.PUT("/:id/modal/draft", screenHandler.SetDraft)
	screenRoutes.POST("/:id/modal/submit", screenHandler.SubmitModal)
	screenRoutes.DELETE("/:id/notifications/:notificationId", screenHandler.DismissNotification)
	screenRoutes.GET("/:id/export", screenHandler.Export)
	screenRoutes.POST("/:id/exports", screenHandler.PublishExport)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown incomplete", zap.Error(err))
	}
	screens.Shutdown()
	auditSvc.Stop()
}

// setupAudit connects the audit store when enabled. A failed connection
// disables auditing instead of blocking startup.
func setupAudit(ctx context.Context, cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) (*sqlx.DB, *service.AuditService) {
	auditCfg := service.AuditConfig{
		Enabled:    cfg.Audit.Enabled,
		Workers:    cfg.Audit.Workers,
		Retries:    cfg.Audit.Retries,
		RetryDelay: time.Second,
	}
	disabled := func() *service.AuditService {
		auditCfg.Enabled = false
		return service.NewAuditService(nil, metrics, auditCfg, logr)
	}
	if !cfg.Audit.Enabled {
		return nil, disabled()
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Warn("postgres unavailable, audit trail disabled", zap.Error(err))
		return nil, disabled()
	}
	repo := repository.NewAuditRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		logr.Warn("audit schema unavailable, audit trail disabled", zap.Error(err))
		_ = db.Close()
		return nil, disabled()
	}
	return db, service.NewAuditService(repo, metrics, auditCfg, logr.Named("audit"))
}
