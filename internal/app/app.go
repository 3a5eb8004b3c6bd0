package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/config"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/database"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/middleware"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/models"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/pkg/cron"
	jwtpkg "github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/pkg/jwt"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/pkg/ratelimit"
	pkgredis "github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/pkg/redis"
)

// logRetention bounds how long per-request observability rows are kept.
const logRetention = 90 * 24 * time.Hour

// App holds all application dependencies.
type App struct {
	cfg       *config.AppConfig
	router    *gin.Engine
	db        *gorm.DB
	logger    *zap.Logger
	limiter   *ratelimit.Limiter
	scheduler *cron.Scheduler
}

// New initializes the application: config → DB → Redis → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	jwtpkg.SetSecret(cfg.JWTSecret)

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-idempotence"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	limiter := ratelimit.New(cfg.Limits.RequestsPerMinute, cfg.Limits.RequestsPerHour, ratelimit.SystemClock())

	app := &App{cfg: cfg, router: router, db: db, logger: logger, limiter: limiter, scheduler: cron.New()}
	app.registerJobs()
	if err := app.registerRoutes(rc); err != nil {
		return nil, err
	}

	return app, nil
}

func (a *App) registerJobs() {
	a.scheduler.Register(cron.Job{
		Name:        "humanize-log-retention",
		Description: "drop per-request log rows past the retention window",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			cutoff := time.Now().Add(-logRetention)
			res := a.db.WithContext(ctx).
				Where("created_at < ?", cutoff).
				Delete(&models.HumanizeLogModel{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				a.logger.Info("pruned humanize logs", zap.Int64("rows", res.RowsAffected))
			}
			return nil
		},
	})
}

// StartBackground launches the scheduled maintenance jobs. They stop when
// ctx is cancelled.
func (a *App) StartBackground(ctx context.Context) {
	a.scheduler.Start(ctx)
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }
