package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/middleware"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/modules/humanize"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/modules/quota"
	pkgredis "github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/pkg/redis"
	"github.com/Rionsanfas/ai-whisper-er-23298-sub000/internal/pkg/response"
)

func (a *App) registerRoutes(rc *pkgredis.Client) error {
	r := a.router
	db := a.db

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	r.Use(middleware.Idempotence(rc.Raw()))

	authMW := middleware.Auth(db)
	rateMW := middleware.RateLimit(a.limiter)

	genTimeout := time.Duration(a.cfg.Pipeline.GenerationTimeoutSeconds) * time.Second
	generator, err := humanize.NewGenerator(a.cfg.AI, genTimeout)
	if err != nil {
		return fmt.Errorf("generation provider: %w", err)
	}
	detectors := humanize.NewDetectors(a.cfg.Detectors)

	quotaSvc := quota.NewService(db)
	humanizeSvc := humanize.NewService(db, rc, generator, detectors, quotaSvc, a.cfg, a.logger)

	api := r.Group("/api/v2")
	api.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})

	humanize.NewHandler(humanizeSvc, quotaSvc, a.logger).RegisterRoutes(api, authMW, rateMW)

	return nil
}
