// Package httpapi wires the Gin engine: middleware chain, routes and the
// handlers of the check-in API.
//
// Middleware order matters:
//
//  1. otelgin      – server span per request
//  2. RequestID    – correlation id for logs and error envelopes
//  3. CallerID     – X-User-ID into the context
//  4. Logger       – redacting access log and request-scoped logger
//  5. Recovery     – panics become JSON 500s
//  6. body limit, metrics, idempotency, rate limit, CORS, security headers
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/jochenheirman09/broos-app-sub001/docs"
	"github.com/jochenheirman09/broos-app-sub001/internal/config"
	"github.com/jochenheirman09/broos-app-sub001/internal/http/handlers"
	"github.com/jochenheirman09/broos-app-sub001/internal/http/middleware"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
	"github.com/jochenheirman09/broos-app-sub001/internal/services"
)

const maxBodyBytes = 1 << 20

// Deps are the services the routes dispatch to.
type Deps struct {
	DB     *gorm.DB
	Turns  *services.TurnRouter
	Alerts *services.AlertService
	Rollup *services.RollupService
}

// RegisterRoutes installs middleware and routes on r.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.CallerID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{cfg.CronHeader},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		idempotencyLookup(deps),
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByCallerOrIP())
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins))

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	opts := handlers.Options{
		DB:             deps.DB,
		Turns:          deps.Turns,
		Alerts:         deps.Alerts,
		Insights:       deps.Rollup,
		Rollup:         deps.Rollup,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}
	// Without a router the handlers fall back to UTC and time.Now.
	if deps.Turns != nil {
		opts.Location = deps.Turns.Location
		opts.Now = deps.Turns.Now
	}
	h := handlers.New(opts)

	// Archive reads can be large; turns and triage stay uncompressed.
	gz := gzip.Gzip(gzip.DefaultCompression)

	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(middleware.RequireCaller())
	{
		api.POST("/chat/turns", h.PostTurn)
		api.GET("/chat/days/:date/messages", gz, h.GetDayMessages)
		api.POST("/devices", h.RegisterDevice)

		club := api.Group("/clubs/:clubId")
		club.GET("/insights", gz, h.ListClubInsights)
		club.GET("/teams/:teamId/insights", gz, h.ListTeamInsights)
		club.GET("/teams/:teamId/alerts", h.ListTeamAlerts)
		club.PATCH("/teams/:teamId/alerts/:alertId", h.UpdateAlertStatus)
	}

	internal := r.Group("/internal", middleware.CronOnly(cfg.CronHeader, cfg.IsProduction()))
	internal.POST("/cron/rollup", h.RunRollup)
}

// idempotencyLookup scopes keys to the caller's current turn day, matching
// where PostTurn stores them.
func idempotencyLookup(deps Deps) middleware.IdempotencyLookup {
	return func(ctx context.Context, userID, key string, now time.Time) (bool, error) {
		if deps.DB == nil || deps.Turns == nil {
			return false, nil
		}
		rec, err := repo.GetIdempotency(ctx, deps.DB, deps.Turns.Today(userID), key, now)
		if err != nil || rec == nil {
			return false, nil
		}
		return true, nil
	}
}

var (
	corsMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderUserID, middleware.HeaderIdempotencyKey, "If-None-Match"}
	corsExpose  = []string{"X-Request-ID", "Content-Length", "ETag", middleware.HeaderIdempotencyReplayed}
)

// corsMiddleware allows every origin when none are configured (mobile app
// and local tools), otherwise only the allowlist.
func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     corsMethods,
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    corsExpose,
			AllowCredentials: false, // must stay false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		})
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     corsMethods,
		AllowHeaders:     corsHeaders,
		ExposeHeaders:    corsExpose,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})
}

// limitBody caps request bodies; oversized JSON fails to bind with 400.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix treats "" and "/" as the root group.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
