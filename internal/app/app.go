// Package app assembles the check-in service from configuration: storage,
// language model, turn lock, push dispatch, background pool and the HTTP
// server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/jochenheirman09/broos-app-sub001/internal/config"
	"github.com/jochenheirman09/broos-app-sub001/internal/extractor"
	httpapi "github.com/jochenheirman09/broos-app-sub001/internal/http"
	"github.com/jochenheirman09/broos-app-sub001/internal/lock"
	"github.com/jochenheirman09/broos-app-sub001/internal/notify"
	"github.com/jochenheirman09/broos-app-sub001/internal/observability"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
	"github.com/jochenheirman09/broos-app-sub001/internal/services"
	"github.com/jochenheirman09/broos-app-sub001/internal/sysutil"
	"github.com/jochenheirman09/broos-app-sub001/internal/worker"
)

const (
	shutdownTimeout = 15 * time.Second
	purgeInterval   = time.Hour
)

// App owns every long-lived dependency of the service.
type App struct {
	Config config.Config
	DB     *gorm.DB
	Pool   *worker.Pool

	Turns  *services.TurnRouter
	Alerts *services.AlertService
	Rollup *services.RollupService

	server  *http.Server
	closers []func(context.Context) error
}

// New wires the service. Optional integrations fall back quietly: no
// GEMINI_API_KEY answers turns with the configuration fallback, no
// REDIS_ADDR uses an in-process lock, no FCM project logs pushes instead of
// sending them.
func New(ctx context.Context, cfg config.Config, version string) (*App, error) {
	a := &App{Config: cfg}

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTEL, cfg.Env, version)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.closers = append(a.closers, shutdownTracing)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.DB = db
	a.closers = append(a.closers, func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	if err := repo.AutoMigrate(db); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	ex, err := newExtractor(ctx, cfg.LLM)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	locker, err := newLocker(ctx, cfg.RedisAddr)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	if rl, ok := locker.(*lock.RedisLocker); ok {
		a.closers = append(a.closers, func(context.Context) error { return rl.Close() })
	}

	dispatcher, err := newDispatcher(ctx, db, cfg.Push)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	// The pool drains before the database closes.
	a.Pool = worker.NewPool(cfg.WorkerConcurrency, cfg.WorkerQueueSize)
	a.closers = append(a.closers, a.Pool.Shutdown)

	a.Turns = &services.TurnRouter{
		DB:        db,
		Extractor: ex,
		Onboarding: &services.OnboardingService{
			DB:        db,
			Extractor: ex,
			Pool:      a.Pool,
		},
		Persistence: &services.PersistenceCoordinator{DB: db},
		Notifier: &services.AlertNotifier{
			DB:         db,
			Dispatcher: dispatcher,
			Pool:       a.Pool,
		},
		Locker:          locker,
		Location:        loc,
		MaxMessageRunes: cfg.MaxMessageRunes,
		LLMTimeout:      cfg.LLM.Timeout,
		LockTTL:         cfg.TurnLockTTL,
	}
	a.Alerts = &services.AlertService{
		DB:                    db,
		ResponsibleTeamScoped: cfg.ResponsibleTeamScoped,
	}
	a.Rollup = &services.RollupService{
		DB:          db,
		Extractor:   ex,
		Concurrency: cfg.RollupConcurrency,
		LLMTimeout:  cfg.LLM.Timeout,
		Locale:      cfg.LLM.Locale,
	}

	a.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
	return a, nil
}

// Handler builds a Gin engine with every route installed.
func (a *App) Handler() http.Handler {
	gin.SetMode(a.Config.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:     a.DB,
		Turns:  a.Turns,
		Alerts: a.Alerts,
		Rollup: a.Rollup,
	}, a.Config)
	return r
}

// Run serves HTTP until ctx is cancelled or the listener fails, then shuts
// the server down gracefully. Expired idempotency records are purged in the
// background while it runs.
func (a *App) Run(ctx context.Context) error {
	go a.purgeLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.server.Addr).Str("env", a.Config.Env).Msg("http server listening")
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("http shutdown")
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Close releases resources in reverse order of acquisition. Errors are
// logged, not returned.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			log.Warn().Err(err).Msg("close")
		}
	}
	a.closers = nil
}

func (a *App) purgeLoop(ctx context.Context) {
	t := time.NewTicker(purgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, a.DB, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("purge idempotency")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("purged expired idempotency keys")
			}
		}
	}
}

func newExtractor(ctx context.Context, cfg config.LLMConfig) (*extractor.Extractor, error) {
	if cfg.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set; turns answer with the configuration fallback")
		return extractor.New(nil, cfg.Locale), nil
	}
	gc, err := extractor.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("init language model: %w", err)
	}
	return extractor.New(gc, cfg.Locale), nil
}

func newLocker(ctx context.Context, addr string) (lock.Locker, error) {
	if addr == "" {
		return lock.NewMemoryLocker(), nil
	}
	rl, err := lock.NewRedisLocker(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("init turn lock: %w", err)
	}
	return rl, nil
}

func newDispatcher(ctx context.Context, db *gorm.DB, cfg config.PushConfig) (notify.Dispatcher, error) {
	projectID := sysutil.FirstNonEmpty(cfg.ProjectID, os.Getenv("GOOGLE_CLOUD_PROJECT"))
	if projectID == "" {
		log.Info().Msg("push not configured; alert notifications are logged only")
		return notify.LogDispatcher{DB: db}, nil
	}
	d, err := notify.NewFCMDispatcher(ctx, db, projectID, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("init push: %w", err)
	}
	return d, nil
}
