package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/http/middleware"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
	"github.com/jochenheirman09/broos-app-sub001/internal/services"
)

//
// Service contracts (context-aware)
//

// TurnService runs chat turns and reads day containers.
type TurnService interface {
	Process(ctx context.Context, req services.TurnRequest) (services.TurnResult, error)
	DayMessages(ctx context.Context, userID, date string) ([]domain.ChatMessage, error)
	// Today is the day key a turn sent now would be stored under.
	Today(userID string) domain.DayKey
}

// AlertService authorizes and applies alert triage.
type AlertService interface {
	SetStatus(ctx context.Context, actorID, clubID, teamID, alertID string, status domain.AlertStatus) services.AlertUpdateResult
	ListTeamAlerts(ctx context.Context, actorID, clubID, teamID string, status domain.AlertStatus, limit int) ([]domain.Alert, error)
}

// InsightService reads the insight archive on behalf of an actor.
type InsightService interface {
	ListInsights(ctx context.Context, actorID string, f repo.InsightFilter) ([]domain.Insight, error)
}

// RollupRunner performs one rollup for a run date.
type RollupRunner interface {
	Run(ctx context.Context, runDate string) (services.RollupReport, error)
}

//
// Handler wiring
//

// Options wires Handlers. DB backs idempotency records, ETags and device
// registration; it may be nil in tests that do not touch those paths.
type Options struct {
	DB       *gorm.DB
	Turns    TurnService
	Alerts   AlertService
	Insights InsightService
	Rollup   RollupRunner

	IdempotencyTTL time.Duration
	// Location resolves the default rollup run date.
	Location *time.Location
	Now      func() time.Time
}

// Handlers groups the HTTP endpoints of the check-in API.
type Handlers struct {
	db       *gorm.DB
	turns    TurnService
	alerts   AlertService
	insights InsightService
	rollup   RollupRunner

	idemTTL time.Duration
	loc     *time.Location
	now     func() time.Time
}

// New returns Handlers bound to the given services.
func New(o Options) *Handlers {
	h := &Handlers{
		db:       o.DB,
		turns:    o.Turns,
		alerts:   o.Alerts,
		insights: o.Insights,
		rollup:   o.Rollup,
		idemTTL:  o.IdempotencyTTL,
		loc:      o.Location,
		now:      o.Now,
	}
	if h.idemTTL <= 0 {
		h.idemTTL = 24 * time.Hour
	}
	if h.loc == nil {
		h.loc = time.UTC
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// callerID returns the X-User-ID stored by middleware.CallerID. Routes that
// need it sit behind middleware.RequireCaller.
func callerID(c *gin.Context) string {
	id, _ := middleware.UserID(c)
	return id
}
