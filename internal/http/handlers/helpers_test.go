package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/http/middleware"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
	"github.com/jochenheirman09/broos-app-sub001/internal/services"
)

var testNow = time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)

const testDate = "2026-03-02"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:h_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// ---------- fakes ----------

type fakeTurns struct {
	mu    sync.Mutex
	db    *gorm.DB
	res   services.TurnResult
	err   error
	reqs  []services.TurnRequest
	msgs  []domain.ChatMessage
	dayFn func(userID, date string) ([]domain.ChatMessage, error)
}

func (f *fakeTurns) Process(_ context.Context, req services.TurnRequest) (services.TurnResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.res, f.err
}

func (f *fakeTurns) DayMessages(ctx context.Context, userID, date string) ([]domain.ChatMessage, error) {
	if f.dayFn != nil {
		return f.dayFn(userID, date)
	}
	key, err := domain.ParseDayKey(userID, date)
	if err != nil {
		return nil, err
	}
	if f.db == nil {
		return f.msgs, nil
	}
	return repo.ListDayMessages(ctx, f.db, key)
}

func (f *fakeTurns) Today(userID string) domain.DayKey {
	return domain.DayKeyAt(userID, testNow, time.UTC)
}

func (f *fakeTurns) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

type fakeAlerts struct {
	result     services.AlertUpdateResult
	alerts     []domain.Alert
	err        error
	lastStatus domain.AlertStatus
	lastLimit  int
	lastArgs   []string
}

func (f *fakeAlerts) SetStatus(_ context.Context, actorID, clubID, teamID, alertID string, status domain.AlertStatus) services.AlertUpdateResult {
	f.lastArgs = []string{actorID, clubID, teamID, alertID}
	f.lastStatus = status
	return f.result
}

func (f *fakeAlerts) ListTeamAlerts(_ context.Context, actorID, clubID, teamID string, status domain.AlertStatus, limit int) ([]domain.Alert, error) {
	f.lastArgs = []string{actorID, clubID, teamID}
	f.lastStatus = status
	f.lastLimit = limit
	return f.alerts, f.err
}

type fakeInsights struct {
	items  []domain.Insight
	err    error
	actor  string
	filter repo.InsightFilter
}

func (f *fakeInsights) ListInsights(_ context.Context, actorID string, fl repo.InsightFilter) ([]domain.Insight, error) {
	f.actor, f.filter = actorID, fl
	return f.items, f.err
}

type fakeRollup struct {
	report services.RollupReport
	err    error
	dates  []string
}

func (f *fakeRollup) Run(_ context.Context, runDate string) (services.RollupReport, error) {
	f.dates = append(f.dates, runDate)
	return f.report, f.err
}

// ---------- engine ----------

// newEngine mounts h the way the router does, minus logging, metrics and
// rate limiting.
func newEngine(h *Handlers, db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.CallerID())
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, func(ctx context.Context, userID, key string, now time.Time) (bool, error) {
		if db == nil {
			return false, nil
		}
		_, err := repo.GetIdempotency(ctx, db, h.turns.Today(userID), key, now)
		return err == nil, nil
	}))

	api := r.Group("/api", middleware.RequireCaller())
	api.POST("/chat/turns", h.PostTurn)
	api.GET("/chat/days/:date/messages", h.GetDayMessages)
	api.POST("/devices", h.RegisterDevice)
	api.GET("/clubs/:clubId/insights", h.ListClubInsights)
	api.GET("/clubs/:clubId/teams/:teamId/insights", h.ListTeamInsights)
	api.GET("/clubs/:clubId/teams/:teamId/alerts", h.ListTeamAlerts)
	api.PATCH("/clubs/:clubId/teams/:teamId/alerts/:alertId", h.UpdateAlertStatus)
	r.POST("/internal/cron/rollup", h.RunRollup)
	return r
}

func doJSON(r http.Handler, method, path, userID string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func wantError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	if got := decode[ErrorResponse](t, w); got.Code != code {
		t.Fatalf("code = %q, want %q", got.Code, code)
	}
}
