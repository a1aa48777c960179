package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jochenheirman09/broos-app-sub001/internal/services"
)

func TestRunRollup_DefaultsToLocalToday(t *testing.T) {
	brussels := time.FixedZone("CET", 3600)
	fr := &fakeRollup{report: services.RollupReport{Teams: 3, TeamInsights: 2, ClubInsights: 1, SkippedTeams: 1}}
	// 23:30 UTC is already the next day in Brussels.
	now := time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC)
	h := New(Options{Turns: &fakeTurns{}, Rollup: fr, Location: brussels, Now: func() time.Time { return now }})

	w := doJSON(newEngine(h, nil), http.MethodPost, "/internal/cron/rollup", "", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	got := decode[CronResponse](t, w)
	if !got.Success || got.Counts.TeamInsights != 2 || got.Counts.ClubInsights != 1 || got.Counts.SkippedTeams != 1 {
		t.Fatalf("unexpected body: %+v", got)
	}
	if len(fr.dates) != 1 || fr.dates[0] != "2026-03-03" {
		t.Fatalf("run dates = %v", fr.dates)
	}
}

func TestRunRollup_ExplicitDateAndFailures(t *testing.T) {
	fr := &fakeRollup{}
	h := New(Options{Turns: &fakeTurns{}, Rollup: fr})
	r := newEngine(h, nil)

	if w := doJSON(r, http.MethodPost, "/internal/cron/rollup?date=2026-02-28", "", nil, nil); w.Code != http.StatusOK || fr.dates[0] != "2026-02-28" {
		t.Fatalf("status=%d dates=%v", w.Code, fr.dates)
	}

	w := doJSON(r, http.MethodPost, "/internal/cron/rollup?date=yesterday", "", nil, nil)
	if got := decode[CronResponse](t, w); w.Code != http.StatusBadRequest || got.Success || len(fr.dates) != 1 {
		t.Fatalf("invalid date: status=%d body=%+v", w.Code, got)
	}

	fr.err = context.Canceled
	fr.report = services.RollupReport{Teams: 1, Failures: 1}
	w = doJSON(r, http.MethodPost, "/internal/cron/rollup", "", nil, nil)
	got := decode[CronResponse](t, w)
	if w.Code != http.StatusInternalServerError || got.Success || got.Counts.Failures != 1 {
		t.Fatalf("aborted run: status=%d body=%+v", w.Code, got)
	}
}
