package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/extractor"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
)

const runDate = "2026-03-08"

func seedScore(t *testing.T, db *gorm.DB, userID, date string, mood int, injured bool) {
	t.Helper()
	u := domain.WellnessUpdate{
		Scores:  map[domain.Dimension]domain.ScoreSignal{domain.DimensionMood: {Score: mood, Reason: "exams coming"}},
		Summary: "Worried about exams.",
	}
	if injured {
		u.Injury = &domain.InjurySignal{Injured: true, Reason: "ankle"}
	}
	if err := repo.MergeWellness(context.Background(), db, domain.DayKey{UserID: userID, Date: date}, u); err != nil {
		t.Fatalf("seed score: %v", err)
	}
}

func newRollup(db *gorm.DB, fc *fakeClient) *RollupService {
	return &RollupService{DB: db, Extractor: extractor.New(fc, "en"), Locale: "en"}
}

func insightClient() *fakeClient {
	return &fakeClient{responses: map[extractor.Schema]any{
		extractor.SchemaTeamInsight: insightAnswer("Exam stress", "training load"),
		extractor.SchemaClubInsight: insightAnswer("Club overview", "Something else"),
	}}
}

func TestRollup_TeamWithoutScoresIsSkipped(t *testing.T) {
	db := newTestDB(t)
	seedClub(t, db, "c1", "t1", "t2")
	seedProfile(t, db, domain.UserProfile{ID: "p1", ClubID: "c1", TeamID: "t1"})
	seedProfile(t, db, domain.UserProfile{ID: "p2", ClubID: "c1", TeamID: "t2"})
	seedScore(t, db, "p1", "2026-03-05", 2, true)
	// a score after the run date is not "latest available" for this run
	seedScore(t, db, "p2", "2026-03-09", 5, false)

	fc := insightClient()
	rep, err := newRollup(db, fc).Run(context.Background(), runDate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := RollupReport{Teams: 2, TeamInsights: 1, ClubInsights: 1, SkippedTeams: 1}
	if rep != want {
		t.Fatalf("report = %+v want %+v", rep, want)
	}
	if rep.Insights() != 2 {
		t.Fatalf("Insights() = %d", rep.Insights())
	}

	team, _ := repo.ListInsights(context.Background(), db, repo.InsightFilter{Scope: domain.ScopeTeam, ClubID: "c1"})
	if len(team) != 1 || team[0].TeamID != "t1" || team[0].Date != runDate {
		t.Fatalf("team insights = %+v", team)
	}
	if team[0].Category != domain.CategoryTrainingLoad {
		t.Fatalf("category not normalized: %q", team[0].Category)
	}
	digest := fc.lastPrompt(extractor.SchemaTeamInsight)
	if !containsAll(digest, `"scored_players": 1`, `"injury_count": 1`, `"exams"`) {
		t.Fatalf("digest missing fields: %s", digest)
	}
}

// A check-in that produced no scores must not count as a scored day for the
// rollup.
func TestRollup_ScorelessCheckInKeepsTeamSkipped(t *testing.T) {
	db := newTestDB(t)
	seedClub(t, db, "c1", "t1")
	seedProfile(t, db, onboardedProfile("p1", "c1", "t1"))

	turnClient := &fakeClient{responses: map[extractor.Schema]any{
		extractor.SchemaWellness: wellnessAnswer(map[string]int{}, ""),
	}}
	res, err := newRouter(db, extractor.New(turnClient, "en")).
		Process(context.Background(), TurnRequest{UserID: "p1", Text: "just saying hi"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, ok := res.(WellnessResult); !ok {
		t.Fatalf("want WellnessResult, got %T", res)
	}
	if n := countRows(t, db, &domain.WellnessScore{}); n != 0 {
		t.Fatalf("score-less turn wrote %d score documents", n)
	}
	if n := countRows(t, db, &domain.ChatSummary{}); n != 1 {
		t.Fatalf("summary should still be stored, got %d", n)
	}

	fc := insightClient()
	rep, err := newRollup(db, fc).Run(context.Background(), runDate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := RollupReport{Teams: 1, SkippedTeams: 1}
	if rep != want {
		t.Fatalf("report = %+v want %+v", rep, want)
	}
	if fc.count(extractor.SchemaTeamInsight) != 0 {
		t.Fatal("no team insight call expected")
	}
}

func TestRollup_ClubInsightUsesClubCategories(t *testing.T) {
	db := newTestDB(t)
	seedClub(t, db, "c1", "t1")
	seedProfile(t, db, domain.UserProfile{ID: "p1", ClubID: "c1", TeamID: "t1"})
	seedScore(t, db, "p1", runDate, 3, false)

	if _, err := newRollup(db, insightClient()).Run(context.Background(), runDate); err != nil {
		t.Fatalf("Run: %v", err)
	}
	club, _ := repo.ListInsights(context.Background(), db, repo.InsightFilter{Scope: domain.ScopeClub, ClubID: "c1"})
	if len(club) != 1 {
		t.Fatalf("want exactly one club insight, got %d", len(club))
	}
	if !domain.ScopeClub.AllowsCategory(club[0].Category) {
		t.Fatalf("club category %q outside the club set", club[0].Category)
	}
	if club[0].TeamID != "" {
		t.Fatal("club insight must not carry a team")
	}
}

func TestRollup_ClubWithoutTeamInsightsGetsNone(t *testing.T) {
	db := newTestDB(t)
	seedClub(t, db, "c1", "t1")
	seedProfile(t, db, domain.UserProfile{ID: "p1", ClubID: "c1", TeamID: "t1"})

	fc := insightClient()
	rep, err := newRollup(db, fc).Run(context.Background(), runDate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Insights() != 0 || fc.count(extractor.SchemaClubInsight) != 0 {
		t.Fatalf("report %+v, club calls %d", rep, fc.count(extractor.SchemaClubInsight))
	}
}

func TestRollup_FailureIsIsolated(t *testing.T) {
	db := newTestDB(t)
	seedClub(t, db, "c1", "bad", "good")
	seedClub(t, db, "c2", "t9")
	for _, p := range []domain.UserProfile{
		{ID: "p1", ClubID: "c1", TeamID: "bad"},
		{ID: "p2", ClubID: "c1", TeamID: "good"},
		{ID: "p3", ClubID: "c2", TeamID: "t9"},
	} {
		seedProfile(t, db, p)
		seedScore(t, db, p.ID, runDate, 4, false)
	}

	fc := insightClient()
	fc.fail = func(req extractor.Request) error {
		if req.Schema == extractor.SchemaTeamInsight && strings.Contains(req.Prompt, `"team_id": "bad"`) {
			return errors.New("boom")
		}
		if req.Schema == extractor.SchemaClubInsight && strings.Contains(req.Prompt, `"club_id": "c2"`) {
			return extractor.ErrServiceUnavailable
		}
		return nil
	}
	rep, err := newRollup(db, fc).Run(context.Background(), runDate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := RollupReport{Teams: 3, TeamInsights: 2, ClubInsights: 1, Failures: 2}
	if rep != want {
		t.Fatalf("report = %+v want %+v", rep, want)
	}
}

func TestRollup_ConcurrentClubsMatchSequential(t *testing.T) {
	db := newTestDB(t)
	// shared-cache memory databases lock per table; one connection keeps the
	// concurrent club workers from tripping over each other
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	for _, c := range []string{"c1", "c2", "c3", "c4"} {
		seedClub(t, db, c, c+"-a", c+"-b")
		seedProfile(t, db, domain.UserProfile{ID: c + "-p", ClubID: c, TeamID: c + "-a"})
		seedScore(t, db, c+"-p", runDate, 3, false)
	}
	s := newRollup(db, insightClient())
	s.Concurrency = 4

	rep, err := s.Run(context.Background(), runDate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := RollupReport{Teams: 8, TeamInsights: 4, ClubInsights: 4, SkippedTeams: 4}
	if rep != want {
		t.Fatalf("report = %+v want %+v", rep, want)
	}
}

func TestRollup_RerunUsesStoredTeamInsights(t *testing.T) {
	db := newTestDB(t)
	seedClub(t, db, "c1", "t1")
	if err := repo.CreateInsight(context.Background(), db, &domain.Insight{
		Scope: domain.ScopeTeam, ClubID: "c1", TeamID: "t1", Title: "Earlier", Content: "x",
		Category: domain.CategoryTeamWellbeing, Date: runDate,
	}); err != nil {
		t.Fatal(err)
	}

	fc := insightClient()
	rep, err := newRollup(db, fc).Run(context.Background(), runDate)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.ClubInsights != 1 || rep.TeamInsights != 0 {
		t.Fatalf("report = %+v", rep)
	}
	if !strings.Contains(fc.lastPrompt(extractor.SchemaClubInsight), "Earlier") {
		t.Fatal("club digest should include the stored team insight")
	}
}

func TestRollup_InvalidDateAndCancelledContext(t *testing.T) {
	db := newTestDB(t)
	s := newRollup(db, insightClient())
	if _, err := s.Run(context.Background(), "yesterday"); err != domain.ErrInvalidDate {
		t.Fatalf("want ErrInvalidDate, got %v", err)
	}

	seedClub(t, db, "c1", "t1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Run(ctx, runDate); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestListInsights_Authorization(t *testing.T) {
	db := newTestDB(t)
	seedProfile(t, db, domain.UserProfile{ID: "staff", Role: domain.RoleStaff, ClubID: "c1", TeamID: "t1"})
	seedProfile(t, db, domain.UserProfile{ID: "resp", Role: domain.RoleResponsible, ClubID: "c1"})
	seedProfile(t, db, domain.UserProfile{ID: "player", Role: domain.RolePlayer, ClubID: "c1", TeamID: "t1"})
	ctx := context.Background()
	for _, in := range []domain.Insight{
		{Scope: domain.ScopeTeam, ClubID: "c1", TeamID: "t1", Title: "a", Content: "a", Category: domain.CategoryTeamWellbeing, Date: "2026-03-01"},
		{Scope: domain.ScopeTeam, ClubID: "c1", TeamID: "t1", Title: "b", Content: "b", Category: domain.CategoryTeamWellbeing, Date: "2026-03-08"},
		{Scope: domain.ScopeClub, ClubID: "c1", Title: "c", Content: "c", Category: domain.CategoryClubTrends, Date: "2026-03-08"},
	} {
		in := in
		if err := repo.CreateInsight(ctx, db, &in); err != nil {
			t.Fatal(err)
		}
	}
	s := newRollup(db, insightClient())

	got, err := s.ListInsights(ctx, "staff", repo.InsightFilter{Scope: domain.ScopeTeam, ClubID: "c1", TeamID: "t1", From: "2026-03-05"})
	if err != nil || len(got) != 1 || got[0].Title != "b" {
		t.Fatalf("staff team range: %+v, %v", got, err)
	}
	if _, err := s.ListInsights(ctx, "staff", repo.InsightFilter{Scope: domain.ScopeClub, ClubID: "c1"}); err != ErrForbidden {
		t.Fatalf("staff club scope: want ErrForbidden, got %v", err)
	}
	got, err = s.ListInsights(ctx, "resp", repo.InsightFilter{Scope: domain.ScopeClub, ClubID: "c1"})
	if err != nil || len(got) != 1 {
		t.Fatalf("responsible club scope: %+v, %v", got, err)
	}
	if _, err := s.ListInsights(ctx, "player", repo.InsightFilter{Scope: domain.ScopeTeam, ClubID: "c1", TeamID: "t1"}); err != ErrForbidden {
		t.Fatalf("player: want ErrForbidden, got %v", err)
	}
	if _, err := s.ListInsights(ctx, "resp", repo.InsightFilter{Scope: domain.ScopeClub, ClubID: "c2"}); err != ErrForbidden {
		t.Fatalf("other club: want ErrForbidden, got %v", err)
	}
	if _, err := s.ListInsights(ctx, "resp", repo.InsightFilter{Scope: domain.ScopeClub, ClubID: "c1", To: "bad"}); err != domain.ErrInvalidDate {
		t.Fatalf("bad range: want ErrInvalidDate, got %v", err)
	}
}
