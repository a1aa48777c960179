package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/extractor"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
)

// ---------- test helpers ----------

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
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

// fakeClient answers per schema. fail, when set, is consulted first and may
// return an error for a request.
type fakeClient struct {
	mu        sync.Mutex
	responses map[extractor.Schema]any
	fail      func(req extractor.Request) error
	calls     []extractor.Request
}

func (f *fakeClient) Generate(_ context.Context, req extractor.Request) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.fail != nil {
		if err := f.fail(req); err != nil {
			return nil, err
		}
	}
	v, ok := f.responses[req.Schema]
	if !ok {
		return nil, fmt.Errorf("no fake response for %s", req.Schema)
	}
	if s, ok := v.(string); ok {
		return []byte(s), nil
	}
	return json.Marshal(v)
}

func (f *fakeClient) count(schema extractor.Schema) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Schema == schema {
			n++
		}
	}
	return n
}

func (f *fakeClient) lastPrompt(schema extractor.Schema) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Schema == schema {
			return f.calls[i].Prompt
		}
	}
	return ""
}

func onboardingAnswer(complete bool, summary string) map[string]any {
	return map[string]any{"response": "Thanks for sharing!", "isTopicComplete": complete, "summary": summary}
}

func wellnessAnswer(scores map[string]int, alert string) map[string]any {
	ws := map[string]any{}
	for d, v := range scores {
		ws[d] = map[string]any{"score": v, "reason": "because " + d}
	}
	out := map[string]any{
		"response":       "Good to hear from you.",
		"summary":        "Talked about the day.",
		"wellnessScores": ws,
		"alerts":         []any{},
	}
	if alert != "" {
		out["alerts"] = []any{map[string]any{"type": alert, "triggeringMessage": "I feel hopeless"}}
	}
	return out
}

func insightAnswer(title, category string) map[string]any {
	return map[string]any{"title": title, "content": "Aggregated overview.", "category": category}
}

func seedClub(t *testing.T, db *gorm.DB, clubID string, teamIDs ...string) {
	t.Helper()
	ctx := context.Background()
	if err := repo.CreateClub(ctx, db, &domain.Club{ID: clubID, Name: "Club " + clubID}); err != nil {
		t.Fatalf("create club: %v", err)
	}
	for _, id := range teamIDs {
		if err := repo.CreateTeam(ctx, db, &domain.Team{ID: id, ClubID: clubID, Name: "Team " + id}); err != nil {
			t.Fatalf("create team: %v", err)
		}
	}
}

func seedProfile(t *testing.T, db *gorm.DB, p domain.UserProfile) *domain.UserProfile {
	t.Helper()
	if p.Role == "" {
		p.Role = domain.RolePlayer
	}
	if err := repo.CreateProfile(context.Background(), db, &p); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return &p
}

// onboardedProfile returns a player with all six topics summarized.
func onboardedProfile(id, club, team string) domain.UserProfile {
	p := domain.UserProfile{ID: id, Role: domain.RolePlayer, ClubID: club, TeamID: team, DisplayName: "sam", OnboardingCompleted: true}
	for _, tp := range domain.Topics {
		p.SetTopicSummary(tp, "known "+string(tp))
	}
	return p
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
