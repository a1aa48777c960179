package domain

import "time"

// InsightScope distinguishes team-level staff updates from club updates.
type InsightScope string

const (
	ScopeTeam InsightScope = "team"
	ScopeClub InsightScope = "club"
)

// Team-scope insight categories.
const (
	CategoryTeamWellbeing = "Team Wellbeing"
	CategoryTrainingLoad  = "Training Load"
	CategoryInjuryWatch   = "Injury Watch"
	CategoryTeamDynamics  = "Team Dynamics"
)

// Club-scope insight categories.
const (
	CategoryClubTrends         = "Club Trends"
	CategoryTeamComparison     = "Team Comparison"
	CategoryResourceSuggestion = "Resource Suggestion"
)

// Categories returns the allowed categories for the scope, default first.
func (s InsightScope) Categories() []string {
	if s == ScopeClub {
		return []string{CategoryClubTrends, CategoryTeamComparison, CategoryResourceSuggestion}
	}
	return []string{CategoryTeamWellbeing, CategoryTrainingLoad, CategoryInjuryWatch, CategoryTeamDynamics}
}

// AllowsCategory reports whether c belongs to the scope's category set.
func (s InsightScope) AllowsCategory(c string) bool {
	for _, x := range s.Categories() {
		if x == c {
			return true
		}
	}
	return false
}

// Insight is an archived narrative update (StaffUpdate for a team,
// ClubUpdate for a club). Rows are append-only.
type Insight struct {
	ID        string       `json:"id"         gorm:"type:char(36);primaryKey"`
	Scope     InsightScope `json:"scope"      gorm:"type:varchar(8);not null;index:idx_insight_scope,priority:1;check:scope IN ('team','club')"`
	ClubID    string       `json:"club_id"    gorm:"type:varchar(64);not null;index:idx_insight_scope,priority:2"`
	TeamID    string       `json:"team_id,omitempty" gorm:"type:varchar(64);index:idx_insight_scope,priority:3"`
	Title     string       `json:"title"      gorm:"type:varchar(255);not null"`
	Content   string       `json:"content"    gorm:"type:text;not null"`
	Category  string       `json:"category"   gorm:"type:varchar(64);not null"`
	Date      string       `json:"date"       gorm:"type:char(10);not null;index:idx_insight_scope,priority:4"`
	CreatedAt time.Time    `json:"created_at"`
}

// TableName returns the database table name for Insight.
func (Insight) TableName() string { return "insights" }
