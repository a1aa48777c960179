package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
)

// CreateInsight archives a generated insight. Insights are never updated.
func CreateInsight(ctx context.Context, db *gorm.DB, in *domain.Insight) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(in).Error
}

// InsightFilter selects archived insights. From and To are inclusive
// YYYY-MM-DD bounds; empty means unbounded. An empty TeamID with ScopeTeam
// matches every team of the club.
type InsightFilter struct {
	Scope  domain.InsightScope
	ClubID string
	TeamID string
	From   string
	To     string
	Limit  int
}

// ListInsights returns matching insights, newest date first.
func ListInsights(ctx context.Context, db *gorm.DB, f InsightFilter) ([]domain.Insight, error) {
	var out []domain.Insight
	q := db.WithContext(ctx).Where("scope = ? AND club_id = ?", f.Scope, f.ClubID)
	if f.TeamID != "" {
		q = q.Where("team_id = ?", f.TeamID)
	}
	if f.From != "" {
		q = q.Where("date >= ?", f.From)
	}
	if f.To != "" {
		q = q.Where("date <= ?", f.To)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	err := q.Order("date DESC, created_at DESC, id ASC").Find(&out).Error
	return out, err
}
