package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
)

// MergeWellness merges u into the score document for key, creating it when
// absent. Only the columns carried by u are written on conflict, so fields
// from earlier turns that day survive. An update without scores or an injury
// flag is a no-op; its summary lives in chat_summaries.
func MergeWellness(ctx context.Context, db *gorm.DB, key domain.DayKey, u domain.WellnessUpdate) error {
	if !u.HasSignals() {
		return nil
	}
	now := time.Now().UTC()
	row := domain.WellnessScore{UserID: key.UserID, Date: key.Date, CreatedAt: now, UpdatedAt: now}
	cols := make([]string, 0, 2*len(u.Scores)+4)

	for _, d := range domain.Dimensions {
		s, ok := u.Scores[d]
		if !ok {
			continue
		}
		row.SetSignal(d, s)
		cols = append(cols, d.ScoreColumn(), d.ReasonColumn())
	}
	if u.Injury != nil {
		injured, reason := u.Injury.Injured, u.Injury.Reason
		row.Injury = &injured
		row.InjuryReason = &reason
		cols = append(cols, "injury", "injury_reason")
	}
	if u.Summary != "" {
		summary := u.Summary
		row.Summary = &summary
		cols = append(cols, "summary")
	}
	cols = append(cols, "updated_at")

	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(&row).Error
}

// GetWellness returns the score document for key or ErrNotFound.
func GetWellness(ctx context.Context, db *gorm.DB, key domain.DayKey) (*domain.WellnessScore, error) {
	var w domain.WellnessScore
	if err := db.WithContext(ctx).Where("user_id = ? AND date = ?", key.UserID, key.Date).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// LatestWellness returns, per user, the most recent score document dated on
// or before onOrBefore that holds at least one dimension score. Users without
// such a document are absent from the map.
func LatestWellness(ctx context.Context, db *gorm.DB, userIDs []string, onOrBefore string) (map[string]domain.WellnessScore, error) {
	out := make(map[string]domain.WellnessScore, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []domain.WellnessScore
	if err := db.WithContext(ctx).
		Where("user_id IN ? AND date <= ?", userIDs, onOrBefore).
		Where(anyScoreSet()).
		Order("user_id ASC, date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		if _, seen := out[r.UserID]; !seen {
			out[r.UserID] = r
		}
	}
	return out, nil
}

func anyScoreSet() string {
	conds := make([]string, 0, len(domain.Dimensions))
	for _, d := range domain.Dimensions {
		conds = append(conds, d.ScoreColumn()+" IS NOT NULL")
	}
	return "(" + strings.Join(conds, " OR ") + ")"
}
