// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
)

// DayMessagesStats returns the number of messages in the container for key and
// the highest sequence number. Containers are append-only, so the pair changes
// whenever the container does.
func DayMessagesStats(ctx context.Context, db *gorm.DB, key domain.DayKey) (count int64, maxSeq int, err error) {
	q := db.WithContext(ctx).Model(&domain.ChatMessage{}).Where("user_id = ? AND date = ?", key.UserID, key.Date)
	if err = q.Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}
	var row struct{ Seq int }
	if err = q.Select("seq").Order("seq DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return count, row.Seq, nil
}

// TeamAlertsStats returns the number of alerts for a team and the greatest
// UpdatedAt among them, or nil when the team has none.
func TeamAlertsStats(ctx context.Context, db *gorm.DB, clubID, teamID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Alert{}).Where("club_id = ? AND team_id = ?", clubID, teamID)
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
