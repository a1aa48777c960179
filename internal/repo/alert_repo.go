package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
)

// CreateAlert inserts a new alert with status "new".
func CreateAlert(ctx context.Context, db *gorm.DB, userID, clubID, teamID string, sig domain.AlertSignal) (*domain.Alert, error) {
	now := time.Now().UTC()
	a := &domain.Alert{
		ID:                uuid.NewString(),
		UserID:            userID,
		ClubID:            clubID,
		TeamID:            teamID,
		Type:              sig.Type,
		TriggeringMessage: sig.TriggeringMessage,
		Status:            domain.AlertStatusNew,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return a, db.WithContext(ctx).Create(a).Error
}

// GetAlert fetches an alert by ID, or ErrNotFound.
func GetAlert(ctx context.Context, db *gorm.DB, id string) (*domain.Alert, error) {
	var a domain.Alert
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAlertStatus changes only the status (and updated_at) of an alert.
func UpdateAlertStatus(ctx context.Context, db *gorm.DB, id string, status domain.AlertStatus) error {
	res := db.WithContext(ctx).
		Model(&domain.Alert{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AlertFilter narrows ListTeamAlerts. Zero values mean "any".
type AlertFilter struct {
	ClubID string
	TeamID string
	Status domain.AlertStatus
	Limit  int
}

// ListTeamAlerts returns the alerts of a team, newest first.
func ListTeamAlerts(ctx context.Context, db *gorm.DB, f AlertFilter) ([]domain.Alert, error) {
	var out []domain.Alert
	q := db.WithContext(ctx).Where("club_id = ? AND team_id = ?", f.ClubID, f.TeamID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	err := q.Order("created_at DESC, id ASC").Find(&out).Error
	return out, err
}
