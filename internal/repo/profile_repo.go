package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
)

// GetProfile fetches a profile by user ID, or ErrNotFound.
func GetProfile(ctx context.Context, db *gorm.DB, userID string) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := db.WithContext(ctx).Where("id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile inserts p.
func CreateProfile(ctx context.Context, db *gorm.DB, p *domain.UserProfile) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return db.WithContext(ctx).Create(p).Error
}

// SetTopicSummary writes the summary column for topic and the completion flag
// in one statement. Returns ErrNotFound if the profile does not exist.
func SetTopicSummary(ctx context.Context, db *gorm.DB, userID string, topic domain.Topic, summary string, completed bool) error {
	res := db.WithContext(ctx).
		Model(&domain.UserProfile{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			topic.Column():         summary,
			"onboarding_completed": completed,
			"updated_at":           time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTeamMembers returns the profiles with role in the given team.
func ListTeamMembers(ctx context.Context, db *gorm.DB, clubID, teamID string, role domain.Role) ([]domain.UserProfile, error) {
	var out []domain.UserProfile
	err := db.WithContext(ctx).
		Where("club_id = ? AND team_id = ? AND role = ?", clubID, teamID, role).
		Order("id ASC").
		Find(&out).Error
	return out, err
}
