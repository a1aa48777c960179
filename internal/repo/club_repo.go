package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
)

// CreateClub inserts a club with a generated ID when none is set.
func CreateClub(ctx context.Context, db *gorm.DB, c *domain.Club) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	return db.WithContext(ctx).Create(c).Error
}

// CreateTeam inserts a team with a generated ID when none is set.
func CreateTeam(ctx context.Context, db *gorm.DB, t *domain.Team) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	return db.WithContext(ctx).Create(t).Error
}

// ListClubs returns every club ordered by ID.
func ListClubs(ctx context.Context, db *gorm.DB) ([]domain.Club, error) {
	var out []domain.Club
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// ListTeams returns the teams of a club ordered by ID.
func ListTeams(ctx context.Context, db *gorm.DB, clubID string) ([]domain.Team, error) {
	var out []domain.Team
	err := db.WithContext(ctx).Where("club_id = ?", clubID).Order("id ASC").Find(&out).Error
	return out, err
}

// GetTeam fetches a team by ID, or ErrNotFound.
func GetTeam(ctx context.Context, db *gorm.DB, id string) (*domain.Team, error) {
	var t domain.Team
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// HasIndividualTraining reports whether the user logged a training for date.
func HasIndividualTraining(ctx context.Context, db *gorm.DB, key domain.DayKey) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.IndividualTraining{}).
		Where("user_id = ? AND date = ?", key.UserID, key.Date).
		Count(&n).Error
	return n > 0, err
}

// CreateIndividualTraining records a one-off training for the day in key.
func CreateIndividualTraining(ctx context.Context, db *gorm.DB, key domain.DayKey, title string) (*domain.IndividualTraining, error) {
	it := &domain.IndividualTraining{
		ID:        uuid.NewString(),
		UserID:    key.UserID,
		Date:      key.Date,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	return it, db.WithContext(ctx).Create(it).Error
}
