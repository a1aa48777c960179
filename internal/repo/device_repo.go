package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
)

// RegisterDeviceToken stores a push token for the user. Re-registering the
// same token is a no-op.
func RegisterDeviceToken(ctx context.Context, db *gorm.DB, userID, token string) error {
	dt := &domain.DeviceToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "token"}},
		DoNothing: true,
	}).Create(dt).Error
}

// ListDeviceTokens returns the distinct tokens registered by any of userIDs.
func ListDeviceTokens(ctx context.Context, db *gorm.DB, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.DeviceToken{}).
		Where("user_id IN ?", userIDs).
		Distinct("token").
		Order("token ASC").
		Pluck("token", &out).Error
	return out, err
}

// DeleteDeviceTokens removes tokens the push provider reported as invalid.
func DeleteDeviceTokens(ctx context.Context, db *gorm.DB, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	return db.WithContext(ctx).Where("token IN ?", tokens).Delete(&domain.DeviceToken{}).Error
}
