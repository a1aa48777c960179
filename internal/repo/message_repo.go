// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the day-keyed
// chat container (chat_messages) and its per-day summary.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
)

// NewMessage is an entry to append to a day container.
type NewMessage struct {
	Role    string
	Content string
	Topic   domain.Topic
}

// AppendMessages appends msgs, in order, to the container addressed by key.
// Sequence numbers continue from the highest stored one. Callers that need
// atomicity with other writes pass a transaction handle.
func AppendMessages(ctx context.Context, db *gorm.DB, key domain.DayKey, msgs ...NewMessage) ([]domain.ChatMessage, error) {
	if len(msgs) == 0 {
		return nil, nil
	}
	var maxSeq int
	if err := db.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Where("user_id = ? AND date = ?", key.UserID, key.Date).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := make([]domain.ChatMessage, 0, len(msgs))
	for i, m := range msgs {
		out = append(out, domain.ChatMessage{
			ID:        uuid.NewString(),
			UserID:    key.UserID,
			Date:      key.Date,
			Seq:       maxSeq + i + 1,
			Role:      m.Role,
			Content:   m.Content,
			Topic:     string(m.Topic),
			CreatedAt: now,
		})
	}
	if err := db.WithContext(ctx).Create(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListDayMessages returns the container for key in append order.
func ListDayMessages(ctx context.Context, db *gorm.DB, key domain.DayKey) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := db.WithContext(ctx).
		Where("user_id = ? AND date = ?", key.UserID, key.Date).
		Order("seq ASC").
		Find(&out).Error
	return out, err
}

// ListTopicMessages returns the most recent limit messages the user exchanged
// about topic, across days, oldest first.
func ListTopicMessages(ctx context.Context, db *gorm.DB, userID string, topic domain.Topic, limit int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	q := db.WithContext(ctx).
		Where("user_id = ? AND topic = ?", userID, string(topic)).
		Order("date DESC, seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// GetMessage fetches a message by ID, scoped to its owner.
func GetMessage(ctx context.Context, db *gorm.DB, userID, id string) (*domain.ChatMessage, error) {
	var m domain.ChatMessage
	if err := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpsertChatSummary stores summary as the day's conversation summary,
// overwriting any previous one.
func UpsertChatSummary(ctx context.Context, db *gorm.DB, key domain.DayKey, summary string) error {
	now := time.Now().UTC()
	row := &domain.ChatSummary{
		UserID:    key.UserID,
		Date:      key.Date,
		Summary:   summary,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"summary", "updated_at"}),
	}).Create(row).Error
}

// GetChatSummary returns the stored summary for key or ErrNotFound.
func GetChatSummary(ctx context.Context, db *gorm.DB, key domain.DayKey) (*domain.ChatSummary, error) {
	var s domain.ChatSummary
	if err := db.WithContext(ctx).Where("user_id = ? AND date = ?", key.UserID, key.Date).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
