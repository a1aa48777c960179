package domain

import "time"

// Idempotency records the outcome of an already-processed turn so a client
// retry with the same Idempotency-Key replays the stored assistant reply
// instead of running the pipeline (and its writes) a second time. Records are
// scoped to (user_id, date, key).
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_day_key,priority:1"`
	Date      string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_day_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_day_key,priority:3"`
	MessageID string    `gorm:"type:TEXT NOT NULL"`
	Kind      string    `gorm:"type:TEXT NOT NULL;default:''"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
