package domain

import "time"

// AlertType classifies a concerning signal.
type AlertType string

const (
	AlertMentalHealth   AlertType = "mental_health"
	AlertAggression     AlertType = "aggression"
	AlertSubstanceAbuse AlertType = "substance_abuse"
	AlertExtremeLowMood AlertType = "extreme_low_mood"
	AlertInjury         AlertType = "injury"
)

// AlertTypes is the closed set of alert classifications.
var AlertTypes = []AlertType{
	AlertMentalHealth,
	AlertAggression,
	AlertSubstanceAbuse,
	AlertExtremeLowMood,
	AlertInjury,
}

// Valid reports whether t is a known alert type.
func (t AlertType) Valid() bool {
	for _, x := range AlertTypes {
		if x == t {
			return true
		}
	}
	return false
}

// AlertStatus is the triage state of an alert.
type AlertStatus string

const (
	AlertStatusNew          AlertStatus = "new"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

// Valid reports whether s is a known status.
func (s AlertStatus) Valid() bool {
	switch s {
	case AlertStatusNew, AlertStatusAcknowledged, AlertStatusResolved:
		return true
	}
	return false
}

// AlertSignal is an alert classification emitted by the extractor for a turn.
type AlertSignal struct {
	Type              AlertType `json:"type"`
	TriggeringMessage string    `json:"triggering_message"`
}

// Alert is a flagged signal awaiting staff triage. Created by the turn
// pipeline only; afterwards only Status changes.
type Alert struct {
	ID                string      `json:"id"                 gorm:"type:char(36);primaryKey"`
	UserID            string      `json:"user_id"            gorm:"type:varchar(64);not null;index"`
	ClubID            string      `json:"club_id"            gorm:"type:varchar(64);not null;index:idx_alert_scope,priority:1"`
	TeamID            string      `json:"team_id"            gorm:"type:varchar(64);index:idx_alert_scope,priority:2"`
	Type              AlertType   `json:"type"               gorm:"type:varchar(32);not null"`
	TriggeringMessage string      `json:"triggering_message" gorm:"type:text;not null"`
	Status            AlertStatus `json:"status"             gorm:"type:varchar(16);not null;default:'new';check:status IN ('new','acknowledged','resolved')"`
	CreatedAt         time.Time   `json:"created_at"         gorm:"index:idx_alert_scope,priority:3"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// TableName returns the database table name for Alert.
func (Alert) TableName() string { return "alerts" }
