// Package domain defines the persistence models for profiles, the club/team
// hierarchy, day-keyed chat containers, wellness scores, alerts, and
// generated insights. These types are mapped with GORM and form the core data
// layer of the check-in service.
package domain

import (
	"time"
)

// Role identifies what a user is allowed to see and do.
type Role string

const (
	RolePlayer      Role = "player"
	RoleStaff       Role = "staff"
	RoleResponsible Role = "responsible"
)

// Club is the top of the hierarchy. Teams belong to exactly one club.
type Club struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Club.
func (Club) TableName() string { return "clubs" }

// Team groups players and staff inside a club. Schedule holds the recurring
// weekly activity plan used to resolve "today's activity" for its players.
type Team struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	ClubID    string         `json:"club_id"    gorm:"type:char(36);not null;index"`
	Name      string         `json:"name"       gorm:"type:varchar(255);not null"`
	Schedule  WeeklySchedule `json:"schedule"   gorm:"serializer:json"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName returns the database table name for Team.
func (Team) TableName() string { return "teams" }

// UserProfile is the per-user document read on every turn.
//
// The six onboarding summaries are nullable: a nil pointer means the topic has
// not been summarized yet. OnboardingCompleted is only ever written together
// with a summary, and is true iff all six summaries are present.
type UserProfile struct {
	ID          string `json:"id"           gorm:"type:varchar(64);primaryKey"`
	Role        Role   `json:"role"         gorm:"type:varchar(16);not null;default:'player';index;check:role IN ('player','staff','responsible')"`
	ClubID      string `json:"club_id"      gorm:"type:varchar(64);index"`
	TeamID      string `json:"team_id"      gorm:"type:varchar(64);index"`
	DisplayName string `json:"display_name" gorm:"type:varchar(255)"`
	BuddyName   string `json:"buddy_name"   gorm:"type:varchar(64)"`

	FamilySituation  *string `json:"family_situation,omitempty"   gorm:"type:text"`
	SchoolSituation  *string `json:"school_situation,omitempty"   gorm:"type:text"`
	SportsBackground *string `json:"sports_background,omitempty"  gorm:"type:text"`
	HealthHistory    *string `json:"health_history,omitempty"     gorm:"type:text"`
	HobbiesInterests *string `json:"hobbies_interests,omitempty"  gorm:"type:text"`
	GoalsMotivation  *string `json:"goals_motivation,omitempty"   gorm:"type:text"`

	OnboardingCompleted bool `json:"onboarding_completed" gorm:"not null;default:false"`

	// Schedule is only consulted for users without a team.
	Schedule WeeklySchedule `json:"schedule" gorm:"serializer:json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for UserProfile.
func (UserProfile) TableName() string { return "profiles" }

// IndividualTraining is a one-off training a player logged for a given day.
// When present for today it overrides the team schedule.
type IndividualTraining struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_training_user_date,priority:1"`
	Date      string    `json:"date"       gorm:"type:char(10);not null;index:idx_training_user_date,priority:2"`
	Title     string    `json:"title"      gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for IndividualTraining.
func (IndividualTraining) TableName() string { return "individual_trainings" }

// ChatMessage is one entry of a day-keyed chat container. Entries are
// append-only; Seq increases strictly within a (user, day) container. Topic
// is set for onboarding turns so topic-scoped history can be replayed to the
// extractor.
type ChatMessage struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_chat_day,priority:1"`
	Date      string    `json:"date"       gorm:"type:char(10);not null;index:idx_chat_day,priority:2"`
	Seq       int       `json:"seq"        gorm:"not null;default:0"`
	Role      string    `json:"role"       gorm:"type:varchar(16);not null;check:role IN ('user','assistant')"`
	Content   string    `json:"content"    gorm:"type:text;not null"`
	Topic     string    `json:"topic,omitempty" gorm:"type:varchar(32);index"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_chat_day,priority:3"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }

// ChatSummary is the per-day conversation summary, one per (user, day).
type ChatSummary struct {
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);primaryKey"`
	Date      string    `json:"date"       gorm:"type:char(10);primaryKey"`
	Summary   string    `json:"summary"    gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for ChatSummary.
func (ChatSummary) TableName() string { return "chat_summaries" }

// DeviceToken is a push registration for a user's device.
type DeviceToken struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;index;uniqueIndex:ux_device_user_token,priority:1"`
	Token     string    `json:"token"      gorm:"type:varchar(512);not null;uniqueIndex:ux_device_user_token,priority:2"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for DeviceToken.
func (DeviceToken) TableName() string { return "device_tokens" }
