package domain

import (
	"strings"
	"time"
)

// Activity is what a player is scheduled to do on a given day.
type Activity string

const (
	ActivityRest       Activity = "rest"
	ActivityTraining   Activity = "training"
	ActivityMatch      Activity = "match"
	ActivityIndividual Activity = "individual"
)

// Valid reports whether a is a known activity.
func (a Activity) Valid() bool {
	switch a {
	case ActivityRest, ActivityTraining, ActivityMatch, ActivityIndividual:
		return true
	}
	return false
}

// WeeklySchedule maps a lower-case English weekday ("monday") to an activity.
// It is stored as JSON on teams and profiles.
type WeeklySchedule map[string]Activity

// For returns the scheduled activity for the weekday of day, if any.
func (s WeeklySchedule) For(day time.Time) (Activity, bool) {
	if len(s) == 0 {
		return "", false
	}
	a, ok := s[strings.ToLower(day.Weekday().String())]
	if !ok || !a.Valid() {
		return "", false
	}
	return a, true
}
