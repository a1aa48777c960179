package domain

import (
	"errors"
	"time"
)

// DateLayout is the day-key format used for every day-scoped record.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a date string is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

// DayKey addresses a per-user, per-day record (messages, summary, scores).
type DayKey struct {
	UserID string
	Date   string
}

// DayKeyAt builds the key for the calendar day of t in loc.
func DayKeyAt(userID string, t time.Time, loc *time.Location) DayKey {
	if loc == nil {
		loc = time.UTC
	}
	return DayKey{UserID: userID, Date: t.In(loc).Format(DateLayout)}
}

// ParseDayKey validates date and returns the key.
func ParseDayKey(userID, date string) (DayKey, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return DayKey{}, ErrInvalidDate
	}
	return DayKey{UserID: userID, Date: date}, nil
}

// String renders the key as "<user>/<date>" for logs and lock names.
func (k DayKey) String() string { return k.UserID + "/" + k.Date }
