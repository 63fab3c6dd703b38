package domain

import (
	"strings"
	"time"
)

const (
	// DateLayout is the calendar date format used for storage and query bounds.
	DateLayout = "2006-01-02"
	// DisplayLayout renders dates as e.g. "Thu June 15 2023".
	DisplayLayout = "Mon January 02 2006"

	MaxDescriptionLength = 25
	MinDuration          = 1
)

// Exercise is a single logged activity owned by reference to a user.
type Exercise struct {
	ID          string
	UserID      string
	Description string
	Duration    int
	Date        time.Time
	CreatedAt   time.Time
}

// ExerciseLog is the filtered, optionally truncated view of a user's exercises.
type ExerciseLog struct {
	User      User
	Exercises []Exercise
}

// LogQuery narrows a log. Nil bounds are open; Limit <= 0 means no limit.
type LogQuery struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseExerciseDate accepts YYYY-MM-DD or RFC 3339 input and falls back to
// the calendar date of now when the value is empty or unparseable.
func ParseExerciseDate(value string, now time.Time) time.Time {
	value = strings.TrimSpace(value)
	if t, ok := ParseDate(value); ok {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return Day(t)
	}
	return Day(now)
}

// FormatDate renders a date for API responses.
func FormatDate(t time.Time) string {
	return t.Format(DisplayLayout)
}
