package utils

import (
	"fmt"
	"log"
	"time"
)

const Day = 24 * time.Hour

// DaysUntil returns whole days from now to t, truncated toward zero.
// Negative values mean t has passed.
func DaysUntil(t, now time.Time) int {
	return int(t.Sub(now) / Day)
}

// DaysSince returns whole days elapsed from t to now, truncated toward zero.
func DaysSince(t, now time.Time) int {
	return int(now.Sub(t) / Day)
}

func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// DueStatus describes a days-remaining count for display.
func DueStatus(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("OVERDUE by %d %s! ⚠️", -days, plural(-days))
	case days == 0:
		return "Due today ⏰"
	case days == 1:
		return "Due tomorrow 📅"
	default:
		return fmt.Sprintf("Due in %d %s ⏱️", days, plural(days))
	}
}

func plural(days int) string {
	if days == 1 {
		return "day"
	}
	return "days"
}

// LoadLocation resolves a zone name, falling back to the local zone.
func LoadLocation(name string) *time.Location {
	if name == "" || name == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("⚠️ Unknown time zone %q, using local time: %v", name, err)
		return time.Local
	}
	return loc
}
