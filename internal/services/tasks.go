package services

import (
	"fmt"
	"sort"
	"time"

	"syllabus-tracker/internal/database"
	"syllabus-tracker/internal/utils"
)

// CurrentWeek is 1-based while Tasks is 0-based. These helpers are the
// only place that translates between the two.

func isFinished(s *database.Syllabus, p *database.SyllabusProgress) bool {
	return p.CurrentWeek > len(s.Tasks)
}

func currentIndex(s *database.Syllabus, p *database.SyllabusProgress) (int, error) {
	if p.CurrentWeek < 1 {
		return 0, fmt.Errorf("week %d: %w", p.CurrentWeek, ErrIndexOutOfRange)
	}
	if isFinished(s, p) {
		return 0, ErrSyllabusCompleted
	}
	return p.CurrentWeek - 1, nil
}

func taskAt(s *database.Syllabus, p *database.SyllabusProgress) (string, error) {
	idx, err := currentIndex(s, p)
	if err != nil {
		return "", err
	}
	return s.Tasks[idx], nil
}

// markComplete records the current task as done and moves to the next one.
// The completed index is only added once.
func markComplete(s *database.Syllabus, p *database.SyllabusProgress, now time.Time, interval int) (int, error) {
	idx, err := currentIndex(s, p)
	if err != nil {
		return 0, err
	}

	if !p.IsCompleted(idx) {
		p.CompletedWeeks = append(p.CompletedWeeks, idx)
		sort.Ints(p.CompletedWeeks)
	}
	if p.CompletionDates == nil {
		p.CompletionDates = make(map[int]database.Timestamp)
	}
	p.CompletionDates[idx] = database.NewTimestamp(now)
	p.CurrentWeek++
	resetDueDate(p, now, interval)
	return idx, nil
}

func resetDueDate(p *database.SyllabusProgress, now time.Time, interval int) {
	due := database.NewTimestamp(now.AddDate(0, 0, interval))
	p.DueDate = &due
}

// deferExtension is the number of days a deferral adds to the due date.
func deferExtension(interval int) int {
	return max(3, interval/2)
}

func daysRemaining(p *database.SyllabusProgress, now time.Time) (int, bool) {
	if p.DueDate == nil || p.DueDate.IsZero() {
		return 0, false
	}
	return utils.DaysUntil(p.DueDate.Time, now), true
}
