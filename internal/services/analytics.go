package services

import (
	"math"
	"sort"
	"time"

	"syllabus-tracker/internal/database"
	"syllabus-tracker/internal/utils"
)

// maxEstimateDays keeps estimates inside the range of time.Duration.
const maxEstimateDays = 100000

type Statistics struct {
	Syllabus       string
	Completed      int
	Total          int
	Percent        float64
	CurrentWeek    int
	DaysActive     int
	HasDueDate     bool
	DaysRemaining  int
	RemainingTasks int
	Estimate       Estimate
}

// Estimate is a best-effort completion date. Available is false when the
// syllabus is already finished or the projection cannot be computed.
type Estimate struct {
	Available bool
	Date      time.Time
	DaysLeft  int
}

type SyllabusSummary struct {
	Name   string
	Paused bool
	Tasks  int
}

type SyllabusDetails struct {
	Name        string
	Paused      bool
	Tasks       []string
	HasProgress bool
	Completed   int
	CurrentWeek int
	Finished    bool
}

type CompletedTask struct {
	Week        int
	Task        string
	CompletedAt *time.Time
}

type CompletedList struct {
	Syllabus string
	Tasks    []CompletedTask
}

// Statistics summarises progress for name, or for the active syllabus when
// name is empty.
func (ps *ProgressService) Statistics(name string) (*Statistics, error) {
	var result *Statistics
	err := ps.withState(func(st *state) error {
		if name == "" {
			name = st.catalog.CurrentSyllabus
			if name == "" {
				return ErrNoActiveSyllabus
			}
		}
		s, err := st.syllabus(name)
		if err != nil {
			return err
		}
		result = computeStatistics(name, s, st.syllabusProgress(name), st.now, st.interval())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func computeStatistics(name string, s *database.Syllabus, p *database.SyllabusProgress, now time.Time, interval int) *Statistics {
	total := len(s.Tasks)
	stats := &Statistics{
		Syllabus:    name,
		Completed:   len(p.CompletedWeeks),
		Total:       total,
		CurrentWeek: min(p.CurrentWeek, total),
	}
	// older records may lack a start date
	started := !p.StartDate.IsZero()
	if started {
		stats.DaysActive = utils.DaysSince(p.StartDate.Time, now)
	}
	if total > 0 {
		stats.Percent = float64(stats.Completed) / float64(total) * 100
	}
	stats.DaysRemaining, stats.HasDueDate = daysRemaining(p, now)

	if isFinished(s, p) {
		return stats
	}
	stats.RemainingTasks = total - p.CurrentWeek + 1
	if !started && stats.Completed > 0 {
		return stats
	}
	stats.Estimate = estimateCompletion(stats.RemainingTasks, stats.Completed, stats.DaysActive, interval, now)
	return stats
}

func estimateCompletion(remaining, completed, daysActive, interval int, now time.Time) Estimate {
	avg := float64(interval)
	if completed > 0 {
		avg = float64(daysActive) / float64(completed)
	}

	days := float64(remaining) * avg
	if math.IsNaN(days) || math.IsInf(days, 0) || days < 0 || days > maxEstimateDays {
		return Estimate{}
	}
	return Estimate{
		Available: true,
		Date:      now.Add(time.Duration(days * float64(utils.Day))),
		DaysLeft:  int(days),
	}
}

func (ps *ProgressService) List() ([]SyllabusSummary, error) {
	var result []SyllabusSummary
	err := ps.withState(func(st *state) error {
		for _, name := range st.catalog.Names() {
			s := st.catalog.Syllabi[name]
			result = append(result, SyllabusSummary{Name: name, Paused: s.Paused, Tasks: len(s.Tasks)})
		}
		return nil
	})
	return result, err
}

// Describe reports a syllabus and its progress without creating a progress
// record.
func (ps *ProgressService) Describe(name string) (*SyllabusDetails, error) {
	var result *SyllabusDetails
	err := ps.withState(func(st *state) error {
		s, err := st.syllabus(name)
		if err != nil {
			return err
		}
		result = &SyllabusDetails{
			Name:   name,
			Paused: s.Paused,
			Tasks:  append([]string(nil), s.Tasks...),
		}
		if p, ok := st.progress.SyllabiProgress[name]; ok {
			result.HasProgress = true
			result.Completed = len(p.CompletedWeeks)
			result.CurrentWeek = p.CurrentWeek
			result.Finished = isFinished(s, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CompletedTasks lists the active syllabus's completed tasks in order.
func (ps *ProgressService) CompletedTasks() (*CompletedList, error) {
	var result *CompletedList
	err := ps.withState(func(st *state) error {
		name, s, p, err := st.active()
		if err != nil {
			return err
		}

		result = &CompletedList{Syllabus: name}
		weeks := append([]int(nil), p.CompletedWeeks...)
		sort.Ints(weeks)
		for _, idx := range weeks {
			if idx < 0 || idx >= len(s.Tasks) {
				continue
			}
			task := CompletedTask{Week: idx + 1, Task: s.Tasks[idx]}
			if ts, ok := p.CompletionDates[idx]; ok && !ts.IsZero() {
				at := ts.Time
				task.CompletedAt = &at
			}
			result.Tasks = append(result.Tasks, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
