package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"syllabus-tracker/internal/database"
)

// DocumentStore loads and saves the catalog and progress documents whole.
type DocumentStore interface {
	LoadCatalog() (*database.Catalog, error)
	SaveCatalog(catalog *database.Catalog) error
	LoadProgress() (*database.Progress, error)
	SaveProgress(progress *database.Progress) error
}

// TaskView is the task a syllabus is currently on. When Finished is set the
// syllabus is in its terminal state and Task is empty.
type TaskView struct {
	Syllabus      string
	Week          int
	Total         int
	Task          string
	Finished      bool
	Fresh         bool
	HasDueDate    bool
	DaysRemaining int
}

type CompletionResult struct {
	Syllabus      string
	CompletedWeek int
	CompletedTask string
	// Next is nil once the last task has been completed.
	Next         *TaskView
	IntervalDays int
}

type DeferResult struct {
	Current       TaskView
	Extended      bool
	ExtensionDays int
}

// ProgressService implements the progress engine. Every operation loads both
// documents, mutates them and saves them before the lock is released.
type ProgressService struct {
	store DocumentStore
	mu    *sync.Mutex
	now   func() time.Time
}

func NewProgressService(store DocumentStore, mu *sync.Mutex) *ProgressService {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &ProgressService{store: store, mu: mu, now: time.Now}
}

// SetClock replaces the time source.
func (ps *ProgressService) SetClock(now func() time.Time) {
	ps.now = now
}

type state struct {
	catalog         *database.Catalog
	progress        *database.Progress
	now             time.Time
	catalogChanged  bool
	progressChanged bool
}

func (ps *ProgressService) withState(fn func(st *state) error) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	st, err := loadState(ps.store, ps.now())
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	return st.persist(ps.store)
}

func loadState(store DocumentStore, now time.Time) (*state, error) {
	catalog, err := store.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	progress, err := store.LoadProgress()
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return &state{catalog: catalog, progress: progress, now: now}, nil
}

func (st *state) persist(store DocumentStore) error {
	if st.progressChanged {
		if err := store.SaveProgress(st.progress); err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
	}
	if st.catalogChanged {
		if err := store.SaveCatalog(st.catalog); err != nil {
			return fmt.Errorf("save catalog: %w", err)
		}
	}
	return nil
}

func (st *state) interval() int {
	return st.progress.GlobalSettings.Interval()
}

func (st *state) syllabus(name string) (*database.Syllabus, error) {
	s, ok := st.catalog.Syllabi[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return s, nil
}

// syllabusProgress returns the record for name, creating it on first access.
func (st *state) syllabusProgress(name string) *database.SyllabusProgress {
	p, ok := st.progress.SyllabiProgress[name]
	if !ok {
		p = database.NewSyllabusProgress(st.now, st.interval())
		st.progress.SyllabiProgress[name] = p
		st.progressChanged = true
	}
	return p
}

// active returns the current syllabus, failing when none is selected or the
// selected one is paused.
func (st *state) active() (string, *database.Syllabus, *database.SyllabusProgress, error) {
	name := st.catalog.CurrentSyllabus
	if name == "" {
		return "", nil, nil, ErrNoActiveSyllabus
	}
	s, ok := st.catalog.Syllabi[name]
	if !ok || s.Paused {
		return "", nil, nil, ErrNoActiveSyllabus
	}
	return name, s, st.syllabusProgress(name), nil
}

func (st *state) view(name string, s *database.Syllabus, p *database.SyllabusProgress) (*TaskView, error) {
	v := &TaskView{
		Syllabus: name,
		Week:     p.CurrentWeek,
		Total:    len(s.Tasks),
		Fresh:    p.IsFresh(),
	}
	v.DaysRemaining, v.HasDueDate = daysRemaining(p, st.now)

	task, err := taskAt(s, p)
	switch {
	case err == nil:
		v.Task = task
	case errors.Is(err, ErrSyllabusCompleted):
		v.Finished = true
	default:
		return nil, fmt.Errorf("%q: %w", name, err)
	}
	return v, nil
}

// Select makes name the current syllabus. The due date is only restarted
// when the syllabus has no progress yet.
func (ps *ProgressService) Select(name string) (*TaskView, error) {
	return ps.selectSyllabus(name, false)
}

// Switch makes name the current syllabus and always restarts the due date.
func (ps *ProgressService) Switch(name string) (*TaskView, error) {
	return ps.selectSyllabus(name, true)
}

func (ps *ProgressService) selectSyllabus(name string, restartClock bool) (*TaskView, error) {
	var result *TaskView
	err := ps.withState(func(st *state) error {
		s, err := st.syllabus(name)
		if err != nil {
			return err
		}
		if s.Paused {
			return fmt.Errorf("%q: %w", name, ErrPaused)
		}

		if st.catalog.CurrentSyllabus != name {
			st.catalog.CurrentSyllabus = name
			st.catalogChanged = true
		}

		p := st.syllabusProgress(name)
		if restartClock || p.IsFresh() {
			resetDueDate(p, st.now, st.interval())
			st.progressChanged = true
		}

		result, err = st.view(name, s, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Current returns the active syllabus's task. A finished syllabus is
// reported through TaskView.Finished.
func (ps *ProgressService) Current() (*TaskView, error) {
	var result *TaskView
	err := ps.withState(func(st *state) error {
		name, s, p, err := st.active()
		if err != nil {
			return err
		}
		result, err = st.view(name, s, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Check is Current for callers about to ask whether the task is done; a
// finished syllabus has nothing to check and yields ErrSyllabusCompleted.
func (ps *ProgressService) Check() (*TaskView, error) {
	v, err := ps.Current()
	if err != nil {
		return nil, err
	}
	if v.Finished {
		return nil, fmt.Errorf("%q: %w", v.Syllabus, ErrSyllabusCompleted)
	}
	return v, nil
}

func (ps *ProgressService) CompleteCurrent() (*CompletionResult, error) {
	var result *CompletionResult
	err := ps.withState(func(st *state) error {
		name, s, p, err := st.active()
		if err != nil {
			return err
		}

		idx, err := markComplete(s, p, st.now, st.interval())
		if err != nil {
			return fmt.Errorf("%q: %w", name, err)
		}
		st.progressChanged = true

		result = &CompletionResult{
			Syllabus:      name,
			CompletedWeek: idx + 1,
			CompletedTask: s.Tasks[idx],
			IntervalDays:  st.interval(),
		}
		if !isFinished(s, p) {
			result.Next, err = st.view(name, s, p)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeferCurrent pushes the due date back by half an interval, at least three
// days. Without a recorded due date nothing changes.
func (ps *ProgressService) DeferCurrent() (*DeferResult, error) {
	var result *DeferResult
	err := ps.withState(func(st *state) error {
		name, s, p, err := st.active()
		if err != nil {
			return err
		}
		if _, err := currentIndex(s, p); err != nil {
			return fmt.Errorf("%q: %w", name, err)
		}

		result = &DeferResult{}
		if p.DueDate != nil && !p.DueDate.IsZero() {
			ext := deferExtension(st.interval())
			due := database.NewTimestamp(p.DueDate.AddDate(0, 0, ext))
			p.DueDate = &due
			st.progressChanged = true
			result.Extended = true
			result.ExtensionDays = ext
		}

		v, err := st.view(name, s, p)
		if err != nil {
			return err
		}
		result.Current = *v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reset overwrites the progress of name with a fresh record. An empty name
// targets the active syllabus.
func (ps *ProgressService) Reset(name string) (*TaskView, error) {
	var result *TaskView
	err := ps.withState(func(st *state) error {
		if name == "" {
			active, _, _, err := st.active()
			if err != nil {
				return err
			}
			name = active
		}
		s, err := st.syllabus(name)
		if err != nil {
			return err
		}
		if _, ok := st.progress.SyllabiProgress[name]; !ok {
			return fmt.Errorf("%q: %w", name, ErrNoProgress)
		}

		p := database.NewSyllabusProgress(st.now, st.interval())
		st.progress.SyllabiProgress[name] = p
		st.progressChanged = true

		result, err = st.view(name, s, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Pause stops tracking name and deselects it if it is current.
func (ps *ProgressService) Pause(name string) error {
	return ps.withState(func(st *state) error {
		s, err := st.syllabus(name)
		if err != nil {
			return err
		}
		s.Paused = true
		if st.catalog.CurrentSyllabus == name {
			st.catalog.CurrentSyllabus = ""
		}
		st.catalogChanged = true
		return nil
	})
}

// Resume makes name selectable again. It does not reselect it.
func (ps *ProgressService) Resume(name string) error {
	return ps.withState(func(st *state) error {
		s, err := st.syllabus(name)
		if err != nil {
			return err
		}
		s.Paused = false
		st.catalogChanged = true
		return nil
	})
}

// SetInterval changes the days allotted per task and restarts the current
// syllabus's due date with the new interval.
func (ps *ProgressService) SetInterval(days int) error {
	if days < 1 || days > database.MaxReminderInterval {
		return fmt.Errorf("interval %d days: %w", days, ErrInvalidArgument)
	}
	return ps.withState(func(st *state) error {
		if st.now.AddDate(0, 0, days).Year() > 9999 {
			return fmt.Errorf("interval %d days: %w", days, ErrInvalidArgument)
		}
		st.progress.GlobalSettings.ReminderInterval = days
		st.progressChanged = true

		if name := st.catalog.CurrentSyllabus; name != "" {
			if _, ok := st.catalog.Syllabi[name]; ok {
				resetDueDate(st.syllabusProgress(name), st.now, days)
			}
		}
		return nil
	})
}

// ToggleReminders flips the reminders setting and returns the new value.
func (ps *ProgressService) ToggleReminders() (bool, error) {
	var enabled bool
	err := ps.withState(func(st *state) error {
		settings := &st.progress.GlobalSettings
		settings.RemindersEnabled = !settings.RemindersEnabled
		enabled = settings.RemindersEnabled
		st.progressChanged = true
		return nil
	})
	return enabled, err
}

func (ps *ProgressService) Settings() (database.GlobalSettings, error) {
	var settings database.GlobalSettings
	err := ps.withState(func(st *state) error {
		settings = st.progress.GlobalSettings
		return nil
	})
	return settings, err
}
