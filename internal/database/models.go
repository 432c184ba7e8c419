package database

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	DefaultReminderInterval = 7
	MaxReminderInterval     = 3650

	CatalogDocument  = "catalog"
	ProgressDocument = "progress"
)

// Syllabus is an ordered list of weekly tasks. A task is addressed by its
// 0-based position in Tasks.
type Syllabus struct {
	Tasks  []string `json:"tasks"`
	Paused bool     `json:"paused"`
}

type Catalog struct {
	CurrentSyllabus string               `json:"current_field"`
	Syllabi         map[string]*Syllabus `json:"syllabi"`
}

func NewCatalog() *Catalog {
	return &Catalog{Syllabi: make(map[string]*Syllabus)}
}

// Names returns syllabus names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Syllabi))
	for name := range c.Syllabi {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type GlobalSettings struct {
	ReminderInterval int        `json:"reminder_interval"`
	RemindersEnabled bool       `json:"reminders_enabled"`
	LastCheck        Timestamp  `json:"last_check"`
	LastReminder     *Timestamp `json:"last_reminder,omitempty"`
}

// Interval returns the configured days per task, falling back to the
// default for documents written without one.
func (g GlobalSettings) Interval() int {
	if g.ReminderInterval < 1 {
		return DefaultReminderInterval
	}
	return g.ReminderInterval
}

type SyllabusProgress struct {
	CurrentWeek     int               `json:"current_week"`
	CompletedWeeks  []int             `json:"completed_weeks"`
	CompletionDates map[int]Timestamp `json:"completion_dates,omitempty"`
	StartDate       Timestamp         `json:"start_date"`
	DueDate         *Timestamp        `json:"due_date,omitempty"`
}

// NewSyllabusProgress returns a fresh record: week 1, nothing completed,
// due one interval from now.
func NewSyllabusProgress(now time.Time, intervalDays int) *SyllabusProgress {
	due := NewTimestamp(now.AddDate(0, 0, intervalDays))
	return &SyllabusProgress{
		CurrentWeek:     1,
		CompletedWeeks:  []int{},
		CompletionDates: make(map[int]Timestamp),
		StartDate:       NewTimestamp(now),
		DueDate:         &due,
	}
}

func (p *SyllabusProgress) IsFresh() bool {
	return p.CurrentWeek == 1 && len(p.CompletedWeeks) == 0
}

func (p *SyllabusProgress) IsCompleted(index int) bool {
	for _, i := range p.CompletedWeeks {
		if i == index {
			return true
		}
	}
	return false
}

type Progress struct {
	GlobalSettings  GlobalSettings               `json:"global_settings"`
	SyllabiProgress map[string]*SyllabusProgress `json:"syllabi_progress"`
}

func NewProgress(now time.Time) *Progress {
	return &Progress{
		GlobalSettings: GlobalSettings{
			ReminderInterval: DefaultReminderInterval,
			RemindersEnabled: true,
			LastCheck:        NewTimestamp(now),
		},
		SyllabiProgress: make(map[string]*SyllabusProgress),
	}
}

// UnmarshalJSON keeps reminders enabled when a document predates the
// reminders_enabled setting.
func (g *GlobalSettings) UnmarshalJSON(data []byte) error {
	type plain GlobalSettings
	aux := plain{RemindersEnabled: true}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*g = GlobalSettings(aux)
	return nil
}

// Timestamp is a time.Time that reads both RFC 3339 values and the
// zone-less ISO timestamps found in older progress files.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func ParseTimestamp(value string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", value)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`null`), nil
	}
	if y := t.Year(); y < 0 || y > 9999 {
		return nil, fmt.Errorf("timestamp year %d outside [0,9999]", y)
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*t = Timestamp{}
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (c *Catalog) normalize() {
	if c.Syllabi == nil {
		c.Syllabi = make(map[string]*Syllabus)
	}
	for name, s := range c.Syllabi {
		if s == nil {
			c.Syllabi[name] = &Syllabus{}
		}
	}
}

func (p *Progress) normalize() {
	if p.SyllabiProgress == nil {
		p.SyllabiProgress = make(map[string]*SyllabusProgress)
	}
	for _, sp := range p.SyllabiProgress {
		if sp == nil {
			continue
		}
		if sp.CompletedWeeks == nil {
			sp.CompletedWeeks = []int{}
		}
		if sp.CompletionDates == nil {
			sp.CompletionDates = make(map[int]Timestamp)
		}
	}
	for name, sp := range p.SyllabiProgress {
		if sp == nil {
			delete(p.SyllabiProgress, name)
		}
	}
}
