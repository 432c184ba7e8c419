package services

import (
	"fmt"
	"html"
	"log"
	"sync"
	"time"

	"syllabus-tracker/internal/database"
	"syllabus-tracker/internal/utils"
)

type Urgency string

const (
	UrgencyDueToday    Urgency = "due_today"
	UrgencyDueTomorrow Urgency = "due_tomorrow"
	UrgencyOverdue     Urgency = "overdue"
)

// OverdueReminderDays is the minimum gap between two overdue reminders.
const OverdueReminderDays = 3

// NotificationSender delivers a reminder to a chat.
type NotificationSender interface {
	Notify(destination int64, message string, urgency Urgency) error
}

// Reminder describes a notification that was sent.
type Reminder struct {
	Syllabus      string
	Task          string
	DaysRemaining int
	Urgency       Urgency
	Message       string
}

type NotificationService struct {
	sender      NotificationSender
	destination int64
	store       DocumentStore
	mu          *sync.Mutex
	now         func() time.Time
}

func NewNotificationService(sender NotificationSender, destination int64, store DocumentStore, mu *sync.Mutex) *NotificationService {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &NotificationService{
		sender:      sender,
		destination: destination,
		store:       store,
		mu:          mu,
		now:         time.Now,
	}
}

func (ns *NotificationService) SetClock(now func() time.Time) {
	ns.now = now
}

// CheckAndSendNotifications is the daily cron entry point.
func (ns *NotificationService) CheckAndSendNotifications() {
	log.Printf("🔔 Checking due dates")

	reminder, err := ns.CheckDueDates()
	if err != nil {
		log.Printf("❌ Due date check failed: %v", err)
		return
	}
	if reminder == nil {
		log.Printf("📋 No reminder needed")
		return
	}
	log.Printf("✅ Sent %s reminder for %q (%d days)", reminder.Urgency, reminder.Syllabus, reminder.DaysRemaining)
}

// CheckDueDates evaluates the active syllabus and sends at most one
// reminder. It returns nil when nothing was sent.
func (ns *NotificationService) CheckDueDates() (*Reminder, error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	now := ns.now()
	st, err := loadState(ns.store, now)
	if err != nil {
		return nil, err
	}

	settings := &st.progress.GlobalSettings
	if !settings.RemindersEnabled {
		return nil, nil
	}
	name, s, p, err := st.active()
	if err != nil {
		return nil, nil
	}

	settings.LastCheck = database.NewTimestamp(now)
	st.progressChanged = true

	reminder, sendErr := ns.evaluate(st, name, s, p)
	if err := st.persist(ns.store); err != nil {
		return nil, err
	}
	if sendErr != nil {
		return nil, sendErr
	}
	return reminder, nil
}

func (ns *NotificationService) evaluate(st *state, name string, s *database.Syllabus, p *database.SyllabusProgress) (*Reminder, error) {
	task, err := taskAt(s, p)
	if err != nil {
		// finished syllabi get no reminders
		return nil, nil
	}
	days, ok := daysRemaining(p, st.now)
	if !ok {
		return nil, nil
	}

	var urgency Urgency
	switch {
	case days == 0:
		urgency = UrgencyDueToday
	case days == 1:
		urgency = UrgencyDueTomorrow
	case days < 0:
		if !overdueReminderDue(st.progress.GlobalSettings.LastReminder, st.now) {
			return nil, nil
		}
		urgency = UrgencyOverdue
	default:
		return nil, nil
	}

	reminder := &Reminder{
		Syllabus:      name,
		Task:          task,
		DaysRemaining: days,
		Urgency:       urgency,
		Message:       reminderMessage(name, task, days, urgency),
	}
	if err := ns.sender.Notify(ns.destination, reminder.Message, urgency); err != nil {
		return nil, fmt.Errorf("send %s reminder: %w", urgency, err)
	}

	if urgency == UrgencyOverdue {
		sent := database.NewTimestamp(st.now)
		st.progress.GlobalSettings.LastReminder = &sent
	}
	return reminder, nil
}

func overdueReminderDue(last *database.Timestamp, now time.Time) bool {
	if last == nil || last.IsZero() {
		return true
	}
	return utils.DaysSince(last.Time, now) >= OverdueReminderDays
}

func reminderMessage(name, task string, days int, urgency Urgency) string {
	name, task = html.EscapeString(name), html.EscapeString(task)
	emoji := utils.UrgencyEmoji(string(urgency))

	switch urgency {
	case UrgencyDueToday:
		return fmt.Sprintf(
			"%s <b>Reminder</b>: Your current task is due today!\n\n"+
				"<b>%s</b>: %s\n\n"+
				"Use /check to mark as completed.",
			emoji, name, task,
		)
	case UrgencyDueTomorrow:
		return fmt.Sprintf(
			"%s <b>Reminder</b>: Your current task is due tomorrow!\n\n"+
				"<b>%s</b>: %s\n\n"+
				"Use /check to mark as completed when you're done.",
			emoji, name, task,
		)
	default:
		return fmt.Sprintf(
			"%s <b>Task Overdue</b>: Your current task is %d days overdue!\n\n"+
				"<b>%s</b>: %s\n\n"+
				"Use /check to mark as completed or /set_interval to adjust your schedule.",
			emoji, -days, name, task,
		)
	}
}
