package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syllabus-tracker/internal/database"
)

type sentNotification struct {
	destination int64
	message     string
	urgency     Urgency
}

type fakeSender struct {
	sent []sentNotification
	err  error
}

func (f *fakeSender) Notify(destination int64, message string, urgency Urgency) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentNotification{destination, message, urgency})
	return nil
}

func newTestManager(t *testing.T, syllabi map[string][]string) (*ServiceManager, *fakeSender, *database.MemoryStore, *testClock) {
	t.Helper()
	store := database.NewMemoryStore()
	seedCatalog(t, store, syllabi)

	clock := &testClock{now: t0}
	sender := &fakeSender{}
	sm := NewServiceManager(store)
	sm.SetNotificationSender(sender, 42)
	sm.SetClock(clock.Now)
	return sm, sender, store, clock
}

func TestCheckDueDates_DueTomorrowScenario(t *testing.T) {
	sm, sender, store, clock := newTestManager(t, mathSyllabus())

	_, err := sm.Progress.Select("Math")
	require.NoError(t, err)

	clock.Set(t0.Add(6 * day))
	reminder, err := sm.Notification.CheckDueDates()
	require.NoError(t, err)
	require.NotNil(t, reminder)
	assert.Equal(t, UrgencyDueTomorrow, reminder.Urgency)
	assert.Equal(t, 1, reminder.DaysRemaining)
	assert.Equal(t, "Algebra", reminder.Task)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(42), sender.sent[0].destination)
	assert.Contains(t, sender.sent[0].message, "due tomorrow")
	assert.Contains(t, sender.sent[0].message, "Algebra")

	result, err := sm.Progress.CompleteCurrent()
	require.NoError(t, err)
	assert.Equal(t, "Geometry", result.Next.Task)

	p := loadSyllabusProgress(t, store, "Math")
	assert.Equal(t, 2, p.CurrentWeek)
	assert.Equal(t, []int{0}, p.CompletedWeeks)
	assert.WithinDuration(t, t0.Add(13*day), p.DueDate.Time, 0)
}

func TestCheckDueDates_DueSoonIsNotThrottled(t *testing.T) {
	sm, sender, _, clock := newTestManager(t, mathSyllabus())
	_, err := sm.Progress.Select("Math")
	require.NoError(t, err)

	clock.Set(t0.Add(7 * day))
	for i := 0; i < 2; i++ {
		reminder, err := sm.Notification.CheckDueDates()
		require.NoError(t, err)
		require.NotNil(t, reminder)
		assert.Equal(t, UrgencyDueToday, reminder.Urgency)
	}
	assert.Len(t, sender.sent, 2)
}

func TestCheckDueDates_TruncatesPartialDays(t *testing.T) {
	sm, _, _, clock := newTestManager(t, mathSyllabus())
	_, err := sm.Progress.Select("Math")
	require.NoError(t, err)

	// an hour past the deadline is still zero whole days
	clock.Set(t0.Add(7*day + 1*time.Hour))
	reminder, err := sm.Notification.CheckDueDates()
	require.NoError(t, err)
	require.NotNil(t, reminder)
	assert.Equal(t, UrgencyDueToday, reminder.Urgency)
}

func TestCheckDueDates_NothingWhenFarOff(t *testing.T) {
	sm, sender, store, clock := newTestManager(t, mathSyllabus())
	_, err := sm.Progress.Select("Math")
	require.NoError(t, err)

	clock.Set(t0.Add(3 * day))
	reminder, err := sm.Notification.CheckDueDates()
	require.NoError(t, err)
	assert.Nil(t, reminder)
	assert.Empty(t, sender.sent)

	progress, err := store.LoadProgress()
	require.NoError(t, err)
	assert.WithinDuration(t, t0.Add(3*day), progress.GlobalSettings.LastCheck.Time, 0)
}

func TestCheckDueDates_OverdueThrottled(t *testing.T) {
	sm, sender, store, clock := newTestManager(t, mathSyllabus())
	_, err := sm.Progress.Select("Math")
	require.NoError(t, err)

	clock.Set(t0.Add(9 * day))
	reminder, err := sm.Notification.CheckDueDates()
	require.NoError(t, err)
	require.NotNil(t, reminder)
	assert.Equal(t, UrgencyOverdue, reminder.Urgency)
	assert.Equal(t, -2, reminder.DaysRemaining)
	assert.Contains(t, reminder.Message, "2 days overdue")

	progress, err := store.LoadProgress()
	require.NoError(t, err)
	require.NotNil(t, progress.GlobalSettings.LastReminder)
	assert.WithinDuration(t, t0.Add(9*day), progress.GlobalSettings.LastReminder.Time, 0)

	for _, offset := range []time.Duration{10 * day, 11 * day} {
		clock.Set(t0.Add(offset))
		reminder, err = sm.Notification.CheckDueDates()
		require.NoError(t, err)
		assert.Nil(t, reminder)
	}

	clock.Set(t0.Add(12 * day))
	reminder, err = sm.Notification.CheckDueDates()
	require.NoError(t, err)
	require.NotNil(t, reminder)
	assert.Equal(t, UrgencyOverdue, reminder.Urgency)

	assert.Len(t, sender.sent, 2)
}

func TestCheckDueDates_Skipped(t *testing.T) {
	t.Run("reminders disabled", func(t *testing.T) {
		sm, sender, _, clock := newTestManager(t, mathSyllabus())
		_, err := sm.Progress.Select("Math")
		require.NoError(t, err)
		_, err = sm.Progress.ToggleReminders()
		require.NoError(t, err)

		clock.Set(t0.Add(7 * day))
		reminder, err := sm.Notification.CheckDueDates()
		require.NoError(t, err)
		assert.Nil(t, reminder)
		assert.Empty(t, sender.sent)
	})

	t.Run("no syllabus selected", func(t *testing.T) {
		sm, sender, _, _ := newTestManager(t, mathSyllabus())

		reminder, err := sm.Notification.CheckDueDates()
		require.NoError(t, err)
		assert.Nil(t, reminder)
		assert.Empty(t, sender.sent)
	})

	t.Run("selected syllabus paused", func(t *testing.T) {
		sm, sender, _, clock := newTestManager(t, mathSyllabus())
		_, err := sm.Progress.Select("Math")
		require.NoError(t, err)
		require.NoError(t, sm.Progress.Pause("Math"))

		clock.Set(t0.Add(7 * day))
		reminder, err := sm.Notification.CheckDueDates()
		require.NoError(t, err)
		assert.Nil(t, reminder)
		assert.Empty(t, sender.sent)
	})

	t.Run("syllabus completed", func(t *testing.T) {
		sm, sender, _, clock := newTestManager(t, mathSyllabus())
		_, err := sm.Progress.Select("Physics")
		require.NoError(t, err)
		for i := 0; i < 2; i++ {
			_, err = sm.Progress.CompleteCurrent()
			require.NoError(t, err)
		}

		clock.Set(t0.Add(7 * day))
		reminder, err := sm.Notification.CheckDueDates()
		require.NoError(t, err)
		assert.Nil(t, reminder)
		assert.Empty(t, sender.sent)
	})
}

func TestCheckDueDates_SendFailureKeepsThrottleOpen(t *testing.T) {
	sm, sender, store, clock := newTestManager(t, mathSyllabus())
	_, err := sm.Progress.Select("Math")
	require.NoError(t, err)

	sender.err = errors.New("telegram down")
	clock.Set(t0.Add(9 * day))
	_, err = sm.Notification.CheckDueDates()
	require.Error(t, err)

	progress, err := store.LoadProgress()
	require.NoError(t, err)
	assert.Nil(t, progress.GlobalSettings.LastReminder)

	sender.err = nil
	reminder, err := sm.Notification.CheckDueDates()
	require.NoError(t, err)
	require.NotNil(t, reminder)
	assert.Equal(t, UrgencyOverdue, reminder.Urgency)
}

func TestReminderMessage_EscapesHTML(t *testing.T) {
	msg := reminderMessage("C++ <basics>", "Read & summarise", 0, UrgencyDueToday)
	assert.Contains(t, msg, "C++ &lt;basics&gt;")
	assert.Contains(t, msg, "Read &amp; summarise")
}
