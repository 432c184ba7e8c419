package telegram

import (
	"errors"
	"fmt"
	"html"
	"log"
	"strings"

	"syllabus-tracker/internal/database"
	"syllabus-tracker/internal/services"
	"syllabus-tracker/internal/utils"
)

const helpText = `Here are the available commands: 📋

<b>Basic Commands</b>
/start - Select a syllabus to begin or resume 🌱
/help - Show this help message ℹ️
/current - Show your current task ⏰
/check - Check off your current task as completed ✅

<b>Syllabus Management</b>
/show_all_syllabi - List all available syllabi 📚
/switch_syllabus - Switch to another syllabus 🔄
/pause_syllabus - Pause tracking for a syllabus ⏸️
/resume_syllabus - Resume tracking for a syllabus ▶️

<b>Progress &amp; Timing</b>
/completed - Show all completed tasks ✅
/statistics - View your progress statistics 📊
/set_interval &lt;days&gt; - Change how many days per task ⏱️
/reset - Start over from the beginning 🔄

<b>Reminder Settings</b>
/toggle_reminders - Turn reminders on/off 🔔`

const noSyllabiText = "No syllabi available. Add some to the catalog first. 🚧"

// errorMessages maps engine failures to user-facing text. The first match
// in order wins.
var errorMessages = []struct {
	err  error
	text string
}{
	{services.ErrNoProgress, "No progress found to reset. Use /start to begin."},
	{services.ErrNotFound, "Syllabus not found. 🚧"},
	{services.ErrPaused, "That syllabus is paused. Resume it with /resume_syllabus. 🚧"},
	{services.ErrNoActiveSyllabus, "No active syllabus or it's paused. Use /start or /resume_syllabus. 🚧"},
	{services.ErrSyllabusCompleted, "🎓 This syllabus is complete! Use /show_all_syllabi to choose another one."},
	{services.ErrInvalidArgument, fmt.Sprintf("Please use a number of days between 1 and %d.", database.MaxReminderInterval)},
	{services.ErrStorageUnavailable, "⚠️ There was an error reading the data file. The format might be corrupted. Contact the administrator for help."},
	{services.ErrIndexOutOfRange, "⚠️ Task index out of range. Use /start to select a syllabus again."},
}

func errorText(err error) string {
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			return m.text
		}
	}
	log.Printf("❌ Unexpected error: %v", err)
	return "⚠️ An unexpected error occurred. Please try again later or contact the administrator."
}

func esc(s string) string {
	return html.EscapeString(s)
}

func dueText(v *services.TaskView) string {
	if !v.HasDueDate {
		return "Due date unknown"
	}
	return utils.DueStatus(v.DaysRemaining)
}

func renderSelected(v *services.TaskView) string {
	if v.Finished {
		return fmt.Sprintf(
			"Switched to '%s' syllabus! 🌱\n\n"+
				"🎓 Every task is already completed. Use /reset to start over.",
			esc(v.Syllabus),
		)
	}

	status := "Continuing with"
	if v.Fresh {
		status = "Starting with"
	}
	return fmt.Sprintf(
		"Switched to '%s' syllabus! 🌱\n\n"+
			"%s:\n\n"+
			"%s\n\n"+
			"%s. Use /check when completed! 🚀",
		esc(v.Syllabus), status, esc(v.Task), dueText(v),
	)
}

func renderCurrent(v *services.TaskView) string {
	if v.Finished {
		return fmt.Sprintf(
			"🎉 You've completed the entire '%s' syllabus! 🎓\n\n"+
				"Use /show_all_syllabi to choose another syllabus to work on.",
			esc(v.Syllabus),
		)
	}
	return fmt.Sprintf(
		"Current task (%s, week %d/%d): 🌟\n\n"+
			"%s\n\n"+
			"(%s)",
		esc(v.Syllabus), v.Week, v.Total, esc(v.Task), dueText(v),
	)
}

func renderCheck(v *services.TaskView) string {
	return fmt.Sprintf(
		"Have you completed this task from %s:\n\n"+
			"%s\n\n"+
			"%s\n\n"+
			"Click a button: ⬇️",
		esc(v.Syllabus), esc(v.Task), dueText(v),
	)
}

func renderCompletion(r *services.CompletionResult) string {
	if r.Next == nil {
		return fmt.Sprintf(
			"🎉 Congratulations! You've completed the entire '%s' syllabus! 🎓\n\n"+
				"Use /show_all_syllabi to choose another syllabus to work on.",
			esc(r.Syllabus),
		)
	}
	return fmt.Sprintf(
		"Great job! 🎉 You've completed:\n\n"+
			"%s\n\n"+
			"Now, move on to:\n\n"+
			"%s\n\n"+
			"Due in %d days. ⏳",
		esc(r.CompletedTask), esc(r.Next.Task), r.IntervalDays,
	)
}

func renderDefer(r *services.DeferResult) string {
	if !r.Extended {
		return fmt.Sprintf(
			"No worries! 🚧 Keep working on:\n\n"+
				"%s\n\n"+
				"Use /check again when ready. ⏳",
			esc(r.Current.Task),
		)
	}
	return fmt.Sprintf(
		"No worries! 🚧 Keep working on:\n\n"+
			"%s\n\n"+
			"Due date extended by %d days (now due in %d days).\n"+
			"Use /check again when ready. ⏳",
		esc(r.Current.Task), r.ExtensionDays, r.Current.DaysRemaining,
	)
}

func renderReset(v *services.TaskView) string {
	if v.Finished {
		return fmt.Sprintf("Progress reset for %s, but it has no tasks. 🚧", esc(v.Syllabus))
	}
	return fmt.Sprintf(
		"Progress reset! 🌱 Starting fresh with %s:\n\n"+
			"%s\n\n"+
			"%s. Use /check when completed! 🚀",
		esc(v.Syllabus), esc(v.Task), dueText(v),
	)
}

func renderCompletedList(l *services.CompletedList) string {
	if len(l.Tasks) == 0 {
		return "No tasks completed yet. 🚧 Keep going!"
	}

	var message strings.Builder
	message.WriteString(fmt.Sprintf("Completed tasks (%s): 🎉\n\n", esc(l.Syllabus)))
	for _, t := range l.Tasks {
		message.WriteString("✅ " + esc(t.Task))
		if t.CompletedAt != nil {
			message.WriteString(fmt.Sprintf(" (completed on %s)", utils.FormatDate(*t.CompletedAt)))
		}
		message.WriteString("\n")
	}
	return message.String()
}

func renderDetails(d *services.SyllabusDetails) string {
	var message strings.Builder
	message.WriteString(fmt.Sprintf("Syllabus: %s %s\n", esc(d.Name), utils.SyllabusStatusLabel(d.Paused)))
	message.WriteString(fmt.Sprintf("Total weeks: %d\n", len(d.Tasks)))

	if d.HasProgress {
		current := fmt.Sprintf("%d", d.CurrentWeek)
		if d.Finished {
			current = "Completed"
		}
		message.WriteString(fmt.Sprintf("Completed: %d/%d tasks\nCurrent week: %s\n", d.Completed, len(d.Tasks), current))
	}

	message.WriteString("\nTasks:\n")
	for i, task := range d.Tasks {
		message.WriteString(fmt.Sprintf("%d. %s\n", i+1, esc(task)))
	}
	message.WriteString("\nUse /start to select or /switch_syllabus to switch! 🚀")
	return message.String()
}

func renderStatistics(s *services.Statistics) string {
	var message strings.Builder
	message.WriteString(fmt.Sprintf("📊 <b>Statistics for %s</b>\n\n", esc(s.Syllabus)))
	message.WriteString(fmt.Sprintf("✅ Tasks completed: %d/%d (%.1f%%)\n", s.Completed, s.Total, s.Percent))
	message.WriteString(fmt.Sprintf("📈 Current progress: Task %d/%d\n", s.CurrentWeek, s.Total))
	message.WriteString(fmt.Sprintf("📆 Days since started: %d\n", s.DaysActive))

	if s.HasDueDate {
		status := "remaining"
		days := s.DaysRemaining
		if days < 0 {
			status = "overdue"
			days = -days
		}
		message.WriteString(fmt.Sprintf("⏱️ Current task: %d days %s\n", days, status))
	}
	if s.RemainingTasks > 0 {
		message.WriteString(fmt.Sprintf("🔜 Tasks remaining: %d\n", s.RemainingTasks))
	}
	if s.Estimate.Available {
		message.WriteString(fmt.Sprintf(
			"🗓️ Estimated completion: %s (in %d days)\n",
			utils.FormatDate(s.Estimate.Date), s.Estimate.DaysLeft,
		))
	}
	return message.String()
}

func renderReminders(enabled bool) string {
	if enabled {
		return "Reminders are now enabled ✅"
	}
	return "Reminders are now disabled ⏸️"
}
