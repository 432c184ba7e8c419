package utils

// Helpers for syllabus status labels in menus and listings.
func SyllabusStatusLabel(paused bool) string {
	if paused {
		return "(Paused ⏸️)"
	}
	return "(Active ▶️)"
}

func UrgencyEmoji(urgency string) string {
	switch urgency {
	case "due_today":
		return "⏰"
	case "due_tomorrow":
		return "📅"
	case "overdue":
		return "⚠️"
	default:
		return "📌"
	}
}
