package telegram

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handlers.go - command and button handlers

func (b *Bot) handleHelp(msg *tgbotapi.Message) {
	b.SendMessageOrLogError(helpText)
}

func (b *Bot) sendSyllabusMenu(prefix, prompt string) {
	syllabi, err := b.services.Progress.List()
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	if len(syllabi) == 0 {
		b.SendMessageOrLogError(noSyllabiText)
		return
	}
	b.sendWithKeyboard(prompt, syllabusKeyboard(prefix, syllabi))
}

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	b.sendSyllabusMenu("start_", "Select a syllabus to start or resume: 📚🎉")
}

func (b *Bot) handleShowAll(msg *tgbotapi.Message) {
	b.sendSyllabusMenu("show_", "Select a syllabus to view details: 📚")
}

func (b *Bot) handleSwitch(msg *tgbotapi.Message) {
	b.sendSyllabusMenu("switch_", "Select a syllabus to switch to: 🔄")
}

func (b *Bot) handlePause(msg *tgbotapi.Message) {
	b.sendSyllabusMenu("pause_", "Select a syllabus to pause: ⏸️")
}

func (b *Bot) handleResume(msg *tgbotapi.Message) {
	b.sendSyllabusMenu("resume_", "Select a syllabus to resume: ▶️")
}

func (b *Bot) handleCurrent(msg *tgbotapi.Message) {
	view, err := b.services.Progress.Current()
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError(renderCurrent(view))
}

func (b *Bot) handleCheck(msg *tgbotapi.Message) {
	view, err := b.services.Progress.Check()
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.sendWithKeyboard(renderCheck(view), checkKeyboard())
}

func (b *Bot) handleCompleted(msg *tgbotapi.Message) {
	list, err := b.services.Progress.CompletedTasks()
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError(renderCompletedList(list))
}

func (b *Bot) handleStatistics(msg *tgbotapi.Message) {
	stats, err := b.services.Progress.Statistics("")
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError(renderStatistics(stats))
}

func (b *Bot) handleSetInterval(msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		b.SendMessageOrLogError("Please specify the number of days for each task. Example:\n/set_interval 10")
		return
	}

	days, err := strconv.Atoi(args[0])
	if err != nil {
		b.SendMessageOrLogError("Please enter a valid number.")
		return
	}
	if err := b.services.Progress.SetInterval(days); err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError(fmt.Sprintf("Task interval set to %d days! ⏱️", days))
}

func (b *Bot) handleReset(msg *tgbotapi.Message) {
	if _, err := b.services.Progress.Current(); err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.sendWithKeyboard(
		"Are you sure you want to reset? 🔄 This will erase all progress for the current syllabus!\n\nClick a button: ⬇️",
		resetKeyboard(),
	)
}

func (b *Bot) handleToggleReminders(msg *tgbotapi.Message) {
	enabled, err := b.services.Progress.ToggleReminders()
	if err != nil {
		b.SendMessageOrLogError(errorText(err))
		return
	}
	b.SendMessageOrLogError(renderReminders(enabled))
}

func (b *Bot) handleStartCallback(callback *tgbotapi.CallbackQuery, name string) {
	view, err := b.services.Progress.Select(name)
	if err != nil {
		b.editMessage(callback.Message.MessageID, errorText(err))
		return
	}
	b.editMessage(callback.Message.MessageID, renderSelected(view))
}

func (b *Bot) handleSwitchCallback(callback *tgbotapi.CallbackQuery, name string) {
	view, err := b.services.Progress.Switch(name)
	if err != nil {
		b.editMessage(callback.Message.MessageID, errorText(err))
		return
	}
	b.editMessage(callback.Message.MessageID, renderSelected(view))
}

func (b *Bot) handleShowCallback(callback *tgbotapi.CallbackQuery, name string) {
	details, err := b.services.Progress.Describe(name)
	if err != nil {
		b.editMessage(callback.Message.MessageID, errorText(err))
		return
	}
	b.editMessage(callback.Message.MessageID, renderDetails(details))
}

func (b *Bot) handlePauseCallback(callback *tgbotapi.CallbackQuery, name string) {
	if err := b.services.Progress.Pause(name); err != nil {
		b.editMessage(callback.Message.MessageID, errorText(err))
		return
	}
	log.Printf("⏸️ Paused %q", name)
	b.editMessage(callback.Message.MessageID, fmt.Sprintf(
		"Tracking for '%s' paused! ⏸️🎉 Use /resume_syllabus to continue.", esc(name)))
}

func (b *Bot) handleResumeCallback(callback *tgbotapi.CallbackQuery, name string) {
	if err := b.services.Progress.Resume(name); err != nil {
		b.editMessage(callback.Message.MessageID, errorText(err))
		return
	}
	log.Printf("▶️ Resumed %q", name)
	b.editMessage(callback.Message.MessageID, fmt.Sprintf(
		"Tracking for '%s' resumed! ▶️🎉 Use /start to select it.", esc(name)))
}

func (b *Bot) handleYes(callback *tgbotapi.CallbackQuery) {
	result, err := b.services.Progress.CompleteCurrent()
	if err != nil {
		b.editMessage(callback.Message.MessageID, errorText(err))
		return
	}
	b.editMessage(callback.Message.MessageID, renderCompletion(result))
}

func (b *Bot) handleNo(callback *tgbotapi.CallbackQuery) {
	result, err := b.services.Progress.DeferCurrent()
	if err != nil {
		b.editMessage(callback.Message.MessageID, errorText(err))
		return
	}
	b.editMessage(callback.Message.MessageID, renderDefer(result))
}

func (b *Bot) handleResetYes(callback *tgbotapi.CallbackQuery) {
	view, err := b.services.Progress.Reset("")
	if err != nil {
		b.editMessage(callback.Message.MessageID, errorText(err))
		return
	}
	b.editMessage(callback.Message.MessageID, renderReset(view))
}
