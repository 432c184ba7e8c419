package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	"syllabus-tracker/internal/services"
	"syllabus-tracker/internal/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// botAPI is the part of tgbotapi.BotAPI the bot uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type Bot struct {
	bot       botAPI
	username  string
	chatID    int64
	services  *services.ServiceManager
	handlers  map[string]func(*tgbotapi.Message)
	callbacks map[string]func(*tgbotapi.CallbackQuery, string)
}

func NewBot(token string, chatID int64, serviceManager *services.ServiceManager) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	bot := newBot(botAPI, chatID, serviceManager)
	bot.username = botAPI.Self.UserName
	log.Printf("🤖 Bot initialized: %s", bot.username)
	return bot, nil
}

func newBot(api botAPI, chatID int64, serviceManager *services.ServiceManager) *Bot {
	bot := &Bot{
		bot:       api,
		chatID:    chatID,
		services:  serviceManager,
		handlers:  make(map[string]func(*tgbotapi.Message)),
		callbacks: make(map[string]func(*tgbotapi.CallbackQuery, string)),
	}
	bot.registerHandlers()
	return bot
}

func (b *Bot) registerHandlers() {
	b.handlers["/start"] = b.handleStart
	b.handlers["/help"] = b.handleHelp
	b.handlers["/current"] = b.handleCurrent
	b.handlers["/check"] = b.handleCheck
	b.handlers["/completed"] = b.handleCompleted
	b.handlers["/show_all_syllabi"] = b.handleShowAll
	b.handlers["/switch_syllabus"] = b.handleSwitch
	b.handlers["/pause_syllabus"] = b.handlePause
	b.handlers["/resume_syllabus"] = b.handleResume
	b.handlers["/statistics"] = b.handleStatistics
	b.handlers["/set_interval"] = b.handleSetInterval
	b.handlers["/reset"] = b.handleReset
	b.handlers["/toggle_reminders"] = b.handleToggleReminders

	// prefixed callbacks carry a syllabus name after the underscore
	b.callbacks["start_"] = b.handleStartCallback
	b.callbacks["show_"] = b.handleShowCallback
	b.callbacks["switch_"] = b.handleSwitchCallback
	b.callbacks["pause_"] = b.handlePauseCallback
	b.callbacks["resume_"] = b.handleResumeCallback
}

func (b *Bot) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.bot.Send(msg)
	return err
}

func (b *Bot) SendMessageOrLogError(text string) {
	if err := b.SendMessage(text); err != nil {
		log.Printf("❌ Send message failed: %v", err)
	}
}

func (b *Bot) sendWithKeyboard(text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard
	if _, err := b.bot.Send(msg); err != nil {
		log.Printf("❌ Send message failed: %v", err)
	}
}

// editMessage replaces the text of the message a button was pressed on.
func (b *Bot) editMessage(messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(b.chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.bot.Send(edit); err != nil {
		log.Printf("❌ Edit message %d failed: %v", messageID, err)
	}
}

// Notify implements services.NotificationSender.
func (b *Bot) Notify(destination int64, message string, urgency services.Urgency) error {
	msg := tgbotapi.NewMessage(destination, message)
	msg.ParseMode = tgbotapi.ModeHTML
	if urgency == services.UrgencyDueToday || urgency == services.UrgencyDueTomorrow {
		msg.ReplyMarkup = checkKeyboard()
	}
	_, err := b.bot.Send(msg)
	return err
}

func checkKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes ✅", "yes"),
			tgbotapi.NewInlineKeyboardButtonData("No 🚫", "no"),
		),
	)
}

func resetKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes, reset ✅", "reset_yes"),
			tgbotapi.NewInlineKeyboardButtonData("No, cancel 🚫", "reset_no"),
		),
	)
}

// syllabusKeyboard lists every syllabus as a button whose callback data is
// prefix followed by the syllabus name.
func syllabusKeyboard(prefix string, syllabi []services.SyllabusSummary) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, s := range syllabi {
		label := fmt.Sprintf("%s %s", s.Name, utils.SyllabusStatusLabel(s.Paused))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, prefix+s.Name),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) GetUsername() string {
	return b.username
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallbackQuery(update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	if update.Message.Chat.ID != b.chatID {
		log.Printf("⛔ Ignoring message from chat %d", update.Message.Chat.ID)
		return
	}

	b.handleMessage(update.Message)
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if !msg.IsCommand() {
		b.SendMessageOrLogError(fmt.Sprintf("You said: %s 🎤\n\nUse /help to see available commands.", esc(text)))
		return
	}

	if handler, exists := b.handlers["/"+msg.Command()]; exists {
		handler(msg)
		return
	}
	b.SendMessageOrLogError("❌ Unknown command. Use /help")
}

func (b *Bot) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	defer func() {
		if _, err := b.bot.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
			log.Printf("⚠️ Callback answer failed: %v", err)
		}
	}()

	if callback.Message == nil || callback.Message.Chat.ID != b.chatID {
		return
	}

	data := callback.Data
	log.Printf("Received callback: %s", data)

	switch data {
	case "yes":
		b.handleYes(callback)
		return
	case "no":
		b.handleNo(callback)
		return
	case "reset_yes":
		b.handleResetYes(callback)
		return
	case "reset_no":
		b.editMessage(callback.Message.MessageID, "Reset cancelled! 🚫 Continue with your current progress.")
		return
	}

	for prefix, handler := range b.callbacks {
		if strings.HasPrefix(data, prefix) {
			handler(callback, strings.TrimPrefix(data, prefix))
			return
		}
	}
	log.Printf("⚠️ Unknown callback: %s", data)
}
