package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syllabus-tracker/internal/database"
	"syllabus-tracker/internal/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const testChatID int64 = 42

var testNow = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	edits    []tgbotapi.EditMessageTextConfig
	answered []string
	updates  chan tgbotapi.Update
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 10)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		f.sent = append(f.sent, m)
	case tgbotapi.EditMessageTextConfig:
		f.edits = append(f.edits, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		f.answered = append(f.answered, cb.CallbackQueryID)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) sentSnapshot() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

func (f *fakeAPI) lastSent(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func (f *fakeAPI) lastEdit(t *testing.T) tgbotapi.EditMessageTextConfig {
	t.Helper()
	require.NotEmpty(t, f.edits)
	return f.edits[len(f.edits)-1]
}

func newTestBot(t *testing.T) (*Bot, *fakeAPI, *database.MemoryStore) {
	t.Helper()
	store := database.NewMemoryStore()
	catalog := database.NewCatalog()
	catalog.Syllabi["Math"] = &database.Syllabus{Tasks: []string{"Algebra", "Geometry"}}
	catalog.Syllabi["Art"] = &database.Syllabus{Tasks: []string{"Sketching"}, Paused: true}
	require.NoError(t, store.SaveCatalog(catalog))

	sm := services.NewServiceManager(store)
	api := newFakeAPI()
	bot := newBot(api, testChatID, sm)
	sm.SetNotificationSender(bot, testChatID)
	sm.SetClock(func() time.Time { return testNow })
	return bot, api, store
}

func command(chatID int64, text string) tgbotapi.Update {
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}}
}

func callback(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-" + data,
		Data: data,
		Message: &tgbotapi.Message{
			MessageID: 7,
			Chat:      &tgbotapi.Chat{ID: testChatID},
		},
	}}
}

func callbackData(t *testing.T, markup interface{}) []string {
	t.Helper()
	keyboard, ok := markup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok, "expected inline keyboard, got %T", markup)
	var data []string
	for _, row := range keyboard.InlineKeyboard {
		for _, button := range row {
			require.NotNil(t, button.CallbackData)
			data = append(data, *button.CallbackData)
		}
	}
	return data
}

func TestBot_IgnoresOtherChats(t *testing.T) {
	bot, api, _ := newTestBot(t)

	bot.handleUpdate(command(99, "/help"))
	assert.Empty(t, api.sent)

	bot.handleUpdate(command(testChatID, "/help"))
	assert.Equal(t, helpText, api.lastSent(t).Text)
	assert.Equal(t, tgbotapi.ModeHTML, api.lastSent(t).ParseMode)
}

func TestBot_EchoesPlainText(t *testing.T) {
	bot, api, _ := newTestBot(t)

	bot.handleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "hello <there>",
		Chat: &tgbotapi.Chat{ID: testChatID},
	}})
	assert.Contains(t, api.lastSent(t).Text, "hello &lt;there&gt;")
}

func TestBot_UnknownCommand(t *testing.T) {
	bot, api, _ := newTestBot(t)

	bot.handleUpdate(command(testChatID, "/frobnicate"))
	assert.Contains(t, api.lastSent(t).Text, "Unknown command")
}

func TestBot_StartListsSyllabi(t *testing.T) {
	bot, api, _ := newTestBot(t)

	bot.handleUpdate(command(testChatID, "/start"))
	msg := api.lastSent(t)
	assert.Equal(t, []string{"start_Art", "start_Math"}, callbackData(t, msg.ReplyMarkup))
}

func TestBot_SelectCompleteAndDefer(t *testing.T) {
	bot, api, store := newTestBot(t)

	bot.handleUpdate(callback("start_Math"))
	edit := api.lastEdit(t)
	assert.Equal(t, 7, edit.MessageID)
	assert.Contains(t, edit.Text, "Switched to 'Math' syllabus!")
	assert.Contains(t, edit.Text, "Algebra")
	assert.Equal(t, []string{"cb-start_Math"}, api.answered)

	bot.handleUpdate(command(testChatID, "/check"))
	assert.Equal(t, []string{"yes", "no"}, callbackData(t, api.lastSent(t).ReplyMarkup))

	bot.handleUpdate(callback("yes"))
	edit = api.lastEdit(t)
	assert.Contains(t, edit.Text, "Algebra")
	assert.Contains(t, edit.Text, "Geometry")

	progress, err := store.LoadProgress()
	require.NoError(t, err)
	assert.Equal(t, 2, progress.SyllabiProgress["Math"].CurrentWeek)

	bot.handleUpdate(callback("no"))
	assert.Contains(t, api.lastEdit(t).Text, "Keep working on:\n\nGeometry")
}

func TestBot_PausedSyllabusCannotBeSelected(t *testing.T) {
	bot, api, _ := newTestBot(t)

	bot.handleUpdate(callback("start_Art"))
	assert.Equal(t, errorText(services.ErrPaused), api.lastEdit(t).Text)
}

func TestBot_ResetFlow(t *testing.T) {
	bot, api, _ := newTestBot(t)

	bot.handleUpdate(command(testChatID, "/reset"))
	assert.Equal(t, errorText(services.ErrNoActiveSyllabus), api.lastSent(t).Text)

	bot.handleUpdate(callback("start_Math"))
	bot.handleUpdate(callback("yes"))

	bot.handleUpdate(command(testChatID, "/reset"))
	assert.Equal(t, []string{"reset_yes", "reset_no"}, callbackData(t, api.lastSent(t).ReplyMarkup))

	bot.handleUpdate(callback("reset_yes"))
	assert.Contains(t, api.lastEdit(t).Text, "Starting fresh with Math")
	assert.Contains(t, api.lastEdit(t).Text, "Algebra")
}

func TestBot_SetInterval(t *testing.T) {
	bot, api, store := newTestBot(t)

	bot.handleUpdate(command(testChatID, "/set_interval"))
	assert.Contains(t, api.lastSent(t).Text, "Please specify")

	bot.handleUpdate(command(testChatID, "/set_interval abc"))
	assert.Equal(t, "Please enter a valid number.", api.lastSent(t).Text)

	bot.handleUpdate(command(testChatID, "/set_interval 0"))
	assert.Equal(t, errorText(services.ErrInvalidArgument), api.lastSent(t).Text)

	bot.handleUpdate(command(testChatID, "/set_interval 10"))
	assert.Equal(t, "Task interval set to 10 days! ⏱️", api.lastSent(t).Text)

	progress, err := store.LoadProgress()
	require.NoError(t, err)
	assert.Equal(t, 10, progress.GlobalSettings.ReminderInterval)
}

func TestBot_Notify(t *testing.T) {
	bot, api, _ := newTestBot(t)

	require.NoError(t, bot.Notify(testChatID, "due", services.UrgencyDueToday))
	assert.Equal(t, []string{"yes", "no"}, callbackData(t, api.lastSent(t).ReplyMarkup))

	require.NoError(t, bot.Notify(testChatID, "late", services.UrgencyOverdue))
	assert.Nil(t, api.lastSent(t).ReplyMarkup)
	assert.Equal(t, testChatID, api.lastSent(t).ChatID)
}

func TestBot_StartStopsOnCancel(t *testing.T) {
	bot, api, _ := newTestBot(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		bot.Start(ctx)
		close(done)
	}()

	api.updates <- command(testChatID, "/help")
	require.Eventually(t, func() bool { return len(api.sentSnapshot()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bot did not stop after cancel")
	}
}
