package app

import (
	"context"
	"fmt"
	"log"

	"syllabus-tracker/internal/config"
	"syllabus-tracker/internal/database"
	"syllabus-tracker/internal/services"
	"syllabus-tracker/internal/telegram"
	"syllabus-tracker/internal/utils"

	"github.com/robfig/cron/v3"
)

// Store is a document store the application owns and closes.
type Store interface {
	services.DocumentStore
	Close() error
}

// OpenStore opens the store selected by STORE_DRIVER.
func OpenStore(cfg *config.Config) (Store, error) {
	switch cfg.Store.Driver {
	case config.StoreJSON:
		log.Printf("✅ Using JSON files: %s, %s", cfg.Store.CatalogPath, cfg.Store.ProgressPath)
		return database.NewFileStore(cfg.Store.CatalogPath, cfg.Store.ProgressPath), nil
	default:
		db, err := database.New(cfg.Store.DBPath)
		if err != nil {
			return nil, err
		}
		return database.NewRepository(db), nil
	}
}

type Application struct {
	config     *config.Config
	store      Store
	bot        *telegram.Bot
	services   *services.ServiceManager
	cron       *cron.Cron
	cancelFunc context.CancelFunc
	ctx        context.Context
}

func New(cfg *config.Config) (*Application, error) {
	if err := cfg.RequireTelegram(); err != nil {
		return nil, err
	}

	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	serviceManager := services.NewServiceManager(store)
	bot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID, serviceManager)
	if err != nil {
		store.Close()
		return nil, err
	}

	serviceManager.SetNotificationSender(bot, cfg.Telegram.ChatID)
	ctx, cancel := context.WithCancel(context.Background())

	app := &Application{
		config:   cfg,
		store:    store,
		bot:      bot,
		services: serviceManager,
		cron: cron.New(
			cron.WithLocation(utils.LoadLocation(cfg.Reminders.Timezone)),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		cancelFunc: cancel,
		ctx:        ctx,
	}

	if err := app.setupCronJobs(); err != nil {
		cancel()
		store.Close()
		return nil, err
	}

	return app, nil
}

func (a *Application) Start() error {
	log.Println("🚀 Starting application...")

	go a.bot.Start(a.ctx)
	a.cron.Start()

	if a.config.Reminders.OnStart {
		a.services.Notification.CheckAndSendNotifications()
	}

	log.Printf("✅ Application started. Bot: @%s", a.bot.GetUsername())
	return nil
}

func (a *Application) Stop() error {
	log.Println("🛑 Stopping application...")

	a.cancelFunc()
	<-a.cron.Stop().Done()

	if err := a.store.Close(); err != nil {
		log.Printf("⚠️ Store close failed: %v", err)
	}

	log.Println("✅ Application stopped")
	return nil
}

// CheckReminders runs one due date scan outside the schedule.
func (a *Application) CheckReminders() (*services.Reminder, error) {
	return a.services.Notification.CheckDueDates()
}

func (a *Application) setupCronJobs() error {
	// Daily due date check
	_, err := a.cron.AddFunc(a.config.Reminders.Schedule, func() {
		a.services.Notification.CheckAndSendNotifications()
	})
	if err != nil {
		return fmt.Errorf("schedule reminders %q: %w", a.config.Reminders.Schedule, err)
	}
	return nil
}
