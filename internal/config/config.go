package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
)

const (
	StoreSQLite = "sqlite"
	StoreJSON   = "json"
)

type Config struct {
	Telegram struct {
		Token  string `env:"TG_TOKEN"`
		ChatID int64  `env:"TG_CHAT_ID"`
	}
	Store struct {
		Driver       string `env:"STORE_DRIVER" envDefault:"sqlite"`
		DBPath       string `env:"DB_PATH" envDefault:"syllabus-tracker.db"`
		CatalogPath  string `env:"CATALOG_PATH" envDefault:"syllabi.json"`
		ProgressPath string `env:"PROGRESS_PATH" envDefault:"progress.json"`
	}
	Reminders struct {
		Schedule string `env:"REMINDER_SCHEDULE" envDefault:"0 10 * * *"`
		Timezone string `env:"TZ_NAME" envDefault:"Local"`
		OnStart  bool   `env:"REMIND_ON_START" envDefault:"false"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.Store.Driver {
	case StoreSQLite, StoreJSON:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}

	log.Printf("✅ Configuration loaded: store=%s, schedule=%q", cfg.Store.Driver, cfg.Reminders.Schedule)
	return cfg, nil
}

// RequireTelegram reports missing chat settings for commands that talk to
// Telegram.
func (c *Config) RequireTelegram() error {
	if c.Telegram.Token == "" {
		return errors.New("TG_TOKEN is not set")
	}
	if c.Telegram.ChatID == 0 {
		return errors.New("TG_CHAT_ID is not set")
	}
	return nil
}
