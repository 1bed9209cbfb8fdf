package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	telegram "github.com/go-telegram/bot"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/vvolodin/tg-care-reminder/pkg/bot"
	"github.com/vvolodin/tg-care-reminder/pkg/bot/handlers"
	"github.com/vvolodin/tg-care-reminder/pkg/bot/reminders"
	"github.com/vvolodin/tg-care-reminder/pkg/config"
	"github.com/vvolodin/tg-care-reminder/pkg/db"
	"github.com/vvolodin/tg-care-reminder/pkg/logger"
	"github.com/vvolodin/tg-care-reminder/pkg/reminder"
	"github.com/vvolodin/tg-care-reminder/pkg/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	if err := config.LoadConfig(configPath); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		config.AppConfig.Telegram.Token = token
	}

	if err := logger.Configure(logger.Options{
		Level: config.AppConfig.Logging.Level,
		File:  config.AppConfig.Logging.File,
	}); err != nil {
		logger.Error("failed to configure logger", "error", err)
	}

	gdb, err := db.Open(config.AppConfig.Database, config.AppConfig.Logging.GormLevel)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	b, err := telegram.New(config.AppConfig.Telegram.Token)
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	catalog := reminder.NewCatalog(gdb)
	ledger := reminder.NewLedger(gdb)
	stats := reminder.NewStats(gdb)
	coord := reminder.NewCoordinator(catalog, ledger, stats, bot.NewNotifier(b))

	h := handlers.New(coord, ledger, catalog)
	b.RegisterHandler(telegram.HandlerTypeCallbackQueryData, ui.CallbackPrefix, telegram.MatchTypePrefix, h.HandleReminderCallback)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 1m", func() {
		reminders.RunCheck(ctx, coord, catalog, time.Now().UTC())
	}); err != nil {
		logger.Error("failed to schedule reminder checks", "error", err)
		os.Exit(1)
	}
	if _, err := scheduler.AddFunc("@every 1h", func() {
		db.RunEventCleanup(gdb, config.AppConfig.Reminders.EventRetentionDays, time.Now().UTC())
	}); err != nil {
		logger.Error("failed to schedule event cleanup", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	logger.Info("Starting bot...")
	b.Start(ctx)
}
