package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-reminder-bot/pkg/bot/handlers"
	"github.com/smith3v/tg-reminder-bot/pkg/bot/reminders"
	"github.com/smith3v/tg-reminder-bot/pkg/bot/telegram"
	"github.com/smith3v/tg-reminder-bot/pkg/config"
	"github.com/smith3v/tg-reminder-bot/pkg/db"
	"github.com/smith3v/tg-reminder-bot/pkg/health"
	"github.com/smith3v/tg-reminder-bot/pkg/logger"
	"github.com/smith3v/tg-reminder-bot/pkg/paginate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

func main() {
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:           "tg-reminder-bot",
		Short:         "Telegram reminder bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return readConfig(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v)
		},
	}
	setupFlags(rootCmd, v)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("bot exited with error", "error", err)
		logger.Sync()
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to configuration file (default ./config.json when present)")
	flags.String("log-level", v.GetString("logging.level"), "Log level (debug, info, warn, error)")
	flags.String("database-driver", v.GetString("database.driver"), "Database driver (postgres, sqlite)")
	flags.String("database-path", v.GetString("database.path"), "SQLite database path")
	flags.String("health-address", v.GetString("health.address"), "Listen address for health probes, empty to disable")

	bindFlag(cmd, v, "logging.level", "log-level")
	bindFlag(cmd, v, "database.driver", "database-driver")
	bindFlag(cmd, v, "database.path", "database-path")
	bindFlag(cmd, v, "health.address", "health-address")
}

func bindFlag(cmd *cobra.Command, v *viper.Viper, key, flag string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func readConfig(v *viper.Viper) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		return v.ReadInConfig()
	}
	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

func run(ctx context.Context, v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if err := logger.Configure(logger.Options{
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
	}); err != nil {
		logger.Error("failed to configure logger", "error", err)
	}
	defer logger.Sync()

	gdb, err := db.Open(cfg.Database, cfg.Logging.GormLevel)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	store := db.NewReminderStore(gdb)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var h *handlers.Handlers
	b, err := bot.New(cfg.Telegram.Token, bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
		h.DefaultHandler(ctx, b, update)
	}))
	if err != nil {
		return err
	}

	var username string
	if me, err := b.GetMe(ctx); err != nil {
		logger.Warn("failed to fetch bot identity", "error", err)
	} else {
		username = me.Username
	}

	h = handlers.New(handlers.Deps{
		Store:       store,
		Registry:    paginate.NewRegistry(),
		Config:      cfg.Reminders,
		BotUsername: username,
	})
	h.Register(b)

	scheduler := reminders.NewScheduler(store, telegram.NewNotifier(b, cfg.Reminders.LinkEmoji), cfg.Reminders.Interval)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go store.StartDeliveryLogCleanup(ctx, db.DeliveryLogCleanupInterval, cfg.Reminders.LogRetention)

	if cfg.Health.Address != "" {
		gin.SetMode(gin.ReleaseMode)
		router := health.NewRouter(health.Dependencies{
			Database:  store,
			Scheduler: scheduler,
			Started:   time.Now(),
		})
		go func() {
			if err := health.Serve(ctx, cfg.Health.Address, router); err != nil {
				logger.Error("health server stopped", "error", err)
			}
		}()
	}

	logger.Info("Starting bot...", "username", username, "interval", cfg.Reminders.Interval)
	b.Start(ctx)
	return nil
}
