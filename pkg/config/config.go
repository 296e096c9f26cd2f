package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix = "REMINDER"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultDriver        = DriverPostgres
	defaultSQLitePath    = "reminders.db"
	defaultPort          = 5432
	defaultSSLMode       = "disable"
	defaultLogLevel      = "info"
	defaultGormLevel     = "warn"
	defaultInterval      = 10 * time.Second
	defaultLinkEmoji     = "🔗"
	defaultListTimeout   = 30 * time.Second
	defaultLogRetention  = 30 * 24 * time.Hour
	defaultHealthAddress = ""

	minInterval = time.Second
)

var (
	ErrMissingToken  = errors.New("telegram.token is required")
	ErrUnknownDriver = errors.New("unknown database driver")
)

type Config struct {
	Database  DatabaseConfig
	Telegram  TelegramConfig
	Logging   LoggingConfig
	Reminders RemindersConfig
	Health    HealthConfig
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	User     string
	Password string
	DBName   string
	Port     int
	SSLMode  string
	Path     string // sqlite only
}

type TelegramConfig struct {
	Token string
}

type LoggingConfig struct {
	Level     string
	File      string
	GormLevel string
}

type RemindersConfig struct {
	Interval     time.Duration
	LinkEmoji    string
	ListTimeout  time.Duration
	LogRetention time.Duration // how long delivery log rows are kept
}

type HealthConfig struct {
	Address string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	v := viper.New()
	ApplyDefaults(v)
	return v
}

// ApplyDefaults configures defaults and REMINDER_* env bindings on v.
func ApplyDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.driver", defaultDriver)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", defaultPort)
	v.SetDefault("database.sslmode", defaultSSLMode)
	v.SetDefault("database.path", defaultSQLitePath)
	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.gorm_level", defaultGormLevel)
	v.SetDefault("reminders.interval", defaultInterval)
	v.SetDefault("reminders.link_emoji", defaultLinkEmoji)
	v.SetDefault("reminders.list_timeout", defaultListTimeout)
	v.SetDefault("reminders.log_retention", defaultLogRetention)
	v.SetDefault("health.address", defaultHealthAddress)
}

// Load reads configuration out of v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Database: DatabaseConfig{
			Driver:   strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
			Host:     v.GetString("database.host"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			DBName:   v.GetString("database.dbname"),
			Port:     v.GetInt("database.port"),
			SSLMode:  v.GetString("database.sslmode"),
			Path:     v.GetString("database.path"),
		},
		Telegram: TelegramConfig{
			Token: v.GetString("telegram.token"),
		},
		Logging: LoggingConfig{
			Level:     v.GetString("logging.level"),
			File:      v.GetString("logging.file"),
			GormLevel: v.GetString("logging.gorm_level"),
		},
		Reminders: RemindersConfig{
			Interval:     durationSetting(v, "reminders.interval"),
			LinkEmoji:    v.GetString("reminders.link_emoji"),
			ListTimeout:  durationSetting(v, "reminders.list_timeout"),
			LogRetention: durationSetting(v, "reminders.log_retention"),
		},
		Health: HealthConfig{
			Address: strings.TrimSpace(v.GetString("health.address")),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return ErrMissingToken
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DBName) == "" {
			return fmt.Errorf("database.dbname is required for %s", DriverPostgres)
		}
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return fmt.Errorf("database.path is required for %s", DriverSQLite)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Database.Driver)
	}
	if c.Reminders.Interval < minInterval {
		return fmt.Errorf("reminders.interval must be at least %s, got %s", minInterval, c.Reminders.Interval)
	}
	if c.Reminders.ListTimeout < minInterval {
		return fmt.Errorf("reminders.list_timeout must be at least %s, got %s", minInterval, c.Reminders.ListTimeout)
	}
	return nil
}

// durationSetting reads key as a duration string ("10s", "1m30s"). Bare
// numbers, from JSON or the environment, are seconds.
func durationSetting(v *viper.Viper, key string) time.Duration {
	switch raw := v.Get(key).(type) {
	case int:
		return time.Duration(raw) * time.Second
	case int64:
		return time.Duration(raw) * time.Second
	case float64:
		return time.Duration(raw * float64(time.Second))
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return time.Duration(n * float64(time.Second))
		}
	}
	return v.GetDuration(key)
}
