package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults used when the environment does not set a value
const (
	DefaultDBType                = "sqlite"
	DefaultDBDSN                 = "data/wordtrack.db"
	DefaultOpenAIModel           = "gpt-4o-mini"
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
	DefaultDailyGoalMinutes      = 15
	DefaultQueueLimit            = 20
	DefaultLearnerID             = 1
)

// Config is the runtime configuration of the application
type Config struct {
	DBType string // sqlite or postgres
	DBDSN  string

	TelegramToken string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	LogLevel  string
	LogFormat string

	// Reminders are only sent between these hours (inclusive)
	NotificationStartHour int
	NotificationEndHour   int

	DailyGoalMinutes int
	QueueLimit       int
	LearnerID        int64
}

// Load reads the given .env files (missing files are ignored) and then builds
// the configuration from the process environment. Values already present in
// the environment win over the files.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBType:        strings.ToLower(getEnvOrDefault("DB_TYPE", DefaultDBType)),
		DBDSN:         getEnvOrDefault("DB_DSN", DefaultDBDSN),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnvOrDefault("OPENAI_MODEL", DefaultOpenAIModel),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:     getEnvOrDefault("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.NotificationStartHour, err = getIntInRange("NOTIFICATION_START_HOUR", DefaultNotificationStartHour, 0, 23); err != nil {
		return nil, err
	}
	if cfg.NotificationEndHour, err = getIntInRange("NOTIFICATION_END_HOUR", DefaultNotificationEndHour, 0, 23); err != nil {
		return nil, err
	}
	if cfg.DailyGoalMinutes, err = getIntInRange("DAILY_GOAL_MINUTES", DefaultDailyGoalMinutes, 1, 24*60); err != nil {
		return nil, err
	}
	if cfg.QueueLimit, err = getIntInRange("QUEUE_LIMIT", DefaultQueueLimit, 1, 1000); err != nil {
		return nil, err
	}
	learner, err := getIntInRange("LEARNER_ID", DefaultLearnerID, 1, int(^uint32(0)>>1))
	if err != nil {
		return nil, err
	}
	cfg.LearnerID = int64(learner)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	switch c.DBType {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_TYPE %q (want sqlite or postgres)", c.DBType)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN must not be empty")
	}
	if c.NotificationStartHour > c.NotificationEndHour {
		return fmt.Errorf("NOTIFICATION_START_HOUR (%d) is after NOTIFICATION_END_HOUR (%d)",
			c.NotificationStartHour, c.NotificationEndHour)
	}
	return nil
}

// AIEnabled reports whether an OpenAI key is configured
func (c *Config) AIEnabled() bool {
	return c.OpenAIKey != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntInRange(key string, defaultValue, min, max int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, raw)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s: %d is outside %d-%d", key, v, min, max)
	}
	return v, nil
}
