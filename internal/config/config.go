package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Webhook       WebhookConfig
	TaskDue       TaskDueConfig
	Messages      MessagesConfig
	Reminders     RemindersConfig
	Actor         ActorConfig
	BusinessHours BusinessHoursConfig
}

type ServerConfig struct {
	Address string
}

type DatabaseConfig struct {
	PostgresURL string
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

type WebhookConfig struct {
	URL        string
	ContentMax int
}

// TaskDueConfig drives the due-date alert sweep.
type TaskDueConfig struct {
	Interval  time.Duration
	LookAhead time.Duration
	LookBack  time.Duration
}

// MessagesConfig drives the scheduled-message dispatch sweep.
type MessagesConfig struct {
	Interval  time.Duration
	BatchSize int
}

// RemindersConfig drives the course reminder sweep.
type RemindersConfig struct {
	Interval time.Duration
}

// ActorConfig identifies the signed-in actor this process raises task
// alerts for.
type ActorConfig struct {
	ID string
}

// BusinessHoursConfig bounds the local hours during which course reminders
// may be dispatched. StartHour and EndHour are inclusive.
type BusinessHoursConfig struct {
	StartHour int
	EndHour   int
	Location  *time.Location
}

func LoadAll() (*Config, error) {
	var errs []error

	collect := func(v int, err error) int {
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	postgresURL, err := requireEnv("POSTGRES_URL")
	if err != nil {
		errs = append(errs, err)
	}
	webhookURL, err := requireEnv("WEBHOOK_URL")
	if err != nil {
		errs = append(errs, err)
	}
	actorID, err := requireEnv("ACTOR_ID")
	if err != nil {
		errs = append(errs, err)
	}

	contentMax := collect(getEnvInt("CONTENT_MAX", 4096))

	taskDueSeconds := collect(getEnvInt("TASK_DUE_INTERVAL_SECONDS", 60))
	lookAheadMinutes := collect(getEnvInt("TASK_DUE_LOOK_AHEAD_MINUTES", 5))
	lookBackMinutes := collect(getEnvInt("TASK_DUE_LOOK_BACK_MINUTES", 60))

	msgSeconds := collect(getEnvInt("MESSAGES_INTERVAL_SECONDS", 60))
	batchSize := collect(getEnvInt("MESSAGES_BATCH_SIZE", 5))

	reminderSeconds := collect(getEnvInt("REMINDERS_INTERVAL_SECONDS", 3600))

	startHour := collect(getEnvInt("BUSINESS_HOURS_START", 9))
	endHour := collect(getEnvInt("BUSINESS_HOURS_END", 20))

	loc := time.Local
	if tz := os.Getenv("BUSINESS_HOURS_TZ"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid BUSINESS_HOURS_TZ: %w", err))
		} else {
			loc = l
		}
	}

	redisCfg, err := loadRedisConfig()
	if err != nil {
		errs = append(errs, err)
	}

	if err := joinErrors(errs); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Address: getEnv("SERVER_ADDRESS", ":8080"),
		},
		Database: DatabaseConfig{
			PostgresURL: postgresURL,
		},
		Redis: redisCfg,
		Webhook: WebhookConfig{
			URL:        webhookURL,
			ContentMax: contentMax,
		},
		TaskDue: TaskDueConfig{
			Interval:  time.Duration(taskDueSeconds) * time.Second,
			LookAhead: time.Duration(lookAheadMinutes) * time.Minute,
			LookBack:  time.Duration(lookBackMinutes) * time.Minute,
		},
		Messages: MessagesConfig{
			Interval:  time.Duration(msgSeconds) * time.Second,
			BatchSize: batchSize,
		},
		Reminders: RemindersConfig{
			Interval: time.Duration(reminderSeconds) * time.Second,
		},
		Actor: ActorConfig{ID: actorID},
		BusinessHours: BusinessHoursConfig{
			StartHour: startHour,
			EndHour:   endHour,
			Location:  loc,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRedisConfig() (RedisConfig, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return RedisConfig{Enabled: false}, nil
	}

	db, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return RedisConfig{}, err
	}
	ttlSeconds, err := getEnvInt("REDIS_TTL_SECONDS", 7*86400)
	if err != nil {
		return RedisConfig{}, err
	}

	return RedisConfig{
		Enabled:  true,
		Address:  addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
		TTL:      time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Messages.BatchSize <= 0 {
		errs = append(errs, errors.New("MESSAGES_BATCH_SIZE must be > 0"))
	}
	if cfg.Messages.Interval <= 0 {
		errs = append(errs, errors.New("MESSAGES_INTERVAL_SECONDS must be > 0"))
	}
	if cfg.TaskDue.Interval <= 0 {
		errs = append(errs, errors.New("TASK_DUE_INTERVAL_SECONDS must be > 0"))
	}
	if cfg.TaskDue.LookAhead < 0 {
		errs = append(errs, errors.New("TASK_DUE_LOOK_AHEAD_MINUTES must be >= 0"))
	}
	if cfg.TaskDue.LookBack < 0 {
		errs = append(errs, errors.New("TASK_DUE_LOOK_BACK_MINUTES must be >= 0"))
	}
	if cfg.Reminders.Interval <= 0 {
		errs = append(errs, errors.New("REMINDERS_INTERVAL_SECONDS must be > 0"))
	}
	if cfg.Webhook.ContentMax <= 0 {
		errs = append(errs, errors.New("CONTENT_MAX must be > 0"))
	}
	if cfg.BusinessHours.StartHour < 0 || cfg.BusinessHours.StartHour > 23 {
		errs = append(errs, errors.New("BUSINESS_HOURS_START must be in [0,23]"))
	}
	if cfg.BusinessHours.EndHour < 0 || cfg.BusinessHours.EndHour > 23 {
		errs = append(errs, errors.New("BUSINESS_HOURS_END must be in [0,23]"))
	}
	if cfg.BusinessHours.StartHour > cfg.BusinessHours.EndHour {
		errs = append(errs, errors.New("BUSINESS_HOURS_START must be <= BUSINESS_HOURS_END"))
	}

	return joinErrors(errs)
}

func requireEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("missing required env var: %s", key)
	}
	return val, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for env %s: %q", key, v)
	}
	return i, nil
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
