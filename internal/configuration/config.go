package configuration

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/pkg/errors"

	"leaflog/internal/logger"
)

type Config struct {
	ServerAddress     string
	DatabaseURI       string
	RedisAddress      string
	LogLevel          logger.Level
	LogToFile         bool
	AuthSecretKey     jwk.Key
	FCMKey            string
	AIAPIKey          string
	AIModel           string
	AIUseMock         bool
	ReminderInterval  time.Duration
	ReminderAfterDays int
	MaxEventsPerPlant int
}

type tomlConfig struct {
	ServerAddress     string `toml:"server_address"`
	DatabaseURI       string `toml:"database_uri"`
	RedisAddress      string `toml:"redis_address"`
	LogLevel          string `toml:"log_level"`
	LogToFile         bool   `toml:"log_to_file"`
	AuthSecretKey     string `toml:"auth_secret_key"`
	FCMKey            string `toml:"fcm_key"`
	AIAPIKey          string `toml:"ai_api_key"`
	AIModel           string `toml:"ai_model"`
	AIUseMock         bool   `toml:"ai_use_mock"`
	ReminderInterval  string `toml:"reminder_interval"`
	ReminderAfterDays int    `toml:"reminder_after_days"`
	MaxEventsPerPlant int    `toml:"max_events_per_plant"`
}

func GetConfig(path string) (*Config, error) {
	var tc tomlConfig
	_, err := toml.DecodeFile(path, &tc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode toml file with path: %s", path)
	}

	if tc.ServerAddress == "" {
		tc.ServerAddress = "localhost:8899"
	}

	if tc.DatabaseURI == "" {
		tc.DatabaseURI = "mongodb://localhost:27017"
	}

	if tc.RedisAddress == "" {
		tc.RedisAddress = "localhost:6379"
	}

	if tc.LogLevel == "" {
		tc.LogLevel = "INFO"
	}
	logLevel, err := logger.ParseLevel(tc.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse log_level: %s", tc.LogLevel)
	}

	if tc.AuthSecretKey == "" {
		return nil, errors.New("auth_secret_key is not set")
	}
	authSecretKey, err := jwk.FromRaw([]byte(tc.AuthSecretKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create key from auth_secret_key")
	}

	if tc.AIAPIKey == "" && !tc.AIUseMock {
		return nil, errors.New("ai_api_key is not set and ai_use_mock is disabled")
	}
	if tc.AIModel == "" {
		tc.AIModel = "gemini-1.5-flash"
	}

	if tc.ReminderInterval == "" {
		tc.ReminderInterval = "24h"
	}
	reminderInterval, err := time.ParseDuration(tc.ReminderInterval)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse reminder_interval: %s", tc.ReminderInterval)
	}
	if reminderInterval < time.Minute {
		return nil, errors.Errorf("reminder_interval too short (%v), minimum interval: 1m", reminderInterval)
	}

	if tc.ReminderAfterDays <= 0 {
		tc.ReminderAfterDays = 7
	}

	if tc.MaxEventsPerPlant <= 0 {
		tc.MaxEventsPerPlant = 500
	}

	return &Config{
		ServerAddress:     tc.ServerAddress,
		DatabaseURI:       tc.DatabaseURI,
		RedisAddress:      tc.RedisAddress,
		LogLevel:          logLevel,
		LogToFile:         tc.LogToFile,
		AuthSecretKey:     authSecretKey,
		FCMKey:            tc.FCMKey,
		AIAPIKey:          tc.AIAPIKey,
		AIModel:           tc.AIModel,
		AIUseMock:         tc.AIUseMock,
		ReminderInterval:  reminderInterval,
		ReminderAfterDays: tc.ReminderAfterDays,
		MaxEventsPerPlant: tc.MaxEventsPerPlant,
	}, nil
}
