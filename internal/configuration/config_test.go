package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaflog/internal/logger"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGetConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
auth_secret_key = "0123456789abcdef0123456789abcdef"
ai_use_mock = true
`)
	config, err := GetConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8899", config.ServerAddress)
	assert.Equal(t, "mongodb://localhost:27017", config.DatabaseURI)
	assert.Equal(t, "localhost:6379", config.RedisAddress)
	assert.Equal(t, logger.LevelInfo, config.LogLevel)
	assert.NotNil(t, config.AuthSecretKey)
	assert.Equal(t, "gemini-1.5-flash", config.AIModel)
	assert.True(t, config.AIUseMock)
	assert.Equal(t, 24*time.Hour, config.ReminderInterval)
	assert.Equal(t, 7, config.ReminderAfterDays)
	assert.Equal(t, 500, config.MaxEventsPerPlant)
}

func TestGetConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
server_address = "0.0.0.0:9000"
log_level = "TRACE"
auth_secret_key = "0123456789abcdef0123456789abcdef"
ai_api_key = "test-api-key"
ai_model = "gemini-1.5-pro"
reminder_interval = "6h"
reminder_after_days = 3
max_events_per_plant = 100
`)
	config, err := GetConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", config.ServerAddress)
	assert.Equal(t, logger.LevelTrace, config.LogLevel)
	assert.Equal(t, "gemini-1.5-pro", config.AIModel)
	assert.Equal(t, 6*time.Hour, config.ReminderInterval)
	assert.Equal(t, 3, config.ReminderAfterDays)
	assert.Equal(t, 100, config.MaxEventsPerPlant)
}

func TestGetConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing auth_secret_key", `ai_use_mock = true`},
		{"missing ai_api_key without mock", `auth_secret_key = "0123456789abcdef0123456789abcdef"`},
		{"bad log level", `
auth_secret_key = "0123456789abcdef0123456789abcdef"
ai_use_mock = true
log_level = "CHATTY"
`},
		{"reminder interval too short", `
auth_secret_key = "0123456789abcdef0123456789abcdef"
ai_use_mock = true
reminder_interval = "5s"
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GetConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestGetConfigMissingFile(t *testing.T) {
	_, err := GetConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
