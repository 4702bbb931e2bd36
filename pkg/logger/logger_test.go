package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name          string
		logLevel      string
		envLevel      string
		logFormat     string
		isDevelopment bool
		expectedLevel logrus.Level
		expectJSON    bool
	}{
		{
			name:          "production defaults to info and json",
			expectedLevel: logrus.InfoLevel,
			expectJSON:    true,
		},
		{
			name:          "development defaults to debug and text",
			isDevelopment: true,
			expectedLevel: logrus.DebugLevel,
			expectJSON:    false,
		},
		{
			name:          "explicit level wins over environment",
			logLevel:      "warn",
			envLevel:      "debug",
			isDevelopment: true,
			expectedLevel: logrus.WarnLevel,
		},
		{
			name:          "environment level used when argument empty",
			envLevel:      "ERROR",
			isDevelopment: true,
			expectedLevel: logrus.ErrorLevel,
		},
		{
			name:          "json format forced in development",
			logFormat:     "JSON",
			isDevelopment: true,
			expectedLevel: logrus.DebugLevel,
			expectJSON:    true,
		},
		{
			name:          "invalid level defaults to info",
			logLevel:      "loud",
			isDevelopment: true,
			expectedLevel: logrus.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.envLevel)
			t.Setenv("LOG_FORMAT", tt.logFormat)

			log := InitLogger(tt.logLevel, tt.isDevelopment)

			assert.Equal(t, tt.expectedLevel, log.GetLevel())
			_, isJSON := log.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.expectJSON, isJSON)
		})
	}
}

func TestWithPlayer(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "json")

	var buf bytes.Buffer
	log := InitLogger("debug", false)
	log.SetOutput(&buf)

	WithPlayer(log, "302", "ARS").Warn("derivation skipped")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "302", entry["player_id"])
	assert.Equal(t, "ARS", entry["team"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "derivation skipped", entry["msg"])
}

func TestWithPlayer_OmitsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	log := InitLogger("info", false)
	log.SetOutput(&buf)

	WithPlayer(log, "", "").Info("no context")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "player_id")
	assert.NotContains(t, entry, "team")
}

func TestWithGameweek(t *testing.T) {
	var buf bytes.Buffer
	log := InitLogger("info", false)
	log.SetOutput(&buf)

	WithGameweek(log, 12).Info("snapshot refreshed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, float64(12), entry["gameweek"])
}
