package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwvelando/loan-gauge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LoggingConfig
		override string
		enabled  zapcore.Level
		disabled zapcore.Level
	}{
		{"default info", config.LoggingConfig{}, "", zapcore.InfoLevel, zapcore.DebugLevel},
		{"config debug", config.LoggingConfig{Level: "debug"}, "", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"override wins", config.LoggingConfig{Level: "debug"}, "error", zapcore.ErrorLevel, zapcore.WarnLevel},
		{"console warning", config.LoggingConfig{Level: "warning", Format: "console"}, "", zapcore.WarnLevel, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg, tt.override)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.disabled))
		})
	}
}

func TestNewLoggerRejectsInvalidSettings(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "verbose"}, "")
	assert.Error(t, err)

	_, err = NewLogger(config.LoggingConfig{Format: "xml"}, "")
	assert.Error(t, err)
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "loan-gauge.log")

	logger, err := NewLogger(config.LoggingConfig{Level: "info", OutputFile: path}, "")
	require.NoError(t, err)

	logger.Info("schedule served", zap.String("op", "logging.test"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "schedule served")
}
