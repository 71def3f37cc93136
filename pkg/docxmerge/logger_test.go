package docxmerge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"", zapcore.InfoLevel, false},
		{" warn ", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"off", zapcore.FatalLevel + 1, false},
		{"trace", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLogLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	off, err := NewLogger("off")
	require.NoError(t, err)
	assert.False(t, off.Core().Enabled(zapcore.ErrorLevel))

	_, err = NewLogger("chatty")
	assert.Error(t, err)
}

func TestSetLogger(t *testing.T) {
	original := GetLogger()
	t.Cleanup(func() { SetLogger(original) })

	custom := zap.NewExample()
	SetLogger(custom)
	assert.Same(t, custom, GetLogger())

	SetLogger(nil)
	assert.NotNil(t, GetLogger())
	assert.False(t, GetLogger().Core().Enabled(zapcore.ErrorLevel))
}

func TestUpdateLoggerFromConfig(t *testing.T) {
	originalConfig := GetGlobalConfig()
	originalLogger := GetLogger()
	t.Cleanup(func() {
		SetGlobalConfig(originalConfig)
		SetLogger(originalLogger)
	})

	config := DefaultConfig()
	config.LogLevel = "error"
	SetGlobalConfig(config)

	assert.False(t, GetLogger().Core().Enabled(zapcore.WarnLevel))
	assert.True(t, GetLogger().Core().Enabled(zapcore.ErrorLevel))
}
