package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_IsNop(t *testing.T) {
	l := New()
	require.NotNil(t, l.Log)
	assert.False(t, l.Log.Core().Enabled(zapcore.ErrorLevel))
}

func TestInit_Levels(t *testing.T) {
	tests := []struct {
		level     string
		enabled   zapcore.Level
		disabled  zapcore.Level
		checkDown bool
	}{
		{level: "debug", enabled: zapcore.DebugLevel},
		{level: "Info", enabled: zapcore.InfoLevel, disabled: zapcore.DebugLevel, checkDown: true},
		{level: "warn", enabled: zapcore.WarnLevel, disabled: zapcore.InfoLevel, checkDown: true},
		{level: "ERROR", enabled: zapcore.ErrorLevel, disabled: zapcore.WarnLevel, checkDown: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New()
			require.NoError(t, l.Init(tt.level))
			assert.True(t, l.Log.Core().Enabled(tt.enabled))
			if tt.checkDown {
				assert.False(t, l.Log.Core().Enabled(tt.disabled))
			}
		})
	}
}

func TestInit_BadLevel(t *testing.T) {
	l := New()
	assert.Error(t, l.Init("loud"))
	assert.False(t, l.Log.Core().Enabled(zapcore.ErrorLevel), "logger must stay a no-op")
}
