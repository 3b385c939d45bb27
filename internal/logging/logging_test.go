package logging

import (
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func resetLoggerForTest() {
	initOnce = sync.Once{}
	logger = nil
	exitFunc = os.Exit
}

func TestParseLevelMappings(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARNING"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("unknown"))
}

func TestLoggerSingleton(t *testing.T) {
	resetLoggerForTest()
	t.Cleanup(resetLoggerForTest)

	first := L()
	second := L()
	assert.Same(t, first, second)
}

func TestLoggerHonoursLevel(t *testing.T) {
	resetLoggerForTest()
	t.Cleanup(resetLoggerForTest)
	t.Setenv("POSTURAI_LOG_LEVEL", "error")
	t.Setenv("POSTURAI_LOG_FORMAT", "json")

	l := L()
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestFatalInvokesExitFunction(t *testing.T) {
	resetLoggerForTest()
	t.Cleanup(resetLoggerForTest)

	var exitCode int
	exitFunc = func(code int) {
		exitCode = code
	}

	core, logs := observer.New(zapcore.InfoLevel)
	logger = zap.New(core)
	initOnce.Do(func() {}) // keep the observed logger

	Fatal("boom", zap.String("key", "value"))

	require.Equal(t, 1, exitCode)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "boom", entry.Message)
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "value", entry.ContextMap()["key"])
}
