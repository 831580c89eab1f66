package debuglog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelOff, "OFF"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.level.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"DEBUG", LevelDebug},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"WARNING", LevelWarn},
		{" error ", LevelError},
		{"off", LevelOff},
		{"INVALID", LevelInfo},
		{"", LevelInfo},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, ParseLogLevel(test.input), "input %q", test.input)
	}
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestSetup_FiltersByLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "test.log")

	require.NoError(t, Setup(LevelWarn, logPath))
	t.Cleanup(func() { _ = Setup(LevelOff) })

	assert.Equal(t, LevelWarn, GetLevel())

	Debugf("debug message")
	Infof("info message")
	Warnf("warn message")
	Errorf("error %d", 42)
	require.NoError(t, Close())

	content := readLog(t, logPath)
	assert.NotContains(t, content, "debug message")
	assert.NotContains(t, content, "info message")
	assert.Contains(t, content, "[WARN] warn message")
	assert.Contains(t, content, "[ERROR] error 42")
	assert.True(t, strings.HasPrefix(content, "desh "))
}

func TestSetup_Off(t *testing.T) {
	require.NoError(t, Setup(LevelOff))
	assert.Equal(t, LevelOff, GetLevel())

	// Must not panic without a logger.
	Errorf("dropped")
	WithFields(map[string]interface{}{"k": "v"}).Errorf("dropped")
	assert.NoError(t, Close())
}

func TestFieldLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "fields.log")

	require.NoError(t, Setup(LevelDebug, logPath))
	t.Cleanup(func() { _ = Setup(LevelOff) })

	WithFields(map[string]interface{}{
		"seq":      7,
		"provider": "newsapi",
	}).Errorf("fetch failed: %s", "boom")
	WithFields(nil).Infof("no fields")
	require.NoError(t, Close())

	content := readLog(t, logPath)
	assert.Contains(t, content, "[ERROR] fetch failed: boom [provider=newsapi seq=7]")
	assert.Contains(t, content, "[INFO] no fields\n")
}

func TestSetLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "level.log")

	require.NoError(t, Setup(LevelError, logPath))
	t.Cleanup(func() { _ = Setup(LevelOff) })

	Infof("before")
	SetLevel(LevelInfo)
	Infof("after")
	require.NoError(t, Close())

	content := readLog(t, logPath)
	assert.NotContains(t, content, "before")
	assert.Contains(t, content, "after")
}
