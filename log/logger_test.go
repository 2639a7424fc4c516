package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Debug(format string, v ...any) { l.messages = append(l.messages, "D") }
func (l *recordingLogger) Info(format string, v ...any)  { l.messages = append(l.messages, "I") }
func (l *recordingLogger) Warn(format string, v ...any)  { l.messages = append(l.messages, "W") }
func (l *recordingLogger) Error(format string, v ...any) { l.messages = append(l.messages, "E") }

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "NONE", LevelNone.String())
	assert.Contains(t, Level(42).String(), "UNKNOWN")
}

func TestSetDefaultLogger(t *testing.T) {
	original := GetDefaultLogger()
	defer SetDefaultLogger(original)

	rec := &recordingLogger{}
	SetDefaultLogger(rec)

	Debug("a")
	Info("b")
	Warn("c")
	Error("d")

	assert.Equal(t, []string{"D", "I", "W", "E"}, rec.messages)
}

func TestNoOpLogger(t *testing.T) {
	original := GetDefaultLogger()
	defer SetDefaultLogger(original)

	SetDefaultLogger(&NoOpLogger{})
	Info("silenced %d", 1)
}
