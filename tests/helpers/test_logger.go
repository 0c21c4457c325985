package helpers

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger captures JSON log output so tests can assert on it.
type TestLogger struct {
	Buffer *bytes.Buffer
	Logger *zerolog.Logger
}

// NewTestLogger creates a test logger that captures every level.
func NewTestLogger() *TestLogger {
	return NewTestLoggerWithLevel(zerolog.TraceLevel)
}

// NewTestLoggerWithLevel creates a test logger that drops events below level.
func NewTestLoggerWithLevel(level zerolog.Level) *TestLogger {
	buffer := &bytes.Buffer{}
	logger := zerolog.New(buffer).Level(level).With().Timestamp().Logger()

	return &TestLogger{
		Buffer: buffer,
		Logger: &logger,
	}
}

// NewSilentTestLogger creates a logger that discards all output
func NewSilentTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard).With().Timestamp().Logger()
	return &logger
}

// GetLogOutput returns the captured log output
func (tl *TestLogger) GetLogOutput() string {
	return tl.Buffer.String()
}

// Reset clears the log buffer
func (tl *TestLogger) Reset() {
	tl.Buffer.Reset()
}

// ContainsLog reports whether the captured output contains message.
func (tl *TestLogger) ContainsLog(message string) bool {
	return strings.Contains(tl.GetLogOutput(), message)
}

// AssertLogContains fails the test unless the output contains message.
func (tl *TestLogger) AssertLogContains(t *testing.T, message string) {
	t.Helper()
	if !tl.ContainsLog(message) {
		t.Errorf("Expected log to contain '%s', but got: %s", message, tl.GetLogOutput())
	}
}

// AssertLogNotContains fails the test if the output contains message.
func (tl *TestLogger) AssertLogNotContains(t *testing.T, message string) {
	t.Helper()
	if tl.ContainsLog(message) {
		t.Errorf("Expected log not to contain '%s', but got: %s", message, tl.GetLogOutput())
	}
}

// AssertLogLevel fails the test unless an entry with level was logged.
func (tl *TestLogger) AssertLogLevel(t *testing.T, level string) {
	t.Helper()
	tl.AssertLogContains(t, `"level":"`+level+`"`)
}
