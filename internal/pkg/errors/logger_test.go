package errors

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogger_Verbose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.Error("error message")
	logger.Warn("warn message")
	logger.Info("info message")
	logger.Debug("debug message")

	output := buf.String()
	assert.Contains(t, output, "error message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "debug message")
}

func TestLogger_NonVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, false)

	logger.Error("error message")
	logger.Warn("warn message")
	logger.Info("info message")
	logger.Debug("debug message")

	output := buf.String()
	assert.Contains(t, output, "error message")
	assert.Contains(t, output, "warn message")
	assert.NotContains(t, output, "info message")
	assert.NotContains(t, output, "debug message")
}

func TestLogger_MasksKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.Debug("using key %s", "sk-abcdefghijklmnopqrstuvwx")

	assert.NotContains(t, buf.String(), "sk-abcdefghijklmnop")
}

func TestLogger_LogAPIRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.LogAPIRequest("openai", "https://api.openai.com/v1", "gpt-4o-mini", 1000)

	output := buf.String()
	assert.Contains(t, output, "API request")
	assert.Contains(t, output, "openai")
	assert.Contains(t, output, "gpt-4o-mini")
	assert.Contains(t, output, "1000")
}

func TestLogger_LogAPIResponse(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.LogAPIResponse("ollama", 200, 500, 100*time.Millisecond)

	output := buf.String()
	assert.Contains(t, output, "ollama")
	assert.Contains(t, output, "200")
	assert.Contains(t, output, "500")
}

func TestLogger_LogAPIRequestQuietWhenNotVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, false)

	logger.LogAPIRequest("openai", "https://api.openai.com/v1", "gpt-4o", 10)
	logger.LogGitCommand([]string{"diff", "--staged"}, time.Millisecond, nil)

	assert.Empty(t, buf.String())
}

func TestLogger_LogGitCommand(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.LogGitCommand([]string{"commit", "-F", "-"}, 5*time.Millisecond, errors.New("exit status 1"))

	output := buf.String()
	assert.Contains(t, output, "git command")
	assert.Contains(t, output, "commit")
	assert.Contains(t, output, "exit status 1")
}

func TestSetVerbose(t *testing.T) {
	originalVerbose := IsVerbose()
	defer SetVerbose(originalVerbose)

	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	SetVerbose(true)
	assert.True(t, IsVerbose())
	Debug("visible %d", 1)
	assert.Contains(t, buf.String(), "visible 1")

	buf.Reset()
	SetVerbose(false)
	assert.False(t, IsVerbose())
	Debug("hidden")
	assert.Empty(t, buf.String())
}
