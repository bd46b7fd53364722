package errors

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog logger with verbose mode support.
type Logger struct {
	mu      sync.Mutex
	zl      zerolog.Logger
	output  io.Writer
	verbose bool
}

var defaultLogger = NewLogger(os.Stderr, false)

// NewLogger creates a console logger writing to output.
// Verbose loggers emit debug records, others only warnings and errors.
func NewLogger(output io.Writer, verbose bool) *Logger {
	l := &Logger{output: output, verbose: verbose}
	l.rebuild()
	return l
}

func (l *Logger) rebuild() {
	level := zerolog.WarnLevel
	if l.verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{
		Out:        l.output,
		NoColor:    true,
		TimeFormat: "15:04:05",
	}
	l.zl = zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(verbose bool) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.verbose = verbose
	defaultLogger.rebuild()
}

// IsVerbose returns whether verbose logging is enabled.
func IsVerbose() bool {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	return defaultLogger.verbose
}

// SetOutput sets the output writer for the default logger.
func SetOutput(w io.Writer) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.output = w
	defaultLogger.rebuild()
}

func (l *Logger) event(level zerolog.Level) *zerolog.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.zl.WithLevel(level)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.event(zerolog.ErrorLevel).Msg(SanitizeErrorMessage(fmt.Sprintf(format, args...)))
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.event(zerolog.WarnLevel).Msg(SanitizeErrorMessage(fmt.Sprintf(format, args...)))
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.event(zerolog.InfoLevel).Msg(SanitizeErrorMessage(fmt.Sprintf(format, args...)))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.event(zerolog.DebugLevel).Msg(SanitizeErrorMessage(fmt.Sprintf(format, args...)))
}

// LogAPIRequest logs an outgoing provider request.
func (l *Logger) LogAPIRequest(provider, endpoint, model string, promptLength int) {
	l.event(zerolog.DebugLevel).
		Str("provider", provider).
		Str("endpoint", SanitizeErrorMessage(endpoint)).
		Str("model", model).
		Int("prompt_length", promptLength).
		Msg("API request")
}

// LogAPIResponse logs a provider response.
func (l *Logger) LogAPIResponse(provider string, statusCode int, responseLength int, duration time.Duration) {
	l.event(zerolog.DebugLevel).
		Str("provider", provider).
		Int("status", statusCode).
		Int("response_length", responseLength).
		Dur("duration", duration).
		Msg("API response")
}

// LogGitCommand logs a git invocation.
func (l *Logger) LogGitCommand(args []string, duration time.Duration, err error) {
	ev := l.event(zerolog.DebugLevel).Strs("args", args).Dur("duration", duration)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("git command")
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	defaultLogger.Error(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	defaultLogger.Warn(format, args...)
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	defaultLogger.Info(format, args...)
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	defaultLogger.Debug(format, args...)
}

// LogAPIRequest logs an API request in verbose mode.
func LogAPIRequest(provider, endpoint, model string, promptLength int) {
	defaultLogger.LogAPIRequest(provider, endpoint, model, promptLength)
}

// LogAPIResponse logs an API response in verbose mode.
func LogAPIResponse(provider string, statusCode int, responseLength int, duration time.Duration) {
	defaultLogger.LogAPIResponse(provider, statusCode, responseLength, duration)
}

// LogGitCommand logs a git invocation in verbose mode.
func LogGitCommand(args []string, duration time.Duration, err error) {
	defaultLogger.LogGitCommand(args, duration, err)
}
