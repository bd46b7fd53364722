// Package errors provides error types, formatting, and logging for gai.
package errors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrorCode represents the category of an error.
type ErrorCode int

// Git errors
const (
	ErrGitCommandFailed ErrorCode = iota + 100
	ErrGitNotFound
	ErrNotRepository
	ErrCommitFailed
)

// Provider errors
const (
	ErrAIProviderFailed ErrorCode = iota + 200
	ErrNetworkError
	ErrRateLimited
	ErrTimeout
	ErrAuthenticationFailed
	ErrEmptyResponse
)

// Config errors
const (
	ErrInvalidConfig ErrorCode = iota + 300
	ErrMissingAPIKey
	ErrInvalidProvider
	ErrFileSystemError
)

// Input errors
const (
	ErrInvalidArguments ErrorCode = iota + 400
	ErrCredentialsDetected
)

// Category returns the broad failure class of a code.
func (c ErrorCode) Category() string {
	switch {
	case c >= 100 && c < 200:
		return "git"
	case c >= 200 && c < 300:
		return "provider"
	case c >= 300 && c < 400:
		return "config"
	case c >= 400 && c < 500:
		return "input"
	default:
		return "unknown"
	}
}

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrGitCommandFailed:
		return "GitCommandFailed"
	case ErrGitNotFound:
		return "GitNotFound"
	case ErrNotRepository:
		return "NotRepository"
	case ErrCommitFailed:
		return "CommitFailed"
	case ErrAIProviderFailed:
		return "AIProviderFailed"
	case ErrNetworkError:
		return "NetworkError"
	case ErrRateLimited:
		return "RateLimited"
	case ErrTimeout:
		return "Timeout"
	case ErrAuthenticationFailed:
		return "AuthenticationFailed"
	case ErrEmptyResponse:
		return "EmptyResponse"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrMissingAPIKey:
		return "MissingAPIKey"
	case ErrInvalidProvider:
		return "InvalidProvider"
	case ErrFileSystemError:
		return "FileSystemError"
	case ErrInvalidArguments:
		return "InvalidArguments"
	case ErrCredentialsDetected:
		return "CredentialsDetected"
	default:
		return "Unknown"
	}
}

// ErrAborted marks a user-initiated stop. It maps to exit code 0.
var ErrAborted = errors.New("aborted by user")

// AppError represents an application error with context.
type AppError struct {
	Code       ErrorCode
	Message    string
	Cause      error
	Context    map[string]interface{}
	Suggestion string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

// WithContext adds context to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error.
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	e.Suggestion = suggestion
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// ExitCode maps an error to the process exit status.
// Success and user aborts exit 0, every failure exits 1.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, ErrAborted) {
		return 0
	}
	return 1
}

// NewGitError creates an error for git command failures.
func NewGitError(err error, output string) *AppError {
	appErr := &AppError{
		Code:    ErrGitCommandFailed,
		Message: "git command failed",
		Cause:   err,
	}
	if output != "" {
		appErr.Context = map[string]interface{}{
			"output": output,
		}
	}
	return appErr
}

// NewGitNotFoundError creates an error for a missing git executable.
func NewGitNotFoundError(err error) *AppError {
	return &AppError{
		Code:       ErrGitNotFound,
		Message:    "git executable not found",
		Cause:      err,
		Suggestion: "Install git and make sure it is on your PATH",
	}
}

// NewNotRepositoryError creates an error for running outside a work tree.
func NewNotRepositoryError(err error) *AppError {
	return &AppError{
		Code:       ErrNotRepository,
		Message:    "not a git repository",
		Cause:      err,
		Suggestion: "Run gai from inside a git repository",
	}
}

// NewCommitFailedError creates an error for a rejected commit.
func NewCommitFailedError(err error, output string) *AppError {
	appErr := &AppError{
		Code:    ErrCommitFailed,
		Message: "git commit failed",
		Cause:   err,
	}
	if output != "" {
		appErr.Context = map[string]interface{}{
			"output": output,
		}
	}
	return appErr
}

// NewNetworkError creates an error for network failures.
func NewNetworkError(err error) *AppError {
	return &AppError{
		Code:       ErrNetworkError,
		Message:    "network error occurred",
		Cause:      err,
		Suggestion: "Please check your network connection and try again",
	}
}

// NewRateLimitError creates an error for rate limiting.
func NewRateLimitError(provider string) *AppError {
	return &AppError{
		Code:       ErrRateLimited,
		Message:    fmt.Sprintf("rate limit exceeded on %s", provider),
		Suggestion: "Please wait and regenerate later",
	}
}

// NewTimeoutError creates an error for timeouts.
func NewTimeoutError(err error) *AppError {
	return &AppError{
		Code:       ErrTimeout,
		Message:    "request timed out",
		Cause:      err,
		Suggestion: "Increase TIMEOUT in your config or try a smaller model",
	}
}

// NewAuthenticationError creates an error for authentication failures.
func NewAuthenticationError(provider string) *AppError {
	return &AppError{
		Code:       ErrAuthenticationFailed,
		Message:    fmt.Sprintf("authentication failed with %s", provider),
		Suggestion: "Please check your API key is valid and has not expired",
	}
}

// NewAIProviderError creates an error for AI provider failures.
func NewAIProviderError(provider string, err error) *AppError {
	return &AppError{
		Code:       ErrAIProviderFailed,
		Message:    fmt.Sprintf("%s provider error", provider),
		Cause:      err,
		Suggestion: "Please check your endpoint, model name and network connectivity",
	}
}

// NewEmptyResponseError creates an error for replies that clean down to nothing.
func NewEmptyResponseError(provider string) *AppError {
	return &AppError{
		Code:       ErrEmptyResponse,
		Message:    fmt.Sprintf("%s returned an empty commit message", provider),
		Suggestion: "Regenerate or try a different model",
	}
}

// NewInvalidConfigError creates an error for invalid configuration.
func NewInvalidConfigError(message string) *AppError {
	return &AppError{
		Code:       ErrInvalidConfig,
		Message:    message,
		Suggestion: "Run 'gai config init' to create a valid configuration file",
	}
}

// NewMissingAPIKeyError creates an error for missing API key.
func NewMissingAPIKeyError(provider string) *AppError {
	return &AppError{
		Code:       ErrMissingAPIKey,
		Message:    fmt.Sprintf("API key is required for %s provider", provider),
		Suggestion: "Pass --api-key, run 'gai config set API_KEY <your-key>' or export OPENAI_API_KEY",
	}
}

// NewInvalidProviderError creates an error for an unknown provider name.
func NewInvalidProviderError(provider string) *AppError {
	return &AppError{
		Code:       ErrInvalidProvider,
		Message:    fmt.Sprintf("unsupported provider: %q", provider),
		Suggestion: "Supported providers: ollama, openai",
	}
}

// NewFileSystemError creates an error for local file failures.
func NewFileSystemError(path string, err error) *AppError {
	return &AppError{
		Code:    ErrFileSystemError,
		Message: fmt.Sprintf("cannot access %s", path),
		Cause:   err,
	}
}

// NewCredentialsDetectedError creates an error for a diff that looks like it leaks secrets.
func NewCredentialsDetectedError(count int) *AppError {
	return &AppError{
		Code:       ErrCredentialsDetected,
		Message:    fmt.Sprintf("%d potential credential(s) found in staged changes", count),
		Suggestion: "Unstage the secrets, or rerun with --no-scan if they are false positives",
	}
}

// FormatError formats an error for user display.
// API keys and other sensitive data are automatically masked.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(appErr.Message))

		if appErr.Cause != nil {
			sb.WriteString("\n  Cause: ")
			sb.WriteString(SanitizeErrorMessage(appErr.Cause.Error()))
		}

		if appErr.Suggestion != "" {
			sb.WriteString("\n  Suggestion: ")
			sb.WriteString(appErr.Suggestion)
		}
	} else {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(err.Error()))
	}

	return sb.String()
}

// FormatErrorVerbose formats an error with full details for verbose mode.
func FormatErrorVerbose(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString(fmt.Sprintf("Error [%s/%s]: %s\n", appErr.Code.Category(), appErr.Code.String(), SanitizeErrorMessage(appErr.Message)))

		if appErr.Cause != nil {
			sb.WriteString(fmt.Sprintf("  Cause: %v\n", SanitizeErrorMessage(appErr.Cause.Error())))
			sb.WriteString("  Error chain:\n")
			printErrorChain(&sb, appErr.Cause, 2)
		}

		if len(appErr.Context) > 0 {
			sb.WriteString("  Context:\n")
			for k, v := range appErr.Context {
				sb.WriteString(fmt.Sprintf("    %s: %v\n", k, SanitizeErrorMessage(fmt.Sprintf("%v", v))))
			}
		}

		if appErr.Suggestion != "" {
			sb.WriteString(fmt.Sprintf("  Suggestion: %s\n", appErr.Suggestion))
		}
	} else {
		sb.WriteString(fmt.Sprintf("Error: %v\n", SanitizeErrorMessage(err.Error())))
		sb.WriteString("  Error chain:\n")
		printErrorChain(&sb, err, 2)
	}

	return sb.String()
}

func printErrorChain(sb *strings.Builder, err error, indent int) {
	if err == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)
	sb.WriteString(fmt.Sprintf("%s- %T: %v\n", prefix, err, SanitizeErrorMessage(err.Error())))

	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		printErrorChain(sb, unwrapped, indent+1)
	}
}

// SanitizeErrorMessage masks any API keys or bearer tokens in error messages.
func SanitizeErrorMessage(msg string) string {
	msg = apiKeyPattern.ReplaceAllStringFunc(msg, func(match string) string {
		if len(match) <= 4 {
			return "****"
		}
		return strings.Repeat("*", len(match)-4) + match[len(match)-4:]
	})
	return bearerPattern.ReplaceAllString(msg, "Bearer ****")
}

var (
	apiKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9_\-]{16,}`)
	bearerPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9_\-\.=]+`)
)
