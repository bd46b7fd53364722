package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_Category(t *testing.T) {
	tests := []struct {
		name     string
		code     ErrorCode
		expected string
	}{
		{"GitNotFound", ErrGitNotFound, "git"},
		{"CommitFailed", ErrCommitFailed, "git"},
		{"AIProviderFailed", ErrAIProviderFailed, "provider"},
		{"EmptyResponse", ErrEmptyResponse, "provider"},
		{"MissingAPIKey", ErrMissingAPIKey, "config"},
		{"CredentialsDetected", ErrCredentialsDetected, "input"},
		{"Unknown", ErrorCode(7), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.Category(); got != tt.expected {
				t.Errorf("Category() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name: "without cause",
			err: &AppError{
				Code:    ErrInvalidConfig,
				Message: "bad config",
			},
			expected: "bad config",
		},
		{
			name: "with cause",
			err: &AppError{
				Code:    ErrGitCommandFailed,
				Message: "git command failed",
				Cause:   errors.New("exit status 128"),
			},
			expected: "git command failed: exit status 128",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_Is(t *testing.T) {
	err := fmt.Errorf("generate: %w", NewAuthenticationError("openai"))

	assert.True(t, errors.Is(err, New(ErrAuthenticationFailed, "")))
	assert.False(t, errors.Is(err, New(ErrRateLimited, "")))
	assert.True(t, HasCode(err, ErrAuthenticationFailed))
	assert.False(t, HasCode(errors.New("plain"), ErrAuthenticationFailed))
}

func TestAppError_WithContext(t *testing.T) {
	err := New(ErrGitCommandFailed, "git failed")
	err.WithContext("command", "git commit")
	err.WithContext("exit_code", 1)

	assert.Equal(t, "git commit", err.Context["command"])
	assert.Equal(t, 1, err.Context["exit_code"])
}

func TestAppError_WithSuggestion(t *testing.T) {
	err := New(ErrNotRepository, "not a repo").WithSuggestion("cd into a repo")
	assert.Equal(t, "cd into a repo", err.Suggestion)
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	wrapped := Wrap(cause, ErrGitCommandFailed, "git command failed")

	assert.Equal(t, ErrGitCommandFailed, wrapped.Code)
	assert.Equal(t, "git command failed", wrapped.Message)
	assert.True(t, errors.Is(wrapped, cause))
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(New(ErrTimeout, "slow")))
	assert.True(t, IsAppError(fmt.Errorf("ctx: %w", New(ErrTimeout, "slow"))))
	assert.False(t, IsAppError(errors.New("regular error")))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, 0},
		{"aborted", ErrAborted, 0},
		{"wrapped abort", fmt.Errorf("commit: %w", ErrAborted), 0},
		{"config", NewMissingAPIKeyError("openai"), 1},
		{"network", NewNetworkError(errors.New("refused")), 1},
		{"git missing", NewGitNotFoundError(errors.New("exec: not found")), 1},
		{"plain", errors.New("regular error"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCode(tt.err))
		})
	}
}

func TestConstructors_HaveSuggestions(t *testing.T) {
	cause := errors.New("boom")
	errs := []*AppError{
		NewGitNotFoundError(cause),
		NewNotRepositoryError(cause),
		NewNetworkError(cause),
		NewRateLimitError("openai"),
		NewTimeoutError(cause),
		NewAuthenticationError("openai"),
		NewAIProviderError("ollama", cause),
		NewEmptyResponseError("ollama"),
		NewInvalidConfigError("bad"),
		NewMissingAPIKeyError("openai"),
		NewInvalidProviderError("claude"),
		NewCredentialsDetectedError(2),
	}

	for _, err := range errs {
		assert.NotEmpty(t, err.Suggestion, err.Code.String())
		assert.NotEqual(t, "Unknown", err.Code.String())
	}
}

func TestNewGitError_Context(t *testing.T) {
	err := NewGitError(errors.New("exit status 1"), "fatal: bad revision")
	assert.Equal(t, "fatal: bad revision", err.Context["output"])

	err = NewGitError(errors.New("exit status 1"), "")
	assert.Nil(t, err.Context)
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name: "app error with suggestion",
			err: &AppError{
				Code:       ErrInvalidProvider,
				Message:    "unsupported provider",
				Suggestion: "Use ollama",
			},
			contains: []string{"Error:", "unsupported provider", "Suggestion:", "Use ollama"},
		},
		{
			name:     "app error with cause",
			err:      NewNetworkError(errors.New("connection refused")),
			contains: []string{"Cause:", "connection refused"},
		},
		{
			name:     "regular error",
			err:      errors.New("regular error"),
			contains: []string{"Error:", "regular error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatError(tt.err)
			for _, s := range tt.contains {
				assert.Contains(t, result, s)
			}
		})
	}

	assert.Empty(t, FormatError(nil))
}

func TestFormatErrorVerbose(t *testing.T) {
	err := NewGitError(errors.New("exit status 1"), "fatal: not a git repository").
		WithSuggestion("run inside a repo")

	out := FormatErrorVerbose(err)
	assert.Contains(t, out, "git/GitCommandFailed")
	assert.Contains(t, out, "Error chain:")
	assert.Contains(t, out, "fatal: not a git repository")
	assert.Contains(t, out, "run inside a repo")
}

func TestSanitizeErrorMessage(t *testing.T) {
	msg := SanitizeErrorMessage("invalid key sk-abcdefghijklmnopqrstuvwx sent with Bearer abc.def")

	assert.NotContains(t, msg, "sk-abcdefghijklmnopqrst")
	assert.Contains(t, msg, "uvwx")
	assert.Contains(t, msg, "Bearer ****")
	assert.NotContains(t, msg, "abc.def")
}
