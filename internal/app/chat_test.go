package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gaicli/gai/internal/pkg/errors"
)

// fakeStreamer replies with fixed chunks and records prompts.
type fakeStreamer struct {
	chunks  []string
	err     error
	prompts []string
}

func (f *fakeStreamer) Stream(_ context.Context, prompt string, fn func(string) error) error {
	f.prompts = append(f.prompts, prompt)
	for _, c := range f.chunks {
		if err := fn(c); err != nil {
			return err
		}
	}
	return f.err
}

func TestChatService_Ask(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"Hello", ", ", "world"}}
	var out bytes.Buffer

	err := NewChatService(streamer, strings.NewReader(""), &out).Ask(context.Background(), "hi")
	require.NoError(t, err)

	assert.Equal(t, "AI: Hello, world\n", out.String())
	assert.Equal(t, []string{"hi"}, streamer.prompts)
}

func TestChatService_AskError(t *testing.T) {
	failure := apperrors.NewNetworkError(errors.New("connection refused"))
	streamer := &fakeStreamer{err: failure}
	var out bytes.Buffer

	err := NewChatService(streamer, strings.NewReader(""), &out).Ask(context.Background(), "hi")
	assert.ErrorIs(t, err, failure)
}

func TestChatService_Run(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantPrompts []string
	}{
		{"exit ends session", "what is go?\nexit\nnever sent\n", []string{"what is go?"}},
		{"quit is case-insensitive", "QUIT\n", nil},
		{"empty lines skipped", "\n   \nhello\n", []string{"hello"}},
		{"end of input ends session", "one\ntwo", []string{"one", "two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streamer := &fakeStreamer{chunks: []string{"ok"}}
			var out bytes.Buffer

			err := NewChatService(streamer, strings.NewReader(tt.input), &out).Run(context.Background(), "gemma:2b")
			require.NoError(t, err)

			assert.Equal(t, tt.wantPrompts, streamer.prompts)
			assert.Contains(t, out.String(), "Starting interactive chat with model: gemma:2b")
			assert.Contains(t, out.String(), "Exiting chat.")
		})
	}
}

func TestChatService_RunContinuesAfterError(t *testing.T) {
	streamer := &fakeStreamer{err: errors.New("model not loaded")}
	var out bytes.Buffer

	err := NewChatService(streamer, strings.NewReader("first\nsecond\nexit\n"), &out).Run(context.Background(), "llama3")
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, streamer.prompts)
	assert.Equal(t, 2, strings.Count(out.String(), "Error: model not loaded"))
}

func TestChatService_RunCancelled(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"ok"}}
	var out bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewChatService(streamer, strings.NewReader("hello\n"), &out).Run(ctx, "llama3")
	require.NoError(t, err)
	assert.Empty(t, streamer.prompts)
}
