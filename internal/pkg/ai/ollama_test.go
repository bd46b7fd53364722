package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gaicli/gai/internal/pkg/errors"
)

type ollamaChatBody struct {
	Model    string `json:"model"`
	Stream   *bool  `json:"stream"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newOllamaServer(t *testing.T, handler http.HandlerFunc) *OllamaProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewOllamaProvider(server.URL+"/api", "llama3.2", 5*time.Second, DefaultPrompts())
	require.NoError(t, err)
	return p
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestOllamaBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:11434/api", "http://localhost:11434"},
		{"http://localhost:11434/api/chat", "http://localhost:11434"},
		{"http://localhost:11434/api/generate/", "http://localhost:11434"},
		{"https://ollama.example.com", "https://ollama.example.com"},
	}
	for _, tt := range tests {
		u, err := ollamaBaseURL(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, u.String())
	}

	for _, bad := range []string{"", "localhost:11434", "ftp://host"} {
		_, err := ollamaBaseURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestOllamaProvider_GenerateCommitMessage(t *testing.T) {
	var got ollamaChatBody
	p := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"model":   "llama3.2",
			"message": map[string]string{"role": "assistant", "content": "<think>hmm</think>\nfeat: add parser\n\n\n\n- handle empty input"},
			"done":    true,
		})
	})

	msg, err := p.GenerateCommitMessage(context.Background(), GenerateRequest{Diff: "+a\n"})
	require.NoError(t, err)
	assert.Equal(t, "feat: add parser\n\n- handle empty input", msg)

	assert.Equal(t, "llama3.2", got.Model)
	require.NotNil(t, got.Stream)
	assert.False(t, *got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, DefaultSystemPrompt, got.Messages[0].Content)
	assert.Equal(t, "Generate a commit message for this git diff:\n\n+a\n", got.Messages[1].Content)
}

func TestOllamaProvider_Oneline(t *testing.T) {
	var got ollamaChatBody
	p := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"message": map[string]string{"role": "assistant", "content": "fix: close file\n\n- extra body"},
			"done":    true,
		})
	})

	msg, err := p.GenerateCommitMessage(context.Background(), GenerateRequest{Diff: "x", Oneline: true})
	require.NoError(t, err)
	assert.Equal(t, "fix: close file", msg)
	assert.Equal(t, DefaultOnelinePrompt, got.Messages[0].Content)
}

func TestOllamaProvider_EmptyResponse(t *testing.T) {
	p := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"message": map[string]string{"role": "assistant", "content": "<think>only thoughts</think>"},
			"done":    true,
		})
	})

	_, err := p.GenerateCommitMessage(context.Background(), GenerateRequest{Diff: "x"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrEmptyResponse))
}

func TestOllamaProvider_ModelNotFound(t *testing.T) {
	p := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]string{"error": "model \"llama3.2\" not found, try pulling it first"})
	})

	_, err := p.GenerateCommitMessage(context.Background(), GenerateRequest{Diff: "x"})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrAIProviderFailed, appErr.Code)
	assert.Contains(t, appErr.Suggestion, "ollama pull llama3.2")
}

func TestOllamaProvider_ServerError(t *testing.T) {
	p := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, map[string]string{"error": "out of memory"})
	})

	_, err := p.GenerateCommitMessage(context.Background(), GenerateRequest{Diff: "x"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrAIProviderFailed))
}

func TestOllamaProvider_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	p, err := NewOllamaProvider(endpoint, "llama3.2", time.Second, DefaultPrompts())
	require.NoError(t, err)

	_, err = p.GenerateCommitMessage(context.Background(), GenerateRequest{Diff: "x"})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrNetworkError, appErr.Code)
	assert.Contains(t, appErr.Suggestion, "ollama serve")
}

func TestOllamaProvider_ContextCancelled(t *testing.T) {
	p := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		// The server notices the client going away only after the body is consumed.
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.GenerateCommitMessage(ctx, GenerateRequest{Diff: "x"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrTimeout), "got %v", err)
}

func TestOllamaProvider_AnalyzeDiffForCommits(t *testing.T) {
	var got ollamaChatBody
	p := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"message": map[string]string{
				"role":    "assistant",
				"content": `[{"description":"fix(git): trim output","files":["git.go"]},{"description":"docs: usage"}]`,
			},
			"done": true,
		})
	})

	suggestions, err := p.AnalyzeDiffForCommits(context.Background(), "diff")
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, []string{"git.go"}, suggestions[0].Files)
	assert.Equal(t, DefaultAnalyzePrompt, got.Messages[0].Content)
}

func TestOllamaProvider_Stream(t *testing.T) {
	p := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var body struct {
			Prompt string `json:"prompt"`
			Stream *bool  `json:"stream"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "why is the sky blue", body.Prompt)
		require.NotNil(t, body.Stream)
		assert.True(t, *body.Stream)

		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, chunk := range []string{"Rayleigh", " scattering", ""} {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"response": chunk, "done": chunk == ""})
		}
	})

	var sb strings.Builder
	var chunks int
	err := p.Stream(context.Background(), "why is the sky blue", func(chunk string) error {
		chunks++
		sb.WriteString(chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Rayleigh scattering", sb.String())
	assert.Equal(t, 2, chunks)
}

func TestOllamaProvider_ListModels(t *testing.T) {
	p := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"models": []map[string]string{{"name": "llama3.2:latest"}, {"name": "gemma:2b"}},
		})
	})

	models, err := p.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gemma:2b", "llama3.2:latest"}, models)
}
