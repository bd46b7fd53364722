package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	apperrors "github.com/gaicli/gai/internal/pkg/errors"
)

// OllamaProvider talks to a local or remote Ollama server.
type OllamaProvider struct {
	client   *api.Client
	endpoint string
	model    string
	prompts  Prompts
}

// NewOllamaProvider creates a provider for the server at endpoint.
// The endpoint may include the /api or /api/chat suffix.
func NewOllamaProvider(endpoint, model string, timeout time.Duration, prompts Prompts) (*OllamaProvider, error) {
	base, err := ollamaBaseURL(endpoint)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &OllamaProvider{
		client:   api.NewClient(base, &http.Client{Timeout: timeout}),
		endpoint: base.String(),
		model:    model,
		prompts:  prompts,
	}, nil
}

// ollamaBaseURL strips the API path because the client appends /api/... itself.
func ollamaBaseURL(endpoint string) (*url.URL, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	for _, suffix := range []string{"/api/chat", "/api/generate", "/api"} {
		if strings.HasSuffix(endpoint, suffix) {
			endpoint = strings.TrimSuffix(endpoint, suffix)
			break
		}
	}

	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperrors.NewInvalidConfigError(
			fmt.Sprintf("invalid Ollama endpoint %q: must start with http:// or https://", endpoint))
	}
	return u, nil
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Model returns the model used for requests.
func (p *OllamaProvider) Model() string {
	return p.model
}

// Endpoint returns the server base URL.
func (p *OllamaProvider) Endpoint() string {
	return p.endpoint
}

// GenerateCommitMessage sends the diff to /api/chat and returns the cleaned reply.
func (p *OllamaProvider) GenerateCommitMessage(ctx context.Context, req GenerateRequest) (string, error) {
	reply, err := p.chat(ctx, p.prompts.SystemFor(req.Oneline), BuildUserPrompt(req.Diff))
	if err != nil {
		return "", err
	}

	msg := finalizeMessage(reply, req.Oneline)
	if msg == "" {
		return "", apperrors.NewEmptyResponseError("Ollama")
	}
	return msg, nil
}

// AnalyzeDiffForCommits asks the model how the diff should be split.
func (p *OllamaProvider) AnalyzeDiffForCommits(ctx context.Context, diff string) ([]CommitSuggestion, error) {
	reply, err := p.chat(ctx, p.prompts.Analyze, BuildAnalyzePrompt(diff))
	if err != nil {
		return nil, err
	}
	suggestions, err := ParseCommitSuggestions(reply)
	if err != nil {
		return nil, apperrors.NewAIProviderError("Ollama", err)
	}
	return suggestions, nil
}

func (p *OllamaProvider) chat(ctx context.Context, system, user string) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: p.model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: &stream,
	}

	apperrors.LogAPIRequest("ollama", p.endpoint, p.model, len(user))
	start := time.Now()

	var reply strings.Builder
	err := p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", p.wrapError(err)
	}

	apperrors.LogAPIResponse("ollama", http.StatusOK, reply.Len(), time.Since(start))
	return reply.String(), nil
}

// Stream sends prompt to /api/generate and passes each chunk to fn as it arrives.
func (p *OllamaProvider) Stream(ctx context.Context, prompt string, fn func(chunk string) error) error {
	stream := true
	req := &api.GenerateRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: &stream,
	}

	apperrors.LogAPIRequest("ollama", p.endpoint, p.model, len(prompt))
	start := time.Now()
	received := 0

	err := p.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		if resp.Response == "" {
			return nil
		}
		received += len(resp.Response)
		return fn(resp.Response)
	})
	if err != nil {
		return p.wrapError(err)
	}

	apperrors.LogAPIResponse("ollama", http.StatusOK, received, time.Since(start))
	return nil
}

// ListModels returns the names of the models pulled on the server.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]string, error) {
	resp, err := p.client.List(ctx)
	if err != nil {
		return nil, p.wrapError(err)
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names, nil
}

// wrapError maps client failures onto the error taxonomy.
func (p *OllamaProvider) wrapError(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusNotFound:
			return apperrors.Wrap(err, apperrors.ErrAIProviderFailed,
				fmt.Sprintf("Ollama model %q not found", p.model)).
				WithSuggestion(fmt.Sprintf("Pull the model with 'ollama pull %s'", p.model))
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperrors.NewAuthenticationError("Ollama")
		case http.StatusTooManyRequests:
			return apperrors.NewRateLimitError("Ollama")
		default:
			return apperrors.NewAIProviderError("Ollama", err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
		return apperrors.NewTimeoutError(err)
	}

	if strings.Contains(err.Error(), "connection refused") {
		appErr := apperrors.NewNetworkError(err).
			WithSuggestion("Make sure Ollama is running with 'ollama serve'").
			WithContext("endpoint", p.endpoint)
		appErr.Message = "cannot connect to Ollama"
		return appErr
	}

	return apperrors.NewAIProviderError("Ollama", err)
}
