package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/gaicli/gai/internal/pkg/errors"
)

// OpenAIProvider talks to the OpenAI API or any compatible /chat/completions endpoint.
type OpenAIProvider struct {
	client  *openai.Client
	baseURL string
	model   string
	prompts Prompts
}

// NewOpenAIProvider creates a provider for baseURL.
// A trailing /chat/completions on baseURL is dropped because the client appends it.
func NewOpenAIProvider(apiKey, baseURL, model string, timeout time.Duration, prompts Prompts) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, apperrors.NewMissingAPIKeyError("openai")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL = OpenAIBaseURL(baseURL); baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(clientConfig),
		baseURL: clientConfig.BaseURL,
		model:   model,
		prompts: prompts,
	}, nil
}

// OpenAIBaseURL normalizes a CHAT_URL value into a client base URL.
func OpenAIBaseURL(chatURL string) string {
	chatURL = strings.TrimRight(strings.TrimSpace(chatURL), "/")
	return strings.TrimSuffix(chatURL, "/chat/completions")
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Model returns the model used for requests.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// GenerateCommitMessage sends the diff as a chat completion and returns the cleaned reply.
func (p *OpenAIProvider) GenerateCommitMessage(ctx context.Context, req GenerateRequest) (string, error) {
	reply, err := p.complete(ctx, p.prompts.SystemFor(req.Oneline), BuildUserPrompt(req.Diff))
	if err != nil {
		return "", err
	}

	msg := finalizeMessage(reply, req.Oneline)
	if msg == "" {
		return "", apperrors.NewEmptyResponseError("OpenAI")
	}
	return msg, nil
}

// AnalyzeDiffForCommits asks the model how the diff should be split.
func (p *OpenAIProvider) AnalyzeDiffForCommits(ctx context.Context, diff string) ([]CommitSuggestion, error) {
	reply, err := p.complete(ctx, p.prompts.Analyze, BuildAnalyzePrompt(diff))
	if err != nil {
		return nil, err
	}
	suggestions, err := ParseCommitSuggestions(reply)
	if err != nil {
		return nil, apperrors.NewAIProviderError("OpenAI", err)
	}
	return suggestions, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	apperrors.LogAPIRequest("openai", p.baseURL, p.model, len(user))
	start := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", wrapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.NewEmptyResponseError("OpenAI")
	}
	content := resp.Choices[0].Message.Content
	apperrors.LogAPIResponse("openai", http.StatusOK, len(content), time.Since(start))
	return content, nil
}

// ListModels returns the model ids the endpoint offers.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]string, error) {
	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, wrapOpenAIError(err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

// wrapOpenAIError maps client failures onto the error taxonomy.
func wrapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return apperrors.NewAuthenticationError("OpenAI")
		case http.StatusTooManyRequests:
			return apperrors.NewRateLimitError("OpenAI")
		case http.StatusNotFound:
			return apperrors.Wrap(err, apperrors.ErrAIProviderFailed, fmt.Sprintf("model or endpoint not found: %s", apiErr.Message)).
				WithSuggestion("Check MODEL and CHAT_URL")
		default:
			return apperrors.Wrap(err, apperrors.ErrAIProviderFailed,
				fmt.Sprintf("API error (status %d): %s", apiErr.HTTPStatusCode, apiErr.Message))
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return apperrors.NewAuthenticationError("OpenAI")
		case http.StatusTooManyRequests:
			return apperrors.NewRateLimitError("OpenAI")
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
		return apperrors.NewTimeoutError(err)
	}
	if strings.Contains(err.Error(), "connection refused") || strings.Contains(err.Error(), "no such host") {
		return apperrors.NewNetworkError(err)
	}

	return apperrors.NewAIProviderError("OpenAI", err)
}
