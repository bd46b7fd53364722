// Package ai turns staged diffs into commit messages through an LLM provider.
package ai

import (
	"context"
)

// GenerateRequest contains the data needed to generate a commit message.
type GenerateRequest struct {
	// Diff is the processed staged diff, sent verbatim as user content.
	Diff    string
	Oneline bool
}

// CommitSuggestion is one proposed commit when a diff is split into several.
type CommitSuggestion struct {
	Description string   `json:"description"`
	Files       []string `json:"files,omitempty"`
}

// Provider defines the interface for AI providers.
type Provider interface {
	// GenerateCommitMessage returns a cleaned commit message for req.Diff.
	GenerateCommitMessage(ctx context.Context, req GenerateRequest) (string, error)
	AnalyzeDiffForCommits(ctx context.Context, diff string) ([]CommitSuggestion, error)
	Name() string
	Model() string
}

// Streamer is implemented by providers that can stream free-form answers.
type Streamer interface {
	Stream(ctx context.Context, prompt string, fn func(chunk string) error) error
}

// ModelLister is implemented by providers that can enumerate their models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}
