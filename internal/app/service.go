// Package app contains the application layer with business orchestration logic.
package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/gaicli/gai/internal/pkg/ai"
	apperrors "github.com/gaicli/gai/internal/pkg/errors"
	"github.com/gaicli/gai/internal/pkg/git"
	"github.com/gaicli/gai/internal/pkg/message"
	"github.com/gaicli/gai/internal/pkg/processor"
	"github.com/gaicli/gai/internal/pkg/security"
	"github.com/gaicli/gai/internal/pkg/ui"
)

// User facing status lines.
const (
	MsgNoStagedChanges = "No staged changes found. Please stage your changes with 'git add' first."
	MsgAborted         = "Commit aborted."
	MsgInvalidChoice   = "Invalid choice. Please try again."
	MsgEmptyEdit       = "Empty message, nothing committed."
	MsgCommitted       = "Changes committed successfully."
)

// CommitOptions contains options for the commit workflow.
type CommitOptions struct {
	Oneline bool
	// Yes applies the first message without prompting.
	Yes    bool
	DryRun bool
	NoScan bool
	// OutputFile receives the message in Generate.
	OutputFile string
	// BeforePrompt runs before every question the workflow asks. The command layer
	// uses it to hand Ctrl-C back to the default handler while input is awaited.
	BeforePrompt func()
}

func (o *CommitOptions) beforePrompt() {
	if o.BeforePrompt != nil {
		o.BeforePrompt()
	}
}

// CommitService orchestrates the commit message generation workflow.
type CommitService struct {
	gitClient     git.Client
	aiProvider    ai.Provider
	diffProcessor processor.DiffProcessor
	uiManager     ui.Manager
	fs            afero.Fs
}

// NewCommitService creates a new CommitService with the given dependencies.
func NewCommitService(
	gitClient git.Client,
	aiProvider ai.Provider,
	diffProcessor processor.DiffProcessor,
	uiManager ui.Manager,
) *CommitService {
	return &CommitService{
		gitClient:     gitClient,
		aiProvider:    aiProvider,
		diffProcessor: diffProcessor,
		uiManager:     uiManager,
		fs:            afero.NewOsFs(),
	}
}

// WithFs replaces the filesystem used for output files.
func (s *CommitService) WithFs(fs afero.Fs) *CommitService {
	s.fs = fs
	return s
}

// GenerateAndCommit runs the staged diff through the provider and lets the user
// apply, edit, regenerate or quit.
func (s *CommitService) GenerateAndCommit(ctx context.Context, opts *CommitOptions) error {
	if opts == nil {
		opts = &CommitOptions{}
	}

	diff, err := s.stagedDiff(ctx)
	if err != nil || diff == "" {
		return err
	}

	if !opts.NoScan {
		proceed, err := s.checkCredentials(ctx, diff, opts)
		if err != nil || !proceed {
			return err
		}
	}

	prompt := s.prepare(diff)

	msg, err := s.generate(ctx, prompt, opts.Oneline, "Generating commit message...")
	if err != nil {
		return err
	}

	if opts.DryRun {
		s.uiManager.DisplayMessage(msg)
		s.uiManager.DisplayWarnings(message.Lint(msg))
		return nil
	}

	if opts.Yes {
		s.uiManager.DisplayMessage(msg)
		return s.commit(ctx, msg)
	}

	return s.actionLoop(ctx, prompt, msg, opts)
}

// aborted reports a cancelled ctx as a user abort.
func (s *CommitService) aborted(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	s.uiManager.ShowInfo(MsgAborted)
	return apperrors.ErrAborted
}

// actionLoop shows msg and handles choices until the user commits or quits.
func (s *CommitService) actionLoop(ctx context.Context, prompt, msg string, opts *CommitOptions) error {
	for {
		if err := s.aborted(ctx); err != nil {
			return err
		}
		s.uiManager.DisplayMessage(msg)
		s.uiManager.DisplayWarnings(message.Lint(msg))

		opts.beforePrompt()
		action, err := s.uiManager.PromptAction()
		if abortErr := s.aborted(ctx); abortErr != nil {
			return abortErr
		}
		if err != nil {
			if errors.Is(err, ui.ErrInvalidChoice) {
				s.uiManager.ShowInfo(MsgInvalidChoice)
				continue
			}
			return err
		}

		switch action {
		case ui.ActionApply:
			return s.commit(ctx, msg)

		case ui.ActionEdit:
			edited, err := s.uiManager.EditMessage(msg, s.editPath())
			if err != nil {
				s.uiManager.ShowError(err)
				continue
			}
			if strings.TrimSpace(edited) == "" {
				s.uiManager.ShowInfo(MsgEmptyEdit)
				continue
			}
			return s.commit(ctx, edited)

		case ui.ActionRegenerate:
			regenerated, err := s.generate(ctx, prompt, opts.Oneline, "Regenerating commit message...")
			if err != nil {
				s.uiManager.ShowError(err)
				continue
			}
			msg = regenerated

		case ui.ActionQuit:
			s.uiManager.ShowInfo(MsgAborted)
			return nil
		}
	}
}

// Generate produces a message without committing. When opts.OutputFile is set the
// message is also written there.
func (s *CommitService) Generate(ctx context.Context, opts *CommitOptions) (string, error) {
	if opts == nil {
		opts = &CommitOptions{}
	}

	diff, err := s.stagedDiff(ctx)
	if err != nil || diff == "" {
		return "", err
	}

	if !opts.NoScan {
		if findings := security.DetectCredentials(diff); len(findings) > 0 {
			s.uiManager.DisplayFindings(findings)
			s.uiManager.ShowInfo("Run 'gai scan' for details or pass --no-scan to ignore.")
		}
	}

	msg, err := s.generate(ctx, s.prepare(diff), opts.Oneline, "Generating commit message...")
	if err != nil {
		return "", err
	}

	if opts.OutputFile != "" {
		if err := afero.WriteFile(s.fs, opts.OutputFile, []byte(msg+"\n"), 0644); err != nil {
			return "", apperrors.NewFileSystemError(opts.OutputFile, err)
		}
		s.uiManager.ShowSuccess("Commit message written to " + opts.OutputFile)
	}
	return msg, nil
}

// SuggestCommits asks the provider how the staged changes could be split.
func (s *CommitService) SuggestCommits(ctx context.Context) ([]ai.CommitSuggestion, error) {
	diff, err := s.stagedDiff(ctx)
	if err != nil || diff == "" {
		return nil, err
	}

	spinner := s.uiManager.ShowSpinner("Analyzing staged changes...")
	spinner.Start()
	suggestions, err := s.aiProvider.AnalyzeDiffForCommits(ctx, s.prepare(diff))
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	return suggestions, nil
}

// ScanStaged reports possible credentials in the staged changes.
func (s *CommitService) ScanStaged(ctx context.Context) ([]security.Finding, error) {
	diff, err := s.stagedDiff(ctx)
	if err != nil || diff == "" {
		return nil, err
	}
	return security.DetectCredentials(diff), nil
}

// stagedDiff returns the staged changes, or "" after telling the user there are none.
func (s *CommitService) stagedDiff(ctx context.Context) (string, error) {
	diff, err := s.gitClient.GetStagedDiff(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(diff) == "" {
		s.uiManager.ShowInfo(MsgNoStagedChanges)
		return "", nil
	}
	return diff, nil
}

// checkCredentials scans diff and decides whether the workflow continues.
func (s *CommitService) checkCredentials(ctx context.Context, diff string, opts *CommitOptions) (bool, error) {
	findings := security.DetectCredentials(diff)
	if len(findings) == 0 {
		return true, nil
	}

	s.uiManager.DisplayFindings(findings)
	if opts.Yes {
		return false, apperrors.NewCredentialsDetectedError(len(findings))
	}

	opts.beforePrompt()
	ok, err := s.uiManager.ConfirmCredentials()
	if abortErr := s.aborted(ctx); abortErr != nil {
		return false, abortErr
	}
	if err != nil {
		return false, err
	}
	if !ok {
		s.uiManager.ShowInfo(MsgAborted)
	}
	return ok, nil
}

// prepare filters and caps diff. A diff made only of lock files is sent without the
// lock file filter so the provider still has something to describe.
func (s *CommitService) prepare(diff string) string {
	processed := s.diffProcessor.Process(diff)
	apperrors.Debug("staged: %s", processed.Summary())
	if processed.Truncated {
		s.uiManager.ShowInfo("Diff is large and was truncated before sending.")
	}

	if strings.TrimSpace(processed.Text) != "" {
		return processed.Text
	}
	text, _ := processor.Truncate(processor.FilterMetadata(diff), processor.DefaultMaxPromptSize)
	return text
}

func (s *CommitService) generate(ctx context.Context, prompt string, oneline bool, label string) (string, error) {
	spinner := s.uiManager.ShowSpinner(label)
	spinner.Start()
	msg, err := s.aiProvider.GenerateCommitMessage(ctx, ai.GenerateRequest{Diff: prompt, Oneline: oneline})
	spinner.Stop()
	if err != nil {
		return "", err
	}
	return msg, nil
}

func (s *CommitService) commit(ctx context.Context, msg string) error {
	if err := s.gitClient.Commit(ctx, msg); err != nil {
		return err
	}
	s.uiManager.ShowSuccess(MsgCommitted)
	return nil
}

// editPath is the buffer handed to the editor. Outside a repository the editor
// gets a temporary file instead.
func (s *CommitService) editPath() string {
	dir, err := s.gitClient.GitDir()
	if err != nil {
		apperrors.Debug("no git dir for editing: %v", err)
		return ""
	}
	return filepath.Join(dir, "COMMIT_EDITMSG")
}
