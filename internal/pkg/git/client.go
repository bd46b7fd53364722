// Package git provides Git operations for gai.
package git

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"

	apperrors "github.com/gaicli/gai/internal/pkg/errors"
)

const (
	// GitCommandTimeout is the default timeout for git commands.
	GitCommandTimeout = 10 * time.Second
	// CommitTimeout leaves room for commit hooks.
	CommitTimeout = 2 * time.Minute
)

// StagedDiffArgs is the invocation used to capture the staged changeset.
var StagedDiffArgs = []string{"diff", "--staged", "--minimal", "--unified=5"}

// FileStat holds numstat counters for one staged file.
type FileStat struct {
	Path      string
	Additions int
	Deletions int
	IsBinary  bool
}

// DiffStats contains statistics about the staged changes.
type DiffStats struct {
	TotalFiles     int
	TotalAdditions int
	TotalDeletions int
	Files          []FileStat
}

// Client defines the interface for Git operations.
type Client interface {
	IsRepository() bool
	GetStagedDiff(ctx context.Context) (string, error)
	GetStagedFiles(ctx context.Context) ([]string, error)
	GetDiffStats(ctx context.Context) (*DiffStats, error)
	Commit(ctx context.Context, message string) error
	GitDir() (string, error)
}

// DefaultClient implements the Client interface using exec.CommandContext.
type DefaultClient struct {
	// workDir is the working directory for git commands.
	// If empty, uses the current directory.
	workDir string
	binary  string
}

// NewClient creates a new DefaultClient.
func NewClient() *DefaultClient {
	return &DefaultClient{binary: "git"}
}

// NewClientWithWorkDir creates a new DefaultClient with a specific working directory.
func NewClientWithWorkDir(workDir string) *DefaultClient {
	return &DefaultClient{workDir: workDir, binary: "git"}
}

func (c *DefaultClient) run(ctx context.Context, timeout time.Duration, stdin io.Reader, args ...string) ([]byte, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary, args...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Stdin = stdin

	start := time.Now()
	err := cmd.Run()
	apperrors.LogGitCommand(args, time.Since(start), err)

	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return stdout.Bytes(), stderr.Bytes(), apperrors.NewTimeoutError(ctx.Err())
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

// classify maps a failed git invocation onto the error taxonomy.
func classify(err error, output []byte) error {
	if apperrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, exec.ErrNotFound) {
		return apperrors.NewGitNotFoundError(err)
	}
	text := strings.TrimSpace(string(output))
	lower := strings.ToLower(text)
	// Outside a work tree "git diff" switches to --no-index mode and rejects --staged.
	if strings.Contains(lower, "not a git repository") || strings.Contains(lower, "unknown option `staged'") {
		return apperrors.NewNotRepositoryError(err).WithContext("output", text)
	}
	return apperrors.NewGitError(err, text)
}

// GetStagedDiff returns the staged changeset as text.
// An empty string means nothing is staged.
func (c *DefaultClient) GetStagedDiff(ctx context.Context) (string, error) {
	if _, err := c.open(); err != nil {
		return "", err
	}
	stdout, stderr, err := c.run(ctx, GitCommandTimeout, nil, StagedDiffArgs...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 &&
			len(bytes.TrimSpace(stdout)) == 0 && len(bytes.TrimSpace(stderr)) == 0 {
			return "", nil
		}
		return "", classify(err, stderr)
	}

	if len(bytes.TrimSpace(stdout)) == 0 {
		return "", nil
	}
	return string(stdout), nil
}

// GetStagedFiles lists the paths in the index that differ from HEAD.
func (c *DefaultClient) GetStagedFiles(ctx context.Context) ([]string, error) {
	if _, err := c.open(); err != nil {
		return nil, err
	}
	stdout, stderr, err := c.run(ctx, GitCommandTimeout, nil, "diff", "--staged", "--name-only")
	if err != nil {
		return nil, classify(err, stderr)
	}

	var files []string
	for _, line := range strings.Split(string(stdout), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// GetDiffStats retrieves numstat counters for staged changes.
func (c *DefaultClient) GetDiffStats(ctx context.Context) (*DiffStats, error) {
	if _, err := c.open(); err != nil {
		return nil, err
	}
	stdout, stderr, err := c.run(ctx, GitCommandTimeout, nil, "diff", "--staged", "--numstat")
	if err != nil {
		return nil, classify(err, stderr)
	}

	files := parseNumstat(stdout)
	stats := &DiffStats{
		TotalFiles: len(files),
		Files:      files,
	}
	for _, f := range files {
		stats.TotalAdditions += f.Additions
		stats.TotalDeletions += f.Deletions
	}
	return stats, nil
}

// Commit records the staged changes with message.
// The message is passed on stdin so multi-line text reaches git unchanged.
func (c *DefaultClient) Commit(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return apperrors.New(apperrors.ErrInvalidArguments, "commit message is empty")
	}

	stdout, stderr, err := c.run(ctx, CommitTimeout, strings.NewReader(message), "commit", "-F", "-")
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		if errors.Is(err, exec.ErrNotFound) {
			return apperrors.NewGitNotFoundError(err)
		}
		output := strings.TrimSpace(string(stdout) + "\n" + string(stderr))
		return apperrors.NewCommitFailedError(err, output)
	}
	return nil
}

// IsRepository reports whether the working directory is inside a git work tree.
func (c *DefaultClient) IsRepository() bool {
	_, err := c.open()
	return err == nil
}

// GitDir returns the repository's git directory, where COMMIT_EDITMSG lives.
func (c *DefaultClient) GitDir() (string, error) {
	repo, err := c.open()
	if err != nil {
		return "", err
	}
	storage, ok := repo.Storer.(*filesystem.Storage)
	if !ok {
		return "", apperrors.NewNotRepositoryError(errors.New("repository has no on-disk storage"))
	}
	return storage.Filesystem().Root(), nil
}

// RepoRoot returns the top level directory of the work tree.
func (c *DefaultClient) RepoRoot() (string, error) {
	repo, err := c.open()
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", apperrors.NewNotRepositoryError(err)
	}
	return wt.Filesystem.Root(), nil
}

func (c *DefaultClient) open() (*gogit.Repository, error) {
	dir := c.workDir
	if dir == "" {
		dir = "."
	}
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, apperrors.NewNotRepositoryError(err)
	}
	return repo, nil
}

// parseNumstat parses the output of git diff --numstat.
// Format: additions<TAB>deletions<TAB>filepath
// Binary files show as: -<TAB>-<TAB>filepath
func parseNumstat(output []byte) []FileStat {
	var stats []FileStat
	scanner := bufio.NewScanner(bytes.NewReader(output))

	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\t")
		if len(parts) < 3 {
			continue
		}

		addStr, delStr, filePath := parts[0], parts[1], parts[2]
		if strings.Contains(filePath, " => ") {
			filePath = extractNewPath(filePath)
		}

		stat := FileStat{Path: filePath}
		if addStr == "-" && delStr == "-" {
			stat.IsBinary = true
		} else {
			stat.Additions, _ = strconv.Atoi(addStr)
			stat.Deletions, _ = strconv.Atoi(delStr)
		}
		stats = append(stats, stat)
	}

	return stats
}

var renameBraces = regexp.MustCompile(`\{([^}]*) => ([^}]*)\}`)

// extractNewPath extracts the new file path from git rename notation.
// Examples:
//   - "old.txt => new.txt" -> "new.txt"
//   - "{old => new}/file.txt" -> "new/file.txt"
//   - "dir/{old.txt => new.txt}" -> "dir/new.txt"
func extractNewPath(renamePath string) string {
	if !strings.Contains(renamePath, "{") {
		parts := strings.Split(renamePath, " => ")
		if len(parts) == 2 {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.ReplaceAll(renameBraces.ReplaceAllString(renamePath, "$2"), "//", "/")
}
