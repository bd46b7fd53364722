package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gaicli/gai/internal/pkg/errors"
)

// setupTestRepo creates a temporary git repository with one commit.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	tmpDir := t.TempDir()
	runGit(t, tmpDir, "init")
	runGit(t, tmpDir, "config", "user.email", "test@example.com")
	runGit(t, tmpDir, "config", "user.name", "Test User")
	runGit(t, tmpDir, "config", "commit.gpgsign", "false")

	writeFile(t, tmpDir, "README.md", "# Test\n")
	runGit(t, tmpDir, "add", ".")
	runGit(t, tmpDir, "commit", "-m", "initial commit")

	return tmpDir
}

// runGit runs a git command in the specified directory.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\nOutput: %s", args, err, output)
	}
	return string(output)
}

// writeFile creates a file with the given content.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directories: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestGetStagedDiff_NoStagedChanges(t *testing.T) {
	tmpDir := setupTestRepo(t)

	writeFile(t, tmpDir, "README.md", "# Test\n\nunstaged edit\n")

	client := NewClientWithWorkDir(tmpDir)
	diff, err := client.GetStagedDiff(context.Background())
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestGetStagedDiff_ModifiedFile(t *testing.T) {
	tmpDir := setupTestRepo(t)

	writeFile(t, tmpDir, "main.go", "package main\n\nfunc main() {}\n")
	runGit(t, tmpDir, "add", ".")
	runGit(t, tmpDir, "commit", "-m", "add main")

	writeFile(t, tmpDir, "main.go", "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hello\")\n}\n")
	runGit(t, tmpDir, "add", ".")

	client := NewClientWithWorkDir(tmpDir)
	diff, err := client.GetStagedDiff(context.Background())
	require.NoError(t, err)

	assert.Contains(t, diff, "diff --git a/main.go b/main.go")
	assert.Contains(t, diff, "+\tfmt.Println(\"hello\")")
}

func TestGetStagedDiff_NewAndDeletedFiles(t *testing.T) {
	tmpDir := setupTestRepo(t)

	writeFile(t, tmpDir, "pkg/new.go", "package pkg\n")
	runGit(t, tmpDir, "add", ".")
	runGit(t, tmpDir, "rm", "-q", "README.md")

	client := NewClientWithWorkDir(tmpDir)
	diff, err := client.GetStagedDiff(context.Background())
	require.NoError(t, err)

	assert.Contains(t, diff, "new file mode")
	assert.Contains(t, diff, "deleted file mode")
	assert.Contains(t, diff, "+package pkg")
	assert.Contains(t, diff, "-# Test")
}

func TestGetStagedDiff_NotARepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	client := NewClientWithWorkDir(dir)
	_, err := client.GetStagedDiff(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotRepository), "got %v", err)
}

func TestStagedQueries_NotARepository(t *testing.T) {
	client := NewClientWithWorkDir(t.TempDir())

	_, err := client.GetStagedFiles(context.Background())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotRepository), "files: got %v", err)

	_, err = client.GetDiffStats(context.Background())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotRepository), "stats: got %v", err)
}

func TestClassify(t *testing.T) {
	exitErr := errors.New("exit status 129")

	tests := []struct {
		name   string
		output string
		want   apperrors.ErrorCode
	}{
		{"not a repository", "fatal: not a git repository (or any of the parent directories): .git", apperrors.ErrNotRepository},
		{"no-index fallback", "error: unknown option `staged'\nusage: git diff --no-index [<options>] <path> <path>", apperrors.ErrNotRepository},
		{"other failure", "fatal: bad revision 'HEAD'", apperrors.ErrGitCommandFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(exitErr, []byte(tt.output))
			assert.True(t, apperrors.HasCode(err, tt.want), "got %v", err)
		})
	}

	assert.True(t, apperrors.HasCode(classify(exec.ErrNotFound, nil), apperrors.ErrGitNotFound))
}

func TestGetStagedDiff_GitMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	client := &DefaultClient{workDir: dir, binary: "git-binary-that-does-not-exist"}

	_, err = client.GetStagedDiff(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrGitNotFound), "got %v", err)
}

func TestCommit(t *testing.T) {
	tmpDir := setupTestRepo(t)

	writeFile(t, tmpDir, "README.md", "# Test\n\nUpdated\n")
	runGit(t, tmpDir, "add", ".")

	message := "feat: update readme\n\n- describe the project\n- keep # characters intact"
	client := NewClientWithWorkDir(tmpDir)
	require.NoError(t, client.Commit(context.Background(), message))

	output := runGit(t, tmpDir, "log", "-1", "--format=%B")
	assert.Equal(t, message, strings.TrimSpace(output))
}

func TestCommit_EmptyMessage(t *testing.T) {
	client := NewClientWithWorkDir(t.TempDir())

	err := client.Commit(context.Background(), "  \n ")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidArguments))
}

func TestCommit_NothingStaged(t *testing.T) {
	tmpDir := setupTestRepo(t)

	client := NewClientWithWorkDir(tmpDir)
	err := client.Commit(context.Background(), "chore: nothing")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCommitFailed), "got %v", err)
}

func TestGetDiffStats(t *testing.T) {
	tmpDir := setupTestRepo(t)

	writeFile(t, tmpDir, "file1.go", "package main\n\nfunc one() {}\n")
	writeFile(t, tmpDir, "file2.go", "package main\n\nfunc two() {}\n")
	runGit(t, tmpDir, "add", ".")

	client := NewClientWithWorkDir(tmpDir)
	stats, err := client.GetDiffStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalFiles)
	assert.Equal(t, 6, stats.TotalAdditions)
	assert.Equal(t, 0, stats.TotalDeletions)
	assert.Equal(t, "file1.go", stats.Files[0].Path)
}

func TestGetStagedFiles(t *testing.T) {
	tmpDir := setupTestRepo(t)

	writeFile(t, tmpDir, "src/app.go", "package src\n")
	writeFile(t, tmpDir, "notes.txt", "unstaged\n")
	runGit(t, tmpDir, "add", "src/app.go")

	files, err := NewClientWithWorkDir(tmpDir).GetStagedFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"src/app.go"}, files)
}

func TestIsRepository(t *testing.T) {
	tmpDir := setupTestRepo(t)

	assert.True(t, NewClientWithWorkDir(tmpDir).IsRepository())
	assert.False(t, NewClientWithWorkDir(t.TempDir()).IsRepository())
}

func TestGitDirAndRepoRoot(t *testing.T) {
	tmpDir := setupTestRepo(t)
	sub := filepath.Join(tmpDir, "nested", "dir")
	require.NoError(t, os.MkdirAll(sub, 0755))

	client := NewClientWithWorkDir(sub)

	gitDir, err := client.GitDir()
	require.NoError(t, err)
	resolvedTmp, _ := filepath.EvalSymlinks(tmpDir)
	resolvedGitDir, _ := filepath.EvalSymlinks(gitDir)
	assert.Equal(t, filepath.Join(resolvedTmp, ".git"), resolvedGitDir)

	root, err := client.RepoRoot()
	require.NoError(t, err)
	resolvedRoot, _ := filepath.EvalSymlinks(root)
	assert.Equal(t, resolvedTmp, resolvedRoot)
}

func TestGitDir_NotARepository(t *testing.T) {
	client := NewClientWithWorkDir(t.TempDir())

	_, err := client.GitDir()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotRepository))
}

func TestParseNumstat(t *testing.T) {
	output := []byte("3\t1\tmain.go\n-\t-\tlogo.png\n2\t0\tsrc/{old => new}/util.go\nbroken line\n")

	stats := parseNumstat(output)
	require.Len(t, stats, 3)

	assert.Equal(t, FileStat{Path: "main.go", Additions: 3, Deletions: 1}, stats[0])
	assert.Equal(t, FileStat{Path: "logo.png", IsBinary: true}, stats[1])
	assert.Equal(t, "src/new/util.go", stats[2].Path)
}

func TestExtractNewPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"old.txt => new.txt", "new.txt"},
		{"{old => new}/file.txt", "new/file.txt"},
		{"dir/{old.txt => new.txt}", "dir/new.txt"},
		{"src/{old => new}/main.go", "src/new/main.go"},
		{"src/{ => nested}/main.go", "src/nested/main.go"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := extractNewPath(tt.input)
			if result != tt.expected {
				t.Errorf("extractNewPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
