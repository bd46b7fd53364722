package processor

import (
	"path/filepath"
	"strings"
)

// ChangeType represents the type of change in a diff.
type ChangeType int

const (
	ChangeTypeModified ChangeType = iota
	ChangeTypeAdded
	ChangeTypeDeleted
	ChangeTypeRenamed
)

// String returns the string representation of ChangeType.
func (c ChangeType) String() string {
	switch c {
	case ChangeTypeAdded:
		return "added"
	case ChangeTypeModified:
		return "modified"
	case ChangeTypeDeleted:
		return "deleted"
	case ChangeTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileDiff is the slice of a unified diff that belongs to one file.
type FileDiff struct {
	Path       string
	OldPath    string // For renames, the original file path
	ChangeType ChangeType
	Additions  int
	Deletions  int
	Content    string
	IsLockFile bool
	IsBinary   bool
}

// lockFileNames contains lock files whose hunks are dropped from prompts.
var lockFileNames = []string{
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"go.sum",
	"Cargo.lock",
	"Gemfile.lock",
	"composer.lock",
	"poetry.lock",
	"Pipfile.lock",
}

// IsLockFile checks if a file path names a dependency lock file.
func IsLockFile(filePath string) bool {
	baseName := filepath.Base(filePath)
	for _, name := range lockFileNames {
		if baseName == name {
			return true
		}
	}
	return strings.HasSuffix(baseName, ".lock")
}

// Split cuts a unified diff at "diff --git" headers.
// Text before the first header, if any, is dropped.
func Split(diff string) []FileDiff {
	var files []FileDiff
	for _, part := range splitByFileDiff(diff) {
		if f := parseFileDiff(part); f != nil {
			files = append(files, *f)
		}
	}
	return files
}

func splitByFileDiff(diff string) []string {
	var (
		parts   []string
		current strings.Builder
		started bool
	)
	for _, line := range strings.SplitAfter(diff, "\n") {
		if strings.HasPrefix(line, "diff --git ") {
			if started {
				parts = append(parts, current.String())
				current.Reset()
			}
			started = true
		}
		if started {
			current.WriteString(line)
		}
	}
	if started && current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func parseFileDiff(fileDiff string) *FileDiff {
	lines := strings.Split(fileDiff, "\n")
	if len(lines) == 0 {
		return nil
	}

	f := &FileDiff{Content: fileDiff}
	inHunk := false
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			f.Path = extractFilePath(line)
		case inHunk && strings.HasPrefix(line, "+"):
			f.Additions++
		case inHunk && strings.HasPrefix(line, "-"):
			f.Deletions++
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case strings.HasPrefix(line, "new file mode"):
			f.ChangeType = ChangeTypeAdded
		case strings.HasPrefix(line, "deleted file mode"):
			f.ChangeType = ChangeTypeDeleted
		case strings.HasPrefix(line, "rename from "):
			f.OldPath = strings.TrimPrefix(line, "rename from ")
			f.ChangeType = ChangeTypeRenamed
		case strings.HasPrefix(line, "rename to "):
			f.Path = strings.TrimPrefix(line, "rename to ")
		case strings.HasPrefix(line, "Binary files"):
			f.IsBinary = true
		}
	}

	f.IsLockFile = IsLockFile(f.Path)
	return f
}

// extractFilePath extracts the file path from a diff header line.
// Format: "diff --git a/path/to/file b/path/to/file"
func extractFilePath(line string) string {
	line = strings.TrimPrefix(line, "diff --git ")

	if idx := strings.LastIndex(line, " b/"); idx >= 0 {
		return line[idx+3:]
	}
	if strings.HasPrefix(line, "a/") {
		return strings.TrimPrefix(strings.SplitN(line, " ", 2)[0], "a/")
	}
	return line
}
