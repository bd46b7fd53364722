// Package processor prepares staged diffs for prompting.
package processor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

const (
	// DefaultMaxPromptSize caps the diff text sent to a provider.
	DefaultMaxPromptSize = 100 * 1024
	// TruncationMarker is appended when a diff is cut.
	TruncationMarker = "... [diff truncated]"
)

// metadataPrefixes are diff lines that carry no information for a commit message.
var metadataPrefixes = []string{"index ", "@@", "diff --git"}

// ProcessedDiff contains the result of diff processing.
type ProcessedDiff struct {
	// Text is what providers receive.
	Text         string
	Files        []FileDiff
	Excluded     []string
	OriginalSize int
	Truncated    bool
}

// DiffProcessor defines the interface for diff processing.
type DiffProcessor interface {
	Process(diff string) *ProcessedDiff
}

// ProcessorConfig holds configuration for the diff processor.
type ProcessorConfig struct {
	MaxPromptSize   int  // Bytes of diff text kept for the prompt
	KeepLockFiles   bool // Send lock file hunks too
	KeepHunkHeaders bool // Keep index/@@/diff --git lines
}

// DefaultProcessor implements the DiffProcessor interface.
type DefaultProcessor struct {
	config ProcessorConfig
}

// NewProcessor creates a new DefaultProcessor with default configuration.
func NewProcessor() *DefaultProcessor {
	return NewProcessorWithConfig(ProcessorConfig{})
}

// NewProcessorWithConfig creates a new DefaultProcessor with custom configuration.
func NewProcessorWithConfig(config ProcessorConfig) *DefaultProcessor {
	if config.MaxPromptSize <= 0 {
		config.MaxPromptSize = DefaultMaxPromptSize
	}
	return &DefaultProcessor{config: config}
}

// Process drops lock files and metadata lines, then applies the size cap.
func (p *DefaultProcessor) Process(diff string) *ProcessedDiff {
	result := &ProcessedDiff{OriginalSize: len(diff)}

	files := Split(diff)
	var kept strings.Builder
	if len(files) == 0 {
		kept.WriteString(diff)
	}
	for _, f := range files {
		if f.IsLockFile && !p.config.KeepLockFiles {
			result.Excluded = append(result.Excluded, f.Path)
			continue
		}
		result.Files = append(result.Files, f)
		kept.WriteString(f.Content)
	}

	text := kept.String()
	if !p.config.KeepHunkHeaders {
		text = FilterMetadata(text)
	}
	result.Text, result.Truncated = Truncate(text, p.config.MaxPromptSize)

	return result
}

// FilterMetadata removes index, hunk header and diff --git lines.
// It never adds text.
func FilterMetadata(diff string) string {
	lines := strings.Split(diff, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isMetadata(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func isMetadata(line string) bool {
	for _, prefix := range metadataPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// Truncate caps diff at max bytes, cutting on a line boundary. A first line longer
// than max is cut at a rune boundary instead.
func Truncate(diff string, max int) (string, bool) {
	if max <= 0 || len(diff) <= max {
		return diff, false
	}
	cut := diff[:max]
	if idx := strings.LastIndex(cut, "\n"); idx > 0 {
		cut = cut[:idx+1]
	} else {
		end := max
		for end > 0 && !utf8.RuneStart(diff[end]) {
			end--
		}
		cut = diff[:end] + "\n"
	}
	return cut + TruncationMarker + "\n", true
}

// Additions sums added lines over kept files.
func (d *ProcessedDiff) Additions() int {
	total := 0
	for _, f := range d.Files {
		total += f.Additions
	}
	return total
}

// Deletions sums removed lines over kept files.
func (d *ProcessedDiff) Deletions() int {
	total := 0
	for _, f := range d.Files {
		total += f.Deletions
	}
	return total
}

// Summary renders a one-line description such as "3 files, +10/-2, 1.2 kB".
func (d *ProcessedDiff) Summary() string {
	noun := "files"
	if len(d.Files) == 1 {
		noun = "file"
	}
	s := fmt.Sprintf("%d %s, +%d/-%d, %s", len(d.Files), noun, d.Additions(), d.Deletions(),
		humanize.Bytes(uint64(d.OriginalSize)))
	if len(d.Excluded) > 0 {
		s += fmt.Sprintf(" (skipped %s)", strings.Join(d.Excluded, ", "))
	}
	if d.Truncated {
		s += " (truncated)"
	}
	return s
}

// FileList renders one "[A] path (+n/-m)" line per kept file.
func (d *ProcessedDiff) FileList() string {
	var sb strings.Builder
	for _, f := range d.Files {
		symbol := "M"
		switch f.ChangeType {
		case ChangeTypeAdded:
			symbol = "A"
		case ChangeTypeDeleted:
			symbol = "D"
		case ChangeTypeRenamed:
			symbol = "R"
		}
		sb.WriteString(fmt.Sprintf("  [%s] %s (+%d/-%d)", symbol, f.Path, f.Additions, f.Deletions))
		if f.OldPath != "" {
			sb.WriteString(fmt.Sprintf(" renamed from %s", f.OldPath))
		}
		if f.IsBinary {
			sb.WriteString(" binary")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
