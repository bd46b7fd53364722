package ui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultEditor is used when neither EDITOR nor the config names one.
const DefaultEditor = "vim"

// editHelp is appended to the buffer and removed again on read.
const editHelp = `
# Edit the commit message above.
# Lines starting with '#' are ignored. An empty message commits nothing.
`

// ResolveEditor picks the configured editor, then $EDITOR, then vim.
func ResolveEditor(configured string) string {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured
	}
	if env := strings.TrimSpace(os.Getenv("EDITOR")); env != "" {
		return env
	}
	return DefaultEditor
}

// StripComments drops lines starting with '#' and trims the result.
func StripComments(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t\r"))
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// editFile writes initial to path (or a temporary file when path is empty), opens editor on it
// and returns the edited text without comment lines.
func editFile(editor, initial, path string) (string, error) {
	if path == "" {
		tmp, err := os.CreateTemp("", "gai-COMMIT_EDITMSG-*")
		if err != nil {
			return "", fmt.Errorf("failed to create temp file: %w", err)
		}
		path = tmp.Name()
		tmp.Close()
		defer os.Remove(path)
	}

	if err := os.WriteFile(path, []byte(initial+"\n"+editHelp), 0600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	args := strings.Fields(editor)
	if len(args) == 0 {
		args = []string{DefaultEditor}
	}
	cmd := exec.Command(args[0], append(args[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor %q failed: %w", editor, err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read edited file: %w", err)
	}
	return StripComments(string(edited)), nil
}
