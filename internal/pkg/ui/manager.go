// Package ui provides the terminal interaction for gai.
package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	apperrors "github.com/gaicli/gai/internal/pkg/errors"
	"github.com/gaicli/gai/internal/pkg/security"
)

// Action represents a user action in the interactive UI.
type Action int

const (
	ActionApply Action = iota
	ActionEdit
	ActionRegenerate
	ActionQuit
)

// String returns the string representation of an Action.
func (a Action) String() string {
	switch a {
	case ActionApply:
		return "apply"
	case ActionEdit:
		return "edit"
	case ActionRegenerate:
		return "regenerate"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// ActionPrompt is printed before reading a choice.
const ActionPrompt = "[A]pply, [E]dit, [R]-generate, or [Q]uit? (a/e/r/q) "

// ErrInvalidChoice is returned for input that names no action.
var ErrInvalidChoice = errors.New("invalid choice")

// ErrInputRequired is returned when a value must be typed but there is no terminal.
var ErrInputRequired = errors.New("input required but not running interactively")

// ParseAction maps a typed answer to an action. Letters and full words are accepted
// in any case.
func ParseAction(input string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "a", "apply":
		return ActionApply, nil
	case "e", "edit":
		return ActionEdit, nil
	case "r", "regenerate", "r-generate":
		return ActionRegenerate, nil
	case "q", "quit":
		return ActionQuit, nil
	default:
		return ActionQuit, ErrInvalidChoice
	}
}

// Manager defines the interface for UI operations.
type Manager interface {
	DisplayMessage(message string)
	DisplayWarnings(warnings []string)
	DisplayFindings(findings []security.Finding)
	PromptAction() (Action, error)
	ConfirmCredentials() (bool, error)
	// EditMessage opens the editor on initial, using path as the buffer when set.
	EditMessage(initial, path string) (string, error)
	PromptInput(prompt string, secret bool) (string, error)
	ShowSpinner(text string) Spinner
	ShowProgressSpinner(text string, total int) ProgressSpinner
	ShowSuccess(message string)
	ShowError(err error)
	ShowInfo(message string)
}

// DefaultManager reads answers line by line from in and renders to out.
type DefaultManager struct {
	in          *bufio.Reader
	out         io.Writer
	editor      string
	interactive bool
	styles      *styles
}

// Options configures a DefaultManager.
type Options struct {
	ColorEnabled bool
	// Interactive enables spinners and masked input. It should be true only on a terminal.
	Interactive bool
	Editor      string
}

// NewDefaultManager creates a new DefaultManager.
func NewDefaultManager(in io.Reader, out io.Writer, opts Options) *DefaultManager {
	return &DefaultManager{
		in:          bufio.NewReader(in),
		out:         out,
		editor:      opts.Editor,
		interactive: opts.Interactive,
		styles:      newStyles(opts.ColorEnabled),
	}
}

// readLine returns one line without its terminator. io.EOF is returned only when
// nothing was read.
func (m *DefaultManager) readLine() (string, error) {
	line, err := m.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// DisplayMessage prints the candidate commit message.
func (m *DefaultManager) DisplayMessage(message string) {
	subject, body, _ := strings.Cut(message, "\n")

	var sb strings.Builder
	sb.WriteString(m.styles.subject.Render(subject))
	if body = strings.Trim(body, "\n"); body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.body.Render(body))
	}

	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, m.styles.title.Render("Generated commit message:"))
	fmt.Fprintln(m.out, m.styles.border.Render(sb.String()))
}

// DisplayWarnings lists advisory lint findings.
func (m *DefaultManager) DisplayWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintln(m.out, m.styles.warning.Render("warning: "+w))
	}
}

// DisplayFindings lists possible credentials with their values masked.
func (m *DefaultManager) DisplayFindings(findings []security.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintln(m.out, m.styles.errorStyle.Render(
		fmt.Sprintf("Potential credentials found in staged changes (%d):", len(findings))))
	for _, f := range findings {
		file := f.File
		if file == "" {
			file = "(unknown file)"
		}
		fmt.Fprintf(m.out, "  %s: %s\n", m.styles.file.Render(file), security.MaskFinding(f))
	}
}

// PromptAction asks for one of apply, edit, regenerate or quit.
// End of input counts as quit.
func (m *DefaultManager) PromptAction() (Action, error) {
	fmt.Fprint(m.out, ActionPrompt)
	line, err := m.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(m.out)
			return ActionQuit, nil
		}
		return ActionQuit, err
	}
	return ParseAction(line)
}

// ConfirmCredentials asks whether to continue despite findings, re-asking until the
// answer is yes or no. End of input counts as no.
func (m *DefaultManager) ConfirmCredentials() (bool, error) {
	for {
		fmt.Fprint(m.out, "Continue anyway? (y/n) ")
		line, err := m.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(m.out)
				return false, nil
			}
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(m.out, "Please answer y or n.")
	}
}

// EditMessage opens the configured editor on initial.
func (m *DefaultManager) EditMessage(initial, path string) (string, error) {
	return editFile(ResolveEditor(m.editor), initial, path)
}

// PromptInput reads a value. Secrets use a masked huh input on a terminal.
func (m *DefaultManager) PromptInput(prompt string, secret bool) (string, error) {
	if secret && m.interactive {
		var value string
		err := huh.NewInput().
			Title(prompt).
			Password(true).
			Value(&value).
			Run()
		return strings.TrimSpace(value), err
	}

	fmt.Fprint(m.out, prompt+" ")
	line, err := m.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ShowSpinner returns a running spinner on a terminal and a no-op otherwise.
func (m *DefaultManager) ShowSpinner(text string) Spinner {
	if !m.interactive {
		return noopSpinner{}
	}
	return newBubbleSpinner(m.out, text)
}

// ShowProgressSpinner returns a spinner with a completion bar.
func (m *DefaultManager) ShowProgressSpinner(text string, total int) ProgressSpinner {
	if !m.interactive {
		return noopSpinner{}
	}
	return newBubbleProgressSpinner(m.out, text, total)
}

// ShowSuccess displays a success message to the user.
func (m *DefaultManager) ShowSuccess(message string) {
	fmt.Fprintln(m.out, m.styles.success.Render(message))
}

// ShowError displays an error message to the user.
func (m *DefaultManager) ShowError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(m.out, m.styles.errorStyle.Render(apperrors.FormatError(err)))
}

// ShowInfo displays a neutral status line.
func (m *DefaultManager) ShowInfo(message string) {
	fmt.Fprintln(m.out, m.styles.info.Render(message))
}

// NonInteractiveManager implements Manager for --yes runs and pipes. It never reads input.
type NonInteractiveManager struct {
	out    io.Writer
	errOut io.Writer
}

// NewNonInteractiveManager creates a new NonInteractiveManager.
func NewNonInteractiveManager(out, errOut io.Writer) *NonInteractiveManager {
	return &NonInteractiveManager{out: out, errOut: errOut}
}

// DisplayMessage prints the message as plain text.
func (m *NonInteractiveManager) DisplayMessage(message string) {
	fmt.Fprintln(m.out, message)
}

// DisplayWarnings writes lint findings to the error stream.
func (m *NonInteractiveManager) DisplayWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintln(m.errOut, "warning: "+w)
	}
}

// DisplayFindings writes masked findings to the error stream.
func (m *NonInteractiveManager) DisplayFindings(findings []security.Finding) {
	for _, f := range findings {
		fmt.Fprintf(m.errOut, "credential: %s: %s\n", f.File, security.MaskFinding(f))
	}
}

// PromptAction always applies.
func (m *NonInteractiveManager) PromptAction() (Action, error) {
	return ActionApply, nil
}

// ConfirmCredentials always declines.
func (m *NonInteractiveManager) ConfirmCredentials() (bool, error) {
	return false, nil
}

// EditMessage returns the message unchanged.
func (m *NonInteractiveManager) EditMessage(initial, _ string) (string, error) {
	return initial, nil
}

// PromptInput fails because there is nobody to answer.
func (m *NonInteractiveManager) PromptInput(string, bool) (string, error) {
	return "", ErrInputRequired
}

// ShowSpinner returns a no-op spinner.
func (m *NonInteractiveManager) ShowSpinner(string) Spinner {
	return noopSpinner{}
}

// ShowProgressSpinner returns a no-op progress spinner.
func (m *NonInteractiveManager) ShowProgressSpinner(string, int) ProgressSpinner {
	return noopSpinner{}
}

// ShowSuccess prints message.
func (m *NonInteractiveManager) ShowSuccess(message string) {
	fmt.Fprintln(m.out, message)
}

// ShowError writes err to the error stream.
func (m *NonInteractiveManager) ShowError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(m.errOut, apperrors.FormatError(err))
}

// ShowInfo writes message to the error stream so stdout carries only the commit message.
func (m *NonInteractiveManager) ShowInfo(message string) {
	fmt.Fprintln(m.errOut, message)
}
