package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Spinner provides loading animation functionality.
type Spinner interface {
	Start()
	Stop()
	UpdateText(text string)
}

// ProgressSpinner is a spinner with a completion bar.
type ProgressSpinner interface {
	Spinner
	SetCurrent(current int)
}

// spinnerTextMsg replaces the spinner label.
type spinnerTextMsg struct {
	text string
}

// spinnerQuitMsg signals the spinner to quit.
type spinnerQuitMsg struct{}

// spinnerModel is the Bubble Tea model for simple spinner.
type spinnerModel struct {
	spinner  spinner.Model
	text     string
	quitting bool
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTextMsg:
		m.text = msg.text
		return m, nil
	case spinnerQuitMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.text)
}

func newSpinnerModel(text string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return spinnerModel{spinner: s, text: text}
}

// teaRunner runs a Bubble Tea program in the background without reading stdin,
// so the caller can prompt right after Stop.
type teaRunner struct {
	mu      sync.Mutex
	out     io.Writer
	program *tea.Program
	done    chan struct{}
}

func (r *teaRunner) start(model tea.Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		return
	}

	r.program = tea.NewProgram(model, tea.WithOutput(r.out), tea.WithInput(nil))
	r.done = make(chan struct{})
	go func(p *tea.Program, done chan struct{}) {
		defer close(done)
		_, _ = p.Run()
	}(r.program, r.done)
}

func (r *teaRunner) send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program != nil {
		r.program.Send(msg)
	}
}

func (r *teaRunner) stop(msg tea.Msg) {
	r.mu.Lock()
	p, done := r.program, r.done
	r.program = nil
	r.mu.Unlock()

	if p == nil {
		return
	}
	p.Send(msg)
	<-done
}

// bubbleSpinner implements Spinner using Bubble Tea.
type bubbleSpinner struct {
	text   string
	runner teaRunner
}

func newBubbleSpinner(out io.Writer, text string) *bubbleSpinner {
	return &bubbleSpinner{text: text, runner: teaRunner{out: out}}
}

func (s *bubbleSpinner) Start() {
	s.runner.start(newSpinnerModel(s.text))
}

func (s *bubbleSpinner) Stop() {
	s.runner.stop(spinnerQuitMsg{})
}

func (s *bubbleSpinner) UpdateText(text string) {
	s.runner.send(spinnerTextMsg{text: text})
}

// progressModel is the Bubble Tea model for progress spinner.
type progressModel struct {
	spinner  spinner.Model
	progress progress.Model
	text     string
	total    int
	current  int
	quitting bool
}

// progressUpdateMsg updates progress state.
type progressUpdateMsg struct {
	current int
	text    string
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressUpdateMsg:
		m.current = msg.current
		if msg.text != "" {
			m.text = msg.text
		}
		return m, nil
	case spinnerQuitMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.quitting {
		return ""
	}

	percent := 0.0
	if m.total > 0 {
		percent = float64(m.current) / float64(m.total)
	}

	var sb strings.Builder
	sb.WriteString(m.spinner.View())
	sb.WriteString(" ")
	sb.WriteString(m.progress.ViewAs(percent))
	sb.WriteString(fmt.Sprintf(" %d/%d ", m.current, m.total))
	sb.WriteString(m.text)
	return sb.String()
}

// bubbleProgressSpinner implements ProgressSpinner using Bubble Tea.
type bubbleProgressSpinner struct {
	mu      sync.Mutex
	text    string
	total   int
	current int
	runner  teaRunner
}

func newBubbleProgressSpinner(out io.Writer, text string, total int) *bubbleProgressSpinner {
	return &bubbleProgressSpinner{text: text, total: total, runner: teaRunner{out: out}}
}

func (s *bubbleProgressSpinner) Start() {
	s.mu.Lock()
	model := progressModel{
		spinner: newSpinnerModel("").spinner,
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(20),
			progress.WithoutPercentage(),
		),
		text:  s.text,
		total: s.total,
	}
	s.mu.Unlock()
	s.runner.start(model)
}

func (s *bubbleProgressSpinner) Stop() {
	s.runner.stop(spinnerQuitMsg{})
}

func (s *bubbleProgressSpinner) UpdateText(text string) {
	s.mu.Lock()
	s.text = text
	msg := progressUpdateMsg{current: s.current, text: text}
	s.mu.Unlock()
	s.runner.send(msg)
}

func (s *bubbleProgressSpinner) SetCurrent(current int) {
	s.mu.Lock()
	s.current = current
	msg := progressUpdateMsg{current: current, text: s.text}
	s.mu.Unlock()
	s.runner.send(msg)
}

// noopSpinner is used when output is not a terminal.
type noopSpinner struct{}

func (noopSpinner) Start()            {}
func (noopSpinner) Stop()             {}
func (noopSpinner) UpdateText(string) {}
func (noopSpinner) SetCurrent(int)    {}
