package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"issue-tracker/internal/apperr"
	"issue-tracker/internal/model"
	"issue-tracker/internal/session"
)

// — spinner —————————————————————————————————————————————————————————————————

const spinnerTick = 120 * time.Millisecond

var fetchSpinner = spinner.Spinner{
	Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	FPS:    spinnerTick, // despite the name, the delay between frames
}

// FetchFunc loads the issue snapshot.
type FetchFunc func(ctx context.Context) ([]model.Issue, error)

// — messages ————————————————————————————————————————————————————————————————

type issuesLoadedMsg struct {
	issues []model.Issue
	err    error
}

// — model ———————————————————————————————————————————————————————————————————

type progressModel struct {
	ctx     context.Context
	fetch   FetchFunc
	label   string
	spinner spinner.Model

	done        bool
	interrupted bool
	issues      []model.Issue
	err         error
}

func newProgressModel(ctx context.Context, label string, fetch FetchFunc) progressModel {
	s := spinner.New(spinner.WithSpinner(fetchSpinner), spinner.WithStyle(cyanSpinnerStyle))
	return progressModel{ctx: ctx, fetch: fetch, label: label, spinner: s}
}

func (m progressModel) fetchCmd() tea.Msg {
	issues, err := m.fetch(m.ctx)
	return issuesLoadedMsg{issues: issues, err: err}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd)
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case issuesLoadedMsg:
		m.done = true
		m.issues = msg.issues
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.done = true
			m.interrupted = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		// stop ticking once settled
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if !m.done {
		return m.spinner.View() + " " + m.label + "\n"
	}
	if m.interrupted || m.err != nil {
		return ""
	}
	return okStyle.Render("✓") + " " + fmt.Sprintf("Found %d issues! Press <C-c> to quit", len(m.issues)) + "\n"
}

// Progress shows a spinner while a fetch is in flight.
type Progress struct {
	In  io.Reader // nil means stdin
	Out io.Writer // nil means stdout
}

// Run calls fetch with a spinner on screen. The spinner is finalized once
// fetch returns; fetch's error is returned unchanged. Ctrl+C cancels the
// fetch and yields session.ErrInterrupted.
func (p Progress) Run(ctx context.Context, label string, fetch FetchFunc) ([]model.Issue, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(newProgressModel(ctx, label, fetch), programOptions(ctx, p.In, p.Out)...)
	final, err := prog.Run()
	if ctx.Err() != nil || errors.Is(err, tea.ErrInterrupted) {
		return nil, session.ErrInterrupted
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Interaction, fmt.Errorf("progress: %w", err))
	}

	m := final.(progressModel)
	if m.interrupted {
		return nil, session.ErrInterrupted
	}
	return m.issues, m.err
}

func programOptions(ctx context.Context, in io.Reader, out io.Writer) []tea.ProgramOption {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	return opts
}
