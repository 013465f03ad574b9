package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"issue-tracker/internal/apperr"
	"issue-tracker/internal/model"
	"issue-tracker/internal/session"
)

const (
	pickerPrompt = "Select an issue:"
	maxVisible   = 15
	defaultWidth = 80
)

// — list item ———————————————————————————————————————————————————————————————

type issueItem struct {
	issue model.Issue
	index int // position in the fetched snapshot
}

func (i issueItem) FilterValue() string { return i.issue.Title }

type issueDelegate struct{}

func (issueDelegate) Height() int                             { return 1 }
func (issueDelegate) Spacing() int                            { return 0 }
func (issueDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (issueDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(issueItem)
	if !ok {
		return
	}
	line := it.issue.String()
	if index == m.Index() {
		fmt.Fprint(w, selectedItemStyle.Render("> "+line))
		return
	}
	fmt.Fprint(w, itemStyle.Render(line))
}

// — model ———————————————————————————————————————————————————————————————————

type pickerModel struct {
	list   list.Model
	chosen int
	quit   bool
}

func newPickerModel(issues []model.Issue, cursor int) pickerModel {
	items := make([]list.Item, len(issues))
	for i, is := range issues {
		items[i] = issueItem{issue: is, index: i}
	}

	l := list.New(items, issueDelegate{}, defaultWidth, listHeight(len(items)))
	l.Title = pickerPrompt
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle
	if cursor > 0 && cursor < len(items) {
		l.Select(cursor)
	}

	return pickerModel{list: l, chosen: -1}
}

// listHeight fits the list to its items, plus title and pagination rows.
func listHeight(n int) int {
	return min(n, maxVisible) + 4
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(min(listHeight(len(m.list.Items())), max(msg.Height-2, 5)))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quit = true
			return m, tea.Quit
		case "enter":
			if it, ok := m.list.SelectedItem().(issueItem); ok {
				m.chosen = it.index
				return m, tea.Quit
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.quit {
		return ""
	}
	if m.chosen >= 0 {
		it := m.list.Items()[m.chosen].(issueItem)
		return titleStyle.Render(pickerPrompt) + " " + dimStyle.Render(it.issue.String()) + "\n"
	}
	if len(m.list.Items()) == 0 {
		return errStyle.Render("no issues to choose from") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ navigate   Enter open   q quit"))
	b.WriteString("\n")
	return b.String()
}

// Picker is a session.Chooser backed by an inline bubbles list.
type Picker struct {
	In  io.Reader // nil means stdin
	Out io.Writer // nil means stdout
	// TTY, when set, must be a terminal or Choose fails before drawing.
	TTY *os.File

	// last keeps the cursor on the previously opened issue.
	last int
}

var ErrNoTerminal = errors.New("no terminal available for the issue picker")

func (p *Picker) Choose(ctx context.Context, issues []model.Issue) (int, error) {
	if p.TTY != nil && !term.IsTerminal(int(p.TTY.Fd())) {
		return -1, apperr.Wrap(apperr.Interaction, fmt.Errorf("%w: %s", ErrNoTerminal, p.TTY.Name()))
	}
	prog := tea.NewProgram(newPickerModel(issues, p.last), programOptions(ctx, p.In, p.Out)...)
	final, err := prog.Run()
	if ctx.Err() != nil || errors.Is(err, tea.ErrInterrupted) {
		return -1, session.ErrInterrupted
	}
	if err != nil {
		return -1, apperr.Wrap(apperr.Interaction, err)
	}

	m := final.(pickerModel)
	if m.quit {
		return -1, session.ErrInterrupted
	}
	if m.chosen < 0 {
		return -1, apperr.Wrap(apperr.Interaction, errors.New("picker closed without a selection"))
	}
	p.last = m.chosen
	return m.chosen, nil
}
