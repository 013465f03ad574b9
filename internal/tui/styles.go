package tui

import "github.com/charmbracelet/lipgloss"

// — styles ——————————————————————————————————————————————————————————————————

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	dimStyle = lipgloss.NewStyle().Faint(true)
	okStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	cyanSpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	itemStyle         = lipgloss.NewStyle().PaddingLeft(2)
	selectedItemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)

	helpStyle = lipgloss.NewStyle().
			Faint(true).
			PaddingLeft(2)
)

// ErrorLabel renders the "Error (kind)" prefix printed on stderr. r should
// be bound to the writer the label goes to so colour is dropped off a TTY.
func ErrorLabel(r *lipgloss.Renderer, kind string) string {
	label := r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("Error")
	return label + r.NewStyle().Faint(true).Render(" ("+kind+")")
}
