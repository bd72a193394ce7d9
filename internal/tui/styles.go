package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#4ade80")
	muted  = lipgloss.Color("#6b7280")
	warn   = lipgloss.Color("#f59e0b")
	danger = lipgloss.Color("#ef4444")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	badgeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0b0f0c")).Background(accent).Padding(0, 1)
	cursorStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	unreadStyle = lipgloss.NewStyle().Bold(true)
	readStyle   = lipgloss.NewStyle().Foreground(muted)
	dimStyle    = lipgloss.NewStyle().Foreground(muted)
	errStyle    = lipgloss.NewStyle().Foreground(danger)
	toastStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
)

// typeStyle colors the type tag of a notification row.
func typeStyle(t string) lipgloss.Style {
	switch t {
	case "warning":
		return lipgloss.NewStyle().Foreground(warn)
	case "success":
		return lipgloss.NewStyle().Foreground(accent)
	case "broadcast":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#60a5fa"))
	default:
		return dimStyle
	}
}
