package ui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle ANSI 6 (Cyan) reads well on light and dark terminals
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	// UsageStyle ANSI 2 (Green) for arguments and usage lines
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle ANSI 8 (Bright Black) keeps descriptions quiet
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// FlagStyle ANSI 3 (Yellow) for flags
	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Chat transcript styles.
var (
	UserStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	AssistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	NoticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Italic(true)
	ErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	LinkButtonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("5")).
			Padding(0, 1)

	InputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)
