// Package themes holds the lipgloss styles of the home view.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Card          lipgloss.Style
	CardLabel     lipgloss.Style
	CurrencyValue lipgloss.Style
	NumberValue   lipgloss.Style
	StatusError   lipgloss.Style
	StatusPending lipgloss.Style
	StatusSuccess lipgloss.Style
	Help          lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Success       lipgloss.Color
	Error         lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	// Colors
	Primary: lipgloss.Color("#7c3aed"),
	Success: lipgloss.Color("#10b981"),
	Error:   lipgloss.Color("#ef4444"),
	Border:  lipgloss.Color("#404040"),
	Muted:   lipgloss.Color("#737373"),

	// Text styles
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")).
		MarginBottom(1),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),

	// Cards
	Card: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
	CardLabel: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	CurrencyValue: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#10b981")),
	NumberValue: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#a78bfa")),

	// Status styles
	StatusSuccess: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")).
		Bold(true),
	StatusError: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")).
		Bold(true),
	StatusPending: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")).
		Italic(true),
}
