package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the home view.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderHeader(),
		m.cards.View(),
		m.statusLine(),
		m.theme.Help.Render(m.help.View(m.keymap)),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render(m.config.Title)
	if m.width <= 0 {
		return title
	}

	rule := strings.Repeat("─", max(0, min(m.width, 120)-1))
	return lipgloss.JoinVertical(lipgloss.Left, title, m.theme.Subtitle.Render(rule))
}
