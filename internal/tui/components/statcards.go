package components

import (
	"strings"

	"github.com/Veraticus/homestats/internal/model"
	"github.com/Veraticus/homestats/internal/tui/themes"
	"github.com/Veraticus/homestats/internal/tui/viewmodel"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Layout breakpoints.
const (
	wideWidth   = 100
	mediumWidth = 50
	cardGap     = 1
)

// StatCardsModel renders the summary cards of the home view.
type StatCardsModel struct {
	theme     themes.Theme
	formatter viewmodel.Formatter
	cards     []model.StatCard
	width     int
	height    int
}

// NewStatCardsModel creates a card grid showing zero-valued cards.
func NewStatCardsModel(theme themes.Theme, formatter viewmodel.Formatter) StatCardsModel {
	return StatCardsModel{
		theme:     theme,
		formatter: formatter,
		cards:     viewmodel.BuildStatCards(nil),
	}
}

// Update handles messages.
func (m StatCardsModel) Update(msg tea.Msg) (StatCardsModel, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.Resize(msg.Width, msg.Height)
	}
	return m, nil
}

// SetCards replaces the displayed cards.
func (m *StatCardsModel) SetCards(cards []model.StatCard) {
	m.cards = cards
}

// Cards returns the displayed cards.
func (m StatCardsModel) Cards() []model.StatCard {
	return m.cards
}

// Resize updates the component size.
func (m *StatCardsModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

// Columns returns how many cards fit on one row at the current width.
func (m StatCardsModel) Columns() int {
	switch {
	case m.width >= wideWidth:
		return 4
	case m.width >= mediumWidth:
		return 2
	default:
		return 1
	}
}

// View renders the cards in rows of Columns() cards.
func (m StatCardsModel) View() string {
	if len(m.cards) == 0 {
		return ""
	}

	cols := m.Columns()
	cardWidth := m.cardWidth(cols)

	var rows []string
	for start := 0; start < len(m.cards); start += cols {
		end := min(start+cols, len(m.cards))

		row := make([]string, 0, 2*(end-start))
		for i, card := range m.cards[start:end] {
			if i > 0 {
				row = append(row, strings.Repeat(" ", cardGap))
			}
			row = append(row, m.renderCard(card, cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// cardWidth is the outer width of one card, borders included.
func (m StatCardsModel) cardWidth(cols int) int {
	if m.width <= 0 {
		return 24
	}
	w := (m.width - cardGap*(cols-1)) / cols
	return max(w, 12)
}

func (m StatCardsModel) renderCard(card model.StatCard, width int) string {
	valueStyle := m.theme.NumberValue
	if card.Type == model.CardTypeCurrency {
		valueStyle = m.theme.CurrencyValue
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		m.theme.CardLabel.Render(card.Label),
		valueStyle.Render(m.formatter.Format(card)),
	)

	// Width excludes the border, so subtract it from the outer width.
	return m.theme.Card.Width(width - 2).Render(content)
}
