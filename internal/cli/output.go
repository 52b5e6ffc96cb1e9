package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Veraticus/homestats/internal/model"
	"github.com/Veraticus/homestats/internal/tui/viewmodel"
	"github.com/charmbracelet/lipgloss"
)

// Output formats accepted by WriteCards.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// cardsDocument is the JSON shape of `show --format json`.
type cardsDocument struct {
	FetchedAt *time.Time       `json:"fetchedAt,omitempty"`
	Error     string           `json:"error,omitempty"`
	Cards     []model.StatCard `json:"cards"`
}

// WriteCards prints cards in the requested format. status supplies the
// fetch time and error shown next to the cards.
func WriteCards(w io.Writer, format string, cards []model.StatCard, status viewmodel.FetchStatus, formatter viewmodel.Formatter) error {
	switch format {
	case FormatJSON:
		return writeCardsJSON(w, cards, status)
	case FormatText, "":
		_, err := fmt.Fprintln(w, RenderCards(cards, formatter))
		return err
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, FormatText, FormatJSON)
	}
}

func writeCardsJSON(w io.Writer, cards []model.StatCard, status viewmodel.FetchStatus) error {
	doc := cardsDocument{Cards: cards}
	if status.State == viewmodel.FetchResolved && !status.FetchedAt.IsZero() {
		fetchedAt := status.FetchedAt.UTC()
		doc.FetchedAt = &fetchedAt
	}
	if status.Err != nil {
		doc.Error = status.Err.Error()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode cards: %w", err)
	}
	return nil
}

// RenderCards renders one card per line, labels aligned.
func RenderCards(cards []model.StatCard, formatter viewmodel.Formatter) string {
	labelWidth := 0
	for _, card := range cards {
		labelWidth = max(labelWidth, lipgloss.Width(card.Label))
	}

	lines := make([]string, 0, len(cards))
	for _, card := range cards {
		pad := strings.Repeat(" ", labelWidth-lipgloss.Width(card.Label))
		lines = append(lines, LabelStyle.Render(card.Label+pad)+ValueStyle.Render(formatter.Format(card)))
	}
	return strings.Join(lines, "\n")
}

// RenderHistory renders recorded snapshots as a table, newest first.
func RenderHistory(snapshots []model.Snapshot, formatter viewmodel.Formatter) string {
	if len(snapshots) == 0 {
		return SubtleStyle.Render("No snapshots recorded yet.")
	}

	header := []string{"Fetched"}
	for _, slot := range model.CardSlots {
		header = append(header, slot.Label())
	}
	header = append(header, "Source")

	rows := [][]string{header}
	for _, snap := range snapshots {
		row := []string{snap.FetchedAt.Local().Format("2006-01-02 15:04:05")}
		for _, card := range viewmodel.BuildStatCards(&snap.Statistics) {
			row = append(row, formatter.Format(card))
		}
		row = append(row, snap.Source)
		rows = append(rows, row)
	}

	widths := make([]int, len(header))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	lines := make([]string, 0, len(rows))
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = TableCellStyle.Render(cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
		}
		line := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
		if r == 0 {
			line = TableHeaderStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
