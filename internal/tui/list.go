package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"cardlore/internal/catalog"
)

// linesPerItem is the number of terminal lines each card occupies.
const linesPerItem = 2

// renderList renders the left panel: the card list with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.cards) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No cards")
		return empty
	}

	var lines []string
	for i, c := range m.cards {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		rows := formatCardLine(c, width, i == m.cursor)
		lines = append(lines, rows...)
	}

	// Pad remaining lines
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatCardLine formats a single card as two lines:
//
//	line 1: [>] status  name
//	line 2:    summary or card key (dimmed)
func formatCardLine(c catalog.CardRow, width int, selected bool) []string {
	var status string
	switch {
	case c.ConvertedAt != "":
		status = styleConverted.Render("done")
	case c.HasMeta:
		status = styleUnconverted.Render("card")
	default:
		status = styleNoMeta.Render("----")
	}

	name := strings.ReplaceAll(c.Name, "\n", " ")
	nameMax := width - 2 - 5 - 2 // prefix + status + padding
	if nameMax < 0 {
		nameMax = 0
	}
	if runewidth.StringWidth(name) > nameMax {
		name = runewidth.Truncate(name, nameMax, "")
	}

	line1 := fmt.Sprintf("%s %s", status, name)
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	detail := c.Summary
	if detail == "" {
		detail = c.CardKey
	}
	detail = strings.ReplaceAll(detail, "\n", " ")
	detailMax := width - 4 // indent
	if detailMax < 0 {
		detailMax = 0
	}
	if runewidth.StringWidth(detail) > detailMax {
		detail = runewidth.Truncate(detail, detailMax, "")
	}
	line2 := "    " + lipgloss.NewStyle().Foreground(colorDim).Render(detail)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
