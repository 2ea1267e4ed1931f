package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"cardlore/internal/catalog"
	"cardlore/internal/render"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	cardKey string
	content string
	err     error
}

// loadPreviewCmd returns a tea.Cmd that renders the card preview async.
func loadPreviewCmd(c catalog.CardRow, width int) tea.Cmd {
	return func() tea.Msg {
		content, err := render.RenderCard(c.FilePath, render.Options{Width: width})
		return previewRenderedMsg{
			cardKey: c.CardKey,
			content: content,
			err:     err,
		}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
