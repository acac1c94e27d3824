package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/hark/internal/settings"
)

type palette struct {
	background lipgloss.Color
	text       lipgloss.Color
	muted      lipgloss.Color
	accent     lipgloss.Color
	warning    lipgloss.Color
	errorText  lipgloss.Color
}

var (
	lightPalette = palette{
		background: lipgloss.Color("#FFFFFF"),
		text:       lipgloss.Color("#1C1C1E"),
		muted:      lipgloss.Color("#8E8E93"),
		accent:     lipgloss.Color("#007AFF"),
		warning:    lipgloss.Color("#FF9500"),
		errorText:  lipgloss.Color("#FF3B30"),
	}
	darkPalette = palette{
		background: lipgloss.Color("#000000"),
		text:       lipgloss.Color("#FFFFFF"),
		muted:      lipgloss.Color("#8E8E93"),
		accent:     lipgloss.Color("#0A84FF"),
		warning:    lipgloss.Color("#FF9F0A"),
		errorText:  lipgloss.Color("#FF453A"),
	}
)

type theme struct {
	palette

	screen    lipgloss.Style
	title     lipgloss.Style
	paragraph lipgloss.Style
	status    lipgloss.Style
	progress  lipgloss.Style
	bookmark  lipgloss.Style
	speaking  lipgloss.Style
	selected  lipgloss.Style
	label     lipgloss.Style
	errorLine lipgloss.Style
}

func newTheme(s settings.Settings) theme {
	p := lightPalette
	if s.DarkMode {
		p = darkPalette
	}

	base := lipgloss.NewStyle().Foreground(p.text).Background(p.background)
	paragraph := base.Padding(1, 2)
	if s.FontSize >= 24 {
		paragraph = paragraph.Bold(true)
	}

	return theme{
		palette:   p,
		screen:    base,
		title:     base.Bold(true).Foreground(p.accent).Padding(0, 1),
		paragraph: paragraph,
		status:    base.Foreground(p.muted).Padding(0, 1),
		progress:  base.Foreground(p.muted).Italic(true),
		bookmark:  base.Foreground(p.accent).Bold(true),
		speaking:  base.Foreground(p.warning).Bold(true),
		selected:  base.Foreground(p.accent).Bold(true),
		label:     base.Width(16),
		errorLine: base.Foreground(p.errorText).Padding(0, 1),
	}
}

// paragraphWidth narrows the reading column as the font size grows, the
// closest a terminal gets to larger type.
func paragraphWidth(termWidth, fontSize int) int {
	if fontSize < settings.MinFontSize {
		fontSize = settings.MinFontSize
	}
	w := (termWidth - 4) * settings.MinFontSize / fontSize
	return max(w, 20)
}
