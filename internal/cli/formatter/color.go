package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/progression"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// ModeStyle returns the style tasks of mode are drawn in.
func ModeStyle(m domain.Mode) lipgloss.Style {
	if m == domain.ModeBlue {
		return StyleBlue
	}
	return StyleGreen
}

// ModeBadge returns a styled mode indicator such as "● GREEN (override)".
func ModeBadge(m domain.Mode, origin string) string {
	label := "● " + strings.ToUpper(string(m))
	if m == domain.ModeBlue {
		label = "◐ " + strings.ToUpper(string(m))
	}
	badge := ModeStyle(m).Bold(true).Render(label)
	if origin != "" {
		badge += Dim(fmt.Sprintf(" (%s)", origin))
	}
	return badge
}

// StatusCell renders one day of a goal's recent-history grid.
func StatusCell(s progression.DayStatus) string {
	switch s {
	case progression.DayCompleted:
		return StyleGreen.Render("■")
	case progression.DayMissed:
		return StyleRed.Render("□")
	default:
		return StyleDim.Render("·")
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
