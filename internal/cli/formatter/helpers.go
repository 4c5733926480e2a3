package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// HumanDay names date relative to today: "Today", "Tomorrow", "Yesterday",
// else "Mon Jun 16".
func HumanDay(date, today time.Time) string {
	switch domain.DaysBetween(today, date) {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	case -1:
		return "Yesterday"
	}
	return date.Format("Mon Jan 2")
}

// TruncID returns ShortID(id), dimmed.
func TruncID(id string) string {
	return StyleDim.Render(ShortID(id))
}

// ShortID is the unstyled reference shown for a record: the last 8
// characters, since time-ordered IDs share their leading digits.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

// FormatMinutes converts raw minutes into human-friendly format.
func FormatMinutes(min int) string {
	if min <= 0 {
		return "0m"
	}
	h := min / 60
	m := min % 60
	if h > 0 && m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if h > 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}

// Truncate shortens s to width terminal cells, ending in an ellipsis when
// cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return truncate.StringWithTail(s, uint(width), "…")
}

// Wrap word-wraps s at width and indents continuation lines by indent spaces.
func Wrap(s string, width, indent int) string {
	if width <= indent {
		return s
	}
	wrapped := wordwrap.String(s, width-indent)
	pad := strings.Repeat(" ", indent)
	return pad + strings.ReplaceAll(wrapped, "\n", "\n"+pad)
}
