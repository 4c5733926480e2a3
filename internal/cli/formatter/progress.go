package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/lifeos/internal/progression"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a bar like [████░░░░] 45%, green above two thirds,
// yellow above one third, red below.
func RenderProgress(pct float64, width int) string {
	pct = min(max(pct, 0), 1)
	width = max(width, 2)

	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	if pct < 0.33 {
		style = StyleRed
	} else if pct < 0.66 {
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}

// CompletionRate is the share of scheduled days in statuses that were
// completed. It is 0 when nothing was scheduled.
func CompletionRate(statuses []progression.DayStatus) float64 {
	var due, done int
	for _, s := range statuses {
		switch s {
		case progression.DayCompleted:
			done++
			due++
		case progression.DayMissed:
			due++
		}
	}
	if due == 0 {
		return 0
	}
	return float64(done) / float64(due)
}
