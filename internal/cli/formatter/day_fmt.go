package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/energy"
	"github.com/alexanderramin/lifeos/internal/timeline"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 80

// fixed cells taken by every column but TASK, gaps included.
const dayTableChrome = 4 + 7 + 9 + 6 + 8 + 8 + 6*colGap

// FormatDay renders one day's plan: a header with the resolved mode, the
// task table in start order, and the reviews of completed tasks. Tasks are
// numbered from 1; the numbers are accepted wherever a task is referenced.
func FormatDay(date, today time.Time, res energy.Resolution, tasks []domain.Task, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s  %s\n\n",
		Bold(HumanDay(date, today)),
		Dim(domain.DateKey(date)),
		ModeBadge(res.Mode, string(res.Origin)))

	if len(tasks) == 0 {
		b.WriteString(Dim("No tasks. Add one with 'lifeos task add'."))
		b.WriteString("\n")
		return b.String()
	}

	boxes := timeline.Layout(tasks, timeline.DefaultGeometry)
	textWidth := max(width-dayTableChrome, 12)

	rows := make([][]string, 0, len(tasks))
	var done, minutes int
	for i, t := range tasks {
		minutes += t.Duration
		status := Dim("open")
		if t.Done {
			done++
			status = StyleGreen.Render("✓ done")
		}
		rows = append(rows, []string{
			Dim(strconv.Itoa(i + 1)),
			t.Time,
			FormatMinutes(t.Duration),
			laneLabel(boxes[i]),
			ModeStyle(t.Type).Render(Truncate(t.Text, textWidth)),
			sourceLabel(t),
			status,
		})
	}
	b.WriteString(RenderTable([]string{"#", "TIME", "DUR", "LANE", "TASK", "SOURCE", "STATUS"}, rows))

	fmt.Fprintf(&b, "\n%s %s\n",
		RenderProgress(float64(done)/float64(len(tasks)), 20),
		Dim(fmt.Sprintf("%d/%d done · %s planned", done, len(tasks), FormatMinutes(minutes))))

	if reviews := formatReviews(tasks, width); reviews != "" {
		b.WriteString("\n")
		b.WriteString(Header("Reviews"))
		b.WriteString("\n")
		b.WriteString(reviews)
	}
	return b.String()
}

func laneLabel(box timeline.Box) string {
	if box.Lanes <= 1 {
		return ""
	}
	return fmt.Sprintf("%d/%d", box.Lane+1, box.Lanes)
}

func sourceLabel(t domain.Task) string {
	if t.IsHabit() {
		return StylePurple.Render("habit")
	}
	return Dim("manual")
}

func formatReviews(tasks []domain.Task, width int) string {
	var b strings.Builder
	for i, t := range tasks {
		if !t.Done || strings.TrimSpace(t.Review) == "" {
			continue
		}
		fmt.Fprintf(&b, "%s %s\n%s\n",
			Dim(fmt.Sprintf("%d.", i+1)),
			Bold(Truncate(t.Text, width-4)),
			Wrap(t.Review, width, 3))
	}
	return b.String()
}
