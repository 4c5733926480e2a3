package formatter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/planner"
	"github.com/alexanderramin/lifeos/internal/progression"
)

// RecentDays is the width of the history grid on the goal detail view.
const RecentDays = 14

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// FormatWeekdays renders a frequency as "daily", "weekdays", "weekends", or a
// list of day names.
func FormatWeekdays(w domain.Weekdays) string {
	switch {
	case len(w) == 0:
		return "never"
	case len(w) == 7:
		return "daily"
	case slices.Equal(w, domain.NewWeekdays(1, 2, 3, 4, 5)):
		return "weekdays"
	case slices.Equal(w, domain.NewWeekdays(0, 6)):
		return "weekends"
	}
	names := make([]string, 0, len(w))
	for _, d := range w {
		if d >= 0 && d < 7 {
			names = append(names, weekdayNames[d])
		}
	}
	return strings.Join(names, " ")
}

// FormatGoalList renders the goal library as a table. streaks may be nil.
func FormatGoalList(goals []domain.Goal, streaks map[string]int, width int) string {
	if len(goals) == 0 {
		return Dim("No goals yet. Add one with 'lifeos goal add' or 'lifeos goal draft'.") + "\n"
	}
	if width <= 0 {
		width = DefaultWidth
	}
	titleWidth := max(width-50, 16)

	rows := make([][]string, 0, len(goals))
	for _, g := range goals {
		state := StyleGreen.Render("active")
		if g.Paused || len(g.Frequency) == 0 {
			state = StyleYellow.Render("paused")
		}
		plan := string(g.PlanMode)
		if g.PlanMode == domain.PlanAdvance {
			plan = fmt.Sprintf("stage %d", g.StageCount)
		}
		streak := g.Streak
		if s, ok := streaks[g.ID]; ok {
			streak = s
		}
		at := g.Time
		if at == "" {
			at = Dim("auto")
		}
		rows = append(rows, []string{
			TruncID(g.ID),
			Truncate(g.Title, titleWidth),
			at,
			FormatWeekdays(g.Frequency),
			plan,
			streakLabel(streak),
			state,
		})
	}
	return RenderTable([]string{"ID", "GOAL", "TIME", "DAYS", "PLAN", "STREAK", "STATE"}, rows)
}

func streakLabel(n int) string {
	if n == 0 {
		return Dim("0")
	}
	return StyleYellow.Render(strconv.Itoa(n) + "🔥")
}

// FormatGoalDetail renders one goal with its recent history grid, oldest
// day first, and its latest reviews.
func FormatGoalDetail(g domain.Goal, streak int, recent []progression.DayStatus, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", Bold(g.Title), TruncID(g.ID))
	fmt.Fprintf(&b, "%s %s\n", ModeBadge(domain.ModeGreen, ""), g.Green)
	fmt.Fprintf(&b, "%s %s\n", ModeBadge(domain.ModeBlue, ""), g.Blue)

	at := g.Time
	if at == "" {
		at = "auto"
	}
	fmt.Fprintf(&b, "\n%s %s   %s %s   %s %s\n",
		Dim("time"), at,
		Dim("days"), FormatWeekdays(g.Frequency),
		Dim("plan"), g.PlanMode)
	if g.Paused {
		b.WriteString(StyleYellow.Render("paused") + "\n")
	}
	if g.PlanMode == domain.PlanAdvance {
		fmt.Fprintf(&b, "%s %s", Dim("stage"), progression.CurrentStageLabel(g))
		if !g.LastUpdate.IsZero() {
			fmt.Fprintf(&b, "  %s", Dim("since "+domain.DateKey(g.LastUpdate.Time)))
		}
		b.WriteString("\n")
	}

	if len(recent) > 0 {
		cells := make([]string, len(recent))
		for i, s := range recent {
			cells[i] = StatusCell(s)
		}
		fmt.Fprintf(&b, "\n%s %s  %s %s\n",
			strings.Join(cells, " "),
			Dim(fmt.Sprintf("last %d days", len(recent))),
			Dim("streak"), streakLabel(streak))
		fmt.Fprintf(&b, "%s\n", RenderProgress(CompletionRate(recent), 20))
	}

	if len(g.Milestones) > 0 {
		b.WriteString("\n" + Header("Milestones") + "\n")
		for _, m := range g.Milestones {
			fmt.Fprintf(&b, "  • %s\n", Truncate(m, width-4))
		}
	}

	if len(g.DailyRoutine) > 0 {
		b.WriteString("\n" + Header("Routine") + "\n")
		b.WriteString(formatRoutine(g.DailyRoutine, width))
	}

	if reviews := latestReviews(g.History, 3); len(reviews) > 0 {
		b.WriteString("\n" + Header("Recent reviews") + "\n")
		for _, h := range reviews {
			fmt.Fprintf(&b, "%s %s\n%s\n", Dim(h.Date), ratingStars(h.Rating), Wrap(h.Review, width, 3))
		}
	}
	return b.String()
}

func formatRoutine(routine []domain.RoutineEntry, width int) string {
	textWidth := max((width-12)/2, 12)
	rows := make([][]string, 0, len(routine))
	for i, e := range routine {
		rows = append(rows, []string{
			Dim(fmt.Sprintf("day %d", i+1)),
			StyleGreen.Render(Truncate(e.Green, textWidth)),
			StyleBlue.Render(Truncate(e.Blue, textWidth)),
		})
	}
	return RenderTable([]string{"", "GREEN", "BLUE"}, rows)
}

func latestReviews(history []domain.HistoryRecord, n int) []domain.HistoryRecord {
	var out []domain.HistoryRecord
	for i := len(history) - 1; i >= 0 && len(out) < n; i-- {
		if strings.TrimSpace(history[i].Review) != "" {
			out = append(out, history[i])
		}
	}
	return out
}

func ratingStars(r int) string {
	if r <= 0 {
		return ""
	}
	return StyleYellow.Render(strings.Repeat("★", r)) + Dim(strings.Repeat("☆", max(5-r, 0)))
}

// FormatProposal renders a generated plan for confirmation before it is saved.
func FormatProposal(p *planner.Proposal, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	width -= 6 // box border and padding
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", ModeBadge(domain.ModeGreen, ""), p.Green)
	fmt.Fprintf(&b, "%s %s\n", ModeBadge(domain.ModeBlue, ""), p.Blue)
	if len(p.Milestones) > 0 {
		b.WriteString("\n" + Header("Milestones") + "\n")
		for _, m := range p.Milestones {
			fmt.Fprintf(&b, "  • %s\n", Truncate(m, width-4))
		}
	}
	if len(p.DailyRoutine) > 0 {
		b.WriteString("\n" + Header("Routine") + "\n")
		b.WriteString(formatRoutine(p.DailyRoutine, width))
	}
	return RenderBox(p.Title, strings.TrimRight(b.String(), "\n")) + "\n"
}

// FormatStreaks renders the streak overview, one line per goal.
func FormatStreaks(goals []domain.Goal, streaks map[string]int, today time.Time) string {
	if len(goals) == 0 {
		return Dim("No goals yet.") + "\n"
	}
	rows := make([][]string, 0, len(goals))
	for _, g := range goals {
		due := Dim("-")
		if g.IsActiveOn(today.Weekday()) {
			due = "today"
		}
		rows = append(rows, []string{TruncID(g.ID), g.Title, streakLabel(streaks[g.ID]), due})
	}
	return RenderTable([]string{"ID", "GOAL", "STREAK", "DUE"}, rows)
}
