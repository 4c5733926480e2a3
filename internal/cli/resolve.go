package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/alexanderramin/lifeos/internal/domain"
)

// matchesID reports whether ref is a prefix or suffix of id. Short IDs are
// printed as suffixes.
func matchesID(id, ref string) bool {
	return ref != "" && (strings.HasPrefix(id, ref) || strings.HasSuffix(id, ref))
}

// resolveTask finds a task on date by its 1-based position in the day view
// or by part of its ID.
func resolveTask(ctx context.Context, app *App, date time.Time, ref string) (domain.Task, error) {
	tasks, err := app.Days.Tasks(ctx, date)
	if err != nil {
		return domain.Task{}, err
	}
	ref = strings.TrimSpace(strings.TrimPrefix(ref, "#"))
	if n, err := strconv.Atoi(ref); err == nil && n > 0 && n <= len(tasks) {
		return tasks[n-1], nil
	}

	var matches []domain.Task
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if matchesID(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return domain.Task{}, fmt.Errorf("no task %q on %s", ref, domain.DateKey(date))
	default:
		return domain.Task{}, fmt.Errorf("task %q is ambiguous on %s (%d matches)", ref, domain.DateKey(date), len(matches))
	}
}

// resolveGoal finds a goal by ID, part of its ID, exact title (case-insensitive),
// or as a last resort the single best fuzzy title match.
func resolveGoal(ctx context.Context, app *App, ref string) (*domain.Goal, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("goal reference is empty")
	}
	goals, err := app.Goals.List(ctx)
	if err != nil {
		return nil, err
	}

	var byID []int
	for i, g := range goals {
		if g.ID == ref {
			return &goals[i], nil
		}
		if matchesID(g.ID, ref) {
			byID = append(byID, i)
		}
	}
	if len(byID) == 1 {
		return &goals[byID[0]], nil
	}
	for i, g := range goals {
		if strings.EqualFold(g.Title, ref) {
			return &goals[i], nil
		}
	}

	titles := make([]string, len(goals))
	for i, g := range goals {
		titles[i] = g.Title
	}
	found := fuzzy.Find(ref, titles)
	switch {
	case len(found) == 0:
		return nil, fmt.Errorf("no goal matches %q", ref)
	case len(found) > 1 && found[0].Score == found[1].Score:
		return nil, fmt.Errorf("goal %q is ambiguous: %q or %q", ref, found[0].Str, found[1].Str)
	}
	return &goals[found[0].Index], nil
}
