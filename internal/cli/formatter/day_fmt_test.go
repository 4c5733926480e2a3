package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/energy"
)

func TestFormatDay(t *testing.T) {
	day := time.Date(2025, 6, 17, 0, 0, 0, 0, time.Local)
	tasks := []domain.Task{
		{ID: "t1", Text: "Stretch", Time: "07:00", Duration: 15, Type: domain.ModeBlue, Source: domain.SourceHabit, GoalID: "g1", Done: true, Review: "easy one"},
		{ID: "t2", Text: "Write report", Time: "09:00", Duration: 60, Type: domain.ModeBlue, Source: domain.SourceManual},
		{ID: "t3", Text: "Call mom", Time: "09:30", Duration: 30, Type: domain.ModeBlue, Source: domain.SourceManual},
	}

	out := stripANSI(FormatDay(day, day, energy.Resolution{Mode: domain.ModeBlue, Origin: energy.OriginOverride}, tasks, 100))

	assert.Contains(t, out, "Today")
	assert.Contains(t, out, "2025-06-17")
	assert.Contains(t, out, "BLUE (override)")
	for _, h := range []string{"TIME", "DUR", "LANE", "TASK", "SOURCE", "STATUS"} {
		assert.Contains(t, out, h)
	}
	assert.Contains(t, out, "habit")
	assert.Contains(t, out, "✓ done")
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "2/2")
	assert.Contains(t, out, "1/3 done")
	assert.Contains(t, out, "REVIEWS")
	assert.Contains(t, out, "easy one")

	// Task rows keep start order.
	assert.Less(t, strings.Index(out, "Stretch"), strings.Index(out, "Write report"))
}

func TestFormatDay_Empty(t *testing.T) {
	day := time.Date(2025, 6, 17, 0, 0, 0, 0, time.Local)
	out := stripANSI(FormatDay(day, day.AddDate(0, 0, -1), energy.Resolution{Mode: domain.ModeGreen, Origin: energy.OriginDefault}, nil, 0))
	assert.Contains(t, out, "Tomorrow")
	assert.Contains(t, out, "GREEN (default)")
	assert.Contains(t, out, "No tasks")
}

func TestFormatDay_TruncatesLongText(t *testing.T) {
	day := time.Date(2025, 6, 17, 0, 0, 0, 0, time.Local)
	long := strings.Repeat("very long task text ", 10)
	tasks := []domain.Task{{ID: "t1", Text: long, Time: "08:00", Duration: 60, Type: domain.ModeGreen, Source: domain.SourceManual}}

	out := stripANSI(FormatDay(day, day, energy.Resolution{Mode: domain.ModeGreen}, tasks, 80))
	assert.NotContains(t, out, long)
	assert.Contains(t, out, "…")
}
