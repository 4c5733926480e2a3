package timeline

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(id, clock string, dur int) domain.Task {
	return domain.Task{ID: id, Text: id, Time: clock, Duration: dur, Type: domain.ModeGreen, Source: domain.SourceManual}
}

func TestLayout_TwoOverlappingTasksSplitTrack(t *testing.T) {
	tasks := []domain.Task{task("a", "09:00", 60), task("b", "09:30", 60)}
	boxes := Layout(tasks, Geometry{PixelsPerMinute: 1, TrackWidth: 200})

	require.Len(t, boxes, 2)
	assert.NotEqual(t, boxes[0].Lane, boxes[1].Lane)
	assert.Equal(t, 100.0, boxes[0].Width)
	assert.Equal(t, 100.0, boxes[1].Width)
	assert.Equal(t, 0.0, boxes[0].Left)
	assert.Equal(t, 100.0, boxes[1].Left)
	assert.Equal(t, 540.0, boxes[0].Top)
	assert.Equal(t, 60.0, boxes[0].Height)
}

func TestLayout_AdjacentTasksDoNotOverlap(t *testing.T) {
	tasks := []domain.Task{task("a", "09:00", 60), task("b", "10:00", 30)}
	boxes := Layout(tasks, DefaultGeometry)
	for _, b := range boxes {
		assert.Equal(t, 0, b.Lane)
		assert.Equal(t, 1, b.Lanes)
		assert.Equal(t, DefaultGeometry.TrackWidth, b.Width)
	}
}

func TestLayout_ContainedTaskGetsOwnLane(t *testing.T) {
	tasks := []domain.Task{task("outer", "08:00", 240), task("inner", "09:00", 30)}
	boxes := Layout(tasks, Geometry{PixelsPerMinute: 2, TrackWidth: 90})
	assert.Equal(t, 0, boxes[0].Lane)
	assert.Equal(t, 1, boxes[1].Lane)
	assert.Equal(t, 45.0, boxes[1].Width)
	assert.Equal(t, 60.0, boxes[1].Height)
}

func TestLayout_IdenticalStartsOrderByID(t *testing.T) {
	tasks := []domain.Task{task("b", "09:00", 30), task("a", "09:00", 30), task("c", "09:00", 30)}
	boxes := Layout(tasks, DefaultGeometry)
	assert.Equal(t, 1, boxes[0].Lane)
	assert.Equal(t, 0, boxes[1].Lane)
	assert.Equal(t, 2, boxes[2].Lane)
	assert.Equal(t, 3, boxes[0].Lanes)
}

func TestLayout_ChainReusesFreedLane(t *testing.T) {
	// a overlaps b, b overlaps c, a and c are disjoint.
	tasks := []domain.Task{task("a", "09:00", 60), task("b", "09:30", 60), task("c", "10:00", 60)}
	boxes := Layout(tasks, Geometry{PixelsPerMinute: 1, TrackWidth: 100})
	assert.Equal(t, []int{0, 1, 0}, []int{boxes[0].Lane, boxes[1].Lane, boxes[2].Lane})
	for _, b := range boxes {
		assert.Equal(t, 2, b.Lanes)
		assert.Equal(t, 50.0, b.Width)
	}
}

func TestLayout_OriginShiftsAndHides(t *testing.T) {
	tasks := []domain.Task{task("early", "04:00", 60), task("late", "06:00", 30)}
	boxes := Layout(tasks, Geometry{PixelsPerMinute: 1, TrackWidth: 100, OriginMinute: 5 * 60})
	assert.False(t, boxes[0].Visible)
	assert.True(t, boxes[1].Visible)
	assert.Equal(t, 60.0, boxes[1].Top)
}

func TestLayout_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	geo := Geometry{PixelsPerMinute: 1.5, TrackWidth: 240}

	for trial := 0; trial < 300; trial++ {
		n := rng.Intn(12) + 1
		tasks := make([]domain.Task, n)
		for i := range tasks {
			tasks[i] = task(fmt.Sprintf("t%02d", i), domain.FormatClock(rng.Intn(48)*30), 15*(1+rng.Intn(10)))
		}
		boxes := Layout(tasks, geo)
		require.Len(t, boxes, n)

		for i := range boxes {
			a := boxes[i]
			assert.GreaterOrEqual(t, a.Lane, 0)
			assert.Less(t, a.Lane, a.Lanes, "trial %d", trial)
			assert.InDelta(t, geo.TrackWidth, a.Width*float64(a.Lanes), 1e-9, "trial %d: lanes must span the track", trial)
			assert.LessOrEqual(t, a.Left+a.Width, geo.TrackWidth+1e-9)

			for j := i + 1; j < len(boxes); j++ {
				b := boxes[j]
				if Overlaps(a.Start, a.End, b.Start, b.End) {
					assert.NotEqual(t, a.Lane, b.Lane, "trial %d: %s and %s share a lane", trial, a.TaskID, b.TaskID)
					assert.Equal(t, a.Lanes, b.Lanes, "trial %d: overlapping tasks belong to one group", trial)
				}
			}
		}
	}
}

func TestLayout_Empty(t *testing.T) {
	assert.Empty(t, Layout(nil, DefaultGeometry))
}
