package cli

import (
	"fmt"

	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/timeline"
)

// tapTrack replays a click at (x, y) on the day's track.
func tapTrack(geo timeline.Geometry, opts []timeline.ControllerOption, tasks []domain.Task, x, y float64) (timeline.Effect, error) {
	ctl := timeline.NewController(geo, opts...)
	ctl.Press(x, y, tasks)
	eff, ok := ctl.Release(x, y)
	if !ok {
		return timeline.Effect{}, fmt.Errorf("no effect at y=%g", y)
	}
	return eff, nil
}

// dragTask replays a vertical drag of dy pixels that starts on the task's
// lower edge (resize) or on its body (move).
func dragTask(geo timeline.Geometry, tasks []domain.Task, id string, edge bool, dy float64) (timeline.Effect, error) {
	i := domain.FindTask(tasks, id)
	if i < 0 {
		return timeline.Effect{}, fmt.Errorf("task %s is not on this day", id)
	}
	box := timeline.Layout(tasks, geo)[i]
	if !box.Visible {
		return timeline.Effect{}, fmt.Errorf("task %s ends before the start of the track", id)
	}

	// The whole box is the resize handle for an edge drag and none of it
	// is for a body drag.
	zone := 0.0
	y := box.Top
	if edge {
		zone = box.Height
		y = box.Bottom() - box.Height/2
	}
	ctl := timeline.NewController(geo, timeline.WithDragThreshold(0), timeline.WithEdgeZone(zone))

	x := box.Left + box.Width/2
	if !ctl.Press(x, y, tasks) {
		return timeline.Effect{}, fmt.Errorf("could not grab task %s", id)
	}
	ctl.Move(x, y+dy)
	eff, ok := ctl.Release(x, y+dy)
	if !ok || (eff.Kind != timeline.EffectResize && eff.Kind != timeline.EffectMove) {
		return timeline.Effect{}, fmt.Errorf("drag on task %s produced no edit", id)
	}
	return eff, nil
}
