// Package timeline lays out a day's tasks on a vertical track and turns
// pointer gestures on that track into task edits.
package timeline

import (
	"sort"

	"github.com/alexanderramin/lifeos/internal/domain"
)

// Geometry maps minutes of the day onto track coordinates.
type Geometry struct {
	PixelsPerMinute float64
	TrackWidth      float64
	// OriginMinute is the minute of the day drawn at y=0.
	OriginMinute int
}

// DefaultGeometry is one pixel per minute on a 300px track starting at midnight.
var DefaultGeometry = Geometry{PixelsPerMinute: 1, TrackWidth: 300}

// Box is the placement of one task.
type Box struct {
	TaskID string
	Start  int
	End    int
	Lane   int
	Lanes  int
	Left   float64
	Top    float64
	Width  float64
	Height float64
	// Visible is false for tasks that end at or before the origin.
	Visible bool
}

// Bottom is the y coordinate just past the box.
func (b Box) Bottom() float64 { return b.Top + b.Height }

// Overlaps reports whether two half-open minute intervals intersect.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return bStart < aEnd && bEnd > aStart
}

type interval struct {
	idx        int
	id         string
	start, end int
}

// Layout places tasks into side-by-side lanes so that overlapping tasks never
// share a lane. Tasks are grouped into clusters of transitively overlapping
// intervals, processed in (start, id) order, and each takes the lowest lane
// free at its start. Every task in a cluster gets the cluster's lane count,
// so the lanes of a cluster always span the full track. The result is indexed
// like tasks.
func Layout(tasks []domain.Task, g Geometry) []Box {
	ivs := make([]interval, len(tasks))
	for i, t := range tasks {
		start := t.StartMinute()
		dur := t.Duration
		if dur < domain.MinTaskDurationMin {
			dur = domain.MinTaskDurationMin
		}
		ivs[i] = interval{idx: i, id: t.ID, start: start, end: start + dur}
	}
	sort.SliceStable(ivs, func(a, b int) bool {
		if ivs[a].start != ivs[b].start {
			return ivs[a].start < ivs[b].start
		}
		return ivs[a].id < ivs[b].id
	})

	boxes := make([]Box, len(tasks))
	for lo := 0; lo < len(ivs); {
		hi, clusterEnd := lo, ivs[lo].end
		for hi+1 < len(ivs) && ivs[hi+1].start < clusterEnd {
			hi++
			clusterEnd = max(clusterEnd, ivs[hi].end)
		}
		placeCluster(ivs[lo:hi+1], g, boxes)
		lo = hi + 1
	}
	return boxes
}

func placeCluster(cluster []interval, g Geometry, boxes []Box) {
	var laneEnds []int
	lanes := make([]int, len(cluster))
	for i, iv := range cluster {
		lane := -1
		for l, end := range laneEnds {
			if end <= iv.start {
				lane = l
				break
			}
		}
		if lane < 0 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, 0)
		}
		laneEnds[lane] = iv.end
		lanes[i] = lane
	}

	count := len(laneEnds)
	width := g.TrackWidth / float64(count)
	for i, iv := range cluster {
		boxes[iv.idx] = Box{
			TaskID:  iv.id,
			Start:   iv.start,
			End:     iv.end,
			Lane:    lanes[i],
			Lanes:   count,
			Left:    float64(lanes[i]) * width,
			Top:     float64(iv.start-g.OriginMinute) * g.PixelsPerMinute,
			Width:   width,
			Height:  float64(iv.end-iv.start) * g.PixelsPerMinute,
			Visible: iv.end > g.OriginMinute,
		}
	}
}
