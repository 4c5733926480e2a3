package timeline

import (
	"math"

	"github.com/alexanderramin/lifeos/internal/domain"
)

// SnapMinutes is the grid every gesture snaps to.
const SnapMinutes = 15

// Defaults for pointer-driven tracks, in pixels.
const (
	DefaultDragThreshold = 5
	DefaultEdgeZone      = 6
)

// EffectKind is the task edit a gesture asks for.
type EffectKind int

const (
	EffectNone EffectKind = iota
	// EffectCreate adds a manual task at Time with Duration.
	EffectCreate
	// EffectResize sets TaskID's duration.
	EffectResize
	// EffectMove sets TaskID's start time.
	EffectMove
	// EffectOpen opens TaskID for editing.
	EffectOpen
)

func (k EffectKind) String() string {
	switch k {
	case EffectCreate:
		return "create"
	case EffectResize:
		return "resize"
	case EffectMove:
		return "move"
	case EffectOpen:
		return "open"
	default:
		return "none"
	}
}

// Effect is produced while a gesture runs (Final=false, live feedback only)
// and once when it ends (Final=true, to be persisted).
type Effect struct {
	Kind     EffectKind
	TaskID   string
	Time     string
	Duration int
	Final    bool
}

type gestureState int

const (
	stateIdle gestureState = iota
	statePressEmpty
	statePressBody
	stateResize
)

// Controller is the pointer state machine for one timeline track. It is not
// safe for concurrent use.
type Controller struct {
	geo       Geometry
	threshold float64
	edgeZone  float64

	state    gestureState
	startX   float64
	startY   float64
	dragged  bool
	taskID   string
	origTime int
	origDur  int
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithDragThreshold sets the distance a pointer must travel before a press
// counts as a drag.
func WithDragThreshold(px float64) ControllerOption {
	return func(c *Controller) { c.threshold = px }
}

// WithEdgeZone sets the height of the resize handle at a task's lower edge.
func WithEdgeZone(px float64) ControllerOption {
	return func(c *Controller) { c.edgeZone = px }
}

func NewController(geo Geometry, opts ...ControllerOption) *Controller {
	c := &Controller{geo: geo, threshold: DefaultDragThreshold, edgeZone: DefaultEdgeZone}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geometry returns the track geometry the controller maps through.
func (c *Controller) Geometry() Geometry { return c.geo }

// Active reports whether a gesture is in progress.
func (c *Controller) Active() bool { return c.state != stateIdle }

// Press starts a gesture at (x, y) over the given day. It returns false and
// does nothing while another gesture is in progress.
func (c *Controller) Press(x, y float64, tasks []domain.Task) bool {
	if c.Active() {
		return false
	}
	c.startX, c.startY, c.dragged = x, y, false

	for i, b := range Layout(tasks, c.geo) {
		if !b.Visible || x < b.Left || x >= b.Left+b.Width || y < b.Top || y >= b.Bottom() {
			continue
		}
		t := tasks[i]
		c.taskID, c.origTime, c.origDur = t.ID, b.Start, b.End-b.Start
		if y >= b.Bottom()-c.edgeZone {
			c.state = stateResize
		} else {
			c.state = statePressBody
		}
		return true
	}
	c.state = statePressEmpty
	return true
}

// Move reports live feedback for the pointer at (x, y). Effects are only
// produced once the pointer has travelled past the drag threshold.
func (c *Controller) Move(x, y float64) (Effect, bool) {
	if !c.Active() {
		return Effect{}, false
	}
	if !c.dragged && math.Hypot(x-c.startX, y-c.startY) >= c.threshold {
		c.dragged = true
	}
	if !c.dragged {
		return Effect{}, false
	}
	switch c.state {
	case stateResize:
		return c.resizeEffect(y, false), true
	case statePressBody:
		return c.moveEffect(y, false), true
	}
	return Effect{}, false
}

// Release ends the gesture. The snapped value at release is final; there is
// no cancel.
func (c *Controller) Release(x, y float64) (Effect, bool) {
	if !c.Active() {
		return Effect{}, false
	}
	if !c.dragged && math.Hypot(x-c.startX, y-c.startY) >= c.threshold {
		c.dragged = true
	}
	defer c.reset()

	switch {
	case c.state == statePressEmpty && !c.dragged:
		return Effect{
			Kind:     EffectCreate,
			Time:     domain.FormatClock(c.CreateMinute(c.startY)),
			Duration: domain.ManualDurationMin,
			Final:    true,
		}, true
	case c.state == statePressEmpty:
		return Effect{}, false
	case !c.dragged:
		return Effect{Kind: EffectOpen, TaskID: c.taskID, Final: true}, true
	case c.state == stateResize:
		return c.resizeEffect(y, true), true
	default:
		return c.moveEffect(y, true), true
	}
}

func (c *Controller) reset() {
	c.state = stateIdle
	c.dragged = false
	c.taskID = ""
}

// CreateMinute converts a track offset into the snapped start minute of a new
// task, kept inside the day.
func (c *Controller) CreateMinute(y float64) int {
	m := c.geo.OriginMinute + snap(y/c.geo.PixelsPerMinute)
	return clamp(m, 0, domain.MinutesPerDay-SnapMinutes)
}

func (c *Controller) resizeEffect(y float64, final bool) Effect {
	return Effect{
		Kind:     EffectResize,
		TaskID:   c.taskID,
		Duration: ResizeDuration(c.origDur, y-c.startY, c.geo.PixelsPerMinute),
		Final:    final,
	}
}

func (c *Controller) moveEffect(y float64, final bool) Effect {
	start := MoveStart(c.origTime, c.origDur, y-c.startY, c.geo.PixelsPerMinute)
	return Effect{
		Kind:     EffectMove,
		TaskID:   c.taskID,
		Time:     domain.FormatClock(start),
		Duration: c.origDur,
		Final:    final,
	}
}

// ResizeDuration is the duration after dragging a lower edge by dy. The
// result is on the grid even when orig is not.
func ResizeDuration(orig int, dy, ppm float64) int {
	return max(domain.MinTaskDurationMin, snap(float64(orig)+dy/ppm))
}

// MoveStart is the start minute after dragging a task body by dy.
func MoveStart(orig, duration int, dy, ppm float64) int {
	return clamp(orig+snap(dy/ppm), 0, domain.MinutesPerDay-duration)
}

// snap rounds minutes to the grid, halves rounding up.
func snap(minutes float64) int {
	return int(math.Floor(minutes/SnapMinutes+0.5)) * SnapMinutes
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
