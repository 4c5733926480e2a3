package cli

import (
	"testing"

	"github.com/alexanderramin/lifeos/internal/domain"
	"github.com/alexanderramin/lifeos/internal/teatest"
)

// TestDriver wraps teatest.Driver with access to the timeline model and
// helpers that address the track by clock time instead of screen cells.
type TestDriver struct {
	*teatest.Driver
}

// NewTestDriver opens today's timeline at 100x40 and drains Init, which
// loads the day synchronously from the in-memory store.
func NewTestDriver(t *testing.T, app *App) *TestDriver {
	t.Helper()
	d := teatest.New(t, newTimelineModel(t.Context(), app, app.now()), teatest.WithSize(100, 40))
	d.DrainInit()
	return &TestDriver{Driver: d}
}

func (d *TestDriver) model() timelineModel {
	return d.Model.(timelineModel)
}

// Tasks returns the tasks the model currently shows.
func (d *TestDriver) Tasks() []domain.Task {
	return d.model().tasks()
}

// Status is the header status line, without styling.
func (d *TestDriver) Status() string {
	return d.model().status
}

func (d *TestDriver) Err() error {
	return d.model().err
}

func (d *TestDriver) Reviewing() bool {
	return d.model().review != nil
}

// RowY is the screen row showing clock time hhmm. It fails the test when the
// time is scrolled out of view.
func (d *TestDriver) RowY(hhmm string) int {
	d.T.Helper()
	m := d.model()
	row := (domain.ClockMinutes(hhmm) - m.origin) / rowMinutes
	if row < 0 || row >= m.trackRows() {
		d.T.Fatalf("%s is not on screen (origin %s)", hhmm, domain.FormatClock(m.origin))
	}
	return headerRows + row
}

// TrackX is a column inside the first lane.
func (d *TestDriver) TrackX() int {
	return gutterWidth + 2
}
