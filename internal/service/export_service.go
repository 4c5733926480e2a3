package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alexanderramin/lifeos/internal/domain"
	ics "github.com/arran4/golang-ical"
)

// ExportDays is how many days ExportWeek covers.
const ExportDays = 7

const (
	icsProdID    = "-//LifeOS//LifeOS Day Planner//EN"
	icsLocalTime = "20060102T150405"
)

type exportService struct {
	days     DayPlanService
	observer UseCaseObserver
}

func NewExportService(days DayPlanService, observers ...UseCaseObserver) ExportService {
	return &exportService{days: days, observer: useCaseObserverOrNoop(observers)}
}

// ExportWeek synchronizes the seven days starting at from and writes them as
// an iCalendar stream. Times are floating local wall-clock times. It returns
// the number of events written.
func (s *exportService) ExportWeek(ctx context.Context, from time.Time, w io.Writer) (events int, err error) {
	fields := map[string]any{"from": domain.DateKey(from)}
	defer observe(ctx, s.observer, "export-week", time.Now(), fields, &err)

	cal := ics.NewCalendar()
	cal.SetProductId(icsProdID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)

	stamp := time.Now()
	start := domain.StartOfDay(from)
	for i := 0; i < ExportDays; i++ {
		date := start.AddDate(0, 0, i)
		view, err := s.days.OpenDay(ctx, date)
		if err != nil {
			return events, err
		}
		for _, t := range view.Tasks {
			cal.AddVEvent(taskEvent(date, t, stamp))
			events++
		}
	}
	fields["events"] = events

	bw := bufio.NewWriter(w)
	if err := cal.SerializeTo(bw, ics.WithNewLineWindows); err != nil {
		return events, fmt.Errorf("writing calendar: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return events, fmt.Errorf("writing calendar: %w", err)
	}
	return events, nil
}

// taskEvent builds the VEVENT for one task. The UID is stable per task and
// date so re-imports update events in place.
func taskEvent(date time.Time, t domain.Task, stamp time.Time) *ics.VEvent {
	begin := time.Date(date.Year(), date.Month(), date.Day(), 0, t.StartMinute(), 0, 0, date.Location())
	end := begin.Add(time.Duration(t.Duration) * time.Minute)

	status := ics.ObjectStatusConfirmed
	if t.Done {
		status = ics.ObjectStatusCompleted
	}
	desc := fmt.Sprintf("%s mode, %s task", t.Type, t.Source)
	if t.Review != "" {
		desc += "\nReview: " + strings.ReplaceAll(t.Review, "\r\n", "\n")
	}

	ev := ics.NewEvent(t.ID + "-" + domain.DateKey(date) + "@lifeos")
	ev.SetDtStampTime(stamp)
	// SetStartAt and SetEndAt convert to UTC; tasks are floating times.
	ev.SetProperty(ics.ComponentPropertyDtStart, begin.Format(icsLocalTime))
	ev.SetProperty(ics.ComponentPropertyDtEnd, end.Format(icsLocalTime))
	ev.SetSummary("LifeOS: " + t.Text)
	ev.SetDescription(desc)
	ev.AddCategory(strings.ToUpper(string(t.Type)))
	ev.SetStatus(status)
	return ev
}
