package google

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/taskday/pkg/model"
	"github.com/harrisonrobin/taskday/pkg/util"
)

// taskIDProperty is the private extended property carrying the local task id.
const taskIDProperty = "taskday_task_id"

// eventRef joins a calendar id and an event id into the id stored on tasks.
func eventRef(calendarID, eventID string) string {
	return calendarID + "/" + eventID
}

// splitEventRef reverses eventRef. Bare ids belong to fallback.
func splitEventRef(ref, fallback string) (calendarID, eventID string) {
	i := strings.LastIndex(ref, "/")
	if i < 0 {
		return fallback, ref
	}
	return ref[:i], ref[i+1:]
}

func toEventDateTime(t time.Time, allDay bool, loc *time.Location) *calendar.EventDateTime {
	t = t.In(loc)
	if allDay {
		return &calendar.EventDateTime{Date: t.Format(util.DateLayout)}
	}
	return &calendar.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: loc.String(),
	}
}

// applyDetails writes title, description and times onto e.
func applyDetails(e *calendar.Event, d model.EventDetails, loc *time.Location) {
	end := d.End
	if d.AllDay {
		// The all-day end date is exclusive and must follow the start date.
		startDay := util.StartOfDay(d.Start, loc)
		end = util.StartOfDay(end, loc)
		if !end.After(startDay) {
			end = startDay.AddDate(0, 0, 1)
		}
	}
	e.Summary = d.Title
	e.Description = d.Description
	e.Start = toEventDateTime(d.Start, d.AllDay, loc)
	e.End = toEventDateTime(end, d.AllDay, loc)
	if id := colorID(d.Priority); id != "" {
		e.ColorId = id
	}
}

func parseEventDateTime(dt *calendar.EventDateTime, loc *time.Location) (t time.Time, allDay bool, err error) {
	if dt == nil {
		return time.Time{}, false, fmt.Errorf("missing event time")
	}
	if dt.DateTime != "" {
		t, err = time.Parse(time.RFC3339, dt.DateTime)
		return t.In(loc), false, err
	}
	t, err = time.ParseInLocation(util.DateLayout, dt.Date, loc)
	return t, true, err
}

// toCalendarEvent converts an API event. Cancelled events are reported as not ok.
func toCalendarEvent(calendarID string, e *calendar.Event, loc *time.Location) (model.CalendarEvent, bool, error) {
	if e == nil || e.Status == "cancelled" {
		return model.CalendarEvent{}, false, nil
	}
	start, allDay, err := parseEventDateTime(e.Start, loc)
	if err != nil {
		return model.CalendarEvent{}, false, fmt.Errorf("event %s: bad start: %w", e.Id, err)
	}
	end, _, err := parseEventDateTime(e.End, loc)
	if err != nil {
		return model.CalendarEvent{}, false, fmt.Errorf("event %s: bad end: %w", e.Id, err)
	}
	if allDay && !end.After(start) {
		end = start.AddDate(0, 0, 1)
	}
	return model.CalendarEvent{
		ID:         eventRef(calendarID, e.Id),
		CalendarID: calendarID,
		Title:      e.Summary,
		Start:      start,
		End:        end,
		AllDay:     allDay,
		Recurring:  e.RecurringEventId != "",
	}, true, nil
}

func newAPIEvent(ev model.NewEvent, loc *time.Location) *calendar.Event {
	e := &calendar.Event{}
	applyDetails(e, ev.EventDetails, loc)
	if ev.TaskID != "" {
		e.ExtendedProperties = &calendar.EventExtendedProperties{
			Private: map[string]string{taskIDProperty: ev.TaskID},
		}
	}
	return e
}
