package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/harrisonrobin/taskday/pkg/model"
)

// CalendarClient is the Google Calendar implementation of model.Calendar.
// Event ids it hands out are "<calendarID>/<eventID>".
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	account    string
	loc        *time.Location
	logger     *slog.Logger
}

// CalendarID is the calendar new events are written to.
func (c *CalendarClient) CalendarID() string {
	return c.calendarID
}

func errorCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func eventGone(err error) bool {
	code := errorCode(err)
	return code == http.StatusNotFound || code == http.StatusGone
}

// GetEventsInRange lists events overlapping [start, end) on every visible
// calendar not in excludedCalendarIDs, ordered by start.
func (c *CalendarClient) GetEventsInRange(ctx context.Context, start, end time.Time, excludedCalendarIDs []string) ([]model.CalendarEvent, error) {
	skip := make(map[string]bool, len(excludedCalendarIDs))
	for _, id := range excludedCalendarIDs {
		skip[id] = true
	}

	items, err := c.listCalendars(ctx)
	if err != nil {
		return nil, err
	}

	var out []model.CalendarEvent
	for _, item := range items {
		if skip[item.Id] || item.Hidden || (!item.Selected && item.Id != c.calendarID) {
			continue
		}
		events, err := c.ListEvents(ctx, item.Id, start, end)
		if err != nil {
			return nil, err
		}
		out = append(out, events...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// ListEvents fetches one calendar's events within [start, end), recurring
// events expanded into instances.
func (c *CalendarClient) ListEvents(ctx context.Context, calendarID string, start, end time.Time) ([]model.CalendarEvent, error) {
	var out []model.CalendarEvent
	call := c.srv.Events.List(calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, e := range page.Items {
			ev, ok, err := toCalendarEvent(calendarID, e, c.loc)
			if err != nil {
				c.logger.Warn("skipping unreadable event", slog.String("calendar", calendarID), slog.Any("err", err))
				continue
			}
			if ok {
				out = append(out, ev)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar %s: %w", calendarID, err)
	}
	return out, nil
}

// AddToCalendar inserts an event. An event already tagged with the same
// task id is returned instead of creating a second one.
func (c *CalendarClient) AddToCalendar(ctx context.Context, ev model.NewEvent) (*model.CreatedEvent, error) {
	calendarID := ev.CalendarID
	if calendarID == "" {
		calendarID = c.calendarID
	}

	if ev.TaskID != "" {
		existing, err := c.GetEventByTaskID(ctx, calendarID, ev.TaskID)
		if err != nil {
			return nil, c.insertError(err)
		}
		if existing != nil {
			return &model.CreatedEvent{ID: eventRef(calendarID, existing.Id), Account: c.account}, nil
		}
	}

	created, err := c.srv.Events.Insert(calendarID, newAPIEvent(ev, c.loc)).Context(ctx).Do()
	if err != nil {
		return nil, c.insertError(err)
	}
	c.logger.Debug("event created", slog.String("calendar", calendarID), slog.String("event", created.Id))
	return &model.CreatedEvent{ID: eventRef(calendarID, created.Id), Account: c.account}, nil
}

func (c *CalendarClient) insertError(err error) error {
	switch errorCode(err) {
	case http.StatusForbidden, http.StatusNotFound:
		return fmt.Errorf("%w: %v", model.ErrCalendarUnavailable, err)
	}
	return fmt.Errorf("unable to create event: %w", err)
}

// GetEventByTaskID finds the event tagged with taskID, or nil.
func (c *CalendarClient) GetEventByTaskID(ctx context.Context, calendarID, taskID string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", taskIDProperty, taskID)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	for _, e := range events.Items {
		if e.Status != "cancelled" {
			return e, nil
		}
	}
	return nil, nil
}

func (c *CalendarClient) getEvent(ctx context.Context, ref string) (string, *calendar.Event, error) {
	calendarID, eventID := splitEventRef(ref, c.calendarID)
	e, err := c.srv.Events.Get(calendarID, eventID).Context(ctx).Do()
	if eventGone(err) || (err == nil && e.Status == "cancelled") {
		return calendarID, nil, fmt.Errorf("%w: %s", model.ErrEventNotFound, ref)
	}
	if err != nil {
		return calendarID, nil, fmt.Errorf("unable to get event %s: %w", ref, err)
	}
	return calendarID, e, nil
}

// UpdateCalendarEvent rewrites title, description and times of an event.
func (c *CalendarClient) UpdateCalendarEvent(ctx context.Context, eventID string, details model.EventDetails) error {
	calendarID, e, err := c.getEvent(ctx, eventID)
	if err != nil {
		return err
	}
	applyDetails(e, details, c.loc)
	_, err = c.srv.Events.Update(calendarID, e.Id, e).Context(ctx).Do()
	if eventGone(err) {
		return fmt.Errorf("%w: %s", model.ErrEventNotFound, eventID)
	}
	if err != nil {
		return fmt.Errorf("unable to update event %s: %w", eventID, err)
	}
	return nil
}

func (c *CalendarClient) DeleteCalendarEvent(ctx context.Context, eventID string) error {
	calendarID, id := splitEventRef(eventID, c.calendarID)
	err := c.srv.Events.Delete(calendarID, id).Context(ctx).Do()
	if eventGone(err) {
		return fmt.Errorf("%w: %s", model.ErrEventNotFound, eventID)
	}
	if err != nil {
		return fmt.Errorf("unable to delete event %s: %w", eventID, err)
	}
	return nil
}

// GetEventLink returns the web link of an event.
func (c *CalendarClient) GetEventLink(ctx context.Context, eventID string) (string, error) {
	_, e, err := c.getEvent(ctx, eventID)
	if err != nil {
		return "", err
	}
	return e.HtmlLink, nil
}
