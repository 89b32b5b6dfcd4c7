package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/harrisonrobin/taskday/pkg/model"
)

// apiServer serves the handful of Calendar API routes the client uses.
type apiServer struct {
	mu         sync.Mutex
	calendars  []*calendar.CalendarListEntry
	events     map[string][]*calendar.Event
	inserted   int
	denyInsert bool
}

func newAPIServer() *apiServer {
	return &apiServer{
		calendars: []*calendar.CalendarListEntry{
			{Id: "me@example.com", Summary: "Me", Primary: true, Selected: true, AccessRole: "owner"},
			{Id: "tasks", Summary: "Tasks", Selected: true, AccessRole: "owner"},
			{Id: "holidays", Summary: "Holidays", Selected: true, AccessRole: "reader"},
			{Id: "hidden", Summary: "Hidden", Hidden: true, Selected: true, AccessRole: "owner"},
			{Id: "off", Summary: "Off", AccessRole: "owner"},
		},
		events: make(map[string][]*calendar.Event),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func apiError(w http.ResponseWriter, status int) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{"code": status, "message": http.StatusText(status)},
	})
}

func (s *apiServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/"), "calendar/v3/")
	if path == "users/me/calendarList" {
		writeJSON(w, http.StatusOK, &calendar.CalendarList{Items: s.calendars})
		return
	}
	parts := strings.Split(path, "/")
	if len(parts) < 3 || parts[0] != "calendars" || parts[2] != "events" {
		apiError(w, http.StatusNotFound)
		return
	}
	cal := parts[1]

	if len(parts) == 3 {
		switch r.Method {
		case http.MethodGet:
			var items []*calendar.Event
			filter := r.URL.Query().Get("privateExtendedProperty")
			for _, e := range s.events[cal] {
				if filter != "" {
					kv := strings.SplitN(filter, "=", 2)
					if e.ExtendedProperties == nil || e.ExtendedProperties.Private[kv[0]] != kv[1] {
						continue
					}
				}
				items = append(items, e)
			}
			writeJSON(w, http.StatusOK, &calendar.Events{Items: items})
		case http.MethodPost:
			if s.denyInsert {
				apiError(w, http.StatusForbidden)
				return
			}
			var e calendar.Event
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &e); err != nil {
				apiError(w, http.StatusBadRequest)
				return
			}
			s.inserted++
			e.Id = fmt.Sprintf("ev%d", s.inserted)
			e.HtmlLink = "https://calendar.google.com/event?eid=" + e.Id
			s.events[cal] = append(s.events[cal], &e)
			writeJSON(w, http.StatusOK, &e)
		}
		return
	}

	id := parts[3]
	idx := -1
	for i, e := range s.events[cal] {
		if e.Id == id {
			idx = i
		}
	}
	if idx < 0 {
		apiError(w, http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.events[cal][idx])
	case http.MethodPut:
		var e calendar.Event
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			apiError(w, http.StatusBadRequest)
			return
		}
		s.events[cal][idx] = &e
		writeJSON(w, http.StatusOK, &e)
	case http.MethodDelete:
		s.events[cal] = append(s.events[cal][:idx], s.events[cal][idx+1:]...)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *apiServer) put(cal string, e *calendar.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[cal] = append(s.events[cal], e)
}

func (s *apiServer) stored(cal, id string) *calendar.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events[cal] {
		if e.Id == id {
			return e
		}
	}
	return nil
}

func newTestClient(t *testing.T, api *apiServer, calendarName string) *CalendarClient {
	t.Helper()
	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)

	srv, err := NewService(ctx, ts.Client(), option.WithEndpoint(ts.URL+"/"))
	require.NoError(t, err)
	c, err := NewClient(ctx, srv, calendarName, time.UTC, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return c
}

var (
	ctx = context.Background()
	day = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
)

func TestNewClient_ResolvesCalendar(t *testing.T) {
	api := newAPIServer()

	c := newTestClient(t, api, "Tasks")
	assert.Equal(t, "tasks", c.CalendarID())
	assert.Equal(t, "me@example.com", c.account)

	readOnly := newTestClient(t, api, "Holidays")
	assert.Equal(t, "primary", readOnly.CalendarID())

	missing := newTestClient(t, api, "Nope")
	assert.Equal(t, "primary", missing.CalendarID())
}

func TestGetEventsInRange(t *testing.T) {
	api := newAPIServer()
	api.put("tasks", &calendar.Event{
		Id: "standup", Summary: "Standup", RecurringEventId: "standup-series",
		Start: &calendar.EventDateTime{DateTime: "2026-10-14T10:00:00Z"},
		End:   &calendar.EventDateTime{DateTime: "2026-10-14T10:15:00Z"},
	})
	api.put("tasks", &calendar.Event{
		Id: "gone", Summary: "Cancelled", Status: "cancelled",
		Start: &calendar.EventDateTime{DateTime: "2026-10-14T11:00:00Z"},
		End:   &calendar.EventDateTime{DateTime: "2026-10-14T12:00:00Z"},
	})
	api.put("me@example.com", &calendar.Event{
		Id: "trip", Summary: "Trip",
		Start: &calendar.EventDateTime{Date: "2026-10-14"},
		End:   &calendar.EventDateTime{Date: "2026-10-15"},
	})
	api.put("holidays", &calendar.Event{Id: "h", Summary: "Holiday",
		Start: &calendar.EventDateTime{Date: "2026-10-14"}, End: &calendar.EventDateTime{Date: "2026-10-15"}})
	api.put("hidden", &calendar.Event{Id: "x", Summary: "Hidden",
		Start: &calendar.EventDateTime{Date: "2026-10-14"}, End: &calendar.EventDateTime{Date: "2026-10-15"}})
	api.put("off", &calendar.Event{Id: "y", Summary: "Off",
		Start: &calendar.EventDateTime{Date: "2026-10-14"}, End: &calendar.EventDateTime{Date: "2026-10-15"}})

	c := newTestClient(t, api, "Tasks")
	events, err := c.GetEventsInRange(ctx, day, day.Add(24*time.Hour), []string{"holidays"})
	require.NoError(t, err)

	require.Len(t, events, 2)
	trip, standup := events[0], events[1]

	assert.Equal(t, "me@example.com/trip", trip.ID)
	assert.True(t, trip.AllDay)
	assert.True(t, trip.Start.Equal(day))
	assert.True(t, trip.End.Equal(day.Add(24*time.Hour)))

	assert.Equal(t, "tasks/standup", standup.ID)
	assert.Equal(t, "tasks", standup.CalendarID)
	assert.Equal(t, "Standup", standup.Title)
	assert.False(t, standup.AllDay)
	assert.True(t, standup.Recurring)
	assert.True(t, standup.Start.Equal(day.Add(10*time.Hour)))
}

func TestAddToCalendar(t *testing.T) {
	api := newAPIServer()
	c := newTestClient(t, api, "Tasks")
	start := day.Add(9 * time.Hour)

	created, err := c.AddToCalendar(ctx, model.NewEvent{
		EventDetails: model.EventDetails{Title: "Write report", Description: "from test", Start: start, End: start.Add(15 * time.Minute), Priority: model.PriorityHigh},
		TaskID:       "task-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "tasks/ev1", created.ID)
	assert.Equal(t, "me@example.com", created.Account)

	e := api.stored("tasks", "ev1")
	require.NotNil(t, e)
	assert.Equal(t, "Write report", e.Summary)
	assert.Equal(t, "2026-10-14T09:00:00Z", e.Start.DateTime)
	assert.Equal(t, "2026-10-14T09:15:00Z", e.End.DateTime)
	assert.Equal(t, "task-1", e.ExtendedProperties.Private[taskIDProperty])
	assert.Equal(t, colorTomato, e.ColorId)

	again, err := c.AddToCalendar(ctx, model.NewEvent{
		EventDetails: model.EventDetails{Title: "Write report", Start: start, End: start.Add(15 * time.Minute)},
		TaskID:       "task-1",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, 1, api.inserted)
}

func TestAddToCalendar_AllDay(t *testing.T) {
	api := newAPIServer()
	c := newTestClient(t, api, "Tasks")

	created, err := c.AddToCalendar(ctx, model.NewEvent{
		EventDetails: model.EventDetails{Title: "Holiday", Start: day, End: day.Add(15 * time.Minute), AllDay: true},
		CalendarID:   "me@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "me@example.com/ev1", created.ID)

	e := api.stored("me@example.com", "ev1")
	require.NotNil(t, e)
	assert.Equal(t, "2026-10-14", e.Start.Date)
	assert.Equal(t, "2026-10-15", e.End.Date)
	assert.Empty(t, e.Start.DateTime)
}

func TestAddToCalendar_Forbidden(t *testing.T) {
	api := newAPIServer()
	api.denyInsert = true
	c := newTestClient(t, api, "Tasks")

	_, err := c.AddToCalendar(ctx, model.NewEvent{EventDetails: model.EventDetails{Title: "x", Start: day, End: day.Add(time.Hour)}})
	assert.ErrorIs(t, err, model.ErrCalendarUnavailable)
}

func TestUpdateCalendarEvent(t *testing.T) {
	api := newAPIServer()
	api.put("tasks", &calendar.Event{
		Id: "e1", Summary: "Old", ColorId: "7",
		Start: &calendar.EventDateTime{DateTime: "2026-10-14T10:00:00Z"},
		End:   &calendar.EventDateTime{DateTime: "2026-10-14T11:00:00Z"},
	})
	c := newTestClient(t, api, "Tasks")

	err := c.UpdateCalendarEvent(ctx, "tasks/e1", model.EventDetails{Title: "New", Start: day.AddDate(0, 0, 1), End: day.AddDate(0, 0, 2), AllDay: true})
	require.NoError(t, err)

	e := api.stored("tasks", "e1")
	assert.Equal(t, "New", e.Summary)
	assert.Equal(t, "2026-10-15", e.Start.Date)
	assert.Empty(t, e.Start.DateTime)
	assert.Equal(t, "2026-10-16", e.End.Date)
	assert.Equal(t, "7", e.ColorId, "no priority keeps the colour")

	err = c.UpdateCalendarEvent(ctx, "tasks/missing", model.EventDetails{Title: "x", Start: day, End: day})
	assert.ErrorIs(t, err, model.ErrEventNotFound)
}

func TestDeleteAndLink(t *testing.T) {
	api := newAPIServer()
	api.put("tasks", &calendar.Event{
		Id: "e1", Summary: "Standup", HtmlLink: "https://calendar.google.com/event?eid=e1",
		Start: &calendar.EventDateTime{DateTime: "2026-10-14T10:00:00Z"},
		End:   &calendar.EventDateTime{DateTime: "2026-10-14T11:00:00Z"},
	})
	c := newTestClient(t, api, "Tasks")

	link, err := c.GetEventLink(ctx, "tasks/e1")
	require.NoError(t, err)
	assert.Equal(t, "https://calendar.google.com/event?eid=e1", link)

	require.NoError(t, c.DeleteCalendarEvent(ctx, "tasks/e1"))
	assert.Nil(t, api.stored("tasks", "e1"))

	_, err = c.GetEventLink(ctx, "tasks/e1")
	assert.ErrorIs(t, err, model.ErrEventNotFound)
	assert.ErrorIs(t, c.DeleteCalendarEvent(ctx, "tasks/e1"), model.ErrEventNotFound)
}

func TestSplitEventRef(t *testing.T) {
	cal, id := splitEventRef("me@example.com/abc", "primary")
	assert.Equal(t, "me@example.com", cal)
	assert.Equal(t, "abc", id)

	cal, id = splitEventRef("abc", "primary")
	assert.Equal(t, "primary", cal)
	assert.Equal(t, "abc", id)
}
