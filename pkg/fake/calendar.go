package fake

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/harrisonrobin/taskday/pkg/model"
)

// Calendar is an in-memory model.Calendar. Created events become busy
// time for later GetEventsInRange calls.
type Calendar struct {
	mu      sync.Mutex
	events  map[string]model.CalendarEvent
	order   []string
	nextID  int
	Account string

	// AddErr is returned by AddToCalendar when set.
	AddErr error
	// ListErr is returned by GetEventsInRange when set.
	ListErr error

	Created   []model.NewEvent
	Updated   map[string]model.EventDetails
	Deleted   []string
	ListCalls int
}

func NewCalendar(events ...model.CalendarEvent) *Calendar {
	c := &Calendar{
		events:  make(map[string]model.CalendarEvent),
		Updated: make(map[string]model.EventDetails),
		Account: "me@example.com",
	}
	for _, ev := range events {
		c.Put(ev)
	}
	return c
}

// Put adds or replaces an event.
func (c *Calendar) Put(ev model.CalendarEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.events[ev.ID]; !ok {
		c.order = append(c.order, ev.ID)
	}
	c.events[ev.ID] = ev
}

// Remove deletes an event as if the user removed it in the calendar app.
func (c *Calendar) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.events, id)
}

// Events returns the current events in insertion order.
func (c *Calendar) Events() []model.CalendarEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []model.CalendarEvent
	for _, id := range c.order {
		if ev, ok := c.events[id]; ok {
			out = append(out, ev)
		}
	}
	return out
}

func (c *Calendar) GetEventsInRange(_ context.Context, start, end time.Time, excluded []string) ([]model.CalendarEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ListCalls++
	if c.ListErr != nil {
		return nil, c.ListErr
	}
	skip := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		skip[id] = true
	}
	var out []model.CalendarEvent
	for _, id := range c.order {
		ev, ok := c.events[id]
		if !ok || skip[ev.CalendarID] {
			continue
		}
		if ev.End.After(start) && ev.Start.Before(end) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (c *Calendar) AddToCalendar(_ context.Context, ev model.NewEvent) (*model.CreatedEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.AddErr != nil {
		return nil, c.AddErr
	}
	c.nextID++
	id := fmt.Sprintf("evt-%d", c.nextID)
	c.Created = append(c.Created, ev)
	c.order = append(c.order, id)
	c.events[id] = model.CalendarEvent{
		ID:         id,
		CalendarID: ev.CalendarID,
		Title:      ev.Title,
		Start:      ev.Start,
		End:        ev.End,
		AllDay:     ev.AllDay,
	}
	return &model.CreatedEvent{ID: id, Account: c.Account}, nil
}

func (c *Calendar) UpdateCalendarEvent(_ context.Context, id string, d model.EventDetails) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev, ok := c.events[id]
	if !ok {
		return model.ErrEventNotFound
	}
	c.Updated[id] = d
	ev.Title, ev.Start, ev.End, ev.AllDay = d.Title, d.Start, d.End, d.AllDay
	c.events[id] = ev
	return nil
}

func (c *Calendar) DeleteCalendarEvent(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.events[id]; !ok {
		return model.ErrEventNotFound
	}
	delete(c.events, id)
	c.Deleted = append(c.Deleted, id)
	return nil
}

func (c *Calendar) GetEventLink(_ context.Context, id string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.events[id]; !ok {
		return "", model.ErrEventNotFound
	}
	return "https://calendar.example.com/event/" + id, nil
}
