package model

import "time"

// CalendarEvent is a read-only view of an event owned by the external calendar.
type CalendarEvent struct {
	ID         string
	CalendarID string
	Title      string
	Start      time.Time
	End        time.Time
	AllDay     bool
	Recurring  bool
}

// EventDetails are the fields written to a calendar event.
type EventDetails struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
	// Priority colours the event. Zero leaves the colour unchanged.
	Priority Priority
}

// NewEvent describes an event to create. An empty CalendarID selects the
// provider's default calendar.
type NewEvent struct {
	EventDetails
	CalendarID string
	TaskID     string
}

// CreatedEvent identifies an event the provider just created.
type CreatedEvent struct {
	ID      string
	Account string
}
