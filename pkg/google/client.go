// Package google implements model.Calendar on the Google Calendar API.
package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// primaryCalendar is used when the configured calendar does not exist or is read-only.
const primaryCalendar = "primary"

// Scopes are the OAuth scopes the provider needs.
var Scopes = []string{
	calendar.CalendarEventsScope,
	calendar.CalendarReadonlyScope,
}

// NewService builds a Calendar service on an authenticated HTTP client.
// Extra options are appended, which lets tests point it at a local server.
func NewService(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*calendar.Service, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %w", err)
	}
	return srv, nil
}

// NewClient resolves calendarName to a writable calendar, falling back to
// the primary calendar, and returns a client that writes there.
func NewClient(ctx context.Context, srv *calendar.Service, calendarName string, loc *time.Location, logger *slog.Logger) (*CalendarClient, error) {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &CalendarClient{srv: srv, calendarID: primaryCalendar, loc: loc, logger: logger}

	items, err := c.listCalendars(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.Primary {
			c.account = item.Id
		}
		if calendarName != "" && item.Summary == calendarName && writable(item) {
			c.calendarID = item.Id
		}
	}
	if calendarName != "" && c.calendarID == primaryCalendar {
		logger.Warn("calendar not found or read-only, using primary", slog.String("calendar", calendarName))
	}
	return c, nil
}

func writable(item *calendar.CalendarListEntry) bool {
	return item.AccessRole == "owner" || item.AccessRole == "writer"
}

func (c *CalendarClient) listCalendars(ctx context.Context) ([]*calendar.CalendarListEntry, error) {
	var items []*calendar.CalendarListEntry
	err := c.srv.CalendarList.List().Pages(ctx, func(page *calendar.CalendarList) error {
		items = append(items, page.Items...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve calendar list: %w", err)
	}
	return items, nil
}
