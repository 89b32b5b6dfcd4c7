// Package orgmode reads TODO and DONE headlines from Org files so they can
// be imported as tasks.
package orgmode

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/harrisonrobin/taskday/pkg/model"
	"github.com/harrisonrobin/taskday/pkg/util"
)

var (
	headlineRegex = regexp.MustCompile(`^\*+\s+(TODO|DONE)\s+(?:\[#([A-Z])\]\s*)?(.*?)(?:\s+:[\w@#%:]+:)?\s*$`)
	stampRegex    = regexp.MustCompile(`(SCHEDULED|DEADLINE):\s+<(\d{4}-\d{2}-\d{2})(?:\s+[A-Za-z]{2,3}\.?)?(?:\s+(\d{1,2}:\d{2}))?`)
	idRegex       = regexp.MustCompile(`^:ID:\s+(\S+)`)
)

// ParseFile parses the Org file at path.
func ParseFile(path string, loc *time.Location) ([]model.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, loc)
}

// Parse returns one task per TODO or DONE headline. SCHEDULED wins over
// DEADLINE; a timestamp with a time of day makes the task timed.
func Parse(r io.Reader, loc *time.Location) ([]model.Task, error) {
	if loc == nil {
		loc = time.Local
	}
	scanner := bufio.NewScanner(r)
	var (
		tasks     []model.Task
		current   *model.Task
		scheduled bool
	)
	flush := func() {
		if current != nil && current.Content != "" {
			tasks = append(tasks, *current)
		}
		current, scheduled = nil, false
	}

	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "*") {
			flush()
			m := headlineRegex.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			current = &model.Task{
				Content:     strings.TrimSpace(m[3]),
				IsCompleted: m[1] == "DONE",
				Priority:    priority(m[2]),
			}
			continue
		}
		if current == nil {
			continue
		}

		if m := idRegex.FindStringSubmatch(line); m != nil {
			current.ID = m[1]
			continue
		}
		for _, m := range stampRegex.FindAllStringSubmatch(line, -1) {
			if scheduled && m[1] == "DEADLINE" {
				continue
			}
			if err := applyStamp(current, m[2], m[3], loc); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			scheduled = m[1] == "SCHEDULED"
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return tasks, nil
}

func applyStamp(t *model.Task, date, clock string, loc *time.Location) error {
	day, err := time.ParseInLocation(util.DateLayout, date, loc)
	if err != nil {
		return fmt.Errorf("bad date %q: %w", date, err)
	}
	if clock == "" {
		t.ScheduledDate = day
		t.ReminderTime = nil
		return nil
	}
	at, err := util.ParseClock(clock, day, loc)
	if err != nil {
		return err
	}
	t.ScheduledDate = at
	t.ReminderTime = model.TimePtr(at)
	return nil
}

// priority maps Org's [#A] [#B] [#C] cookies; no cookie is MEDIUM.
func priority(cookie string) model.Priority {
	switch cookie {
	case "A":
		return model.PriorityHigh
	case "C":
		return model.PriorityLow
	}
	return model.PriorityMedium
}
