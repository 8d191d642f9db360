package event

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	dateLayout = "Monday January 2 2006"
	timeLayout = "3:04 PM"

	// levelClassPrefix is the CSS marker carrying the importance level on
	// the calendar page, e.g. "calendar-date-3".
	levelClassPrefix = "calendar-date-"
)

// Normalize turns raw scraped rows into canonical events. A malformed row
// (blank summary, unparseable date) is dropped and counted, never fatal for
// the batch. The output preserves the input order.
func Normalize(raw []RawEvent) ([]Event, int) {
	events := make([]Event, 0, len(raw))
	rejected := 0
	for _, r := range raw {
		summary := strings.TrimSpace(r.Summary)
		if summary == "" {
			log.Debugf("dropping scraped row with blank summary (date label %q)", r.DateLabel)
			rejected++
			continue
		}
		occursAt, err := parseOccursAt(r.DateLabel, r.TimeLabel)
		if err != nil {
			log.Warnf("dropping scraped row %q: %v", summary, err)
			rejected++
			continue
		}
		events = append(events, Event{
			OccursAt: occursAt,
			Summary:  summary,
			Country:  strings.TrimSpace(r.Country),
			Level:    parseLevel(r.LevelLabel),
		})
	}
	return events, rejected
}

// parseOccursAt combines the page's date and time labels into a single
// timestamp. The page reports times in UTC already, so UTC is attached, not
// converted to. A blank or unparseable time label means midnight.
func parseOccursAt(dateLabel, timeLabel string) (time.Time, error) {
	day, err := time.Parse(dateLayout, strings.TrimSpace(dateLabel))
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable date label %q: %w", dateLabel, err)
	}

	hour, minute := 0, 0
	if trimmed := strings.TrimSpace(timeLabel); trimmed != "" {
		if t, err := time.Parse(timeLayout, trimmed); err == nil {
			hour, minute = t.Hour(), t.Minute()
		}
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC), nil
}

// parseLevel extracts the importance level from either a bare digit string
// or a CSS class like "calendar-date-2". Anything unparseable is level 0.
func parseLevel(label string) int {
	label = strings.TrimSpace(label)
	if idx := strings.LastIndex(label, levelClassPrefix); idx >= 0 {
		label = label[idx+len(levelClassPrefix):]
	}
	level, err := strconv.Atoi(label)
	if err != nil {
		return LevelInformational
	}
	return level
}
