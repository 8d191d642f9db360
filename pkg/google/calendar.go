package google

import (
	"context"
	"fmt"
	"time"

	"github.com/ecocal/ecocal/internal/config"
	"github.com/ecocal/ecocal/pkg/event"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Calendar events are posted as short blocks so they show up as markers
// rather than busy time.
const eventDuration = 5 * time.Minute

// Calendar posts economic events to a single Google Calendar. It implements
// calsync.CalendarClient.
type Calendar struct {
	service    *gcal.Service
	calendarId string
}

// NewCalendar builds a calendar gateway from the stored OAuth token. The
// token file must already exist; run the auth command to obtain one.
func NewCalendar(ctx context.Context, cfg config.Google) (*Calendar, error) {
	token, err := LoadToken(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load Google OAuth token: %w", err)
	}

	client := OAuthConfig(cfg).Client(ctx, token)
	client.Timeout = cfg.Timeout

	service, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		err := fmt.Errorf("unable to create Calendar client: %v", err)
		log.Error(err)
		return nil, err
	}

	return &Calendar{service: service, calendarId: cfg.CalendarId}, nil
}

func (c *Calendar) CreateEvent(ctx context.Context, e event.Event) (string, error) {
	log.Debugf("Adding event %q to calendar: %s", e.Summary, c.calendarId)

	created, err := c.service.Events.Insert(c.calendarId, newCalendarEvent(e)).Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to insert event in Google Calendar: %v", err)
		log.Error(err)
		return "", err
	}
	return created.Id, nil
}

// CheckConnection issues a minimal list request to verify the calendar is
// reachable with the stored credentials.
func (c *Calendar) CheckConnection(ctx context.Context) error {
	_, err := c.service.Events.List(c.calendarId).MaxResults(1).Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to reach Google Calendar: %v", err)
		log.Error(err)
		return err
	}
	return nil
}

func newCalendarEvent(e event.Event) *gcal.Event {
	start := e.OccursAt.UTC()
	return &gcal.Event{
		Summary:     e.Summary,
		Description: fmt.Sprintf("Economic event from Trading Economics\nImportance: Level %d", e.Level),
		Start: &gcal.EventDateTime{
			DateTime: start.Format(time.RFC3339),
		},
		End: &gcal.EventDateTime{
			DateTime: start.Add(eventDuration).Format(time.RFC3339),
		},
	}
}
