package event

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventsRenderer renders a list of events into an alternative wire format.
type EventsRenderer interface {
	RenderEvents(events []Event) (string, error)
}

type CsvEventsRendererImpl struct {
}

func NewCsvEventsRenderer() *CsvEventsRendererImpl {
	return &CsvEventsRendererImpl{}
}

func (t *CsvEventsRendererImpl) RenderEvents(events []Event) (string, error) {
	data := make([][]string, 0, len(events)+1)
	data = append(data, []string{"event_datetime", "summary", "country", "level", "synced"})
	for _, e := range events {
		data = append(data, []string{
			e.OccursAt.UTC().Format(time.RFC3339),
			e.Summary,
			e.Country,
			strconv.Itoa(e.Level),
			strconv.FormatBool(e.Synced()),
		})
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
