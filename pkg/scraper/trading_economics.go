package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ecocal/ecocal/internal/config"
	"github.com/ecocal/ecocal/pkg/event"
	log "github.com/sirupsen/logrus"
)

// levelClassPrefix marks the importance bullet on the time cell, e.g.
// "calendar-date-3".
const levelClassPrefix = "calendar-date-"

// TradingEconomics scrapes the economic calendar page into raw event rows.
// It implements event.Source.
type TradingEconomics struct {
	url       string
	userAgent string
	client    *http.Client
}

func NewTradingEconomics(cfg config.Scraper) *TradingEconomics {
	return &TradingEconomics{
		url:       cfg.URL,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *TradingEconomics) ScrapeEvents(ctx context.Context) ([]event.RawEvent, error) {
	log.Infof("Scraping economic calendar from %s", s.url)

	req, err := http.NewRequestWithContext(ctx, "GET", s.url, nil)
	if err != nil {
		log.Errorf("Failed to create request: %v", err)
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Errorf("Failed to fetch calendar page: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("calendar page returned non-OK status: %d", resp.StatusCode)
		log.Error(err)
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		log.Errorf("Failed to parse calendar page: %v", err)
		return nil, err
	}

	return parseCalendar(doc)
}

// parseCalendar walks the calendar table in document order. Header rows carry
// the date label forward; every other row with cells becomes one raw event.
func parseCalendar(doc *goquery.Document) ([]event.RawEvent, error) {
	table := doc.Find("table#calendar").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("could not find calendar table on page")
	}

	events := make([]event.RawEvent, 0)
	currentDate := ""
	table.Find("thead, tr").Each(func(_ int, row *goquery.Selection) {
		if row.HasClass("table-header") {
			if header := row.Find("th").First(); header.Length() > 0 {
				currentDate = strings.TrimSpace(header.Text())
				log.Debugf("Processing events for date: %s", currentDate)
			}
			return
		}
		if raw, ok := parseEventRow(row, currentDate); ok {
			events = append(events, raw)
		}
	})

	log.Infof("Parsed %d events from calendar page", len(events))
	return events, nil
}

// parseEventRow reads one event row: time (with the importance class on its
// span), country, summary. Rows without cells are skipped.
func parseEventRow(row *goquery.Selection, currentDate string) (event.RawEvent, bool) {
	cells := row.Find("td")
	if cells.Length() == 0 {
		return event.RawEvent{}, false
	}

	timeCell := cells.First()
	levelLabel := ""
	if span := timeCell.Find("span").First(); span.Length() > 0 {
		if classAttr, exists := span.Attr("class"); exists {
			for _, class := range strings.Fields(classAttr) {
				if strings.HasPrefix(class, levelClassPrefix) {
					levelLabel = class
					break
				}
			}
		}
	}

	return event.RawEvent{
		DateLabel:  currentDate,
		TimeLabel:  strings.TrimSpace(timeCell.Text()),
		Country:    strings.TrimSpace(cells.Eq(1).Text()),
		LevelLabel: levelLabel,
		Summary:    strings.TrimSpace(cells.Eq(2).Text()),
	}, true
}
