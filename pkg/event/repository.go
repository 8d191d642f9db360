package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ecocal/ecocal/internal/database"
	"github.com/jackc/pgx/v5"
)

// Repository is the durable store for calendar events.
type Repository interface {
	// InsertBatch stores all given events; rows colliding with an existing
	// natural key are skipped. Returns the number of rows actually inserted.
	InsertBatch(ctx context.Context, events []Event) (int, error)
	// FindUnsyncedImportant returns events not yet propagated externally
	// that qualify for sync, earliest first.
	FindUnsyncedImportant(ctx context.Context, minLevel int) ([]Event, error)
	// MarkSynced records the external id on the row matching the natural
	// key. Returns whether a row was updated; zero rows is not an error.
	MarkSynced(ctx context.Context, occursAt time.Time, summary string, externalID string) (bool, error)
	// FindSince returns events occurring at or after since with at least
	// the given level, earliest first.
	FindSince(ctx context.Context, since time.Time, minLevel int) ([]Event, error)
	// Statistics returns an aggregate snapshot of the table.
	Statistics(ctx context.Context) (Statistics, error)
}

const eventColumns = "id, event_datetime, summary, country, level, external_id, date_added"

type PostgresRepository struct {
	db *database.Connector
}

func NewPostgresRepository(db *database.Connector) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) InsertBatch(ctx context.Context, events []Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	inserted := 0
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range events {
			var country any
			if e.Country != "" {
				country = e.Country
			}
			batch.Queue(
				`INSERT INTO events (event_datetime, summary, country, level)
				 VALUES ($1, $2, $3, $4)
				 ON CONFLICT (event_datetime, summary) DO NOTHING`,
				e.OccursAt, e.Summary, country, e.Level,
			)
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()
		for range events {
			tag, err := results.Exec()
			if err != nil {
				return fmt.Errorf("failed to insert event: %w", err)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *PostgresRepository) FindUnsyncedImportant(ctx context.Context, minLevel int) ([]Event, error) {
	predicate, args := importanceFilter(minLevel)
	query := fmt.Sprintf(
		"SELECT %s FROM events WHERE external_id IS NULL AND (%s) ORDER BY event_datetime",
		eventColumns, predicate,
	)

	var events []Event
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to query unsynced events: %w", err)
		}
		defer rows.Close()

		events, err = scanEvents(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// importanceFilter builds the sync eligibility predicate: level at or above
// the threshold, or a summary naming one of the high-value indicators.
func importanceFilter(minLevel int) (string, []any) {
	args := []any{minLevel}
	clauses := []string{"level >= $1"}
	for _, indicator := range HighValueIndicators() {
		args = append(args, "%"+indicator+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(summary) LIKE $%d", len(args)))
	}
	return strings.Join(clauses, " OR "), args
}

func (r *PostgresRepository) MarkSynced(ctx context.Context, occursAt time.Time, summary string, externalID string) (bool, error) {
	updated := false
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		// The external_id IS NULL guard keeps an already recorded id from
		// ever being overwritten.
		tag, err := tx.Exec(ctx,
			`UPDATE events SET external_id = $1
			 WHERE event_datetime = $2 AND summary = $3 AND external_id IS NULL`,
			externalID, occursAt, summary,
		)
		if err != nil {
			return fmt.Errorf("failed to mark event as synced: %w", err)
		}
		updated = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

func (r *PostgresRepository) FindSince(ctx context.Context, since time.Time, minLevel int) ([]Event, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM events WHERE event_datetime >= $1 AND level >= $2 ORDER BY event_datetime",
		eventColumns,
	)

	var events []Event
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, since, minLevel)
		if err != nil {
			return fmt.Errorf("failed to query events: %w", err)
		}
		defer rows.Close()

		events, err = scanEvents(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PostgresRepository) Statistics(ctx context.Context) (Statistics, error) {
	var stats Statistics
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT COUNT(*),
			       COUNT(external_id),
			       COUNT(CASE WHEN level >= $1 THEN 1 END),
			       MIN(event_datetime),
			       MAX(event_datetime)
			FROM events`,
			LevelHighImpact,
		)

		var total, synced, highImpact int64
		var earliest, latest *time.Time
		if err := row.Scan(&total, &synced, &highImpact, &earliest, &latest); err != nil {
			return fmt.Errorf("failed to read event statistics: %w", err)
		}

		stats = Statistics{
			TotalEvents:      int(total),
			SyncedEvents:     int(synced),
			UnsyncedEvents:   int(total - synced),
			HighImpactEvents: int(highImpact),
			EarliestEvent:    earliest,
			LatestEvent:      latest,
		}
		return nil
	})
	if err != nil {
		return Statistics{}, err
	}
	return stats, nil
}

func scanEvents(rows pgx.Rows) ([]Event, error) {
	events := make([]Event, 0)
	for rows.Next() {
		var e Event
		var country, externalID *string
		if err := rows.Scan(&e.ID, &e.OccursAt, &e.Summary, &country, &e.Level, &externalID, &e.DateAdded); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		if country != nil {
			e.Country = *country
		}
		if externalID != nil {
			e.ExternalID = *externalID
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event rows: %w", err)
	}
	return events, nil
}
