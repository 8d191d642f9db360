package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ecocal/ecocal/internal/config"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// conn is the subset of *pgx.Conn the connector relies on. Tests substitute
// their own implementation through the dial function.
type conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type dialFunc func(ctx context.Context, connString string) (conn, error)

// Connector hands out single-use database connection scopes. Each scope
// dials its own connection, runs inside one transaction, and releases the
// connection before returning; no connection is held between calls.
type Connector struct {
	connString string
	maxRetries int
	retryWait  time.Duration
	dial       dialFunc
}

func NewConnector(cfg config.Database) *Connector {
	// Escape single quotes in password for PostgreSQL connection string
	escapedPassword := strings.ReplaceAll(cfg.Pass, "'", "\\'")

	connString := fmt.Sprintf("host=%s port=%d user=%s password='%s' dbname=%s sslmode=disable options='-c search_path=%s'",
		cfg.Host, cfg.Port, cfg.User, escapedPassword, cfg.Name, cfg.Schema)

	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Connector{
		connString: connString,
		maxRetries: maxRetries,
		retryWait:  cfg.RetryWait,
		dial: func(ctx context.Context, connString string) (conn, error) {
			return pgx.Connect(ctx, connString)
		},
	}
}

// WithTx acquires a connection, begins a transaction and runs fn inside it.
// The transaction is committed when fn returns nil and rolled back when it
// returns an error. The connection is closed exactly once on every exit
// path, including a failing commit or rollback.
func (c *Connector) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	dbConn, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := dbConn.Close(ctx); closeErr != nil {
			log.Warnf("failed to close database connection: %v", closeErr)
		}
	}()

	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("failed to rollback transaction: %v", rbErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ping verifies connectivity using the same acquisition path as regular
// scopes.
func (c *Connector) Ping(ctx context.Context) error {
	dbConn, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := dbConn.Close(ctx); closeErr != nil {
			log.Warnf("failed to close database connection: %v", closeErr)
		}
	}()
	return dbConn.Ping(ctx)
}

// acquire dials the database, retrying with a fixed interval between
// attempts. After the final failed attempt the dial error is returned
// wrapped so callers can still inspect the cause.
func (c *Connector) acquire(ctx context.Context) (conn, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		dbConn, err := c.dial(ctx, c.connString)
		if err == nil {
			if attempt > 1 {
				log.Infof("database connection established on attempt %d", attempt)
			}
			return dbConn, nil
		}
		lastErr = err
		log.Warnf("database connection attempt %d/%d failed: %v", attempt, c.maxRetries, err)
		if attempt < c.maxRetries {
			select {
			case <-time.After(c.retryWait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", c.maxRetries, lastErr)
}
