// Package sqlite is an embedded backend of the booking engine on
// modernc.org/sqlite, used for single-node deployments and tests.
//
// The database runs on one connection, so transactions are serialized by the
// pool and a slot can never be reserved twice.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"nutrition-scheduler/internal/booking"
	"nutrition-scheduler/internal/logger"
	"nutrition-scheduler/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	dateLayout  = "2006-01-02"
	busyTimeout = 5 * time.Second
)

type Store struct {
	db *sql.DB
}

var _ booking.Store = (*Store)(nil)

// Open opens (creating if needed) the database file at path and applies the
// embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite: empty database path")
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)",
		path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func migrate(ctx context.Context, db *sql.DB) error {
	if err := store.MigrateUp(ctx, db, migrationsFS, "sqlite3"); err != nil {
		return fmt.Errorf("sqlite: apply migrations: %w", err)
	}
	return nil
}

func (s *Store) WithTx(ctx context.Context, fn func(booking.Tx) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return fn(&txStore{tx: tx})
	})
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	log := logger.FromContext(ctx)
	defer func() {
		if p := recover(); p != nil {
			if rb := tx.Rollback(); rb != nil {
				log.Error("sqlite: rollback failed", "err", rb)
			}
			panic(p)
		}
		if err != nil {
			if rb := tx.Rollback(); rb != nil && !errors.Is(rb, sql.ErrTxDone) {
				log.Warn("sqlite: rollback failed", "err", rb)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("sqlite: commit: %w", cErr)
		}
	}()
	return fn(tx)
}

type txStore struct {
	tx *sql.Tx
}

// isUniqueViolation matches a UNIQUE failure on the given table.column.
func isUniqueViolation(err error, column string) bool {
	var se *sqlitedrv.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(se.Error(), "UNIQUE constraint failed: "+column)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return booking.ErrRecordNotFound
	}
	return err
}

// Timestamps are stored as second-precision RFC 3339 in UTC so that text
// order matches time order.
func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: bad timestamp %q: %w", s, err)
	}
	return t, nil
}

func formatDate(t time.Time) string { return booking.CalendarDate(t).Format(dateLayout) }

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: bad date %q: %w", s, err)
	}
	return t, nil
}
