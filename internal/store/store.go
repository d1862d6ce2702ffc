// Package store is the PostgreSQL backend of the booking engine.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"nutrition-scheduler/internal/booking"
	"nutrition-scheduler/internal/logger"
)

const activeSlotIndex = "appointments_active_slot_uniq"

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is what the store needs from a pool: *pgxpool.Pool or a pgxmock pool.
type DB interface {
	querier
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

type Store struct {
	db DB
}

func New(db DB) *Store {
	return &Store{db: db}
}

var _ booking.Store = (*Store)(nil)

// WithTx runs fn in a READ COMMITTED transaction. Slot rows are locked with
// SELECT ... FOR UPDATE inside fn and the partial unique index on active
// appointments is the final guard against double booking.
func (s *Store) WithTx(ctx context.Context, fn func(booking.Tx) error) error {
	return s.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(&txStore{q: tx})
	})
}

func (s *Store) inTx(ctx context.Context, opts pgx.TxOptions, fn func(pgx.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	log := logger.FromContext(ctx)
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error("rollback failed", "err", rbErr)
			}
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Error("rollback failed", "err", rbErr)
			}
			return
		}
		if cErr := tx.Commit(ctx); cErr != nil {
			err = fmt.Errorf("commit tx: %w", cErr)
		}
	}()
	return fn(tx)
}

// txStore implements booking.Tx on an open transaction.
type txStore struct {
	q querier
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return booking.ErrRecordNotFound
	}
	return err
}
