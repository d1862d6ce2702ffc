package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"nutrition-scheduler/internal/model"
)

// AgendaQueries builds the page and count statements for one nutritionist's
// agenda from the same predicate. dateArg converts calendar dates to the
// driver's bind value.
func AgendaQueries(
	ph squirrel.PlaceholderFormat,
	nutritionistID int64,
	dates model.DateRange,
	limit, offset int,
	dateArg func(time.Time) any,
) (page, count squirrel.SelectBuilder) {
	where := squirrel.And{squirrel.Eq{"av.nutritionist_id": nutritionistID}}
	if !dates.From.IsZero() {
		where = append(where, squirrel.GtOrEq{"av.date": dateArg(dates.From)})
	}
	if !dates.To.IsZero() {
		where = append(where, squirrel.LtOrEq{"av.date": dateArg(dates.To)})
	}

	page = squirrel.Select(
		"av.id", "av.date", "av.start_time", "av.end_time", "av.is_booked",
		"ap.id", "ap.status", "c.id", "c.email",
	).
		From("availabilities av").
		LeftJoin("appointments ap ON ap.availability_id = av.id AND ap.status <> 'CANCELED'").
		LeftJoin("users c ON c.id = ap.client_id").
		Where(where).
		OrderBy("av.date ASC", "av.start_time ASC", "av.id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(ph)

	count = squirrel.Select("COUNT(*)").
		From("availabilities av").
		Where(where).
		PlaceholderFormat(ph)
	return page, count
}

// ListAgenda reads the count and the page inside one read-only REPEATABLE
// READ transaction so both see the same snapshot.
func (s *Store) ListAgenda(ctx context.Context, nutritionistID int64, dates model.DateRange, limit, offset int) ([]model.AgendaItem, int64, error) {
	pageQ, countQ := AgendaQueries(squirrel.Dollar, nutritionistID, dates, limit, offset, dateOnly)
	pageSQL, pageArgs, err := pageQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building agenda query: %w", err)
	}
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building agenda count: %w", err)
	}

	var (
		items []model.AgendaItem
		total int64
	)
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err = s.inTx(ctx, opts, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return err
		}
		rows, err := tx.Query(ctx, pageSQL, pageArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				it       model.AgendaItem
				apID     *int64
				apStatus *string
				cID      *int64
				cEmail   *string
			)
			if err := rows.Scan(&it.AvailabilityID, &it.Date, &it.StartTime, &it.EndTime, &it.IsBooked,
				&apID, &apStatus, &cID, &cEmail); err != nil {
				return err
			}
			if apID != nil {
				st, err := model.ParseStatus(*apStatus)
				if err != nil {
					return err
				}
				it.Appointment = &model.AgendaAppointment{
					ID:     *apID,
					Status: st,
					Client: model.Contact{ID: *cID, Email: *cEmail},
				}
			}
			items = append(items, it)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
