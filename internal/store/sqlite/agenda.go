package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"nutrition-scheduler/internal/model"
	"nutrition-scheduler/internal/store"
)

func (s *Store) ListAgenda(ctx context.Context, nutritionistID int64, dates model.DateRange, limit, offset int) ([]model.AgendaItem, int64, error) {
	pageQ, countQ := store.AgendaQueries(squirrel.Question, nutritionistID, dates, limit, offset,
		func(t time.Time) any { return formatDate(t) })
	pageSQL, pageArgs, err := pageQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: build agenda query: %w", err)
	}
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: build agenda count: %w", err)
	}

	var (
		items []model.AgendaItem
		total int64
	)
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("sqlite: count agenda: %w", err)
		}
		rows, err := tx.QueryContext(ctx, pageSQL, pageArgs...)
		if err != nil {
			return fmt.Errorf("sqlite: list agenda: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				it       model.AgendaItem
				r        slotRow
				apID     sql.NullInt64
				apStatus sql.NullString
				cID      sql.NullInt64
				cEmail   sql.NullString
			)
			if err := rows.Scan(&it.AvailabilityID, &r.date, &r.start, &r.end, &it.IsBooked,
				&apID, &apStatus, &cID, &cEmail); err != nil {
				return fmt.Errorf("sqlite: scan agenda item: %w", err)
			}
			var slot model.Availability
			if err := r.into(&slot); err != nil {
				return err
			}
			it.Date, it.StartTime, it.EndTime = slot.Date, slot.StartTime, slot.EndTime
			if apID.Valid {
				st, err := model.ParseStatus(apStatus.String)
				if err != nil {
					return err
				}
				it.Appointment = &model.AgendaAppointment{
					ID:     apID.Int64,
					Status: st,
					Client: model.Contact{ID: cID.Int64, Email: cEmail.String},
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
