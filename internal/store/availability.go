package store

import (
	"context"
	"time"

	"nutrition-scheduler/internal/booking"
	"nutrition-scheduler/internal/model"
)

// CreateAvailability inserts a slot. Slots belong to the availability
// management side; the booking engine only flips is_booked.
func (s *Store) CreateAvailability(ctx context.Context, a *model.Availability) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO availabilities (nutritionist_id, date, start_time, end_time, is_booked)
		 VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		a.NutritionistID, dateOnly(a.Date), a.StartTime, a.EndTime, a.IsBooked,
	).Scan(&a.ID)
}

func (t *txStore) AvailabilityByID(ctx context.Context, id int64, withAppointment bool) (*model.Availability, error) {
	a := &model.Availability{}
	if !withAppointment {
		err := t.q.QueryRow(ctx,
			`SELECT id, nutritionist_id, date, start_time, end_time, is_booked
			 FROM availabilities WHERE id = $1 FOR UPDATE`, id,
		).Scan(&a.ID, &a.NutritionistID, &a.Date, &a.StartTime, &a.EndTime, &a.IsBooked)
		if err != nil {
			return nil, notFound(err)
		}
		return a, nil
	}

	var (
		apID, apClient *int64
		apStatus       *string
		apCreated      *time.Time
	)
	err := t.q.QueryRow(ctx,
		`SELECT av.id, av.nutritionist_id, av.date, av.start_time, av.end_time, av.is_booked,
		        ap.id, ap.client_id, ap.status, ap.created_at
		 FROM availabilities av
		 LEFT JOIN appointments ap ON ap.availability_id = av.id AND ap.status <> 'CANCELED'
		 WHERE av.id = $1
		 FOR UPDATE OF av`, id,
	).Scan(&a.ID, &a.NutritionistID, &a.Date, &a.StartTime, &a.EndTime, &a.IsBooked,
		&apID, &apClient, &apStatus, &apCreated)
	if err != nil {
		return nil, notFound(err)
	}
	if apID != nil {
		st, err := model.ParseStatus(*apStatus)
		if err != nil {
			return nil, err
		}
		a.Appointment = &model.Appointment{
			ID:             *apID,
			ClientID:       *apClient,
			AvailabilityID: a.ID,
			Status:         st,
			CreatedAt:      *apCreated,
		}
	}
	return a, nil
}

func (t *txStore) SetBooked(ctx context.Context, availabilityID int64, booked bool) error {
	tag, err := t.q.Exec(ctx,
		`UPDATE availabilities SET is_booked = $1 WHERE id = $2`, booked, availabilityID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrRecordNotFound
	}
	return nil
}
