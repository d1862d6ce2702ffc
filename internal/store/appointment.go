package store

import (
	"context"
	"fmt"
	"time"

	"nutrition-scheduler/internal/booking"
	"nutrition-scheduler/internal/model"
)

func (t *txStore) InsertAppointment(ctx context.Context, a *model.Appointment) error {
	err := t.q.QueryRow(ctx,
		`INSERT INTO appointments (client_id, availability_id, status, created_at)
		 VALUES ($1,$2,$3,$4) RETURNING id`,
		a.ClientID, a.AvailabilityID, string(a.Status), a.CreatedAt,
	).Scan(&a.ID)
	if isUniqueViolation(err, activeSlotIndex) {
		return booking.ErrSlotTaken
	}
	return err
}

func (t *txStore) UpdateAppointmentStatus(ctx context.Context, id int64, from, to model.Status) error {
	tag, err := t.q.Exec(ctx,
		`UPDATE appointments SET status = $1 WHERE id = $2 AND status = $3`,
		string(to), id, string(from),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrStaleStatus
	}
	return nil
}

// AppointmentDetail locks the appointment and its slot.
func (t *txStore) AppointmentDetail(ctx context.Context, id int64) (*model.AppointmentDetail, error) {
	d := &model.AppointmentDetail{}
	var status, clientRole, nutRole string
	err := t.q.QueryRow(ctx,
		`SELECT ap.id, ap.client_id, ap.availability_id, ap.status, ap.created_at,
		        av.nutritionist_id, av.date, av.start_time, av.end_time, av.is_booked,
		        c.email, c.name, c.role,
		        n.email, n.name, n.role
		 FROM appointments ap
		 JOIN availabilities av ON av.id = ap.availability_id
		 JOIN users c ON c.id = ap.client_id
		 JOIN users n ON n.id = av.nutritionist_id
		 WHERE ap.id = $1
		 FOR UPDATE OF ap, av`, id,
	).Scan(
		&d.ID, &d.ClientID, &d.AvailabilityID, &status, &d.CreatedAt,
		&d.Availability.NutritionistID, &d.Availability.Date, &d.Availability.StartTime,
		&d.Availability.EndTime, &d.Availability.IsBooked,
		&d.Client.Email, &d.Client.Name, &clientRole,
		&d.Nutritionist.Email, &d.Nutritionist.Name, &nutRole,
	)
	if err != nil {
		return nil, notFound(err)
	}
	d.Availability.ID = d.AvailabilityID
	d.Client.ID = d.ClientID
	d.Nutritionist.ID = d.Availability.NutritionistID
	if d.Status, err = model.ParseStatus(status); err != nil {
		return nil, err
	}
	if d.Client.Role, err = model.ParseRole(clientRole); err != nil {
		return nil, err
	}
	if d.Nutritionist.Role, err = model.ParseRole(nutRole); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) ListClientAppointments(ctx context.Context, clientID int64) ([]model.ClientAppointment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT ap.id, ap.status, ap.created_at,
		        av.date, av.start_time, av.end_time,
		        n.id, n.email
		 FROM appointments ap
		 JOIN availabilities av ON av.id = ap.availability_id
		 JOIN users n ON n.id = av.nutritionist_id
		 WHERE ap.client_id = $1
		 ORDER BY ap.created_at DESC, ap.id DESC`, clientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ClientAppointment{}
	for rows.Next() {
		var (
			a      model.ClientAppointment
			status string
		)
		if err := rows.Scan(
			&a.ID, &status, &a.CreatedAt,
			&a.Date, &a.StartTime, &a.EndTime,
			&a.Nutritionist.ID, &a.Nutritionist.Email,
		); err != nil {
			return nil, err
		}
		if a.Status, err = model.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("appointment %d: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// dateOnly is how calendar dates are bound to DATE columns.
func dateOnly(t time.Time) any {
	return booking.CalendarDate(t)
}
