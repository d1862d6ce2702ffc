package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"nutrition-scheduler/internal/booking"
	"nutrition-scheduler/internal/model"
)

// CreateAvailability inserts a slot.
func (s *Store) CreateAvailability(ctx context.Context, a *model.Availability) error {
	const q = `INSERT INTO availabilities (nutritionist_id, date, start_time, end_time, is_booked)
	           VALUES (?, ?, ?, ?, ?) RETURNING id`
	err := s.db.QueryRowContext(ctx, q,
		a.NutritionistID, formatDate(a.Date), formatTime(a.StartTime), formatTime(a.EndTime), a.IsBooked,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("sqlite: create availability: %w", err)
	}
	return nil
}

type slotRow struct {
	date, start, end string
}

func (r slotRow) into(a *model.Availability) (err error) {
	if a.Date, err = parseDate(r.date); err != nil {
		return err
	}
	if a.StartTime, err = parseTime(r.start); err != nil {
		return err
	}
	a.EndTime, err = parseTime(r.end)
	return err
}

func (t *txStore) AvailabilityByID(ctx context.Context, id int64, withAppointment bool) (*model.Availability, error) {
	const q = `SELECT av.id, av.nutritionist_id, av.date, av.start_time, av.end_time, av.is_booked,
	                  ap.id, ap.client_id, ap.status, ap.created_at
	           FROM availabilities av
	           LEFT JOIN appointments ap ON ap.availability_id = av.id AND ap.status <> 'CANCELED'
	           WHERE av.id = ?`
	var (
		a         model.Availability
		r         slotRow
		apID      sql.NullInt64
		apClient  sql.NullInt64
		apStatus  sql.NullString
		apCreated sql.NullString
	)
	err := t.tx.QueryRowContext(ctx, q, id).Scan(
		&a.ID, &a.NutritionistID, &r.date, &r.start, &r.end, &a.IsBooked,
		&apID, &apClient, &apStatus, &apCreated,
	)
	if err != nil {
		return nil, notFound(err)
	}
	if err := r.into(&a); err != nil {
		return nil, err
	}
	if withAppointment && apID.Valid {
		ap := &model.Appointment{ID: apID.Int64, ClientID: apClient.Int64, AvailabilityID: a.ID}
		if ap.Status, err = model.ParseStatus(apStatus.String); err != nil {
			return nil, err
		}
		if ap.CreatedAt, err = parseTime(apCreated.String); err != nil {
			return nil, err
		}
		a.Appointment = ap
	}
	return &a, nil
}

func (t *txStore) AppointmentDetail(ctx context.Context, id int64) (*model.AppointmentDetail, error) {
	const q = `SELECT ap.id, ap.client_id, ap.availability_id, ap.status, ap.created_at,
	                  av.nutritionist_id, av.date, av.start_time, av.end_time, av.is_booked,
	                  c.email, c.name, c.role,
	                  n.email, n.name, n.role
	           FROM appointments ap
	           JOIN availabilities av ON av.id = ap.availability_id
	           JOIN users c ON c.id = ap.client_id
	           JOIN users n ON n.id = av.nutritionist_id
	           WHERE ap.id = ?`
	var (
		d                   model.AppointmentDetail
		r                   slotRow
		status, created     string
		clientRole, nutRole string
		clientName, nutName sql.NullString
	)
	err := t.tx.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.ClientID, &d.AvailabilityID, &status, &created,
		&d.Availability.NutritionistID, &r.date, &r.start, &r.end, &d.Availability.IsBooked,
		&d.Client.Email, &clientName, &clientRole,
		&d.Nutritionist.Email, &nutName, &nutRole,
	)
	if err != nil {
		return nil, notFound(err)
	}
	if err := r.into(&d.Availability); err != nil {
		return nil, err
	}
	d.Availability.ID = d.AvailabilityID
	d.Client.ID = d.ClientID
	d.Nutritionist.ID = d.Availability.NutritionistID
	if clientName.Valid {
		d.Client.Name = &clientName.String
	}
	if nutName.Valid {
		d.Nutritionist.Name = &nutName.String
	}
	if d.Status, err = model.ParseStatus(status); err != nil {
		return nil, err
	}
	if d.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if d.Client.Role, err = model.ParseRole(clientRole); err != nil {
		return nil, err
	}
	if d.Nutritionist.Role, err = model.ParseRole(nutRole); err != nil {
		return nil, err
	}
	return &d, nil
}

func (t *txStore) InsertAppointment(ctx context.Context, a *model.Appointment) error {
	const q = `INSERT INTO appointments (client_id, availability_id, status, created_at)
	           VALUES (?, ?, ?, ?) RETURNING id`
	err := t.tx.QueryRowContext(ctx, q,
		a.ClientID, a.AvailabilityID, string(a.Status), formatTime(a.CreatedAt),
	).Scan(&a.ID)
	if isUniqueViolation(err, "appointments.availability_id") {
		return booking.ErrSlotTaken
	}
	if err != nil {
		return fmt.Errorf("sqlite: insert appointment: %w", err)
	}
	return nil
}

func (t *txStore) UpdateAppointmentStatus(ctx context.Context, id int64, from, to model.Status) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE appointments SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("sqlite: update appointment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected (update status): %w", err)
	}
	if n == 0 {
		return booking.ErrStaleStatus
	}
	return nil
}

func (t *txStore) SetBooked(ctx context.Context, availabilityID int64, booked bool) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE availabilities SET is_booked = ? WHERE id = ?`, booked, availabilityID)
	if err != nil {
		return fmt.Errorf("sqlite: set booked: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected (set booked): %w", err)
	}
	if n == 0 {
		return booking.ErrRecordNotFound
	}
	return nil
}

func (s *Store) ListClientAppointments(ctx context.Context, clientID int64) ([]model.ClientAppointment, error) {
	const q = `SELECT ap.id, ap.status, ap.created_at, av.date, av.start_time, av.end_time, n.id, n.email
	           FROM appointments ap
	           JOIN availabilities av ON av.id = ap.availability_id
	           JOIN users n ON n.id = av.nutritionist_id
	           WHERE ap.client_id = ?
	           ORDER BY ap.created_at DESC, ap.id DESC`
	rows, err := s.db.QueryContext(ctx, q, clientID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list client appointments: %w", err)
	}
	defer rows.Close()

	out := []model.ClientAppointment{}
	for rows.Next() {
		var (
			a               model.ClientAppointment
			r               slotRow
			status, created string
		)
		if err := rows.Scan(&a.ID, &status, &created, &r.date, &r.start, &r.end,
			&a.Nutritionist.ID, &a.Nutritionist.Email); err != nil {
			return nil, fmt.Errorf("sqlite: scan client appointment: %w", err)
		}
		var slot model.Availability
		if err := r.into(&slot); err != nil {
			return nil, err
		}
		a.Date, a.StartTime, a.EndTime = slot.Date, slot.StartTime, slot.EndTime
		if a.Status, err = model.ParseStatus(status); err != nil {
			return nil, err
		}
		if a.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iter client appointments: %w", err)
	}
	return out, nil
}
