package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrition-scheduler/internal/booking"
	"nutrition-scheduler/internal/model"
)

// stubStore hands the same stubTx to every transaction and lets tests force
// the errors a real store reports under contention.
type stubStore struct {
	tx *stubTx
}

func (s *stubStore) WithTx(_ context.Context, fn func(booking.Tx) error) error {
	return fn(s.tx)
}

func (s *stubStore) ListClientAppointments(context.Context, int64) ([]model.ClientAppointment, error) {
	return nil, nil
}

func (s *stubStore) ListAgenda(context.Context, int64, model.DateRange, int, int) ([]model.AgendaItem, int64, error) {
	return nil, 0, nil
}

type stubTx struct {
	users     map[int64]*model.User
	slot      *model.Availability
	detail    *model.AppointmentDetail
	insertErr error
	updateErr error

	inserted  int
	setBooked []bool
}

func (t *stubTx) UserByID(_ context.Context, id int64) (*model.User, error) {
	if u, ok := t.users[id]; ok {
		return u, nil
	}
	return nil, booking.ErrRecordNotFound
}

func (t *stubTx) AvailabilityByID(context.Context, int64, bool) (*model.Availability, error) {
	if t.slot == nil {
		return nil, booking.ErrRecordNotFound
	}
	return t.slot, nil
}

func (t *stubTx) AppointmentDetail(context.Context, int64) (*model.AppointmentDetail, error) {
	if t.detail == nil {
		return nil, booking.ErrRecordNotFound
	}
	return t.detail, nil
}

func (t *stubTx) InsertAppointment(_ context.Context, a *model.Appointment) error {
	if t.insertErr != nil {
		return t.insertErr
	}
	t.inserted++
	a.ID = int64(t.inserted)
	return nil
}

func (t *stubTx) UpdateAppointmentStatus(context.Context, int64, model.Status, model.Status) error {
	return t.updateErr
}

func (t *stubTx) SetBooked(_ context.Context, _ int64, booked bool) error {
	t.setBooked = append(t.setBooked, booked)
	return nil
}

const (
	stubClientID = int64(1)
	stubNutriID  = int64(2)
)

func newStubTx() *stubTx {
	day := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	start := day.Add(8 * time.Hour)
	slot := &model.Availability{ID: 5, NutritionistID: stubNutriID, Date: day, StartTime: start, EndTime: start.Add(time.Hour)}
	client := &model.User{ID: stubClientID, Email: "client@example.com", Role: model.RoleClient}
	nutri := &model.User{ID: stubNutriID, Email: "nutri@example.com", Role: model.RoleNutritionist}
	return &stubTx{
		users: map[int64]*model.User{stubClientID: client, stubNutriID: nutri},
		slot:  slot,
		detail: &model.AppointmentDetail{
			Appointment:  model.Appointment{ID: 9, ClientID: stubClientID, AvailabilityID: slot.ID, Status: model.StatusScheduled},
			Availability: *slot,
			Client:       *client,
			Nutritionist: *nutri,
		},
	}
}

func TestEngine_StoreConflicts(t *testing.T) {
	ctx := context.Background()

	t.Run("Should report a lost insert race as slot already booked", func(t *testing.T) {
		tx := newStubTx()
		tx.insertErr = booking.ErrSlotTaken
		notes := &recorder{}
		eng := booking.New(&stubStore{tx: tx}, notes)

		_, err := eng.Create(ctx, stubClientID, tx.slot.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, booking.ErrInvalidRequest)
		assert.Equal(t, "slot already booked", err.Error())
		assert.Empty(t, tx.setBooked)
		assert.Empty(t, notes.kinds())
	})

	t.Run("Should report a concurrent confirm as invalid", func(t *testing.T) {
		tx := newStubTx()
		tx.updateErr = booking.ErrStaleStatus
		notes := &recorder{}
		eng := booking.New(&stubStore{tx: tx}, notes)

		_, err := eng.Confirm(ctx, tx.detail.ID, stubNutriID)
		assert.ErrorIs(t, err, booking.ErrInvalidRequest)
		assert.Empty(t, tx.setBooked)
		assert.Empty(t, notes.kinds())
	})

	t.Run("Should report a concurrent cancel as invalid and keep the slot booked", func(t *testing.T) {
		tx := newStubTx()
		tx.updateErr = booking.ErrStaleStatus
		notes := &recorder{}
		eng := booking.New(&stubStore{tx: tx}, notes)

		_, err := eng.Cancel(ctx, tx.detail.ID, stubClientID)
		assert.ErrorIs(t, err, booking.ErrInvalidRequest)
		assert.Empty(t, tx.setBooked)
		assert.Empty(t, notes.kinds())
	})

	t.Run("Should pass unexpected store errors through unchanged", func(t *testing.T) {
		boom := errors.New("disk full")
		tx := newStubTx()
		tx.insertErr = boom
		eng := booking.New(&stubStore{tx: tx}, &recorder{})

		_, err := eng.Create(ctx, stubClientID, tx.slot.ID)
		assert.ErrorIs(t, err, boom)
		var be *booking.Error
		assert.False(t, errors.As(err, &be))
		assert.Empty(t, tx.setBooked)
	})
}

func TestEngine_CreatedAtPrecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.slot(t, f.nutritionist.ID, day(2025, 3, 4), 9)
	clock := time.Date(2025, 3, 1, 10, 30, 15, 987654321, time.UTC)
	eng := booking.New(f.st, f.notes, booking.WithClock(func() time.Time { return clock }))

	res, err := eng.Create(ctx, f.client.ID, s.ID)
	require.NoError(t, err)
	assert.Zero(t, res.Appointment.CreatedAt.Nanosecond())

	list, err := eng.ListByClient(ctx, f.client.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, res.Appointment.CreatedAt.Equal(list[0].CreatedAt),
		"create returned %s, list returned %s", res.Appointment.CreatedAt, list[0].CreatedAt)
}
