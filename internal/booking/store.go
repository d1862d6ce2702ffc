package booking

import (
	"context"

	"nutrition-scheduler/internal/model"
)

// Store is the persistence the engine drives.
//
// WithTx runs fn inside one transaction: it commits when fn returns nil and
// rolls back on error or panic. Nothing fn wrote is visible to other callers
// before the commit.
type Store interface {
	WithTx(ctx context.Context, fn func(Tx) error) error
	ListClientAppointments(ctx context.Context, clientID int64) ([]model.ClientAppointment, error)
	// ListAgenda returns one page of a nutritionist's slots and the total
	// matching count, both read from the same snapshot.
	ListAgenda(ctx context.Context, nutritionistID int64, dates model.DateRange, limit, offset int) ([]model.AgendaItem, int64, error)
}

// Tx is the transactional handle passed to WithTx callbacks.
type Tx interface {
	UserByID(ctx context.Context, id int64) (*model.User, error)
	// AvailabilityByID locks the slot row for the rest of the transaction.
	// With withAppointment the active appointment, if any, is attached.
	AvailabilityByID(ctx context.Context, id int64, withAppointment bool) (*model.Availability, error)
	AppointmentDetail(ctx context.Context, id int64) (*model.AppointmentDetail, error)
	// InsertAppointment fills ID and returns ErrSlotTaken when the slot
	// already has an active appointment.
	InsertAppointment(ctx context.Context, a *model.Appointment) error
	// UpdateAppointmentStatus moves from -> to and returns ErrStaleStatus
	// when the row is no longer in from.
	UpdateAppointmentStatus(ctx context.Context, id int64, from, to model.Status) error
	SetBooked(ctx context.Context, availabilityID int64, booked bool) error
}

// Recorder observes engine outcomes, typically as metrics.
type Recorder interface {
	ObserveTransition(op string, err error)
	ObserveNotification(kind string, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTransition(string, error)   {}
func (nopRecorder) ObserveNotification(string, error) {}
