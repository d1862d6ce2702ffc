// Package booking is the appointment lifecycle and slot reservation engine.
//
// Every transition loads and validates state, then performs its writes in a
// single store transaction. Notifications go out only after the commit and
// never influence the result of the operation.
package booking

import (
	"context"
	"errors"
	"time"

	"nutrition-scheduler/internal/logger"
	"nutrition-scheduler/internal/model"
	"nutrition-scheduler/internal/notify"
)

const (
	defaultNotifyTimeout = 5 * time.Second
	defaultDisplayName   = "Client"

	// finest timestamp every store keeps; SQLite stores whole seconds
	timestampPrecision = time.Second
)

type Engine struct {
	store         Store
	notifier      notify.Dispatcher
	recorder      Recorder
	loc           *time.Location
	notifyTimeout time.Duration
	now           func() time.Time
}

type Option func(*Engine)

// WithLocation sets the zone used to render dates in notifications.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func WithNotifyTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.notifyTimeout = d
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(st Store, n notify.Dispatcher, opts ...Option) *Engine {
	if n == nil {
		n = notify.LogDispatcher{}
	}
	e := &Engine{
		store:         st,
		notifier:      n,
		recorder:      nopRecorder{},
		loc:           time.UTC,
		notifyTimeout: defaultNotifyTimeout,
		now:           time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

type CreateResult struct {
	Message     string
	Appointment model.Appointment
}

// Create books availabilityID for clientID.
func (e *Engine) Create(ctx context.Context, clientID, availabilityID int64) (*CreateResult, error) {
	var (
		client, nutritionist *model.User
		slot                 *model.Availability
		appt                 *model.Appointment
	)
	err := e.store.WithTx(ctx, func(tx Tx) error {
		u, err := tx.UserByID(ctx, clientID)
		if err != nil {
			return lookupErr(err, "user not found")
		}
		if !canBook(u.Role) {
			return invalid("only clients can book appointments")
		}

		s, err := tx.AvailabilityByID(ctx, availabilityID, true)
		if err != nil {
			return lookupErr(err, "slot not found")
		}
		// flag and relation must agree; either one marks the slot as taken
		if s.IsBooked || s.Appointment != nil {
			return errSlotBooked
		}

		owner, err := tx.UserByID(ctx, s.NutritionistID)
		if err != nil {
			return err
		}

		a := &model.Appointment{
			ClientID:       u.ID,
			AvailabilityID: s.ID,
			Status:         model.StatusScheduled,
			CreatedAt:      e.now().UTC().Truncate(timestampPrecision),
		}
		if err := tx.InsertAppointment(ctx, a); err != nil {
			if errors.Is(err, ErrSlotTaken) {
				return errSlotBooked
			}
			return err
		}
		if err := tx.SetBooked(ctx, s.ID, true); err != nil {
			return err
		}
		client, nutritionist, slot, appt = u, owner, s, a
		return nil
	})
	e.recorder.ObserveTransition("create", err)
	if err != nil {
		return nil, err
	}

	clientName := client.DisplayName(defaultDisplayName)
	e.dispatch(ctx,
		e.event(notify.KindScheduledNutritionist, nutritionist.Email, notify.Payload{ClientName: clientName}, slot),
		e.event(notify.KindScheduled, client.Email, notify.Payload{Name: clientName}, slot),
	)
	return &CreateResult{Message: "appointment scheduled", Appointment: *appt}, nil
}

// Confirm marks a scheduled appointment as completed. The slot stays booked.
func (e *Engine) Confirm(ctx context.Context, appointmentID, nutritionistID int64) (string, error) {
	var d *model.AppointmentDetail
	err := e.store.WithTx(ctx, func(tx Tx) error {
		got, err := tx.AppointmentDetail(ctx, appointmentID)
		if err != nil {
			return lookupErr(err, "appointment not found")
		}
		if got.Availability.NutritionistID != nutritionistID {
			return forbidden("you cannot confirm this appointment")
		}
		if got.Status != model.StatusScheduled {
			return invalid("appointment cannot be confirmed")
		}
		if err := tx.UpdateAppointmentStatus(ctx, got.ID, model.StatusScheduled, model.StatusCompleted); err != nil {
			if errors.Is(err, ErrStaleStatus) {
				return invalid("appointment cannot be confirmed")
			}
			return err
		}
		d = got
		return nil
	})
	e.recorder.ObserveTransition("confirm", err)
	if err != nil {
		return "", err
	}

	e.dispatch(ctx,
		e.event(notify.KindConfirmed, d.Client.Email, notify.Payload{Name: d.Client.DisplayName(defaultDisplayName)}, &d.Availability),
	)
	return "appointment confirmed", nil
}

// Cancel cancels a scheduled appointment and frees its slot.
func (e *Engine) Cancel(ctx context.Context, appointmentID, clientID int64) (string, error) {
	var d *model.AppointmentDetail
	err := e.store.WithTx(ctx, func(tx Tx) error {
		got, err := tx.AppointmentDetail(ctx, appointmentID)
		if err != nil {
			return lookupErr(err, "appointment not found")
		}
		if got.ClientID != clientID {
			return forbidden("you cannot cancel this appointment")
		}
		if got.Status != model.StatusScheduled {
			return invalid("appointment cannot be canceled")
		}
		if err := tx.UpdateAppointmentStatus(ctx, got.ID, model.StatusScheduled, model.StatusCanceled); err != nil {
			if errors.Is(err, ErrStaleStatus) {
				return invalid("appointment cannot be canceled")
			}
			return err
		}
		if err := tx.SetBooked(ctx, got.AvailabilityID, false); err != nil {
			return err
		}
		d = got
		return nil
	})
	e.recorder.ObserveTransition("cancel", err)
	if err != nil {
		return "", err
	}

	clientName := d.Client.DisplayName(defaultDisplayName)
	e.dispatch(ctx,
		e.event(notify.KindCanceledNutritionist, d.Nutritionist.Email, notify.Payload{ClientName: clientName}, &d.Availability),
		e.event(notify.KindCanceled, d.Client.Email, notify.Payload{Name: clientName}, &d.Availability),
	)
	return "appointment canceled", nil
}

// ListByClient returns the client's appointments, newest first.
func (e *Engine) ListByClient(ctx context.Context, clientID int64) ([]model.ClientAppointment, error) {
	return e.store.ListClientAppointments(ctx, clientID)
}

func canBook(r model.Role) bool {
	switch r {
	case model.RoleClient:
		return true
	case model.RoleNutritionist, model.RoleAdmin:
		return false
	}
	return false
}

func lookupErr(err error, msg string) error {
	if errors.Is(err, ErrRecordNotFound) {
		return notFound(msg)
	}
	return err
}

func (e *Engine) event(kind notify.Kind, to string, p notify.Payload, slot *model.Availability) notify.Event {
	p.Date = slot.Date.Format("02/01/2006")
	p.StartTime = slot.StartTime.In(e.loc).Format("15:04")
	p.EndTime = slot.EndTime.In(e.loc).Format("15:04")
	return notify.Event{Kind: kind, To: to, Payload: p}
}

// dispatch runs after commit. It is detached from the caller's cancellation
// and bounded by its own timeout; failures are logged and dropped.
func (e *Engine) dispatch(ctx context.Context, events ...notify.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.notifyTimeout)
	defer cancel()
	log := logger.FromContext(ctx)
	for _, ev := range events {
		err := e.notifier.Notify(ctx, ev)
		e.recorder.ObserveNotification(string(ev.Kind), err)
		if err != nil {
			log.Warn("notification failed", "kind", ev.Kind, "to", ev.To, "err", err)
		}
	}
}
