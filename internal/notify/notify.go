// Package notify delivers booking events to the people involved. Delivery is
// best effort: callers log failures and never roll state back because of them.
package notify

import (
	"context"
	"errors"

	"nutrition-scheduler/internal/logger"
)

type Kind string

const (
	KindScheduled             Kind = "appointment.scheduled"
	KindScheduledNutritionist Kind = "appointment.scheduled.nutritionist"
	KindConfirmed             Kind = "appointment.confirmed"
	KindCanceled              Kind = "appointment.canceled"
	KindCanceledNutritionist  Kind = "appointment.canceled.nutritionist"
)

// Kinds lists every event the engine emits.
var Kinds = []Kind{
	KindScheduled,
	KindScheduledNutritionist,
	KindConfirmed,
	KindCanceled,
	KindCanceledNutritionist,
}

func (k Kind) Valid() bool {
	switch k {
	case KindScheduled, KindScheduledNutritionist, KindConfirmed, KindCanceled, KindCanceledNutritionist:
		return true
	}
	return false
}

var ErrUnknownKind = errors.New("notify: unknown event kind")

// Payload is already formatted for humans.
type Payload struct {
	Name       string `json:"name,omitempty"`
	ClientName string `json:"clientName,omitempty"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
}

type Event struct {
	ID      string  `json:"id,omitempty"`
	Kind    Kind    `json:"kind"`
	To      string  `json:"to"`
	Payload Payload `json:"payload"`
}

type Dispatcher interface {
	Notify(ctx context.Context, ev Event) error
}

// LogDispatcher only records events. It is the development default.
type LogDispatcher struct{}

func (LogDispatcher) Notify(ctx context.Context, ev Event) error {
	logger.FromContext(ctx).Info("notification",
		"kind", ev.Kind,
		"to", ev.To,
		"date", ev.Payload.Date,
		"start", ev.Payload.StartTime,
		"end", ev.Payload.EndTime,
	)
	return nil
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, ev Event) error

func (f DispatcherFunc) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }
