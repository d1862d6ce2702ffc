package booking

import "errors"

// Error kinds surfaced to callers. Match with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrForbidden      = errors.New("forbidden")
)

// Store-level sentinels. Stores return these; the engine turns them into
// caller-facing errors.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrSlotTaken      = errors.New("availability already has an active appointment")
	ErrStaleStatus    = errors.New("appointment status changed concurrently")
)

type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func notFound(msg string) error  { return &Error{Kind: ErrNotFound, Msg: msg} }
func invalid(msg string) error   { return &Error{Kind: ErrInvalidRequest, Msg: msg} }
func forbidden(msg string) error { return &Error{Kind: ErrForbidden, Msg: msg} }

var errSlotBooked = invalid("slot already booked")
