package model

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleClient       Role = "CLIENT"
	RoleNutritionist Role = "NUTRITIONIST"
	RoleAdmin        Role = "ADMIN"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleClient, RoleNutritionist, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusCompleted Status = "COMPLETED"
	StatusCanceled  Status = "CANCELED"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusScheduled, StatusCompleted, StatusCanceled:
		return st, nil
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

// Terminal reports whether no transition can leave the status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

type User struct {
	ID           int64
	Email        string
	Name         *string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// DisplayName resolves the optional name, falling back when it is unset or blank.
func (u *User) DisplayName(fallback string) string {
	if u.Name == nil || *u.Name == "" {
		return fallback
	}
	return *u.Name
}

// Availability is a bookable slot. Appointment is the active (non-canceled)
// appointment bound to it, loaded only on request.
type Availability struct {
	ID             int64
	NutritionistID int64
	Date           time.Time
	StartTime      time.Time
	EndTime        time.Time
	IsBooked       bool
	Appointment    *Appointment
}

type Appointment struct {
	ID             int64
	ClientID       int64
	AvailabilityID int64
	Status         Status
	CreatedAt      time.Time
}

// AppointmentDetail is an appointment joined with its slot and both parties.
type AppointmentDetail struct {
	Appointment
	Availability Availability
	Client       User
	Nutritionist User
}

type Contact struct {
	ID    int64
	Email string
}

// ClientAppointment is one row of a client's own appointment history.
type ClientAppointment struct {
	ID           int64
	Status       Status
	CreatedAt    time.Time
	Date         time.Time
	StartTime    time.Time
	EndTime      time.Time
	Nutritionist Contact
}

type AgendaAppointment struct {
	ID     int64
	Status Status
	Client Contact
}

// AgendaItem is one of a nutritionist's slots with its booking, if any.
type AgendaItem struct {
	AvailabilityID int64
	Date           time.Time
	StartTime      time.Time
	EndTime        time.Time
	IsBooked       bool
	Appointment    *AgendaAppointment
}

// DateRange is an inclusive calendar-date predicate. A zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

type AgendaPage struct {
	Items      []AgendaItem
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}
