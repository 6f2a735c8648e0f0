// Package store defines persistence contracts for the barbershop collections
// and provides Postgres (bun) and in-memory implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/model"
)

var (
	// ErrNotFound is returned by point lookups that match nothing.
	ErrNotFound = errors.New("record not found")
	// ErrSlotTaken is returned when an insert would create a second
	// confirmed appointment for the same barber and start instant.
	ErrSlotTaken = errors.New("slot already booked")
)

// BarberFilter narrows barber listings. An empty Specialty matches all;
// matching is case-insensitive substring, as the specialty tags are free
// text.
type BarberFilter struct {
	Specialty     string
	OnlyAvailable bool
}

type Barbers interface {
	List(ctx context.Context, filter BarberFilter) ([]model.Barber, error)
	Get(ctx context.Context, id string) (*model.Barber, error)
	Insert(ctx context.Context, barber model.Barber) error
	Count(ctx context.Context) (int, error)
}

type Appointments interface {
	// Insert persists the appointment, assigning an id when empty, and
	// returns the assigned id. Returns ErrSlotTaken when a confirmed
	// appointment already occupies the same (barber, start) pair.
	Insert(ctx context.Context, appt *model.Appointment) (string, error)
	// ListByCustomer returns every appointment for the email, sorted by
	// start instant ascending.
	ListByCustomer(ctx context.Context, email string) ([]model.Appointment, error)
	// ListForBarber returns the barber's confirmed appointments starting
	// within [from, to).
	ListForBarber(ctx context.Context, barberID string, from, to time.Time) ([]model.Appointment, error)
	// Cancel flips the appointment to cancelled and reports whether a
	// record changed.
	Cancel(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

type Services interface {
	List(ctx context.Context) ([]model.Service, error)
	Insert(ctx context.Context, svc model.Service) error
	Count(ctx context.Context) (int, error)
}

// Store bundles the three collections an installation provides.
type Store struct {
	Barbers      Barbers
	Appointments Appointments
	Services     Services
}
