// Package model holds the barbershop domain records shared by the store,
// the scheduling engine, and the agent tool layer.
package model

import "time"

// WorkingHours describes one weekday entry of a barber's schedule.
// Start and End are wall-clock strings ("09:00", "17:00"); when IsOff is
// true they are ignored.
type WorkingHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
	IsOff bool   `json:"is_off"`
}

// Barber is a service professional. Records are created at seed time and
// read-only from the engine's perspective; bookings never mutate them.
type Barber struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Email        string                  `json:"email"`
	Phone        string                  `json:"phone"`
	Specialties  []string                `json:"specialties"`
	WorkingHours map[string]WorkingHours `json:"working_hours"` // lowercase weekday name -> hours
	Rating       float64                 `json:"rating"`
	IsAvailable  bool                    `json:"is_available"`
}

// HoursOn returns the working-hours entry for t's weekday, if present.
func (b Barber) HoursOn(t time.Time) (WorkingHours, bool) {
	h, ok := b.WorkingHours[DayName(t)]
	return h, ok
}

// DayName returns the lowercase English weekday name used as the
// WorkingHours map key.
func DayName(t time.Time) string {
	switch t.Weekday() {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}

type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Appointment is the persisted booking record. Its ID doubles as the
// confirmation number surfaced to the customer.
type Appointment struct {
	ID              string            `json:"id"`
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerPhone   string            `json:"customer_phone"`
	BarberID        string            `json:"barber_id"`
	BarberName      string            `json:"barber_name"`
	ServiceType     string            `json:"service_type"`
	StartsAt        time.Time         `json:"starts_at"`
	DurationMinutes int               `json:"duration_minutes"`
	Status          AppointmentStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	Notes           string            `json:"notes,omitempty"`
}

// End returns the exclusive end instant of the appointment interval.
func (a Appointment) End() time.Time {
	return a.StartsAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Overlaps reports whether the half-open interval [a.StartsAt, a.End())
// intersects [start, end).
func (a Appointment) Overlaps(start, end time.Time) bool {
	return a.StartsAt.Before(end) && a.End().After(start)
}

// Service is an offered treatment. Seeded once, informational only; the
// booking flow records the service label as free text.
type Service struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
}

// Slot is an ephemeral candidate appointment start. Never persisted.
type Slot struct {
	Time      time.Time `json:"time"`
	Formatted string    `json:"formatted"`
}

// NewSlot renders t in the 12-hour clock format customers see.
func NewSlot(t time.Time) Slot {
	return Slot{Time: t, Formatted: t.Format("03:04 PM")}
}
