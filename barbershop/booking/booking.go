// Package booking validates and records appointments. The availability
// re-check happens inside Book, at commit time, so the answer a customer
// got from an earlier availability query cannot go stale unnoticed.
package booking

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/model"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/resolve"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/schedule"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/store"
)

var (
	phoneCharsRe = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
	nonDigitRe   = regexp.MustCompile(`\D`)
)

type Service struct {
	resolver *resolve.BarberResolver
	engine   *schedule.Engine
	appts    store.Appointments

	now func() time.Time
}

func NewService(resolver *resolve.BarberResolver, engine *schedule.Engine, appts store.Appointments) *Service {
	return &Service{
		resolver: resolver,
		engine:   engine,
		appts:    appts,
		now:      time.Now,
	}
}

type Request struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	BarberID      string
	BarberName    string
	ServiceType   string
	DateTimeText  string
	Notes         string
}

// Alternative is a suggested slot rendered for the customer: a 12-hour
// clock string plus the RFC 3339 instant when one is known.
type Alternative struct {
	Time     string `json:"time"`
	DateTime string `json:"datetime,omitempty"`
}

// Result is the booking outcome. Failures are values: Error carries a
// human-readable reason and, for scheduling failures, Alternatives suggest
// other slots. On success the appointment id is surfaced twice, as both
// AppointmentID and ConfirmationNumber.
type Result struct {
	Success            bool               `json:"success"`
	AppointmentID      string             `json:"appointment_id,omitempty"`
	ConfirmationNumber string             `json:"confirmation_number,omitempty"`
	Error              string             `json:"error,omitempty"`
	Alternatives       []Alternative      `json:"alternatives,omitempty"`
	BarberName         string             `json:"barber_name,omitempty"`
	Details            *model.Appointment `json:"details,omitempty"`
}

func failure(msg string) Result {
	return Result{Error: msg}
}

// Book resolves the request, re-checks availability at commit time, and
// persists the appointment only when the check passes. Nothing is written
// on any failure path.
func (s *Service) Book(ctx context.Context, req Request) Result {
	startsAt, ok := resolve.ParseNatural(req.DateTimeText, s.now())
	if !ok {
		return failure("Invalid date format")
	}

	if _, err := mail.ParseAddress(req.CustomerEmail); err != nil {
		return failure(fmt.Sprintf("Invalid email address: %s", req.CustomerEmail))
	}
	if !validPhone(req.CustomerPhone) {
		return failure(fmt.Sprintf("Invalid phone number: %s", req.CustomerPhone))
	}

	barber, err := s.resolveBarber(ctx, req)
	if err != nil {
		ref := req.BarberID
		if ref == "" {
			ref = req.BarberName
		}
		if errors.Is(err, store.ErrNotFound) {
			return failure(fmt.Sprintf("Barber not found: %s", ref))
		}
		log.Error().Err(err).Str("barber_ref", ref).Msg("barber lookup failed")
		return failure(fmt.Sprintf("Failed to look up barber: %v", err))
	}

	verdict, err := s.engine.CheckSlot(ctx, barber.ID, startsAt, schedule.DefaultDuration)
	if err != nil {
		log.Error().Err(err).Str("barber_id", barber.ID).Msg("availability check failed")
		return failure(fmt.Sprintf("Failed to check availability: %v", err))
	}
	if !verdict.Available {
		return Result{
			Error:        verdict.Reason,
			Alternatives: FormatAlternatives(verdict.Alternatives),
			BarberName:   barber.Name,
		}
	}

	appt := &model.Appointment{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		BarberID:        barber.ID,
		BarberName:      barber.Name,
		ServiceType:     req.ServiceType,
		StartsAt:        startsAt,
		DurationMinutes: int(schedule.DefaultDuration / time.Minute),
		Status:          model.StatusConfirmed,
		CreatedAt:       s.now(),
		Notes:           req.Notes,
	}

	id, err := s.appts.Insert(ctx, appt)
	if errors.Is(err, store.ErrSlotTaken) {
		// Lost the race between check and insert; the store's uniqueness
		// guarantee kept the double booking out. Report it as a conflict.
		alts, altErr := s.engine.OpenSlots(ctx, barber.ID, startsAt, schedule.DefaultDuration)
		if altErr != nil {
			log.Error().Err(altErr).Msg("alternative lookup after lost booking race failed")
		}
		return Result{
			Error:        schedule.ReasonConflict,
			Alternatives: FormatAlternatives(truncate(alts, 5)),
			BarberName:   barber.Name,
		}
	}
	if err != nil {
		log.Error().Err(err).Str("barber_id", barber.ID).Msg("appointment insert failed")
		return failure(fmt.Sprintf("Failed to create appointment: %v", err))
	}

	return Result{
		Success:            true,
		AppointmentID:      id,
		ConfirmationNumber: id,
		BarberName:         barber.Name,
		Details:            appt,
	}
}

// resolveBarber tries the id reference first, then the display-name
// argument; either may be an id, an exact name, or a fuzzy one.
func (s *Service) resolveBarber(ctx context.Context, req Request) (*model.Barber, error) {
	b, err := s.resolver.Resolve(ctx, req.BarberID)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if req.BarberName != "" && req.BarberName != req.BarberID {
		return s.resolver.Resolve(ctx, req.BarberName)
	}
	return nil, err
}

// AppointmentsByEmail lists a customer's appointments, earliest first.
func (s *Service) AppointmentsByEmail(ctx context.Context, email string) ([]model.Appointment, error) {
	return s.appts.ListByCustomer(ctx, email)
}

// Cancel marks the appointment cancelled, reporting whether it changed.
func (s *Service) Cancel(ctx context.Context, id string) (bool, error) {
	return s.appts.Cancel(ctx, id)
}

// FormatAlternatives renders slots for customer display. A slot without a
// concrete instant passes its display string through unchanged.
func FormatAlternatives(slots []model.Slot) []Alternative {
	out := make([]Alternative, 0, len(slots))
	for _, slot := range slots {
		if slot.Time.IsZero() {
			out = append(out, Alternative{Time: slot.Formatted})
			continue
		}
		out = append(out, Alternative{
			Time:     slot.Time.Format("03:04 PM"),
			DateTime: slot.Time.Format(time.RFC3339),
		})
	}
	return out
}

func truncate(slots []model.Slot, n int) []model.Slot {
	if len(slots) > n {
		return slots[:n]
	}
	return slots
}

func validPhone(phone string) bool {
	if !phoneCharsRe.MatchString(phone) {
		return false
	}
	return len(nonDigitRe.ReplaceAllString(phone, "")) >= 7
}
