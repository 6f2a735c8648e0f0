package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingx "github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/booking"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/model"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/resolve"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/schedule"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/store"
)

// BarberSummary is what search_barbers returns for each match.
type BarberSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Specialties []string `json:"specialties"`
	Rating      float64  `json:"rating"`
}

func (g *Gateway) searchBarbers(ctx context.Context, args map[string]any) ([]BarberSummary, error) {
	barbers, err := g.barbers.List(ctx, store.BarberFilter{
		Specialty:     stringArg(args, "specialty"),
		OnlyAvailable: true,
	})
	if err != nil {
		return nil, fmt.Errorf("search barbers: %w", err)
	}

	out := make([]BarberSummary, 0, len(barbers))
	for _, b := range barbers {
		out = append(out, BarberSummary{
			ID:          b.ID,
			Name:        b.Name,
			Specialties: b.Specialties,
			Rating:      b.Rating,
		})
	}
	return out, nil
}

// checkSlots returns an empty list, not an error, when the barber or date
// cannot be resolved; a confused reference is a normal conversational
// outcome.
func (g *Gateway) checkSlots(ctx context.Context, args map[string]any) ([]model.Slot, error) {
	barber, err := g.resolver.Resolve(ctx, stringArg(args, "barber_id"))
	if errors.Is(err, store.ErrNotFound) {
		return []model.Slot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve barber: %w", err)
	}

	date, ok := resolve.ParseNatural(stringArg(args, "date_str"), time.Now())
	if !ok {
		return []model.Slot{}, nil
	}

	slots, err := g.engine.OpenSlots(ctx, barber.ID, date, schedule.DefaultDuration)
	if err != nil {
		return nil, fmt.Errorf("list open slots: %w", err)
	}
	if slots == nil {
		slots = []model.Slot{}
	}
	return slots, nil
}

func (g *Gateway) bookAppointment(ctx context.Context, args map[string]any) bookingx.Result {
	return g.bookings.Book(ctx, bookingx.Request{
		CustomerName:  stringArg(args, "customer_name"),
		CustomerEmail: stringArg(args, "customer_email"),
		CustomerPhone: stringArg(args, "customer_phone"),
		BarberID:      stringArg(args, "barber_id"),
		BarberName:    stringArg(args, "barber_name"),
		ServiceType:   stringArg(args, "service_type"),
		DateTimeText:  stringArg(args, "datetime_str"),
	})
}

// SlotCheck is the check_specific_slot verdict rendered for the model.
type SlotCheck struct {
	Available     bool                   `json:"available"`
	BarberID      string                 `json:"barber_id,omitempty"`
	BarberName    string                 `json:"barber_name,omitempty"`
	RequestedTime string                 `json:"requested_time,omitempty"`
	Reason        string                 `json:"reason,omitempty"`
	Error         string                 `json:"error,omitempty"`
	Alternatives  []bookingx.Alternative `json:"alternatives"`
}

func (g *Gateway) checkSpecificSlot(ctx context.Context, args map[string]any) SlotCheck {
	ref := stringArg(args, "barber_name_or_id")

	at, ok := resolve.ParseNatural(stringArg(args, "datetime_str"), time.Now())
	if !ok {
		return SlotCheck{Error: "Invalid date format", Alternatives: []bookingx.Alternative{}}
	}

	barber, err := g.resolver.Resolve(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		return SlotCheck{Error: fmt.Sprintf("Barber not found: %s", ref), Alternatives: []bookingx.Alternative{}}
	}
	if err != nil {
		return SlotCheck{Error: fmt.Sprintf("Failed to look up barber: %v", err), Alternatives: []bookingx.Alternative{}}
	}

	verdict, err := g.engine.CheckSlot(ctx, barber.ID, at, schedule.DefaultDuration)
	if err != nil {
		return SlotCheck{Error: fmt.Sprintf("Failed to check availability: %v", err), Alternatives: []bookingx.Alternative{}}
	}

	return SlotCheck{
		Available:     verdict.Available,
		BarberID:      barber.ID,
		BarberName:    barber.Name,
		RequestedTime: resolve.FormatFriendly(at),
		Reason:        verdict.Reason,
		Alternatives:  bookingx.FormatAlternatives(verdict.Alternatives),
	}
}

func (g *Gateway) myAppointments(ctx context.Context, args map[string]any) ([]model.Appointment, error) {
	appts, err := g.bookings.AppointmentsByEmail(ctx, stringArg(args, "email"))
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	if appts == nil {
		appts = []model.Appointment{}
	}
	return appts, nil
}
