package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/model"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/store"
)

const (
	// alternativeLimit caps the alternatives attached to a verdict.
	alternativeLimit = 5
	// scanDays bounds the forward day-by-day search for alternatives.
	scanDays = 7
)

// Verdict reasons, in check order.
const (
	ReasonNotFound     = "Barber not found"
	ReasonUnavailable  = "Barber is not available"
	ReasonOutsideHours = "Time slot is outside working hours"
	ReasonInPast       = "Time slot is in the past"
	ReasonConflict     = "Time slot conflicts with existing appointment"
	ReasonOK           = "Slot is available"
)

// Verdict is the Conflict Checker's answer for one requested slot.
// Alternatives are chronological and hold at most five entries.
type Verdict struct {
	Available    bool         `json:"available"`
	Reason       string       `json:"reason"`
	Alternatives []model.Slot `json:"alternatives"`
}

// CheckSlot decides whether [at, at+duration) can be booked with the
// barber. Checks run in a fixed order and the first failure wins; domain
// failures come back as a non-available Verdict, never as an error.
func (e *Engine) CheckSlot(ctx context.Context, barberID string, at time.Time, duration time.Duration) (Verdict, error) {
	barber, err := e.barbers.Get(ctx, barberID)
	if errors.Is(err, store.ErrNotFound) {
		return unavailable(ReasonNotFound), nil
	}
	if err != nil {
		return Verdict{}, err
	}

	if !barber.IsAvailable {
		return unavailable(ReasonUnavailable), nil
	}

	day := model.DayName(at)
	hours, ok := barber.HoursOn(at)
	if !ok {
		return unavailable(fmt.Sprintf("Barber does not work on %s", day)), nil
	}
	if hours.IsOff {
		return unavailable(fmt.Sprintf("Barber is off on %s", day)), nil
	}

	workStart, workEnd, ok := dayWindow(at, hours)
	if !ok {
		return unavailable(fmt.Sprintf("Barber does not work on %s", day)), nil
	}

	now := e.now()
	slotEnd := at.Add(duration)

	if at.Before(workStart) || slotEnd.After(workEnd) {
		var alts []model.Slot
		if beforeDate(at, now) {
			alts, err = e.nextOpenSlots(ctx, barberID, now, duration)
		} else {
			alts, err = e.OpenSlots(ctx, barberID, at, duration)
		}
		if err != nil {
			return Verdict{}, err
		}
		return unavailable(ReasonOutsideHours, alts...), nil
	}

	if at.Before(now) {
		alts, err := e.nextOpenSlots(ctx, barberID, now, duration)
		if err != nil {
			return Verdict{}, err
		}
		return unavailable(ReasonInPast, alts...), nil
	}

	busy, err := e.busyIntervals(ctx, barberID, at)
	if err != nil {
		return Verdict{}, err
	}
	if overlapsAny(at, slotEnd, busy) {
		alts, err := e.OpenSlots(ctx, barberID, at, duration)
		if err != nil {
			return Verdict{}, err
		}
		return unavailable(ReasonConflict, alts...), nil
	}

	return Verdict{Available: true, Reason: ReasonOK, Alternatives: []model.Slot{}}, nil
}

// nextOpenSlots scans forward from "from" one day at a time, returning the
// first day's slot list that is non-empty, up to scanDays days out.
func (e *Engine) nextOpenSlots(ctx context.Context, barberID string, from time.Time, duration time.Duration) ([]model.Slot, error) {
	date := from
	for i := 0; i < scanDays; i++ {
		slots, err := e.OpenSlots(ctx, barberID, date, duration)
		if err != nil {
			return nil, err
		}
		if len(slots) > 0 {
			return slots, nil
		}
		date = date.AddDate(0, 0, 1)
	}
	return nil, nil
}

func unavailable(reason string, alts ...model.Slot) Verdict {
	if len(alts) > alternativeLimit {
		alts = alts[:alternativeLimit]
	}
	if alts == nil {
		alts = []model.Slot{}
	}
	return Verdict{Reason: reason, Alternatives: alts}
}

func beforeDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
