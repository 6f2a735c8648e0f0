// Package schedule computes open appointment slots and decides whether a
// requested slot can be taken. Nothing here is cached: every call re-reads
// the current booking state.
package schedule

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/model"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/store"
)

const (
	// DefaultDuration is the fixed appointment length used by the tools.
	DefaultDuration = 30 * time.Minute
	// slotStride is the spacing between candidate slot starts.
	slotStride = 30 * time.Minute
)

type Engine struct {
	barbers store.Barbers
	appts   store.Appointments

	now func() time.Time
}

func NewEngine(barbers store.Barbers, appts store.Appointments) *Engine {
	return &Engine{
		barbers: barbers,
		appts:   appts,
		now:     time.Now,
	}
}

// OpenSlots returns the chronologically ordered open slots of the given
// duration for the barber on date's calendar day. A closed or absent
// weekday yields no slots; when date is today, only starts strictly after
// the current instant are kept.
func (e *Engine) OpenSlots(ctx context.Context, barberID string, date time.Time, duration time.Duration) ([]model.Slot, error) {
	barber, err := e.barbers.Get(ctx, barberID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	hours, ok := barber.HoursOn(date)
	if !ok || hours.IsOff {
		return nil, nil
	}
	workStart, workEnd, ok := dayWindow(date, hours)
	if !ok {
		return nil, nil
	}

	busy, err := e.busyIntervals(ctx, barberID, date)
	if err != nil {
		return nil, err
	}

	now := e.now()
	var cutoff time.Time
	if sameDate(date, now) {
		cutoff = now
	}

	starts := openStarts(workStart, workEnd, duration, slotStride, busy, cutoff)
	slots := make([]model.Slot, 0, len(starts))
	for _, t := range starts {
		slots = append(slots, model.NewSlot(t))
	}
	return slots, nil
}

func (e *Engine) busyIntervals(ctx context.Context, barberID string, date time.Time) ([]interval, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	appts, err := e.appts.ListForBarber(ctx, barberID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	busy := make([]interval, 0, len(appts))
	for _, a := range appts {
		busy = append(busy, interval{start: a.StartsAt, end: a.End()})
	}
	return busy, nil
}

type interval struct {
	start, end time.Time
}

// openStarts enumerates candidate starts from windowStart at the given
// stride, keeping those whose [t, t+duration) fits inside the window,
// overlaps no busy interval, and starts strictly after cutoff (when set).
func openStarts(windowStart, windowEnd time.Time, duration, stride time.Duration, busy []interval, cutoff time.Time) []time.Time {
	if duration <= 0 || stride <= 0 {
		return nil
	}

	var starts []time.Time
	for t := windowStart; !t.Add(duration).After(windowEnd); t = t.Add(stride) {
		if !cutoff.IsZero() && !t.After(cutoff) {
			continue
		}
		if overlapsAny(t, t.Add(duration), busy) {
			continue
		}
		starts = append(starts, t)
	}
	return starts
}

func overlapsAny(start, end time.Time, busy []interval) bool {
	for _, b := range busy {
		// Half-open intervals: [start,end) overlaps [b.start,b.end) iff
		// start < b.end && b.start < end.
		if start.Before(b.end) && b.start.Before(end) {
			return true
		}
	}
	return false
}

// dayWindow anchors the barber's wall-clock hours to date's calendar day.
func dayWindow(date time.Time, hours model.WorkingHours) (time.Time, time.Time, bool) {
	sh, sm, ok := parseClock(hours.Start)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	eh, em, ok := parseClock(hours.End)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	y, m, d := date.Date()
	loc := date.Location()
	start := time.Date(y, m, d, sh, sm, 0, 0, loc)
	end := time.Date(y, m, d, eh, em, 0, 0, loc)
	return start, end, end.After(start)
}

func parseClock(s string) (int, int, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
