package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/model"
	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/store"
)

var weekdayHours = map[string]model.WorkingHours{
	"monday":    {Start: "09:00", End: "17:00"},
	"tuesday":   {Start: "09:00", End: "17:00"},
	"wednesday": {Start: "09:00", End: "17:00"},
	"thursday":  {Start: "09:00", End: "17:00"},
	"friday":    {Start: "09:00", End: "17:00"},
	"saturday":  {Start: "10:00", End: "15:00"},
	"sunday":    {IsOff: true},
}

func engineFixture(t *testing.T, now time.Time) (*Engine, store.Store) {
	t.Helper()

	st := store.NewMemory()
	err := st.Barbers.Insert(context.Background(), model.Barber{
		ID:           "b1",
		Name:         "John Smith",
		IsAvailable:  true,
		WorkingHours: weekdayHours,
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	e := NewEngine(st.Barbers, st.Appointments)
	e.now = func() time.Time { return now }
	return e, st
}

// Monday 2030-06-10, 09:00-17:00, 30 minute slots: 09:00 through 16:30.
func TestOpenSlotsFullDay(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	e, _ := engineFixture(t, now)

	date := time.Date(2030, 6, 10, 0, 0, 0, 0, time.UTC)
	slots, err := e.OpenSlots(context.Background(), "b1", date, DefaultDuration)
	if err != nil {
		t.Fatalf("OpenSlots() error = %v", err)
	}
	if len(slots) != 16 {
		t.Fatalf("len(slots) = %d, want 16", len(slots))
	}
	if slots[0].Formatted != "09:00 AM" {
		t.Fatalf("first slot = %q, want 09:00 AM", slots[0].Formatted)
	}
	if slots[len(slots)-1].Formatted != "04:30 PM" {
		t.Fatalf("last slot = %q, want 04:30 PM", slots[len(slots)-1].Formatted)
	}
	for i := 1; i < len(slots); i++ {
		if !slots[i].Time.After(slots[i-1].Time) {
			t.Fatalf("slots out of order at %d: %v then %v", i, slots[i-1].Time, slots[i].Time)
		}
	}
}

func TestOpenSlotsClosedDayEmpty(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	e, _ := engineFixture(t, now)

	sunday := time.Date(2030, 6, 9, 0, 0, 0, 0, time.UTC)
	slots, err := e.OpenSlots(context.Background(), "b1", sunday, DefaultDuration)
	if err != nil {
		t.Fatalf("OpenSlots() error = %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("len(slots) = %d, want 0 on a closed day", len(slots))
	}
}

func TestOpenSlotsUnknownBarberEmpty(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	e, _ := engineFixture(t, now)

	slots, err := e.OpenSlots(context.Background(), "nope", now, DefaultDuration)
	if err != nil {
		t.Fatalf("OpenSlots() error = %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("len(slots) = %d, want 0 for unknown barber", len(slots))
	}
}

func TestOpenSlotsExcludesBookedOverlaps(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	e, st := engineFixture(t, now)

	booked := time.Date(2030, 6, 10, 10, 0, 0, 0, time.UTC)
	_, err := st.Appointments.Insert(context.Background(), &model.Appointment{
		BarberID:        "b1",
		StartsAt:        booked,
		DurationMinutes: 30,
		Status:          model.StatusConfirmed,
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	slots, err := e.OpenSlots(context.Background(), "b1", booked, DefaultDuration)
	if err != nil {
		t.Fatalf("OpenSlots() error = %v", err)
	}
	if len(slots) != 15 {
		t.Fatalf("len(slots) = %d, want 15 with one booked", len(slots))
	}
	for _, s := range slots {
		if s.Time.Equal(booked) {
			t.Fatalf("booked slot %v still offered", booked)
		}
	}
}

func TestOpenSlotsTodayCutsPastStarts(t *testing.T) {
	t.Parallel()

	// Monday at 12:00: starts at or before noon are gone, 12:30 is first.
	now := time.Date(2030, 6, 10, 12, 0, 0, 0, time.UTC)
	e, _ := engineFixture(t, now)

	slots, err := e.OpenSlots(context.Background(), "b1", now, DefaultDuration)
	if err != nil {
		t.Fatalf("OpenSlots() error = %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected afternoon slots")
	}
	if slots[0].Formatted != "12:30 PM" {
		t.Fatalf("first slot = %q, want 12:30 PM", slots[0].Formatted)
	}
}

func TestOpenStartsStrictlyAfterCutoff(t *testing.T) {
	t.Parallel()

	windowStart := time.Date(2030, 6, 10, 9, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2030, 6, 10, 11, 0, 0, 0, time.UTC)
	cutoff := time.Date(2030, 6, 10, 9, 0, 0, 0, time.UTC)

	starts := openStarts(windowStart, windowEnd, 30*time.Minute, 30*time.Minute, nil, cutoff)
	if len(starts) != 3 {
		t.Fatalf("len(starts) = %d, want 3", len(starts))
	}
	if !starts[0].Equal(windowStart.Add(30 * time.Minute)) {
		t.Fatalf("first start = %v, want 09:30", starts[0])
	}
}

func TestOverlapsAnyHalfOpen(t *testing.T) {
	t.Parallel()

	base := time.Date(2030, 6, 10, 10, 0, 0, 0, time.UTC)
	busy := []interval{{start: base, end: base.Add(30 * time.Minute)}}

	// Back-to-back intervals do not overlap.
	if overlapsAny(base.Add(30*time.Minute), base.Add(60*time.Minute), busy) {
		t.Fatal("adjacent interval reported as overlap")
	}
	if overlapsAny(base.Add(-30*time.Minute), base, busy) {
		t.Fatal("preceding adjacent interval reported as overlap")
	}
	if !overlapsAny(base.Add(15*time.Minute), base.Add(45*time.Minute), busy) {
		t.Fatal("straddling interval not reported as overlap")
	}
}
