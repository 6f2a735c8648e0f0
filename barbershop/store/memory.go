package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/model"
)

// NewMemory returns a fully in-memory Store with the same semantics as the
// Postgres one, including the confirmed-slot uniqueness check. Used by tests
// and by CLI runs without a database configured.
func NewMemory() Store {
	return Store{
		Barbers:      &memoryBarbers{byID: map[string]model.Barber{}},
		Appointments: &memoryAppointments{byID: map[string]model.Appointment{}},
		Services:     &memoryServices{},
	}
}

type memoryBarbers struct {
	mu   sync.RWMutex
	byID map[string]model.Barber
}

func (m *memoryBarbers) List(ctx context.Context, filter BarberFilter) ([]model.Barber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Barber, 0, len(m.byID))
	for _, b := range m.byID {
		if filter.OnlyAvailable && !b.IsAvailable {
			continue
		}
		if filter.Specialty != "" && !hasSpecialty(b, filter.Specialty) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func hasSpecialty(b model.Barber, specialty string) bool {
	needle := strings.ToLower(specialty)
	for _, s := range b.Specialties {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func (m *memoryBarbers) Get(ctx context.Context, id string) (*model.Barber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *memoryBarbers) Insert(ctx context.Context, barber model.Barber) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if barber.ID == "" {
		barber.ID = uuid.NewString()
	}
	m.byID[barber.ID] = barber
	return nil
}

func (m *memoryBarbers) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID), nil
}

type memoryAppointments struct {
	mu   sync.RWMutex
	byID map[string]model.Appointment
}

func (m *memoryAppointments) Insert(ctx context.Context, appt *model.Appointment) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.byID {
		if existing.Status != model.StatusConfirmed {
			continue
		}
		if existing.BarberID == appt.BarberID && existing.StartsAt.Equal(appt.StartsAt) {
			return "", ErrSlotTaken
		}
	}

	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now()
	}
	m.byID[appt.ID] = *appt
	return appt.ID, nil
}

func (m *memoryAppointments) ListByCustomer(ctx context.Context, email string) ([]model.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Appointment
	for _, a := range m.byID {
		if strings.EqualFold(a.CustomerEmail, email) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (m *memoryAppointments) ListForBarber(ctx context.Context, barberID string, from, to time.Time) ([]model.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Appointment
	for _, a := range m.byID {
		if a.BarberID != barberID || a.Status != model.StatusConfirmed {
			continue
		}
		if a.StartsAt.Before(from) || !a.StartsAt.Before(to) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (m *memoryAppointments) Cancel(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.byID[id]
	if !ok || a.Status == model.StatusCancelled {
		return false, nil
	}
	a.Status = model.StatusCancelled
	m.byID[id] = a
	return true, nil
}

func (m *memoryAppointments) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID), nil
}

type memoryServices struct {
	mu   sync.RWMutex
	list []model.Service
}

func (m *memoryServices) List(ctx context.Context) ([]model.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Service(nil), m.list...), nil
}

func (m *memoryServices) Insert(ctx context.Context, svc model.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = append(m.list, svc)
	return nil
}

func (m *memoryServices) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.list), nil
}
