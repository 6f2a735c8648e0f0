package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/model"
)

const pgUniqueViolation = "23505"

// NewBun returns a Store backed by Postgres through bun.
func NewBun(db *bun.DB) Store {
	return Store{
		Barbers:      &bunBarbers{db: db},
		Appointments: &bunAppointments{db: db},
		Services:     &bunServices{db: db},
	}
}

// InitSchema creates the collections and their indexes. The partial unique
// index on (barber_id, starts_at) is what makes the booking check-then-insert
// safe under concurrent attempts.
func InitSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*barberRow)(nil),
		(*appointmentRow)(nil),
		(*serviceRow)(nil),
	}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}

	indexes := []*bun.CreateIndexQuery{
		db.NewCreateIndex().Model((*appointmentRow)(nil)).
			Index("appointments_starts_at_idx").IfNotExists().Column("starts_at"),
		db.NewCreateIndex().Model((*appointmentRow)(nil)).
			Index("appointments_customer_email_idx").IfNotExists().Column("customer_email"),
		db.NewCreateIndex().Model((*appointmentRow)(nil)).
			Index("appointments_barber_id_idx").IfNotExists().Column("barber_id"),
		db.NewCreateIndex().Model((*appointmentRow)(nil)).
			Index("appointments_confirmed_slot_uniq").IfNotExists().Unique().
			Column("barber_id", "starts_at").
			Where("status = 'confirmed'"),
		db.NewCreateIndex().Model((*barberRow)(nil)).
			Index("barbers_is_available_idx").IfNotExists().Column("is_available"),
	}
	for _, q := range indexes {
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

type barberRow struct {
	bun.BaseModel `bun:"table:barbers"`

	ID           string                        `bun:"id,pk"`
	Name         string                        `bun:"name,notnull"`
	Email        string                        `bun:"email,notnull"`
	Phone        string                        `bun:"phone,notnull"`
	Specialties  []string                      `bun:"specialties,array"`
	WorkingHours map[string]model.WorkingHours `bun:"working_hours,type:jsonb"`
	Rating       float64                       `bun:"rating"`
	IsAvailable  bool                          `bun:"is_available"`
}

func (r barberRow) toModel() model.Barber {
	return model.Barber{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		Specialties:  r.Specialties,
		WorkingHours: r.WorkingHours,
		Rating:       r.Rating,
		IsAvailable:  r.IsAvailable,
	}
}

type appointmentRow struct {
	bun.BaseModel `bun:"table:appointments"`

	ID              string    `bun:"id,pk"`
	CustomerName    string    `bun:"customer_name,notnull"`
	CustomerEmail   string    `bun:"customer_email,notnull"`
	CustomerPhone   string    `bun:"customer_phone,notnull"`
	BarberID        string    `bun:"barber_id,notnull"`
	BarberName      string    `bun:"barber_name,notnull"`
	ServiceType     string    `bun:"service_type,notnull"`
	StartsAt        time.Time `bun:"starts_at,notnull"`
	DurationMinutes int       `bun:"duration_minutes,notnull"`
	Status          string    `bun:"status,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
	Notes           string    `bun:"notes"`
}

func (r appointmentRow) toModel() model.Appointment {
	return model.Appointment{
		ID:              r.ID,
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerPhone:   r.CustomerPhone,
		BarberID:        r.BarberID,
		BarberName:      r.BarberName,
		ServiceType:     r.ServiceType,
		StartsAt:        r.StartsAt,
		DurationMinutes: r.DurationMinutes,
		Status:          model.AppointmentStatus(r.Status),
		CreatedAt:       r.CreatedAt,
		Notes:           r.Notes,
	}
}

type serviceRow struct {
	bun.BaseModel `bun:"table:services"`

	Name            string  `bun:"name,pk"`
	Description     string  `bun:"description"`
	DurationMinutes int     `bun:"duration_minutes,notnull"`
	Price           float64 `bun:"price,notnull"`
}

type bunBarbers struct {
	db *bun.DB
}

func (s *bunBarbers) List(ctx context.Context, filter BarberFilter) ([]model.Barber, error) {
	var rows []barberRow
	q := s.db.NewSelect().Model(&rows).Order("name ASC")
	if filter.OnlyAvailable {
		q = q.Where("is_available")
	}
	if filter.Specialty != "" {
		q = q.Where("EXISTS (SELECT 1 FROM unnest(specialties) AS s WHERE s ILIKE ?)", "%"+filter.Specialty+"%")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list barbers: %w", err)
	}

	out := make([]model.Barber, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *bunBarbers) Get(ctx context.Context, id string) (*model.Barber, error) {
	var row barberRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get barber: %w", err)
	}
	b := row.toModel()
	return &b, nil
}

func (s *bunBarbers) Insert(ctx context.Context, barber model.Barber) error {
	if barber.ID == "" {
		barber.ID = uuid.NewString()
	}
	row := barberRow{
		ID:           barber.ID,
		Name:         barber.Name,
		Email:        barber.Email,
		Phone:        barber.Phone,
		Specialties:  barber.Specialties,
		WorkingHours: barber.WorkingHours,
		Rating:       barber.Rating,
		IsAvailable:  barber.IsAvailable,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert barber: %w", err)
	}
	return nil
}

func (s *bunBarbers) Count(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*barberRow)(nil)).Count(ctx)
}

type bunAppointments struct {
	db *bun.DB
}

func (s *bunAppointments) Insert(ctx context.Context, appt *model.Appointment) (string, error) {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now()
	}
	row := appointmentRow{
		ID:              appt.ID,
		CustomerName:    appt.CustomerName,
		CustomerEmail:   appt.CustomerEmail,
		CustomerPhone:   appt.CustomerPhone,
		BarberID:        appt.BarberID,
		BarberName:      appt.BarberName,
		ServiceType:     appt.ServiceType,
		StartsAt:        appt.StartsAt,
		DurationMinutes: appt.DurationMinutes,
		Status:          string(appt.Status),
		CreatedAt:       appt.CreatedAt,
		Notes:           appt.Notes,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.Field('C') == pgUniqueViolation {
			return "", ErrSlotTaken
		}
		return "", fmt.Errorf("insert appointment: %w", err)
	}
	return appt.ID, nil
}

func (s *bunAppointments) ListByCustomer(ctx context.Context, email string) ([]model.Appointment, error) {
	var rows []appointmentRow
	err := s.db.NewSelect().Model(&rows).
		Where("lower(customer_email) = lower(?)", email).
		Order("starts_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments by customer: %w", err)
	}

	out := make([]model.Appointment, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *bunAppointments) ListForBarber(ctx context.Context, barberID string, from, to time.Time) ([]model.Appointment, error) {
	var rows []appointmentRow
	err := s.db.NewSelect().Model(&rows).
		Where("barber_id = ?", barberID).
		Where("status = ?", string(model.StatusConfirmed)).
		Where("starts_at >= ?", from).
		Where("starts_at < ?", to).
		Order("starts_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments for barber: %w", err)
	}

	out := make([]model.Appointment, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *bunAppointments) Cancel(ctx context.Context, id string) (bool, error) {
	res, err := s.db.NewUpdate().Model((*appointmentRow)(nil)).
		Set("status = ?", string(model.StatusCancelled)).
		Where("id = ?", id).
		Where("status != ?", string(model.StatusCancelled)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("cancel appointment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *bunAppointments) Count(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*appointmentRow)(nil)).Count(ctx)
}

type bunServices struct {
	db *bun.DB
}

func (s *bunServices) List(ctx context.Context) ([]model.Service, error) {
	var rows []serviceRow
	if err := s.db.NewSelect().Model(&rows).Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	out := make([]model.Service, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Service{
			Name:            r.Name,
			Description:     r.Description,
			DurationMinutes: r.DurationMinutes,
			Price:           r.Price,
		})
	}
	return out, nil
}

func (s *bunServices) Insert(ctx context.Context, svc model.Service) error {
	row := serviceRow{
		Name:            svc.Name,
		Description:     svc.Description,
		DurationMinutes: svc.DurationMinutes,
		Price:           svc.Price,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

func (s *bunServices) Count(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*serviceRow)(nil)).Count(ctx)
}
