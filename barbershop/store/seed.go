package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ai-alihassanml/BarberFlow-agent-langchain/barbershop/model"
)

func defaultHours() map[string]model.WorkingHours {
	return map[string]model.WorkingHours{
		"monday":    {Start: "09:00", End: "17:00"},
		"tuesday":   {Start: "09:00", End: "17:00"},
		"wednesday": {Start: "09:00", End: "17:00"},
		"thursday":  {Start: "09:00", End: "17:00"},
		"friday":    {Start: "09:00", End: "17:00"},
		"saturday":  {Start: "10:00", End: "15:00"},
		"sunday":    {Start: "00:00", End: "00:00", IsOff: true},
	}
}

// Seed populates empty collections with the stock barbers and services.
// Idempotent: collections that already hold records are left alone.
func Seed(ctx context.Context, s Store) error {
	count, err := s.Barbers.Count(ctx)
	if err != nil {
		return fmt.Errorf("count barbers: %w", err)
	}
	if count == 0 {
		log.Info().Msg("seeding barbers")
		barbers := []model.Barber{
			{
				Name:         "John Smith",
				Email:        "john@barberflow.com",
				Phone:        "555-0101",
				Specialties:  []string{"modern cuts", "fades"},
				WorkingHours: defaultHours(),
				Rating:       4.9,
				IsAvailable:  true,
			},
			{
				Name:         "Mike Johnson",
				Email:        "mike@barberflow.com",
				Phone:        "555-0102",
				Specialties:  []string{"classic styles", "beard trims"},
				WorkingHours: defaultHours(),
				Rating:       5.0,
				IsAvailable:  true,
			},
			{
				Name:         "Sarah Davis",
				Email:        "sarah@barberflow.com",
				Phone:        "555-0103",
				Specialties:  []string{"styling", "coloring"},
				WorkingHours: defaultHours(),
				Rating:       4.8,
				IsAvailable:  true,
			},
		}
		for _, b := range barbers {
			if err := s.Barbers.Insert(ctx, b); err != nil {
				return fmt.Errorf("seed barber %s: %w", b.Name, err)
			}
		}
	}

	count, err = s.Services.Count(ctx)
	if err != nil {
		return fmt.Errorf("count services: %w", err)
	}
	if count == 0 {
		log.Info().Msg("seeding services")
		services := []model.Service{
			{Name: "Haircut", Description: "Standard haircut", DurationMinutes: 30, Price: 30},
			{Name: "Beard Trim", Description: "Beard grooming", DurationMinutes: 20, Price: 20},
			{Name: "Shave", Description: "Hot towel shave", DurationMinutes: 30, Price: 35},
			{Name: "Full Service", Description: "Haircut + Beard", DurationMinutes: 60, Price: 50},
		}
		for _, svc := range services {
			if err := s.Services.Insert(ctx, svc); err != nil {
				return fmt.Errorf("seed service %s: %w", svc.Name, err)
			}
		}
	}

	return nil
}
