package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Walid-hh/PFA/trip-service/internal/dto"
	"github.com/Walid-hh/PFA/trip-service/internal/models"
	"github.com/Walid-hh/PFA/trip-service/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTripNotFound      = errors.New("trip not found")
	ErrNotTripOwner      = errors.New("trip belongs to another driver")
	ErrTripNotModifiable = errors.New("trip can no longer be modified")
	ErrScheduleConflict  = errors.New("schedule conflicts with another trip")
	ErrValidation        = errors.New("validation failed")
)

// driverConflictWindow is how close two trips of the same driver may depart.
const driverConflictWindow = time.Hour

type TripInput struct {
	DepartureLocation string
	ArrivalLocation   string
	DepartureTime     string
	AvailableSeats    int
	PricePerSeat      float64
	Description       string
	IsInstantBooking  bool
}

// TripPatch carries a partial update; nil fields keep their current value.
// Seat counts are not patchable: OriginalSeats is a creation-time snapshot
// and AvailableSeats only moves through booking confirmation/cancellation.
type TripPatch struct {
	DepartureLocation *string
	ArrivalLocation   *string
	DepartureTime     *string
	PricePerSeat      *float64
	Description       *string
}

type SearchCriteria struct {
	Departure *string
	Arrival   *string
	Date      *string
}

type DriverStats struct {
	TotalTrips     int64
	CompletedTrips int64
	ActiveTrips    int64
}

type TripService interface {
	Create(ctx context.Context, driverID uint, input TripInput) (*models.Trip, error)
	GetByID(ctx context.Context, id uint) (*models.Trip, error)
	Search(ctx context.Context, criteria SearchCriteria) ([]models.Trip, error)
	DriverTrips(ctx context.Context, driverID uint) ([]models.Trip, error)
	Update(ctx context.Context, tripID, driverID uint, patch TripPatch) (*models.Trip, error)
	Cancel(ctx context.Context, tripID, driverID uint) error
	Stats(ctx context.Context, driverID uint) (*DriverStats, error)
	ExpireOverdue(ctx context.Context) (int64, error)
}

type tripService struct {
	trips repository.TripRepository
}

func NewTripService(trips repository.TripRepository) TripService {
	return &tripService{trips: trips}
}

func (s *tripService) Create(ctx context.Context, driverID uint, input TripInput) (*models.Trip, error) {
	if input.DepartureLocation == "" || input.ArrivalLocation == "" {
		return nil, fmt.Errorf("%w: departure and arrival locations are required", ErrValidation)
	}
	if input.AvailableSeats < 1 {
		return nil, fmt.Errorf("%w: available seats must be at least 1", ErrValidation)
	}
	if input.PricePerSeat <= 0 {
		return nil, fmt.Errorf("%w: price per seat must be positive", ErrValidation)
	}

	departure, err := time.ParseInLocation(dto.DateTimeLayout, input.DepartureTime, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: departure time must use format %s", ErrValidation, dto.DateTimeLayout)
	}
	if !departure.After(time.Now()) {
		return nil, fmt.Errorf("%w: departure time must be in the future", ErrValidation)
	}

	if err := s.checkDriverSchedule(ctx, driverID, departure, 0); err != nil {
		return nil, err
	}

	trip := &models.Trip{
		DriverID:          driverID,
		DepartureLocation: input.DepartureLocation,
		ArrivalLocation:   input.ArrivalLocation,
		DepartureTime:     departure,
		AvailableSeats:    input.AvailableSeats,
		OriginalSeats:     input.AvailableSeats,
		PricePerSeat:      input.PricePerSeat,
		Description:       input.Description,
		Status:            models.TripStatusActive,
		IsInstantBooking:  input.IsInstantBooking,
	}
	if err := s.trips.Create(ctx, trip); err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}

	log.Printf("[TripService] Trip %d created by driver %d (%s -> %s at %s)",
		trip.ID, driverID, trip.DepartureLocation, trip.ArrivalLocation,
		trip.DepartureTime.Format(dto.DateTimeLayout))
	return trip, nil
}

func (s *tripService) GetByID(ctx context.Context, id uint) (*models.Trip, error) {
	trip, err := s.trips.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, fmt.Errorf("find trip: %w", err)
	}
	return trip, nil
}

// Search dispatches on which criteria are present: both locations narrow by
// route, a date narrows by day, and with nothing set every bookable trip is
// returned.
func (s *tripService) Search(ctx context.Context, criteria SearchCriteria) ([]models.Trip, error) {
	hasLocations := criteria.Departure != nil && *criteria.Departure != "" &&
		criteria.Arrival != nil && *criteria.Arrival != ""

	var day *time.Time
	if criteria.Date != nil && *criteria.Date != "" {
		parsed, err := time.ParseInLocation(dto.DateLayout, *criteria.Date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: date must use format %s", ErrValidation, dto.DateLayout)
		}
		day = &parsed
	}

	switch {
	case hasLocations && day != nil:
		return s.trips.SearchByLocationsAndDate(ctx, *criteria.Departure, *criteria.Arrival, *day)
	case hasLocations:
		return s.trips.SearchByLocations(ctx, *criteria.Departure, *criteria.Arrival)
	case day != nil:
		return s.trips.SearchByDate(ctx, *day)
	default:
		return s.trips.FindAvailable(ctx)
	}
}

func (s *tripService) DriverTrips(ctx context.Context, driverID uint) ([]models.Trip, error) {
	return s.trips.FindByDriver(ctx, driverID)
}

// Update validates the patch shape first, then applies it under the trip
// row lock so a save cannot clobber a seat decrement from a concurrent
// booking confirmation.
func (s *tripService) Update(ctx context.Context, tripID, driverID uint, patch TripPatch) (*models.Trip, error) {
	if patch.DepartureLocation != nil && *patch.DepartureLocation == "" {
		return nil, fmt.Errorf("%w: departure location cannot be empty", ErrValidation)
	}
	if patch.ArrivalLocation != nil && *patch.ArrivalLocation == "" {
		return nil, fmt.Errorf("%w: arrival location cannot be empty", ErrValidation)
	}
	if patch.PricePerSeat != nil && *patch.PricePerSeat <= 0 {
		return nil, fmt.Errorf("%w: price per seat must be positive", ErrValidation)
	}

	var departure *time.Time
	if patch.DepartureTime != nil {
		parsed, err := time.ParseInLocation(dto.DateTimeLayout, *patch.DepartureTime, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: departure time must use format %s", ErrValidation, dto.DateTimeLayout)
		}
		if !parsed.After(time.Now()) {
			return nil, fmt.Errorf("%w: departure time must be in the future", ErrValidation)
		}
		departure = &parsed
	}

	var trip *models.Trip
	err := s.trips.GetDB().Transaction(func(tx *gorm.DB) error {
		locked, err := s.trips.FindByIDForUpdate(ctx, tx, tripID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTripNotFound
			}
			return fmt.Errorf("lock trip: %w", err)
		}
		if locked.DriverID != driverID {
			return ErrNotTripOwner
		}
		if !locked.IsActive() {
			return ErrTripNotModifiable
		}

		if departure != nil {
			if err := s.checkDriverSchedule(ctx, driverID, *departure, locked.ID); err != nil {
				return err
			}
			locked.DepartureTime = *departure
		}
		if patch.DepartureLocation != nil {
			locked.DepartureLocation = *patch.DepartureLocation
		}
		if patch.ArrivalLocation != nil {
			locked.ArrivalLocation = *patch.ArrivalLocation
		}
		if patch.PricePerSeat != nil {
			locked.PricePerSeat = *patch.PricePerSeat
		}
		if patch.Description != nil {
			locked.Description = *patch.Description
		}

		if err := s.trips.Save(ctx, tx, locked); err != nil {
			return fmt.Errorf("save trip: %w", err)
		}
		trip = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[TripService] Trip %d updated by driver %d", trip.ID, driverID)
	return trip, nil
}

func (s *tripService) Cancel(ctx context.Context, tripID, driverID uint) error {
	err := s.trips.GetDB().Transaction(func(tx *gorm.DB) error {
		trip, err := s.trips.FindByIDForUpdate(ctx, tx, tripID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTripNotFound
			}
			return fmt.Errorf("lock trip: %w", err)
		}
		if trip.DriverID != driverID {
			return ErrNotTripOwner
		}
		if !trip.IsActive() {
			return ErrTripNotModifiable
		}

		trip.Status = models.TripStatusCancelled
		if err := s.trips.Save(ctx, tx, trip); err != nil {
			return fmt.Errorf("cancel trip: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[TripService] Trip %d cancelled by driver %d", tripID, driverID)
	return nil
}

func (s *tripService) Stats(ctx context.Context, driverID uint) (*DriverStats, error) {
	total, err := s.trips.CountByDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("count trips: %w", err)
	}
	completed, err := s.trips.CountByDriverAndStatus(ctx, driverID, models.TripStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("count completed trips: %w", err)
	}
	active, err := s.trips.CountByDriverAndStatus(ctx, driverID, models.TripStatusActive)
	if err != nil {
		return nil, fmt.Errorf("count active trips: %w", err)
	}
	return &DriverStats{TotalTrips: total, CompletedTrips: completed, ActiveTrips: active}, nil
}

// ExpireOverdue flips ACTIVE trips whose departure already passed to EXPIRED.
func (s *tripService) ExpireOverdue(ctx context.Context) (int64, error) {
	n, err := s.trips.MarkExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("mark expired trips: %w", err)
	}
	if n > 0 {
		log.Printf("[TripService] Expired %d overdue trips", n)
	}
	return n, nil
}

// checkDriverSchedule rejects a departure within driverConflictWindow of
// another ACTIVE trip of the same driver. excludeID (0 on create) keeps the
// trip being edited from conflicting with itself.
func (s *tripService) checkDriverSchedule(ctx context.Context, driverID uint, departure time.Time, excludeID uint) error {
	_, err := s.trips.FindConflicting(ctx, driverID,
		departure.Add(-driverConflictWindow), departure.Add(driverConflictWindow), excludeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("check driver schedule: %w", err)
	}
	return ErrScheduleConflict
}
