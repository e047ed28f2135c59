package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Walid-hh/PFA/trip-service/internal/models"
	"github.com/Walid-hh/PFA/trip-service/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrTripUnavailable    = errors.New("trip is not available for booking")
	ErrTripDeparted       = errors.New("trip has already departed")
	ErrSelfBooking        = errors.New("drivers cannot book their own trip")
	ErrInsufficientSeats  = errors.New("not enough seats available")
	ErrDuplicateBooking   = errors.New("an active booking for this trip already exists")
	ErrNotBookingOwner    = errors.New("booking belongs to another passenger")
	ErrNotBookingPartaker = errors.New("booking does not involve this user")
	ErrInvalidTransition  = errors.New("booking cannot change to that status")
)

// passengerConflictWindow is how close two booked departures of the same
// passenger may be.
const passengerConflictWindow = 2 * time.Hour

type BookingInput struct {
	TripID          uint
	SeatsBooked     int
	PickupLocation  string
	DropoffLocation string
	SpecialRequests string
	PassengerName   string
	PassengerPhone  string
}

type PassengerStats struct {
	TotalBookings     int64
	ConfirmedBookings int64
	TotalExpenses     float64
	ActiveBookings    int64
}

type DriverEarnings struct {
	TotalEarnings          float64
	TotalConfirmedBookings int64
	PendingBookings        int64
}

type BookingService interface {
	Create(ctx context.Context, passengerID uint, input BookingInput) (*models.Booking, error)
	Confirm(ctx context.Context, bookingID, driverID uint) (*models.Booking, error)
	Reject(ctx context.Context, bookingID, driverID uint) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID, passengerID uint) (*models.Booking, error)
	GetByID(ctx context.Context, bookingID, actorID uint) (*models.Booking, error)
	PassengerBookings(ctx context.Context, passengerID uint) ([]models.Booking, error)
	DriverBookings(ctx context.Context, driverID uint) ([]models.Booking, error)
	PendingForDriver(ctx context.Context, driverID uint) ([]models.Booking, error)
	PassengerStats(ctx context.Context, passengerID uint) (*PassengerStats, error)
	DriverEarnings(ctx context.Context, driverID uint) (*DriverEarnings, error)
}

type bookingService struct {
	bookings repository.BookingRepository
	trips    repository.TripRepository
}

func NewBookingService(bookings repository.BookingRepository, trips repository.TripRepository) BookingService {
	return &bookingService{bookings: bookings, trips: trips}
}

// Create books seats on a trip. The whole decision runs inside one
// transaction holding the trip row lock, so seat counts and the duplicate
// check cannot race with concurrent bookings.
func (s *bookingService) Create(ctx context.Context, passengerID uint, input BookingInput) (*models.Booking, error) {
	if input.SeatsBooked < 1 {
		return nil, fmt.Errorf("%w: seats booked must be at least 1", ErrValidation)
	}

	var booking *models.Booking
	err := s.bookings.GetDB().Transaction(func(tx *gorm.DB) error {
		trip, err := s.trips.FindByIDForUpdate(ctx, tx, input.TripID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTripNotFound
			}
			return fmt.Errorf("lock trip: %w", err)
		}

		if !trip.IsActive() {
			return ErrTripUnavailable
		}
		if !trip.DepartsInFuture() {
			return ErrTripDeparted
		}
		if trip.DriverID == passengerID {
			return ErrSelfBooking
		}
		if !trip.CanBook(input.SeatsBooked) {
			return ErrInsufficientSeats
		}

		_, err = s.bookings.FindActiveByTripAndPassenger(ctx, tx, trip.ID, passengerID)
		if err == nil {
			return ErrDuplicateBooking
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check duplicate booking: %w", err)
		}

		from := trip.DepartureTime.Add(-passengerConflictWindow)
		to := trip.DepartureTime.Add(passengerConflictWindow)
		_, err = s.bookings.FindConflicting(ctx, tx, passengerID, from, to)
		if err == nil {
			return ErrScheduleConflict
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check passenger schedule: %w", err)
		}

		booking = &models.Booking{
			TripID:          trip.ID,
			PassengerID:     passengerID,
			SeatsBooked:     input.SeatsBooked,
			TotalPrice:      trip.TotalPrice(input.SeatsBooked),
			Status:          models.BookingStatusPending,
			BookingDate:     time.Now(),
			PickupLocation:  input.PickupLocation,
			DropoffLocation: input.DropoffLocation,
			SpecialRequests: input.SpecialRequests,
			PassengerName:   input.PassengerName,
			PassengerPhone:  input.PassengerPhone,
		}

		// Instant-booking trips confirm immediately and reserve seats in
		// the same transaction.
		if trip.IsInstantBooking {
			if err := trip.ReserveSeats(input.SeatsBooked); err != nil {
				return ErrInsufficientSeats
			}
			booking.Status = models.BookingStatusConfirmed
			if err := s.trips.Save(ctx, tx, trip); err != nil {
				return fmt.Errorf("save trip: %w", err)
			}
		}

		if err := s.bookings.Create(ctx, tx, booking); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[BookingService] Booking %d created by passenger %d on trip %d (%s)",
		booking.ID, passengerID, booking.TripID, booking.Status)
	return booking, nil
}

// Confirm moves a PENDING booking to CONFIRMED and reserves its seats.
// Only the trip's driver may confirm.
func (s *bookingService) Confirm(ctx context.Context, bookingID, driverID uint) (*models.Booking, error) {
	var booking *models.Booking
	err := s.bookings.GetDB().Transaction(func(tx *gorm.DB) error {
		trip, b, err := s.lockBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if trip.DriverID != driverID {
			return ErrNotTripOwner
		}
		if !b.CanBeConfirmed() {
			return ErrInvalidTransition
		}
		if err := trip.ReserveSeats(b.SeatsBooked); err != nil {
			return ErrInsufficientSeats
		}

		b.Status = models.BookingStatusConfirmed
		if err := s.trips.Save(ctx, tx, trip); err != nil {
			return fmt.Errorf("save trip: %w", err)
		}
		if err := s.bookings.Save(ctx, tx, b); err != nil {
			return fmt.Errorf("save booking: %w", err)
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[BookingService] Booking %d confirmed by driver %d", booking.ID, driverID)
	return booking, nil
}

// Reject moves a PENDING booking to REJECTED. Seats were never reserved for
// a pending booking, so none are released.
func (s *bookingService) Reject(ctx context.Context, bookingID, driverID uint) (*models.Booking, error) {
	var booking *models.Booking
	err := s.bookings.GetDB().Transaction(func(tx *gorm.DB) error {
		trip, b, err := s.lockBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if trip.DriverID != driverID {
			return ErrNotTripOwner
		}
		if b.Status != models.BookingStatusPending {
			return ErrInvalidTransition
		}

		b.Status = models.BookingStatusRejected
		if err := s.bookings.Save(ctx, tx, b); err != nil {
			return fmt.Errorf("save booking: %w", err)
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[BookingService] Booking %d rejected by driver %d", booking.ID, driverID)
	return booking, nil
}

// Cancel lets the passenger withdraw a PENDING or CONFIRMED booking. Seats
// go back to the trip only when the booking had actually reserved them.
func (s *bookingService) Cancel(ctx context.Context, bookingID, passengerID uint) (*models.Booking, error) {
	var booking *models.Booking
	err := s.bookings.GetDB().Transaction(func(tx *gorm.DB) error {
		trip, b, err := s.lockBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.PassengerID != passengerID {
			return ErrNotBookingOwner
		}
		if !b.CanBeCancelled() {
			return ErrInvalidTransition
		}

		wasConfirmed := b.Status == models.BookingStatusConfirmed
		b.Status = models.BookingStatusCancelled
		if wasConfirmed {
			trip.ReleaseSeats(b.SeatsBooked)
			if err := s.trips.Save(ctx, tx, trip); err != nil {
				return fmt.Errorf("save trip: %w", err)
			}
		}
		if err := s.bookings.Save(ctx, tx, b); err != nil {
			return fmt.Errorf("save booking: %w", err)
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[BookingService] Booking %d cancelled by passenger %d", booking.ID, passengerID)
	return booking, nil
}

// GetByID returns the booking only to its passenger or the trip's driver.
func (s *bookingService) GetByID(ctx context.Context, bookingID, actorID uint) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking.PassengerID != actorID && (booking.Trip == nil || booking.Trip.DriverID != actorID) {
		return nil, ErrNotBookingPartaker
	}
	return booking, nil
}

func (s *bookingService) PassengerBookings(ctx context.Context, passengerID uint) ([]models.Booking, error) {
	return s.bookings.FindByPassenger(ctx, passengerID)
}

func (s *bookingService) DriverBookings(ctx context.Context, driverID uint) ([]models.Booking, error) {
	return s.bookings.FindForDriver(ctx, driverID)
}

func (s *bookingService) PendingForDriver(ctx context.Context, driverID uint) ([]models.Booking, error) {
	return s.bookings.FindPendingForDriver(ctx, driverID)
}

func (s *bookingService) PassengerStats(ctx context.Context, passengerID uint) (*PassengerStats, error) {
	total, err := s.bookings.CountByPassenger(ctx, passengerID)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	confirmed, err := s.bookings.CountByPassengerAndStatus(ctx, passengerID, models.BookingStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("count confirmed bookings: %w", err)
	}
	expenses, err := s.bookings.SumPassengerExpenses(ctx, passengerID)
	if err != nil {
		return nil, fmt.Errorf("sum expenses: %w", err)
	}
	active, err := s.bookings.CountActiveByPassenger(ctx, passengerID)
	if err != nil {
		return nil, fmt.Errorf("count active bookings: %w", err)
	}
	return &PassengerStats{
		TotalBookings:     total,
		ConfirmedBookings: confirmed,
		TotalExpenses:     expenses,
		ActiveBookings:    active,
	}, nil
}

func (s *bookingService) DriverEarnings(ctx context.Context, driverID uint) (*DriverEarnings, error) {
	earnings, err := s.bookings.SumDriverEarnings(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("sum earnings: %w", err)
	}
	confirmed, err := s.bookings.CountConfirmedForDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("count confirmed bookings: %w", err)
	}
	pending, err := s.bookings.CountPendingForDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("count pending bookings: %w", err)
	}
	return &DriverEarnings{
		TotalEarnings:          earnings,
		TotalConfirmedBookings: confirmed,
		PendingBookings:        pending,
	}, nil
}

// lockBooking locks the booking's trip row and re-reads the booking inside
// the transaction. Reading the booking twice is deliberate: the first read
// only yields the trip ID, the second one sees the state current under the
// lock.
func (s *bookingService) lockBooking(ctx context.Context, tx *gorm.DB, bookingID uint) (*models.Trip, *models.Booking, error) {
	peek, err := s.bookings.FindByIDTx(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrBookingNotFound
		}
		return nil, nil, fmt.Errorf("find booking: %w", err)
	}

	trip, err := s.trips.FindByIDForUpdate(ctx, tx, peek.TripID)
	if err != nil {
		return nil, nil, fmt.Errorf("lock trip: %w", err)
	}

	booking, err := s.bookings.FindByIDTx(ctx, tx, bookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("reread booking: %w", err)
	}
	return trip, booking, nil
}
