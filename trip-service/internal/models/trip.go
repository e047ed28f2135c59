package models

import (
	"errors"
	"math"
	"time"
)

type TripStatus string

const (
	TripStatusActive    TripStatus = "ACTIVE"
	TripStatusFull      TripStatus = "FULL"
	TripStatusCancelled TripStatus = "CANCELLED"
	TripStatusCompleted TripStatus = "COMPLETED"
	TripStatusExpired   TripStatus = "EXPIRED"
)

var ErrSeatsUnavailable = errors.New("not enough seats available")

// Trip owns its seat-count state. OriginalSeats is snapshotted at creation
// and bounds every release, so 0 <= AvailableSeats <= OriginalSeats holds
// across any sequence of reserve/release calls.
type Trip struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	DriverID          uint       `gorm:"not null;index" json:"driver_id"`
	DepartureLocation string     `gorm:"not null" json:"departure_location"`
	ArrivalLocation   string     `gorm:"not null" json:"arrival_location"`
	DepartureTime     time.Time  `gorm:"not null;index" json:"departure_time"`
	AvailableSeats    int        `gorm:"not null" json:"available_seats"`
	OriginalSeats     int        `gorm:"not null" json:"original_seats"`
	PricePerSeat      float64    `gorm:"type:numeric(10,2);not null" json:"price_per_seat"`
	Description       string     `gorm:"size:1000" json:"description,omitempty"`
	Status            TripStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	IsInstantBooking  bool       `gorm:"not null;default:false" json:"is_instant_booking"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Read-access collection for aggregation only; bookings own their
	// lifecycle, the trip never cascades it.
	Bookings []Booking `gorm:"foreignKey:TripID" json:"bookings,omitempty"`
}

func (t *Trip) IsActive() bool {
	return t.Status == TripStatusActive
}

func (t *Trip) DepartsInFuture() bool {
	return t.DepartureTime.After(time.Now())
}

func (t *Trip) CanBook(seats int) bool {
	return t.IsActive() && seats > 0 && seats <= t.AvailableSeats
}

func (t *Trip) ReserveSeats(seats int) error {
	if !t.CanBook(seats) {
		return ErrSeatsUnavailable
	}
	t.AvailableSeats -= seats
	return nil
}

// ReleaseSeats restores capacity, clamped at the creation-time snapshot so
// a double release can never inflate the trip beyond its original size.
func (t *Trip) ReleaseSeats(seats int) {
	t.AvailableSeats += seats
	if t.AvailableSeats > t.OriginalSeats {
		t.AvailableSeats = t.OriginalSeats
	}
}

// TotalPrice is the fixed-point price for the requested seats, frozen onto
// the booking at creation.
func (t *Trip) TotalPrice(seats int) float64 {
	return math.Round(t.PricePerSeat*float64(seats)*100) / 100
}
