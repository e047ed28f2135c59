package models

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// Booking is a dependent record referencing its trip by id; the trip
// survives booking deletion but a booking cannot outlive its trip.
type Booking struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	TripID          uint          `gorm:"not null;index" json:"trip_id"`
	PassengerID     uint          `gorm:"not null;index" json:"passenger_id"`
	SeatsBooked     int           `gorm:"not null" json:"seats_booked"`
	TotalPrice      float64       `gorm:"type:numeric(10,2);not null" json:"total_price"`
	Status          BookingStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	BookingDate     time.Time     `gorm:"not null" json:"booking_date"`
	PickupLocation  string        `json:"pickup_location,omitempty"`
	DropoffLocation string        `json:"dropoff_location,omitempty"`
	SpecialRequests string        `gorm:"size:500" json:"special_requests,omitempty"`
	PassengerName   string        `json:"passenger_name,omitempty"`
	PassengerPhone  string        `json:"passenger_phone,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	Trip *Trip `gorm:"foreignKey:TripID" json:"trip,omitempty"`
}

func (b *Booking) CanBeConfirmed() bool {
	return b.Status == BookingStatusPending
}

func (b *Booking) CanBeCancelled() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// IsTerminal reports whether the booking can no longer transition.
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case BookingStatusRejected, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}
