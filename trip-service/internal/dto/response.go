package dto

import "github.com/Walid-hh/PFA/trip-service/internal/models"

const (
	DateTimeLayout = "2006-01-02T15:04:05"
	DateLayout     = "2006-01-02"
)

type TripResponse struct {
	ID                uint    `json:"id"`
	DriverID          uint    `json:"driver_id"`
	DepartureLocation string  `json:"departure_location"`
	ArrivalLocation   string  `json:"arrival_location"`
	DepartureTime     string  `json:"departure_time"`
	AvailableSeats    int     `json:"available_seats"`
	OriginalSeats     int     `json:"original_seats"`
	PricePerSeat      float64 `json:"price_per_seat"`
	Description       string  `json:"description,omitempty"`
	Status            string  `json:"status"`
	IsInstantBooking  bool    `json:"is_instant_booking"`
	CreatedAt         string  `json:"created_at"`
}

type BookingResponse struct {
	ID              uint          `json:"id"`
	TripID          uint          `json:"trip_id"`
	PassengerID     uint          `json:"passenger_id"`
	SeatsBooked     int           `json:"seats_booked"`
	TotalPrice      float64       `json:"total_price"`
	Status          string        `json:"status"`
	BookingDate     string        `json:"booking_date"`
	PickupLocation  string        `json:"pickup_location,omitempty"`
	DropoffLocation string        `json:"dropoff_location,omitempty"`
	SpecialRequests string        `json:"special_requests,omitempty"`
	PassengerName   string        `json:"passenger_name,omitempty"`
	PassengerPhone  string        `json:"passenger_phone,omitempty"`
	Trip            *TripResponse `json:"trip,omitempty"`
}

type DriverStatsResponse struct {
	TotalTrips     int64 `json:"total_trips"`
	CompletedTrips int64 `json:"completed_trips"`
	ActiveTrips    int64 `json:"active_trips"`
}

type PassengerStatsResponse struct {
	TotalBookings     int64   `json:"total_bookings"`
	ConfirmedBookings int64   `json:"confirmed_bookings"`
	TotalExpenses     float64 `json:"total_expenses"`
	ActiveBookings    int64   `json:"active_bookings"`
}

type DriverEarningsResponse struct {
	TotalEarnings          float64 `json:"total_earnings"`
	TotalConfirmedBookings int64   `json:"total_confirmed_bookings"`
	PendingBookings        int64   `json:"pending_bookings"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToTripResponse(trip *models.Trip) TripResponse {
	return TripResponse{
		ID:                trip.ID,
		DriverID:          trip.DriverID,
		DepartureLocation: trip.DepartureLocation,
		ArrivalLocation:   trip.ArrivalLocation,
		DepartureTime:     trip.DepartureTime.Format(DateTimeLayout),
		AvailableSeats:    trip.AvailableSeats,
		OriginalSeats:     trip.OriginalSeats,
		PricePerSeat:      trip.PricePerSeat,
		Description:       trip.Description,
		Status:            string(trip.Status),
		IsInstantBooking:  trip.IsInstantBooking,
		CreatedAt:         trip.CreatedAt.Format(DateTimeLayout),
	}
}

func ToTripResponses(trips []models.Trip) []TripResponse {
	out := make([]TripResponse, 0, len(trips))
	for i := range trips {
		out = append(out, ToTripResponse(&trips[i]))
	}
	return out
}

func ToBookingResponse(booking *models.Booking) BookingResponse {
	resp := BookingResponse{
		ID:              booking.ID,
		TripID:          booking.TripID,
		PassengerID:     booking.PassengerID,
		SeatsBooked:     booking.SeatsBooked,
		TotalPrice:      booking.TotalPrice,
		Status:          string(booking.Status),
		BookingDate:     booking.BookingDate.Format(DateTimeLayout),
		PickupLocation:  booking.PickupLocation,
		DropoffLocation: booking.DropoffLocation,
		SpecialRequests: booking.SpecialRequests,
		PassengerName:   booking.PassengerName,
		PassengerPhone:  booking.PassengerPhone,
	}
	if booking.Trip != nil {
		trip := ToTripResponse(booking.Trip)
		resp.Trip = &trip
	}
	return resp
}

func ToBookingResponses(bookings []models.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, ToBookingResponse(&bookings[i]))
	}
	return out
}
