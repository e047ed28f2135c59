package dto

type CreateTripRequest struct {
	DepartureLocation string  `json:"departure_location"`
	ArrivalLocation   string  `json:"arrival_location"`
	DepartureTime     string  `json:"departure_time"`
	AvailableSeats    int     `json:"available_seats"`
	PricePerSeat      float64 `json:"price_per_seat"`
	Description       string  `json:"description"`
	IsInstantBooking  bool    `json:"is_instant_booking"`
}

// UpdateTripRequest carries a partial patch; nil fields stay untouched.
// Seat counts are deliberately absent: they only change through bookings.
type UpdateTripRequest struct {
	DepartureLocation *string  `json:"departure_location"`
	ArrivalLocation   *string  `json:"arrival_location"`
	DepartureTime     *string  `json:"departure_time"`
	PricePerSeat      *float64 `json:"price_per_seat"`
	Description       *string  `json:"description"`
}

type CreateBookingRequest struct {
	TripID          uint   `json:"trip_id"`
	SeatsBooked     int    `json:"seats_booked"`
	PickupLocation  string `json:"pickup_location"`
	DropoffLocation string `json:"dropoff_location"`
	SpecialRequests string `json:"special_requests"`
	PassengerName   string `json:"passenger_name"`
	PassengerPhone  string `json:"passenger_phone"`
}
