package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Walid-hh/PFA/trip-service/internal/dto"
	"github.com/Walid-hh/PFA/trip-service/internal/middleware"
	"github.com/Walid-hh/PFA/trip-service/internal/models"
	"github.com/Walid-hh/PFA/trip-service/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock BookingService ---

type mockBookingService struct {
	createFn         func(ctx context.Context, passengerID uint, input service.BookingInput) (*models.Booking, error)
	confirmFn        func(ctx context.Context, bookingID, driverID uint) (*models.Booking, error)
	rejectFn         func(ctx context.Context, bookingID, driverID uint) (*models.Booking, error)
	cancelFn         func(ctx context.Context, bookingID, passengerID uint) (*models.Booking, error)
	getFn            func(ctx context.Context, bookingID, actorID uint) (*models.Booking, error)
	passengerFn      func(ctx context.Context, passengerID uint) ([]models.Booking, error)
	driverFn         func(ctx context.Context, driverID uint) ([]models.Booking, error)
	pendingFn        func(ctx context.Context, driverID uint) ([]models.Booking, error)
	passengerStatsFn func(ctx context.Context, passengerID uint) (*service.PassengerStats, error)
	driverEarningsFn func(ctx context.Context, driverID uint) (*service.DriverEarnings, error)
}

func (m *mockBookingService) Create(ctx context.Context, passengerID uint, input service.BookingInput) (*models.Booking, error) {
	return m.createFn(ctx, passengerID, input)
}

func (m *mockBookingService) Confirm(ctx context.Context, bookingID, driverID uint) (*models.Booking, error) {
	return m.confirmFn(ctx, bookingID, driverID)
}

func (m *mockBookingService) Reject(ctx context.Context, bookingID, driverID uint) (*models.Booking, error) {
	return m.rejectFn(ctx, bookingID, driverID)
}

func (m *mockBookingService) Cancel(ctx context.Context, bookingID, passengerID uint) (*models.Booking, error) {
	return m.cancelFn(ctx, bookingID, passengerID)
}

func (m *mockBookingService) GetByID(ctx context.Context, bookingID, actorID uint) (*models.Booking, error) {
	return m.getFn(ctx, bookingID, actorID)
}

func (m *mockBookingService) PassengerBookings(ctx context.Context, passengerID uint) ([]models.Booking, error) {
	return m.passengerFn(ctx, passengerID)
}

func (m *mockBookingService) DriverBookings(ctx context.Context, driverID uint) ([]models.Booking, error) {
	return m.driverFn(ctx, driverID)
}

func (m *mockBookingService) PendingForDriver(ctx context.Context, driverID uint) ([]models.Booking, error) {
	return m.pendingFn(ctx, driverID)
}

func (m *mockBookingService) PassengerStats(ctx context.Context, passengerID uint) (*service.PassengerStats, error) {
	return m.passengerStatsFn(ctx, passengerID)
}

func (m *mockBookingService) DriverEarnings(ctx context.Context, driverID uint) (*service.DriverEarnings, error) {
	return m.driverEarningsFn(ctx, driverID)
}

func passengerActor() *middleware.Actor {
	return &middleware.Actor{ID: 42, Email: "passenger@example.com"}
}

func sampleBooking(status models.BookingStatus) *models.Booking {
	return &models.Booking{
		ID:          5,
		TripID:      1,
		PassengerID: 42,
		SeatsBooked: 2,
		TotalPrice:  100,
		Status:      status,
		BookingDate: time.Now(),
	}
}

// --- Create ---

func TestCreateBooking_Handler_Success(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, passengerID uint, input service.BookingInput) (*models.Booking, error) {
			assert.Equal(t, uint(42), passengerID)
			assert.Equal(t, uint(1), input.TripID)
			assert.Equal(t, 2, input.SeatsBooked)
			return sampleBooking(models.BookingStatusPending), nil
		},
	}

	c, rec := actorContext(http.MethodPost, "/api/bookings",
		`{"trip_id":1,"seats_booked":2}`, passengerActor())

	require.NoError(t, NewBookingHandler(svc).Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, 100.0, resp.TotalPrice)
}

func TestCreateBooking_Handler_ConflictStatuses(t *testing.T) {
	conflicts := []error{
		service.ErrTripUnavailable,
		service.ErrTripDeparted,
		service.ErrSelfBooking,
		service.ErrInsufficientSeats,
		service.ErrDuplicateBooking,
		service.ErrScheduleConflict,
	}
	for _, cause := range conflicts {
		t.Run(cause.Error(), func(t *testing.T) {
			svc := &mockBookingService{
				createFn: func(ctx context.Context, passengerID uint, input service.BookingInput) (*models.Booking, error) {
					return nil, cause
				},
			}

			c, _ := actorContext(http.MethodPost, "/api/bookings",
				`{"trip_id":1,"seats_booked":2}`, passengerActor())

			err := NewBookingHandler(svc).Create(c)
			he, ok := err.(*echo.HTTPError)
			require.True(t, ok)
			assert.Equal(t, http.StatusConflict, he.Code)
		})
	}
}

func TestCreateBooking_Handler_TripNotFound(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, passengerID uint, input service.BookingInput) (*models.Booking, error) {
			return nil, service.ErrTripNotFound
		},
	}

	c, _ := actorContext(http.MethodPost, "/api/bookings",
		`{"trip_id":99,"seats_booked":1}`, passengerActor())

	err := NewBookingHandler(svc).Create(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

// --- Confirm / Reject / Cancel ---

func TestConfirmBooking_Handler_Success(t *testing.T) {
	svc := &mockBookingService{
		confirmFn: func(ctx context.Context, bookingID, driverID uint) (*models.Booking, error) {
			assert.Equal(t, uint(5), bookingID)
			assert.Equal(t, uint(7), driverID)
			return sampleBooking(models.BookingStatusConfirmed), nil
		},
	}

	c, rec := actorContext(http.MethodPut, "/api/bookings/5/confirm", "", driverActor())
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, NewBookingHandler(svc).Confirm(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CONFIRMED", resp.Status)
}

func TestConfirmBooking_Handler_NotTripOwner(t *testing.T) {
	svc := &mockBookingService{
		confirmFn: func(ctx context.Context, bookingID, driverID uint) (*models.Booking, error) {
			return nil, service.ErrNotTripOwner
		},
	}

	c, _ := actorContext(http.MethodPut, "/api/bookings/5/confirm", "", driverActor())
	c.SetParamNames("id")
	c.SetParamValues("5")

	err := NewBookingHandler(svc).Confirm(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Code)
}

func TestRejectBooking_Handler_InvalidTransition(t *testing.T) {
	svc := &mockBookingService{
		rejectFn: func(ctx context.Context, bookingID, driverID uint) (*models.Booking, error) {
			return nil, service.ErrInvalidTransition
		},
	}

	c, _ := actorContext(http.MethodPut, "/api/bookings/5/reject", "", driverActor())
	c.SetParamNames("id")
	c.SetParamValues("5")

	err := NewBookingHandler(svc).Reject(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestCancelBooking_Handler_Success(t *testing.T) {
	svc := &mockBookingService{
		cancelFn: func(ctx context.Context, bookingID, passengerID uint) (*models.Booking, error) {
			assert.Equal(t, uint(42), passengerID)
			return sampleBooking(models.BookingStatusCancelled), nil
		},
	}

	c, rec := actorContext(http.MethodDelete, "/api/bookings/5", "", passengerActor())
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, NewBookingHandler(svc).Cancel(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CANCELLED", resp.Status)
}

// --- GetByID ---

func TestGetBooking_Handler_NotPartaker(t *testing.T) {
	svc := &mockBookingService{
		getFn: func(ctx context.Context, bookingID, actorID uint) (*models.Booking, error) {
			return nil, service.ErrNotBookingPartaker
		},
	}

	c, _ := actorContext(http.MethodGet, "/api/bookings/5", "", passengerActor())
	c.SetParamNames("id")
	c.SetParamValues("5")

	err := NewBookingHandler(svc).GetByID(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Code)
}

func TestGetBooking_Handler_NestedTrip(t *testing.T) {
	svc := &mockBookingService{
		getFn: func(ctx context.Context, bookingID, actorID uint) (*models.Booking, error) {
			booking := sampleBooking(models.BookingStatusConfirmed)
			booking.Trip = sampleTrip()
			return booking, nil
		},
	}

	c, rec := actorContext(http.MethodGet, "/api/bookings/5", "", passengerActor())
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, NewBookingHandler(svc).GetByID(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Trip)
	assert.Equal(t, "Casablanca", resp.Trip.DepartureLocation)
}

// --- Stats ---

func TestPassengerStats_Handler(t *testing.T) {
	svc := &mockBookingService{
		passengerStatsFn: func(ctx context.Context, passengerID uint) (*service.PassengerStats, error) {
			return &service.PassengerStats{
				TotalBookings:     8,
				ConfirmedBookings: 5,
				TotalExpenses:     420.5,
				ActiveBookings:    2,
			}, nil
		},
	}

	c, rec := actorContext(http.MethodGet, "/api/bookings/passenger-stats", "", passengerActor())

	require.NoError(t, NewBookingHandler(svc).PassengerStats(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.PassengerStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(8), resp.TotalBookings)
	assert.Equal(t, 420.5, resp.TotalExpenses)
}

func TestDriverEarnings_Handler(t *testing.T) {
	svc := &mockBookingService{
		driverEarningsFn: func(ctx context.Context, driverID uint) (*service.DriverEarnings, error) {
			return &service.DriverEarnings{
				TotalEarnings:          900,
				TotalConfirmedBookings: 12,
				PendingBookings:        3,
			}, nil
		},
	}

	c, rec := actorContext(http.MethodGet, "/api/bookings/driver-earnings", "", driverActor())

	require.NoError(t, NewBookingHandler(svc).DriverEarnings(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.DriverEarningsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 900.0, resp.TotalEarnings)
	assert.Equal(t, int64(3), resp.PendingBookings)
}
