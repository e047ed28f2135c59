package handler

import (
	"errors"
	"net/http"

	"github.com/Walid-hh/PFA/trip-service/internal/dto"
	"github.com/Walid-hh/PFA/trip-service/internal/middleware"
	"github.com/Walid-hh/PFA/trip-service/internal/service"
	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	bookings service.BookingService
}

func NewBookingHandler(bookings service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/bookings", middleware.RequireAuth)
	g.POST("", h.Create)
	g.GET("/my-bookings", h.MyBookings)
	g.GET("/driver-bookings", h.DriverBookings, middleware.RequireDriver)
	g.GET("/pending", h.Pending, middleware.RequireDriver)
	g.GET("/passenger-stats", h.PassengerStats)
	g.GET("/driver-earnings", h.DriverEarnings, middleware.RequireDriver)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id/confirm", h.Confirm, middleware.RequireDriver)
	g.PUT("/:id/reject", h.Reject, middleware.RequireDriver)
	g.DELETE("/:id", h.Cancel)
}

func (h *BookingHandler) Create(c echo.Context) error {
	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actor := middleware.ActorFrom(c)
	booking, err := h.bookings.Create(c.Request().Context(), actor.ID, service.BookingInput{
		TripID:          req.TripID,
		SeatsBooked:     req.SeatsBooked,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		SpecialRequests: req.SpecialRequests,
		PassengerName:   req.PassengerName,
		PassengerPhone:  req.PassengerPhone,
	})
	if err != nil {
		return mapBookingError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) MyBookings(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	bookings, err := h.bookings.PassengerBookings(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponses(bookings))
}

func (h *BookingHandler) DriverBookings(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	bookings, err := h.bookings.DriverBookings(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponses(bookings))
}

func (h *BookingHandler) Pending(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	bookings, err := h.bookings.PendingForDriver(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponses(bookings))
}

func (h *BookingHandler) PassengerStats(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	stats, err := h.bookings.PassengerStats(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.PassengerStatsResponse{
		TotalBookings:     stats.TotalBookings,
		ConfirmedBookings: stats.ConfirmedBookings,
		TotalExpenses:     stats.TotalExpenses,
		ActiveBookings:    stats.ActiveBookings,
	})
}

func (h *BookingHandler) DriverEarnings(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	earnings, err := h.bookings.DriverEarnings(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.DriverEarningsResponse{
		TotalEarnings:          earnings.TotalEarnings,
		TotalConfirmedBookings: earnings.TotalConfirmedBookings,
		PendingBookings:        earnings.PendingBookings,
	})
}

func (h *BookingHandler) GetByID(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	actor := middleware.ActorFrom(c)
	booking, err := h.bookings.GetByID(c.Request().Context(), id, actor.ID)
	if err != nil {
		return mapBookingError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) Confirm(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	actor := middleware.ActorFrom(c)
	booking, err := h.bookings.Confirm(c.Request().Context(), id, actor.ID)
	if err != nil {
		return mapBookingError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) Reject(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	actor := middleware.ActorFrom(c)
	booking, err := h.bookings.Reject(c.Request().Context(), id, actor.ID)
	if err != nil {
		return mapBookingError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	actor := middleware.ActorFrom(c)
	booking, err := h.bookings.Cancel(c.Request().Context(), id, actor.ID)
	if err != nil {
		return mapBookingError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func mapBookingError(err error) error {
	switch {
	case errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, service.ErrTripNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotBookingOwner),
		errors.Is(err, service.ErrNotTripOwner),
		errors.Is(err, service.ErrNotBookingPartaker):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrTripUnavailable),
		errors.Is(err, service.ErrTripDeparted),
		errors.Is(err, service.ErrSelfBooking),
		errors.Is(err, service.ErrInsufficientSeats),
		errors.Is(err, service.ErrDuplicateBooking),
		errors.Is(err, service.ErrScheduleConflict),
		errors.Is(err, service.ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return err
	}
}
