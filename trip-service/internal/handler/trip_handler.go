package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Walid-hh/PFA/trip-service/internal/dto"
	"github.com/Walid-hh/PFA/trip-service/internal/middleware"
	"github.com/Walid-hh/PFA/trip-service/internal/service"
	"github.com/labstack/echo/v4"
)

type TripHandler struct {
	trips service.TripService
}

func NewTripHandler(trips service.TripService) *TripHandler {
	return &TripHandler{trips: trips}
}

func (h *TripHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/trips")
	g.POST("", h.Create, middleware.RequireDriver)
	g.GET("/search", h.Search)
	g.GET("/my-trips", h.MyTrips, middleware.RequireDriver)
	g.GET("/stats", h.Stats, middleware.RequireDriver)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update, middleware.RequireDriver)
	g.DELETE("/:id", h.Cancel, middleware.RequireDriver)
}

func (h *TripHandler) Create(c echo.Context) error {
	var req dto.CreateTripRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actor := middleware.ActorFrom(c)
	trip, err := h.trips.Create(c.Request().Context(), actor.ID, service.TripInput{
		DepartureLocation: req.DepartureLocation,
		ArrivalLocation:   req.ArrivalLocation,
		DepartureTime:     req.DepartureTime,
		AvailableSeats:    req.AvailableSeats,
		PricePerSeat:      req.PricePerSeat,
		Description:       req.Description,
		IsInstantBooking:  req.IsInstantBooking,
	})
	if err != nil {
		return mapTripError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToTripResponse(trip))
}

func (h *TripHandler) Search(c echo.Context) error {
	criteria := service.SearchCriteria{}
	if v := c.QueryParam("departure"); v != "" {
		criteria.Departure = &v
	}
	if v := c.QueryParam("arrival"); v != "" {
		criteria.Arrival = &v
	}
	if v := c.QueryParam("date"); v != "" {
		criteria.Date = &v
	}

	trips, err := h.trips.Search(c.Request().Context(), criteria)
	if err != nil {
		return mapTripError(err)
	}
	return c.JSON(http.StatusOK, dto.ToTripResponses(trips))
}

func (h *TripHandler) MyTrips(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	trips, err := h.trips.DriverTrips(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ToTripResponses(trips))
}

func (h *TripHandler) Stats(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	stats, err := h.trips.Stats(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.DriverStatsResponse{
		TotalTrips:     stats.TotalTrips,
		CompletedTrips: stats.CompletedTrips,
		ActiveTrips:    stats.ActiveTrips,
	})
}

func (h *TripHandler) GetByID(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	trip, err := h.trips.GetByID(c.Request().Context(), id)
	if err != nil {
		return mapTripError(err)
	}
	return c.JSON(http.StatusOK, dto.ToTripResponse(trip))
}

func (h *TripHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTripRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	actor := middleware.ActorFrom(c)
	trip, err := h.trips.Update(c.Request().Context(), id, actor.ID, service.TripPatch{
		DepartureLocation: req.DepartureLocation,
		ArrivalLocation:   req.ArrivalLocation,
		DepartureTime:     req.DepartureTime,
		PricePerSeat:      req.PricePerSeat,
		Description:       req.Description,
	})
	if err != nil {
		return mapTripError(err)
	}
	return c.JSON(http.StatusOK, dto.ToTripResponse(trip))
}

func (h *TripHandler) Cancel(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	actor := middleware.ActorFrom(c)
	if err := h.trips.Cancel(c.Request().Context(), id, actor.ID); err != nil {
		return mapTripError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func mapTripError(err error) error {
	switch {
	case errors.Is(err, service.ErrTripNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotTripOwner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrTripNotModifiable),
		errors.Is(err, service.ErrScheduleConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return err
	}
}
