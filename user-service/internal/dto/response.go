package dto

import (
	"github.com/Walid-hh/PFA/user-service/internal/models"
)

// Persisted timestamps travel as ISO-8601 local date-times without zone,
// calendar dates as plain YYYY-MM-DD.
const (
	DateTimeLayout = "2006-01-02T15:04:05"
	DateLayout     = "2006-01-02"
)

type UserResponse struct {
	ID          uint    `json:"id"`
	Email       string  `json:"email"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Phone       string  `json:"phone,omitempty"`
	Bio         string  `json:"bio,omitempty"`
	DateOfBirth string  `json:"date_of_birth,omitempty"`
	IsVerified  bool    `json:"is_verified"`
	IsDriver    bool    `json:"is_driver"`
	Rating      float64 `json:"rating"`
	TotalTrips  int     `json:"total_trips"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type StatsResponse struct {
	TotalTrips  int     `json:"total_trips"`
	IsDriver    bool    `json:"is_driver"`
	IsVerified  bool    `json:"is_verified"`
	Rating      float64 `json:"rating"`
	MemberSince string  `json:"member_since"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Bio:        u.Bio,
		IsVerified: u.IsVerified,
		IsDriver:   u.IsDriver,
		Rating:     u.Rating,
		TotalTrips: u.TotalTrips,
		Status:     string(u.Status),
		CreatedAt:  u.CreatedAt.Format(DateTimeLayout),
	}
	if u.Phone != nil {
		resp.Phone = *u.Phone
	}
	if u.DateOfBirth != nil {
		resp.DateOfBirth = u.DateOfBirth.Format(DateLayout)
	}
	return resp
}

func ToStatsResponse(u *models.User) StatsResponse {
	return StatsResponse{
		TotalTrips:  u.TotalTrips,
		IsDriver:    u.IsDriver,
		IsVerified:  u.IsVerified,
		Rating:      u.Rating,
		MemberSince: u.CreatedAt.Format(DateTimeLayout),
	}
}

// UserEvent is the snapshot published on the users exchange after every
// account mutation.
type UserEvent struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	IsDriver  bool   `json:"is_driver"`
	Status    string `json:"status"`
}

func ToUserEvent(u *models.User) UserEvent {
	ev := UserEvent{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsDriver:  u.IsDriver,
		Status:    string(u.Status),
	}
	if u.Phone != nil {
		ev.Phone = *u.Phone
	}
	return ev
}
