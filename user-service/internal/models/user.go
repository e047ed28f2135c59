package models

import "time"

type UserStatus string

const (
	StatusActive   UserStatus = "ACTIVE"
	StatusInactive UserStatus = "INACTIVE"
)

// User accounts are never hard-deleted; deactivation flips Status.
type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Email             string     `gorm:"uniqueIndex;not null" json:"email"`
	Password          string     `gorm:"not null" json:"-"`
	FirstName         string     `gorm:"not null" json:"first_name"`
	LastName          string     `gorm:"not null" json:"last_name"`
	Phone             *string    `gorm:"uniqueIndex" json:"phone,omitempty"`
	DriverLicense     *string    `gorm:"uniqueIndex" json:"driver_license,omitempty"`
	ProfilePictureURL string     `json:"profile_picture_url,omitempty"`
	Bio               string     `json:"bio,omitempty"`
	DateOfBirth       *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	IsVerified        bool       `gorm:"not null;default:false" json:"is_verified"`
	IsDriver          bool       `gorm:"not null;default:false" json:"is_driver"`
	Rating            float64    `gorm:"type:numeric(3,2);not null;default:0" json:"rating"`
	TotalTrips        int        `gorm:"not null;default:0" json:"total_trips"`
	Status            UserStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}
