package models

import "time"

// UserProfile is the local read model of user-service accounts, kept in
// sync over the users exchange. The auth middleware resolves token
// subjects against it instead of calling the user service.
type UserProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone,omitempty"`
	IsDriver  bool      `gorm:"not null;default:false" json:"is_driver"`
	Status    string    `gorm:"not null;default:'ACTIVE'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *UserProfile) IsActive() bool {
	return p.Status == "ACTIVE"
}
