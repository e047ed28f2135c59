package repository

import (
	"context"

	"github.com/Walid-hh/PFA/trip-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserProfileRepository interface {
	FindByID(ctx context.Context, id uint) (*models.UserProfile, error)
	FindByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	Upsert(ctx context.Context, profile *models.UserProfile) error
}

type userProfileRepository struct {
	db *gorm.DB
}

func NewUserProfileRepository(db *gorm.DB) UserProfileRepository {
	return &userProfileRepository{db: db}
}

func (r *userProfileRepository) FindByID(ctx context.Context, id uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userProfileRepository) FindByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert applies a user snapshot received from the user service. Events may
// arrive more than once; the last write wins on every mutable column.
func (r *userProfileRepository) Upsert(ctx context.Context, profile *models.UserProfile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"email", "first_name", "last_name", "phone", "is_driver", "status",
			}),
		}).
		Create(profile).Error
}
