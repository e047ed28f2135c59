package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Walid-hh/PFA/trip-service/internal/models"
	"gorm.io/gorm"
)

type TripRepository interface {
	Create(ctx context.Context, trip *models.Trip) error
	Save(ctx context.Context, tx *gorm.DB, trip *models.Trip) error
	FindByID(ctx context.Context, id uint) (*models.Trip, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Trip, error)
	FindByDriver(ctx context.Context, driverID uint) ([]models.Trip, error)
	FindConflicting(ctx context.Context, driverID uint, from, to time.Time, excludeID uint) (*models.Trip, error)
	FindAvailable(ctx context.Context) ([]models.Trip, error)
	SearchByLocations(ctx context.Context, departure, arrival string) ([]models.Trip, error)
	SearchByDate(ctx context.Context, day time.Time) ([]models.Trip, error)
	SearchByLocationsAndDate(ctx context.Context, departure, arrival string, day time.Time) ([]models.Trip, error)
	CountByDriver(ctx context.Context, driverID uint) (int64, error)
	CountByDriverAndStatus(ctx context.Context, driverID uint, status models.TripStatus) (int64, error)
	MarkExpired(ctx context.Context, cutoff time.Time) (int64, error)
	GetDB() *gorm.DB
}

type tripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) TripRepository {
	return &tripRepository{db: db}
}

func (r *tripRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *tripRepository) Create(ctx context.Context, trip *models.Trip) error {
	return r.db.WithContext(ctx).Create(trip).Error
}

func (r *tripRepository) Save(ctx context.Context, tx *gorm.DB, trip *models.Trip) error {
	return tx.WithContext(ctx).Save(trip).Error
}

func (r *tripRepository) FindByID(ctx context.Context, id uint) (*models.Trip, error) {
	var trip models.Trip
	if err := r.db.WithContext(ctx).First(&trip, id).Error; err != nil {
		return nil, err
	}
	return &trip, nil
}

// FindByIDForUpdate acquires a row-level lock on the trip within the given
// transaction, serializing concurrent seat mutations.
func (r *tripRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Trip, error) {
	var trip models.Trip
	if err := tx.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		First(&trip, id).Error; err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *tripRepository) FindByDriver(ctx context.Context, driverID uint) ([]models.Trip, error) {
	var trips []models.Trip
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("departure_time DESC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

// FindConflicting returns an ACTIVE trip of the driver departing inside
// [from, to], if any. excludeID skips one trip (0 matches no row), so an
// edited trip never conflicts with itself.
func (r *tripRepository) FindConflicting(ctx context.Context, driverID uint, from, to time.Time, excludeID uint) (*models.Trip, error) {
	var trip models.Trip
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND id <> ? AND departure_time BETWEEN ? AND ? AND status = ?",
			driverID, excludeID, from, to, models.TripStatusActive).
		First(&trip).Error
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *tripRepository) FindAvailable(ctx context.Context) ([]models.Trip, error) {
	var trips []models.Trip
	err := r.db.WithContext(ctx).
		Where("status = ? AND available_seats > 0", models.TripStatusActive).
		Order("departure_time ASC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *tripRepository) SearchByLocations(ctx context.Context, departure, arrival string) ([]models.Trip, error) {
	var trips []models.Trip
	err := r.availableQuery(ctx).
		Where("LOWER(departure_location) LIKE ? AND LOWER(arrival_location) LIKE ?",
			contains(departure), contains(arrival)).
		Order("departure_time ASC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *tripRepository) SearchByDate(ctx context.Context, day time.Time) ([]models.Trip, error) {
	var trips []models.Trip
	start, end := dayBounds(day)
	err := r.availableQuery(ctx).
		Where("departure_time >= ? AND departure_time < ?", start, end).
		Order("departure_time ASC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *tripRepository) SearchByLocationsAndDate(ctx context.Context, departure, arrival string, day time.Time) ([]models.Trip, error) {
	var trips []models.Trip
	start, end := dayBounds(day)
	err := r.availableQuery(ctx).
		Where("LOWER(departure_location) LIKE ? AND LOWER(arrival_location) LIKE ?",
			contains(departure), contains(arrival)).
		Where("departure_time >= ? AND departure_time < ?", start, end).
		Order("departure_time ASC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *tripRepository) CountByDriver(ctx context.Context, driverID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Trip{}).
		Where("driver_id = ?", driverID).
		Count(&count).Error
	return count, err
}

func (r *tripRepository) CountByDriverAndStatus(ctx context.Context, driverID uint, status models.TripStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Trip{}).
		Where("driver_id = ? AND status = ?", driverID, status).
		Count(&count).Error
	return count, err
}

// MarkExpired flips ACTIVE trips whose departure is before cutoff to
// EXPIRED and reports how many rows changed.
func (r *tripRepository) MarkExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Trip{}).
		Where("status = ? AND departure_time < ?", models.TripStatusActive, cutoff).
		Update("status", models.TripStatusExpired)
	return res.RowsAffected, res.Error
}

// availableQuery is the base filter every search shares: only ACTIVE trips
// with remaining seats are ever returned.
func (r *tripRepository) availableQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("status = ? AND available_seats > 0", models.TripStatusActive)
}

func contains(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}
