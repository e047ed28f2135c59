package repository

import (
	"context"
	"time"

	"github.com/Walid-hh/PFA/trip-service/internal/models"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	Save(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error)
	FindActiveByTripAndPassenger(ctx context.Context, tx *gorm.DB, tripID, passengerID uint) (*models.Booking, error)
	FindConflicting(ctx context.Context, tx *gorm.DB, passengerID uint, from, to time.Time) (*models.Booking, error)
	FindByPassenger(ctx context.Context, passengerID uint) ([]models.Booking, error)
	FindForDriver(ctx context.Context, driverID uint) ([]models.Booking, error)
	FindPendingForDriver(ctx context.Context, driverID uint) ([]models.Booking, error)
	CountByPassenger(ctx context.Context, passengerID uint) (int64, error)
	CountByPassengerAndStatus(ctx context.Context, passengerID uint, status models.BookingStatus) (int64, error)
	CountActiveByPassenger(ctx context.Context, passengerID uint) (int64, error)
	CountPendingForDriver(ctx context.Context, driverID uint) (int64, error)
	CountConfirmedForDriver(ctx context.Context, driverID uint) (int64, error)
	SumPassengerExpenses(ctx context.Context, passengerID uint) (float64, error)
	SumDriverEarnings(ctx context.Context, driverID uint) (float64, error)
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) Save(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Save(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Preload("Trip").First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByIDTx re-reads the booking inside a transaction that already holds
// the trip row lock, so status transitions serialize on the trip.
func (r *bookingRepository) FindByIDTx(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindActiveByTripAndPassenger finds a PENDING or CONFIRMED booking of the
// passenger on the trip. The partial unique index on bookings backstops
// this check against races.
func (r *bookingRepository) FindActiveByTripAndPassenger(ctx context.Context, tx *gorm.DB, tripID, passengerID uint) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Where("trip_id = ? AND passenger_id = ? AND status IN ?",
			tripID, passengerID,
			[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindConflicting returns a non-terminal booking of the passenger on any
// trip departing inside [from, to], if any.
func (r *bookingRepository) FindConflicting(ctx context.Context, tx *gorm.DB, passengerID uint, from, to time.Time) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Joins("JOIN trips ON trips.id = bookings.trip_id").
		Where("bookings.passenger_id = ? AND bookings.status IN ? AND trips.departure_time BETWEEN ? AND ?",
			passengerID,
			[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed},
			from, to).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByPassenger(ctx context.Context, passengerID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Trip").
		Where("passenger_id = ?", passengerID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindForDriver(ctx context.Context, driverID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Trip").
		Joins("JOIN trips ON trips.id = bookings.trip_id").
		Where("trips.driver_id = ?", driverID).
		Order("bookings.created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindPendingForDriver(ctx context.Context, driverID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Trip").
		Joins("JOIN trips ON trips.id = bookings.trip_id").
		Where("trips.driver_id = ? AND bookings.status = ?", driverID, models.BookingStatusPending).
		Order("bookings.created_at ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) CountByPassenger(ctx context.Context, passengerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("passenger_id = ?", passengerID).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) CountByPassengerAndStatus(ctx context.Context, passengerID uint, status models.BookingStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("passenger_id = ? AND status = ?", passengerID, status).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) CountActiveByPassenger(ctx context.Context, passengerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("passenger_id = ? AND status IN ?",
			passengerID,
			[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) CountPendingForDriver(ctx context.Context, driverID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Joins("JOIN trips ON trips.id = bookings.trip_id").
		Where("trips.driver_id = ? AND bookings.status = ?", driverID, models.BookingStatusPending).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) CountConfirmedForDriver(ctx context.Context, driverID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Joins("JOIN trips ON trips.id = bookings.trip_id").
		Where("trips.driver_id = ? AND bookings.status = ?", driverID, models.BookingStatusConfirmed).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) SumPassengerExpenses(ctx context.Context, passengerID uint) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("COALESCE(SUM(total_price), 0)").
		Where("passenger_id = ? AND status = ?", passengerID, models.BookingStatusConfirmed).
		Scan(&total).Error
	return total, err
}

func (r *bookingRepository) SumDriverEarnings(ctx context.Context, driverID uint) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("COALESCE(SUM(bookings.total_price), 0)").
		Joins("JOIN trips ON trips.id = bookings.trip_id").
		Where("trips.driver_id = ? AND bookings.status = ?", driverID, models.BookingStatusConfirmed).
		Scan(&total).Error
	return total, err
}
