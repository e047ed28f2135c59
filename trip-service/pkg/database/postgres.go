package database

import (
	"log"
	"time"

	"github.com/Walid-hh/PFA/trip-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := db.AutoMigrate(&models.Trip{}, &models.Booking{}, &models.UserProfile{}); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Partial unique index: prevents duplicate active bookings (same passenger + same trip)
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_booking_active
		ON bookings (trip_id, passenger_id)
		WHERE status IN ('PENDING', 'CONFIRMED')
	`)

	return db
}
