package database

import (
	"fmt"
	"log"

	"cinebook/internal/auth"
	"cinebook/internal/bookings"
	"cinebook/internal/screenings"
	"cinebook/internal/seats"

	"gorm.io/gorm"
)

// Migrate runs schema migrations for all persisted models.
// Order matters: referenced tables first.
func Migrate(db *gorm.DB) error {
	models := []interface{}{
		&auth.User{},
		&screenings.Auditorium{},
		&screenings.Screening{},
		&seats.Seat{},
		&bookings.Booking{},
		&bookings.BookingSeat{},
		&bookings.Payment{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	log.Println("Database migrations completed")
	return nil
}
