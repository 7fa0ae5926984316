package jobs

import (
	"log"
	"time"

	"github.com/anjiri1684/consult_marketplace/database"
	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/anjiri1684/consult_marketplace/services"
)

// CompleteElapsedBookings settles confirmed bookings once the session window
// plus a grace period has passed and neither side disputed. Provider
// earnings land in the wallet as part of completion.
func CompleteElapsedBookings() {
	log.Println("Running job: CompleteElapsedBookings...")

	cutoff := time.Now().Add(-30 * time.Minute)

	var elapsedBookings []models.Booking
	err := database.DB.
		Where("status = ? AND end_time <= ?", models.BookingStatusConfirmed, cutoff).
		Find(&elapsedBookings).Error
	if err != nil {
		log.Printf("Error checking for elapsed bookings: %v", err)
		return
	}

	if len(elapsedBookings) == 0 {
		return
	}

	completed := 0
	for _, booking := range elapsedBookings {
		done, err := services.CompleteBooking(database.DB, booking.ID)
		if err != nil {
			log.Printf("Error completing booking %s: %v", booking.ID, err)
			continue
		}
		completed++
		go services.GenerateSessionReceipt(*done)
	}

	log.Printf("✅ Completed %d booking(s).", completed)
}
