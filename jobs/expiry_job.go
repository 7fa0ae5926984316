package jobs

import (
	"log"
	"time"

	"github.com/anjiri1684/consult_marketplace/database"
	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/anjiri1684/consult_marketplace/services"
	"gorm.io/gorm"
)

// ExpireUnpaidBookings removes bookings whose payment deadline has passed
// without a successful payment, releasing their slots back to the catalogue.
func ExpireUnpaidBookings() {
	log.Println("Running job: ExpireUnpaidBookings...")

	now := time.Now()
	deadlineCutoff := now.Add(models.PaymentDeadlineWindow)

	var unpaidBookings []models.Booking
	err := database.DB.
		Where("status IN ? AND start_time <= ?",
			[]string{models.BookingStatusPending, models.BookingStatusPaymentPending},
			deadlineCutoff).
		Find(&unpaidBookings).Error
	if err != nil {
		log.Printf("Error checking for expired bookings: %v", err)
		return
	}

	if len(unpaidBookings) == 0 {
		return
	}

	expired := 0
	for i := range unpaidBookings {
		booking := unpaidBookings[i]
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			return services.ExpireUnpaidBooking(tx, &booking)
		})
		if err != nil {
			log.Printf("Error expiring booking %s: %v", booking.ID, err)
			continue
		}
		expired++
	}

	log.Printf("Expired %d unpaid booking(s).", expired)
}
