package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/anjiri1684/consult_marketplace/database"
	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/anjiri1684/consult_marketplace/notifications"
)

// SendSessionReminders emails both parties of confirmed bookings starting in
// roughly an hour. The five minute band matches the cron cadence so each
// booking is only picked up once.
func SendSessionReminders() {
	log.Println("Running job: SendSessionReminders...")

	now := time.Now()
	lowerBound := now.Add(60 * time.Minute)
	upperBound := now.Add(65 * time.Minute)

	var upcomingBookings []models.Booking
	err := database.DB.
		Preload("Seeker").
		Preload("Provider").
		Where("status = ? AND start_time BETWEEN ? AND ?",
			models.BookingStatusConfirmed, lowerBound, upperBound).
		Find(&upcomingBookings).Error
	if err != nil {
		log.Printf("Error checking for upcoming sessions: %v", err)
		return
	}

	if len(upcomingBookings) == 0 {
		return
	}

	for _, booking := range upcomingBookings {
		log.Printf("Sending reminder for booking ID: %s", booking.ID)

		meetURL := ""
		if booking.MeetURL != nil {
			meetURL = *booking.MeetURL
		}
		startTime := booking.StartTime.Format("3:04 PM on Jan 2")

		go notifications.SendEmail(
			"",
			booking.Seeker.Email,
			"Your consultation starts in 1 hour",
			fmt.Sprintf("<h1>Session Reminder</h1><p>Your consultation starts at %s.</p><p><a href='%s'>Join the session</a></p>", startTime, meetURL),
		)
		go notifications.SendEmail(
			"",
			booking.Provider.Email,
			"Your consultation starts in 1 hour",
			fmt.Sprintf("<h1>Session Reminder</h1><p>Your consultation starts at %s.</p><p><a href='%s'>Join the session</a></p>", startTime, meetURL),
		)
	}
}
