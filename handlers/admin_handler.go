package handlers

import (
	"log"

	"github.com/anjiri1684/consult_marketplace/database"
	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/anjiri1684/consult_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func ListUsers(c *fiber.Ctx) error {
	query := database.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if c.Query("active") == "false" {
		query = query.Where("is_active = ?", false)
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var total int64
	query.Count(&total)

	var users []models.User
	query.Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users)

	return c.JSON(fiber.Map{
		"users": users,
		"total": total,
		"page":  page,
	})
}

// ToggleUserStatus suspends or reinstates an account. Suspended users fail
// login with 403 but their data stays intact.
func ToggleUserStatus(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	if user.Role == models.RoleSuperAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Cannot suspend an admin account"})
	}

	user.IsActive = !user.IsActive
	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user status"})
	}

	log.Printf("User %s active status set to %v", user.ID, user.IsActive)
	return c.JSON(fiber.Map{"message": "User status updated.", "is_active": user.IsActive})
}

// AdminDeleteUser permanently removes an account and everything hanging off
// it. Counterparties on live bookings are refunded as part of the cascade.
func AdminDeleteUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if user.Role == models.RoleSuperAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Cannot delete an admin account"})
	}

	if err := services.DeleteUserCascade(database.DB, userID); err != nil {
		log.Printf("🔥 Failed to delete user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete user"})
	}

	log.Printf("✅ User %s and all related data deleted", userID)
	return c.JSON(fiber.Map{"message": "User and all related data deleted."})
}

func GetDashboardAnalytics(c *fiber.Ctx) error {
	var totalUsers, totalProviders, totalBookings int64
	database.DB.Model(&models.User{}).Count(&totalUsers)
	database.DB.Model(&models.Provider{}).Where("status = ?", models.ProviderStatusActive).Count(&totalProviders)
	database.DB.Model(&models.Booking{}).Count(&totalBookings)

	var completedBookings, disputedBookings int64
	database.DB.Model(&models.Booking{}).Where("status = ?", models.BookingStatusCompleted).Count(&completedBookings)
	database.DB.Model(&models.Booking{}).Where("status = ?", models.BookingStatusDisputed).Count(&disputedBookings)

	var grossRevenue, commissionEarned int64
	database.DB.Model(&models.Transaction{}).
		Where("type = ? AND status = ?", models.TxnTypeBookingPayment, models.TxnStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").Scan(&grossRevenue)
	database.DB.Model(&models.Transaction{}).
		Where("type = ? AND status = ?", models.TxnTypeCommission, models.TxnStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").Scan(&commissionEarned)

	var pendingPayouts, openDisputes, pendingApplications int64
	database.DB.Model(&models.Payout{}).Where("status = ?", models.PayoutStatusRequested).Count(&pendingPayouts)
	database.DB.Model(&models.Dispute{}).Where("status = ?", models.DisputeStatusOpen).Count(&openDisputes)
	database.DB.Model(&models.Provider{}).Where("status = ?", models.ProviderStatusPending).Count(&pendingApplications)

	return c.JSON(fiber.Map{
		"total_users":          totalUsers,
		"active_providers":     totalProviders,
		"total_bookings":       totalBookings,
		"completed_bookings":   completedBookings,
		"disputed_bookings":    disputedBookings,
		"gross_revenue":        grossRevenue,
		"commission_earned":    commissionEarned,
		"pending_payouts":      pendingPayouts,
		"open_disputes":        openDisputes,
		"pending_applications": pendingApplications,
	})
}

func ListUnmatchedRequests(c *fiber.Ctx) error {
	status := c.Query("status", "open")
	var requests []models.UnmatchedRequest
	database.DB.
		Preload("Seeker").
		Where("status = ?", status).
		Order("created_at asc").
		Find(&requests)
	return c.JSON(requests)
}

func CloseUnmatchedRequest(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request ID"})
	}

	result := database.DB.Model(&models.UnmatchedRequest{}).
		Where("id = ? AND status = ?", requestID, "open").
		Update("status", "closed")
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unmatched request not found or already closed"})
	}

	return c.JSON(fiber.Map{"message": "Request closed."})
}

// ListAllBookings gives staff a filtered view across the whole marketplace.
func ListAllBookings(c *fiber.Ctx) error {
	query := database.DB.Preload("Seeker").Preload("Provider")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var bookings []models.Booking
	query.Order("created_at desc").Limit(200).Find(&bookings)
	return c.JSON(bookings)
}
