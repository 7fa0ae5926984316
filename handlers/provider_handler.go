package handlers

import (
	"errors"
	"time"

	"github.com/anjiri1684/consult_marketplace/database"
	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/anjiri1684/consult_marketplace/notifications"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProviderApplicationRequest struct {
	Headline       string `json:"headline" validate:"required,min=10"`
	Expertise      string `json:"expertise" validate:"required,min=10"`
	RatePerSession int64  `json:"rate_per_session" validate:"required,gt=0"`
}

// ApplyAsProvider turns a seeker account into a pending provider
// application. The role only flips to PROVIDER once staff approve.
func ApplyAsProvider(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req ProviderApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var existing models.Provider
	if err := database.DB.First(&existing, "user_id = ?", userID).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You have already applied as a provider"})
	}

	provider := models.Provider{
		UserID:         userID,
		Headline:       &req.Headline,
		Expertise:      &req.Expertise,
		RatePerSession: req.RatePerSession,
		Status:         models.ProviderStatusPending,
	}
	if err := database.DB.Create(&provider).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit application"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Application submitted. Our team will review it shortly.",
		"provider": provider,
	})
}

func ListPendingProviderApplications(c *fiber.Ctx) error {
	var applications []models.Provider
	database.DB.
		Preload("User").
		Where("status = ?", models.ProviderStatusPending).
		Order("created_at asc").
		Find(&applications)
	return c.JSON(applications)
}

type ReviewApplicationRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
}

// ReviewProviderApplication approves or rejects a pending application.
// Approval also promotes the user's role so provider-only routes open up.
func ReviewProviderApplication(c *fiber.Ctx) error {
	providerUserID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var req ReviewApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var provider models.Provider
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&provider, "user_id = ?", providerUserID).Error; err != nil {
			return err
		}
		if provider.Status != models.ProviderStatusPending {
			return errors.New("application has already been reviewed")
		}

		if req.Decision == "approve" {
			provider.Status = models.ProviderStatusActive
			if err := tx.Save(&provider).Error; err != nil {
				return err
			}
			return tx.Model(&models.User{}).
				Where("id = ?", providerUserID).
				Update("role", models.RoleProvider).Error
		}

		provider.Status = models.ProviderStatusRejected
		return tx.Save(&provider).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Application not found"})
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	go notifyApplicationDecision(providerUserID, req.Decision)

	return c.JSON(fiber.Map{"message": "Application reviewed.", "provider": provider})
}

func notifyApplicationDecision(userID uuid.UUID, decision string) {
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return
	}

	if decision == "approve" {
		notifications.SendEmail("", user.Email,
			"Your Provider Application Has Been Approved",
			"<h1>Congratulations!</h1><p>Your provider application has been approved. Set up your availability to start receiving bookings.</p>")
	} else {
		notifications.SendEmail("", user.Email,
			"Update on Your Provider Application",
			"<h1>Application Update</h1><p>Unfortunately we are unable to approve your provider application at this time.</p>")
	}
}

// BrowseProviders is the public catalogue of active providers.
func BrowseProviders(c *fiber.Ctx) error {
	query := database.DB.
		Preload("User").
		Where("status = ?", models.ProviderStatusActive)

	if expertise := c.Query("expertise"); expertise != "" {
		query = query.Where("expertise ILIKE ?", "%"+expertise+"%")
	}
	if maxRate := c.QueryInt("max_rate"); maxRate > 0 {
		query = query.Where("rate_per_session <= ?", maxRate)
	}

	var providers []models.Provider
	query.Order("rate_per_session asc").Find(&providers)
	return c.JSON(providers)
}

func GetProviderAvailability(c *fiber.Ctx) error {
	providerID, err := uuid.Parse(c.Params("providerId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid provider ID"})
	}

	var slots []models.AvailabilitySlot
	database.DB.
		Where("provider_id = ? AND status = ? AND start_time > ?",
			providerID, models.SlotStatusAvailable, time.Now()).
		Order("start_time asc").
		Find(&slots)
	return c.JSON(slots)
}

type CreateSlotRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

func CreateAvailabilitySlot(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	providerID, _ := uuid.Parse(claims["user_id"].(string))

	var req CreateSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if !req.EndTime.After(req.StartTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_time must be after start_time"})
	}
	if req.StartTime.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot create a slot in the past"})
	}

	var overlapping int64
	database.DB.Model(&models.AvailabilitySlot{}).
		Where("provider_id = ? AND start_time < ? AND end_time > ?",
			providerID, req.EndTime, req.StartTime).
		Count(&overlapping)
	if overlapping > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "This slot overlaps with an existing one"})
	}

	slot := models.AvailabilitySlot{
		ProviderID: providerID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Status:     models.SlotStatusAvailable,
	}
	if err := database.DB.Create(&slot).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create slot"})
	}

	return c.Status(fiber.StatusCreated).JSON(slot)
}

func GetMySlots(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	providerID, _ := uuid.Parse(claims["user_id"].(string))

	var slots []models.AvailabilitySlot
	database.DB.
		Where("provider_id = ?", providerID).
		Order("start_time asc").
		Find(&slots)
	return c.JSON(slots)
}

func DeleteAvailabilitySlot(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	providerID, _ := uuid.Parse(claims["user_id"].(string))
	slotID, err := uuid.Parse(c.Params("slotId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid slot ID"})
	}

	// Booked slots cannot be removed out from under the seeker.
	result := database.DB.
		Where("id = ? AND provider_id = ? AND status = ?", slotID, providerID, models.SlotStatusAvailable).
		Delete(&models.AvailabilitySlot{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete slot"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Slot not found or already booked"})
	}

	return c.JSON(fiber.Map{"message": "Slot removed."})
}

type UpdateProviderProfileRequest struct {
	Headline       *string `json:"headline,omitempty"`
	Expertise      *string `json:"expertise,omitempty"`
	RatePerSession *int64  `json:"rate_per_session,omitempty" validate:"omitempty,gt=0"`
}

func UpdateProviderProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	providerID, _ := uuid.Parse(claims["user_id"].(string))

	var req UpdateProviderProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var provider models.Provider
	if err := database.DB.First(&provider, "user_id = ?", providerID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Provider profile not found"})
	}

	if req.Headline != nil {
		provider.Headline = req.Headline
	}
	if req.Expertise != nil {
		provider.Expertise = req.Expertise
	}
	if req.RatePerSession != nil {
		// Rate changes apply to new bookings only; existing bookings keep
		// the amount captured at creation.
		provider.RatePerSession = *req.RatePerSession
	}

	if err := database.DB.Save(&provider).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update provider profile"})
	}

	return c.JSON(provider)
}
