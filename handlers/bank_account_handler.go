package handlers

import (
	"errors"

	"github.com/anjiri1684/consult_marketplace/database"
	"github.com/anjiri1684/consult_marketplace/models"
	"github.com/anjiri1684/consult_marketplace/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AddBankAccountRequest struct {
	AccountHolderName string `json:"account_holder_name" validate:"required,min=3"`
	AccountNumber     string `json:"account_number" validate:"required,min=9,max=18"`
	IFSCCode          string `json:"ifsc_code" validate:"required,len=11"`
	BankName          string `json:"bank_name" validate:"required"`
}

func AddBankAccount(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	providerID, _ := uuid.Parse(claims["user_id"].(string))

	var req AddBankAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	account := models.BankAccount{
		ProviderID:         providerID,
		AccountHolderName:  req.AccountHolderName,
		AccountNumber:      req.AccountNumber,
		IFSCCode:           req.IFSCCode,
		BankName:           req.BankName,
		VerificationStatus: models.BankVerificationPending,
	}
	if err := database.DB.Create(&account).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save bank account"})
	}

	return c.Status(fiber.StatusCreated).JSON(account)
}

func GetMyBankAccounts(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	providerID, _ := uuid.Parse(claims["user_id"].(string))

	var accounts []models.BankAccount
	database.DB.Where("provider_id = ?", providerID).Order("created_at desc").Find(&accounts)
	return c.JSON(accounts)
}

func ListPendingBankAccounts(c *fiber.Ctx) error {
	var accounts []models.BankAccount
	database.DB.
		Preload("Provider").
		Where("verification_status = ?", models.BankVerificationPending).
		Order("created_at asc").
		Find(&accounts)
	return c.JSON(accounts)
}

// SendPennyTest kicks off verification for a pending bank account. The
// generated amount is deposited through the gateway and kept server side
// only.
func SendPennyTest(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	staffID, _ := uuid.Parse(claims["user_id"].(string))
	accountID, err := uuid.Parse(c.Params("accountId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid account ID"})
	}

	account, err := services.SendPennyTest(database.DB, accountID, staffID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBankAccountNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bank account not found"})
		case errors.Is(err, services.ErrPennyTestAlreadyPending):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A penny test is already pending on this account"})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"message": "Penny test initiated.", "account": account})
}

type VerifyPennyRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

func VerifyPennyAmount(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	providerID, _ := uuid.Parse(claims["user_id"].(string))
	accountID, err := uuid.Parse(c.Params("accountId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid account ID"})
	}

	var req VerifyPennyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	account, err := services.VerifyPennyAmount(database.DB, accountID, providerID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBankAccountNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bank account not found"})
		case errors.Is(err, services.ErrPennyAttemptsExhausted):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Verification attempts exhausted. This bank account has been rejected."})
		case errors.Is(err, services.ErrPennyTestNotSent):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No penny test is pending on this account"})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"message": "Bank account verified successfully.", "account": account})
}

func DeleteBankAccount(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	providerID, _ := uuid.Parse(claims["user_id"].(string))
	accountID, err := uuid.Parse(c.Params("accountId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid account ID"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var account models.BankAccount
		if err := tx.First(&account, "id = ? AND provider_id = ?", accountID, providerID).Error; err != nil {
			return services.ErrBankAccountNotFound
		}

		var live int64
		tx.Model(&models.Payout{}).
			Where("bank_account_id = ? AND status IN ?", account.ID,
				[]string{models.PayoutStatusRequested, models.PayoutStatusApproved, models.PayoutStatusProcessing}).
			Count(&live)
		if live > 0 {
			return errors.New("cannot delete a bank account with payouts in flight")
		}

		return tx.Delete(&account).Error
	})
	if err != nil {
		if errors.Is(err, services.ErrBankAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bank account not found"})
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Bank account removed."})
}
