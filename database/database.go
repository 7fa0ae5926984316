package database

import (
	"fmt"
	"log"

	config "github.com/anjiri1684/consult_marketplace/configs"
	"github.com/anjiri1684/consult_marketplace/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Provider{},
		&models.Wallet{},
		&models.AvailabilitySlot{},
		&models.Booking{},
		&models.Transaction{},
		&models.Session{},
		&models.Dispute{},
		&models.Payout{},
		&models.PayoutAuditLog{},
		&models.BankAccount{},
		&models.UnmatchedRequest{},
		&models.Conversation{},
		&models.Message{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		Email:           adminEmail,
		Password:        string(hashedPassword),
		Role:            models.RoleSuperAdmin,
		IsEmailVerified: true,
	}

	err = DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&adminUser).Error; err != nil {
			return err
		}
		profile := models.Profile{
			UserID:   adminUser.ID,
			FullName: config.Config("ADMIN_FULL_NAME"),
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		wallet := models.Wallet{UserID: adminUser.ID}
		return tx.Create(&wallet).Error
	})
	if err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}
