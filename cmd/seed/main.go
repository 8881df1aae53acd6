package main

import (
	"log"
	"time"

	"secureweb-backend/shared/config"
	"secureweb-backend/shared/database"
	"secureweb-backend/shared/database/models"
	utils "secureweb-backend/shared/utils/auth"
)

func main() {
	log.Println("🌱 Starting database seeding...")

	// Load configuration
	config.LoadConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	db := database.GetDB()

	var count int64
	db.Model(&models.Account{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		log.Println("✅ Admin account already exists - nothing to do")
		return
	}

	hashedPassword, err := utils.HashPassword("admin123")
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin := models.Account{
		Username:     "admin",
		Email:        "admin@secureweb.dev",
		Password:     hashedPassword,
		Role:         "admin",
		RegisterTime: time.Now(),
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create admin account: %v", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	log.Println("💡 Default admin credentials: admin / admin123 (change them)")
}
