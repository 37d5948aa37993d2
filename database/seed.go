package database

import (
	"log"

	"somnus_tickets/config"
	"somnus_tickets/constants"
	"somnus_tickets/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func SeedData(db *gorm.DB) {
	password := config.ConfigDefault("ADMIN_PASSWORD", "cambiame123")
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		log.Println("failed to hash seed admin password:", err)
		return
	}

	accounts := []model.Account{
		{Username: "admin", Password: string(bytes), Active: true, Role: constants.ROLE_ADMIN},
	}

	for _, account := range accounts {
		if err := db.Where(model.Account{Username: account.Username}).FirstOrCreate(&account).Error; err != nil {
			log.Println("failed to seed account:", account.Username, "error:", err)
		}
	}
}
