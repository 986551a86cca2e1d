package database

import (
	"log"

	"gym_booking/config"
	"gym_booking/model"

	"gorm.io/gorm"
)

func SeedData(db *gorm.DB, cfg *config.Config) {
	accounts := []model.Account{
		{Username: cfg.AdminUsername, Email: cfg.AdminEmail, Role: model.RoleAdmin},
	}
	for _, account := range accounts {
		// create only when missing
		if err := db.Where(model.Account{Username: account.Username}).FirstOrCreate(&account).Error; err != nil {
			log.Println("failed to seed data for account:", account.Username, "error:", err)
		}
	}

	trainers := []model.Trainer{
		{Name: "Anna Kowalska", Specialization: "Yoga and mobility"},
		{Name: "Marco Bianchi", Specialization: "Strength training"},
		{Name: "Lena Fischer", Specialization: "High intensity interval training"},
	}
	for _, trainer := range trainers {
		if err := db.Where(model.Trainer{Name: trainer.Name}).FirstOrCreate(&trainer).Error; err != nil {
			log.Println("failed to seed data for trainer:", trainer.Name, "error:", err)
		}
	}
}
