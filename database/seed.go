package database

import (
	"errors"
	"strings"

	"github.com/yeremiapane/restaurant-reservation/models"
	"github.com/yeremiapane/restaurant-reservation/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var defaultTables = []models.Table{
	{TableNumber: 1, Capacity: 2, IsAvailable: true, Location: "Window"},
	{TableNumber: 2, Capacity: 2, IsAvailable: true, Location: "Window"},
	{TableNumber: 3, Capacity: 4, IsAvailable: true, Location: "Main hall"},
	{TableNumber: 4, Capacity: 4, IsAvailable: true, Location: "Main hall"},
	{TableNumber: 5, Capacity: 6, IsAvailable: true, Location: "Main hall"},
	{TableNumber: 6, Capacity: 8, IsAvailable: true, Location: "Private room"},
}

// Seed creates the first admin account and a starter floor plan. Both steps
// are skipped when data already exists, so it is safe on every start.
func Seed(db *gorm.DB, adminEmail, adminPassword string) error {
	if err := seedAdmin(db, adminEmail, adminPassword); err != nil {
		return err
	}
	return seedTables(db)
}

func seedAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		utils.InfoLogger.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing models.User
	err := db.Where("role = ?", models.RoleAdmin).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:     "Administrator",
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	utils.InfoLogger.Printf("Seeded admin account %s", email)
	return nil
}

func seedTables(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Table{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	tables := make([]models.Table, len(defaultTables))
	copy(tables, defaultTables)
	if err := db.Create(&tables).Error; err != nil {
		return err
	}
	utils.InfoLogger.Printf("Seeded %d tables", len(tables))
	return nil
}
