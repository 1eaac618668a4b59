//go:build ignore

package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hugh/hr-manager/internal/api/validation"
	"github.com/hugh/hr-manager/internal/auth"
	"github.com/hugh/hr-manager/internal/database"
	"github.com/hugh/hr-manager/internal/database/models"
	"github.com/hugh/hr-manager/pkg/config"
	"github.com/hugh/hr-manager/pkg/util"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env, "seed")

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	email := models.NormalizeEmail(os.Getenv("ADMIN_EMAIL"))
	password := os.Getenv("ADMIN_PASSWORD")
	nom := os.Getenv("ADMIN_NOM")
	prenom := os.Getenv("ADMIN_PRENOM")

	if email == "" || password == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}
	if ok, msg := validation.IsValidPassword(password); !ok {
		log.Fatalf("ADMIN_PASSWORD: %s", msg)
	}
	if nom == "" {
		nom = "Admin"
	}
	if prenom == "" {
		prenom = "Super"
	}

	var existing models.User
	err = db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		fmt.Printf("Admin user already exists: %s\n", email)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("failed to look up admin user: %v", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	admin := &models.User{
		Nom:          nom,
		Prenom:       prenom,
		Email:        email,
		Role:         models.RoleSuperAdmin,
		PasswordHash: hash,
		Active:       true,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Fatalf("failed to create admin user: %v", err)
	}

	fmt.Printf("Super Admin created successfully!\n")
	fmt.Printf("ID: %d\n", admin.ID)
	fmt.Printf("Email: %s\n", admin.Email)
}
