package main

import (
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"mfbrokers/internal/config"
	"mfbrokers/internal/db"
	"mfbrokers/internal/model"
)

const (
	demoEmail    = "demo@mfbrokers.local"
	demoPassword = "password1"
)

// Seeds a verified demo user with a couple of holdings for local development.
func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Investment{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), 10)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	user := model.User{
		Email:        demoEmail,
		PasswordHash: string(hash),
		IsVerified:   true,
	}
	if err := gormDB.Where("email = ?", demoEmail).FirstOrCreate(&user).Error; err != nil {
		log.Fatalf("Failed to seed demo user: %v", err)
	}
	log.Printf("Demo user ready: %s (id=%d)", user.Email, user.ID)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	holdings := []model.Investment{
		{
			UserID:           user.ID,
			SchemeCode:       119551,
			SchemeName:       "Aditya Birla Sun Life Banking & PSU Debt Fund - DIRECT - IDCW",
			Units:            10,
			BuyPrice:         decimal.NewFromFloat(103.2541),
			CurrentPrice:     decimal.NewFromFloat(103.2541),
			TransactionDate:  today,
			MutualFundFamily: "Aditya Birla Sun Life Mutual Fund",
		},
		{
			UserID:           user.ID,
			SchemeCode:       120437,
			SchemeName:       "ICICI Prudential Corporate Bond Fund - Direct Plan - Growth",
			Units:            25,
			BuyPrice:         decimal.NewFromFloat(28.1135),
			CurrentPrice:     decimal.NewFromFloat(28.1135),
			TransactionDate:  today,
			MutualFundFamily: "ICICI Prudential Mutual Fund",
		},
	}

	seeded := 0
	for i := range holdings {
		res := gormDB.Where("user_id = ? AND scheme_code = ?", user.ID, holdings[i].SchemeCode).
			FirstOrCreate(&holdings[i])
		if res.Error != nil {
			log.Fatalf("Failed to seed holding %d: %v", holdings[i].SchemeCode, res.Error)
		}
		seeded += int(res.RowsAffected)
	}
	log.Printf("Seed complete: %d holdings created", seeded)
}
