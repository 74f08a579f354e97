// Command seed fills the lawyer directory with demo lawyers, their login
// accounts and one client account. Re-running it replaces the same documents.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"lawdesk/config"
	"lawdesk/database"
	"lawdesk/models"
	"lawdesk/utils"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var specializations = []string{"family", "criminal", "property", "corporate", "tax"}

var cities = []string{"Bengaluru", "Mumbai", "Delhi", "Chennai"}

// directory builds perSpecialization lawyers for every specialization. Every
// fourth lawyer has no fee set and is charged the default.
func directory(perSpecialization int, passwordHash string, now time.Time) ([]models.Lawyer, []models.Account) {
	var lawyers []models.Lawyer
	var accounts []models.Account
	n := 1
	for _, spec := range specializations {
		for i := 0; i < perSpecialization; i++ {
			fee := decimal.NewFromInt(int64(300 + 100*(n%6)))
			if n%4 == 0 {
				fee = decimal.Zero
			}
			lawyer := models.Lawyer{
				LawyerID:        fmt.Sprintf("lawyer-%d", n),
				AccountID:       fmt.Sprintf("acc-lawyer-%d", n),
				Name:            fmt.Sprintf("Adv. %s Counsel %d", spec, n),
				Email:           fmt.Sprintf("lawyer%d@example.com", n),
				Specialization:  spec,
				Experience:      2 + n%15,
				City:            cities[n%len(cities)],
				ConsultationFee: fee,
				Status:          "online",
				Verified:        n%5 != 0,
				CreatedAt:       now,
			}
			lawyers = append(lawyers, lawyer)
			accounts = append(accounts, models.Account{
				ID:           lawyer.AccountID,
				Email:        lawyer.Email,
				Name:         lawyer.Name,
				PasswordHash: passwordHash,
				Role:         models.RoleLawyer,
				LawyerID:     lawyer.LawyerID,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
			n++
		}
	}
	accounts = append(accounts, models.Account{
		ID:           "acc-client-1",
		Email:        "client@example.com",
		Name:         "Demo Client",
		PasswordHash: passwordHash,
		Role:         models.RoleClient,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	return lawyers, accounts
}

func main() {
	perSpec := flag.Int("per-specialization", 4, "lawyers to create per specialization")
	password := flag.String("password", "$Password1234", "password for every seeded account")
	flag.Parse()

	config.LoadConfig()
	logger := utils.GetLogger()
	database.InitDB()

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("failed to hash password", zap.Error(err))
	}
	lawyers, accounts := directory(*perSpec, string(hashed), time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.DB()
	upsert := options.Replace().SetUpsert(true)
	for _, l := range lawyers {
		if _, err := db.Collection("lawyers").ReplaceOne(ctx, bson.M{"lawyer_id": l.LawyerID}, l, upsert); err != nil {
			logger.Fatal("failed to seed lawyer", zap.String("lawyerId", l.LawyerID), zap.Error(err))
		}
	}
	for _, a := range accounts {
		if _, err := db.Collection("accounts").ReplaceOne(ctx, bson.M{"id": a.ID}, a, upsert); err != nil {
			logger.Fatal("failed to seed account", zap.String("accountId", a.ID), zap.Error(err))
		}
	}
	logger.Info("seed complete", zap.Int("lawyers", len(lawyers)), zap.Int("accounts", len(accounts)))
}
