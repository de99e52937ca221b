package testdata

import (
	"context"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okwera/fintrack/internal/database"
	"github.com/okwera/fintrack/internal/database/repository"
	"github.com/okwera/fintrack/internal/validate"
)

// Seed inserts a handful of sample transactions spread over the last month.
func Seed(ctx context.Context, repo *repository.TransactionRepo) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	descs := []string{
		"Groceries at the market",
		"Bus ticket downtown",
		"Movie night",
		"Textbook for class",
		"New headphones",
		"Electricity bill",
		"Pharmacy run",
		"Coffee with friends",
	}

	now := time.Now()
	for i := 0; i < 20; i++ {
		cents := int64(rng.Intn(15000) + 100)
		t := repository.Transaction{
			Description: descs[rng.Intn(len(descs))],
			Amount:      decimal.New(cents, -2),
			Date:        now.AddDate(0, 0, -rng.Intn(30)).Format("2006-01-02"),
			Category:    validate.Categories[rng.Intn(len(validate.Categories))],
			CreatedAt:   database.Now(),
			UpdatedAt:   database.Now(),
		}
		if _, err := repo.Insert(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
