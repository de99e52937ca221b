package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents one recorded spending event.
type Transaction struct {
	ID          int64
	Description string
	Amount      decimal.Decimal
	Date        string // YYYY-MM-DD
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Settings holds user-level configuration stored alongside transactions:
// budget cap, base display currency and the exchange-rate table. Rates are
// expressed relative to USD (rate 1 for USD itself).
type Settings struct {
	BudgetCap     *decimal.Decimal
	BaseCurrency  string
	ExchangeRates map[string]decimal.Decimal
}

// DefaultSettings returns the settings a fresh store starts with: no budget
// cap, USD display, and the stock rate table.
func DefaultSettings() Settings {
	return Settings{
		BaseCurrency: "USD",
		ExchangeRates: map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(1),
			"EUR": decimal.New(92, -2),
			"RWF": decimal.NewFromInt(1250),
		},
	}
}
