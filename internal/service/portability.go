package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okwera/fintrack/internal/database"
	"github.com/okwera/fintrack/internal/database/repository"
)

// ErrInvalidImport is returned when an import payload fails the shape
// checks. Nothing is written in that case.
var ErrInvalidImport = errors.New("invalid import data")

const envelopeVersion = "1.0"

// Envelope is the JSON import/export payload.
type Envelope struct {
	Transactions []EnvelopeTransaction `json:"transactions"`
	Settings     EnvelopeSettings      `json:"settings"`
	ExportDate   time.Time             `json:"exportDate"`
	Version      string                `json:"version"`
	ExportID     string                `json:"exportId,omitempty"`
}

// EnvelopeTransaction mirrors repository.Transaction with JSON names.
type EnvelopeTransaction struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
}

// EnvelopeSettings mirrors repository.Settings with JSON names.
type EnvelopeSettings struct {
	BudgetCap     *decimal.Decimal           `json:"budgetCap"`
	BaseCurrency  string                     `json:"baseCurrency"`
	ExchangeRates map[string]decimal.Decimal `json:"exchangeRates"`
}

// Portability exports and imports the whole store as one JSON envelope.
type Portability struct {
	Transactions *repository.TransactionRepo
	Settings     *repository.SettingsRepo
}

func NewPortability(tr *repository.TransactionRepo, sr *repository.SettingsRepo) *Portability {
	return &Portability{Transactions: tr, Settings: sr}
}

// Export serializes the current collection and settings.
func (p *Portability) Export(ctx context.Context) ([]byte, error) {
	rows, err := p.Transactions.List(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := p.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	env := Envelope{
		Transactions: make([]EnvelopeTransaction, 0, len(rows)),
		Settings: EnvelopeSettings{
			BudgetCap:     settings.BudgetCap,
			BaseCurrency:  settings.BaseCurrency,
			ExchangeRates: settings.ExchangeRates,
		},
		ExportDate: database.Now(),
		Version:    envelopeVersion,
		ExportID:   uuid.NewString(),
	}
	for _, r := range rows {
		env.Transactions = append(env.Transactions, EnvelopeTransaction{
			ID:          r.ID,
			Description: r.Description,
			Amount:      r.Amount,
			Date:        r.Date,
			Category:    r.Category,
		})
	}
	return json.MarshalIndent(env, "", "  ")
}

// Import replaces the store with the envelope's contents. Every transaction
// must carry a non-empty description, category and date and a non-zero
// amount, or the whole import is rejected and the store is left untouched.
func (p *Portability) Import(ctx context.Context, data []byte) error {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if env.Transactions == nil {
		return fmt.Errorf("%w: missing transactions", ErrInvalidImport)
	}
	now := database.Now()
	rows := make([]repository.Transaction, 0, len(env.Transactions))
	for i, et := range env.Transactions {
		if et.Description == "" || et.Category == "" || et.Date == "" || et.Amount.IsZero() {
			return fmt.Errorf("%w: transaction %d is incomplete", ErrInvalidImport, i)
		}
		rows = append(rows, repository.Transaction{
			ID:          et.ID,
			Description: et.Description,
			Amount:      et.Amount,
			Date:        et.Date,
			Category:    et.Category,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if err := p.Transactions.ReplaceAll(ctx, rows); err != nil {
		return err
	}
	if env.Settings.BaseCurrency != "" {
		s := repository.Settings{
			BudgetCap:     env.Settings.BudgetCap,
			BaseCurrency:  env.Settings.BaseCurrency,
			ExchangeRates: env.Settings.ExchangeRates,
		}
		if s.ExchangeRates == nil {
			s.ExchangeRates = repository.DefaultSettings().ExchangeRates
		}
		if err := p.Settings.Save(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
