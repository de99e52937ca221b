package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// SettingsRepo handles the single settings row and its exchange rates.
type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Get returns stored settings, falling back to DefaultSettings when nothing
// has been saved yet. Callers always receive a usable Settings value.
func (r *SettingsRepo) Get(ctx context.Context) (Settings, error) {
	s := DefaultSettings()
	var capStr sql.NullString
	err := r.db.QueryRowContext(ctx, "SELECT budget_cap, base_currency FROM settings WHERE id = 1").Scan(&capStr, &s.BaseCurrency)
	if errors.Is(err, sql.ErrNoRows) {
		return s, nil
	}
	if err != nil {
		return DefaultSettings(), fmt.Errorf("load settings: %w", err)
	}
	if capStr.Valid {
		v, err := decimal.NewFromString(capStr.String)
		if err != nil {
			return DefaultSettings(), fmt.Errorf("parse stored budget cap %q: %w", capStr.String, err)
		}
		s.BudgetCap = &v
	}

	rows, err := r.db.QueryContext(ctx, "SELECT code, rate FROM exchange_rates")
	if err != nil {
		return DefaultSettings(), fmt.Errorf("load exchange rates: %w", err)
	}
	defer rows.Close()

	rates := map[string]decimal.Decimal{}
	for rows.Next() {
		var code, rate string
		if err := rows.Scan(&code, &rate); err != nil {
			return DefaultSettings(), fmt.Errorf("scan exchange rate: %w", err)
		}
		v, err := decimal.NewFromString(rate)
		if err != nil {
			return DefaultSettings(), fmt.Errorf("parse stored rate %q for %s: %w", rate, code, err)
		}
		rates[code] = v
	}
	if err := rows.Err(); err != nil {
		return DefaultSettings(), err
	}
	if len(rates) > 0 {
		s.ExchangeRates = rates
	}
	return s, nil
}

// Save writes settings wholesale: the settings row is upserted and the rate
// table replaced in one transaction.
func (r *SettingsRepo) Save(ctx context.Context, s Settings) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		var capStr any
		if s.BudgetCap != nil {
			capStr = s.BudgetCap.String()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO settings(id, budget_cap, base_currency) VALUES(1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET budget_cap = excluded.budget_cap, base_currency = excluded.base_currency`,
			capStr, s.BaseCurrency)
		if err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM exchange_rates"); err != nil {
			return fmt.Errorf("clear exchange rates: %w", err)
		}
		for code, rate := range s.ExchangeRates {
			if _, err := tx.ExecContext(ctx, "INSERT INTO exchange_rates(code, rate) VALUES(?, ?)", code, rate.String()); err != nil {
				return fmt.Errorf("save exchange rate %s: %w", code, err)
			}
		}
		return nil
	})
}
