// Package service holds the application operations the UI calls into.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/okwera/fintrack/internal/database"
	"github.com/okwera/fintrack/internal/database/repository"
	"github.com/okwera/fintrack/internal/validate"
)

// ValidationError carries per-field validation messages for a rejected
// transaction. The store is never touched when one is returned.
type ValidationError struct {
	Fields validate.Errors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, msg))
	}
	return "invalid transaction: " + strings.Join(parts, "; ")
}

// Tracker implements the transaction operations.
type Tracker struct {
	Transactions *repository.TransactionRepo
	Rules        validate.Rules
	Log          zerolog.Logger
}

func NewTracker(repo *repository.TransactionRepo, rules validate.Rules, log zerolog.Logger) *Tracker {
	return &Tracker{Transactions: repo, Rules: rules, Log: log}
}

// List returns the collection. A read failure degrades to an empty list so
// the UI always has something to render; the cause lands in the log.
func (t *Tracker) List(ctx context.Context) []repository.Transaction {
	rows, err := t.Transactions.List(ctx)
	if err != nil {
		t.Log.Warn().Err(err).Msg("listing transactions failed, starting empty")
		return nil
	}
	return rows
}

// Get returns one transaction, or nil when the id is absent.
func (t *Tracker) Get(ctx context.Context, id int64) (*repository.Transaction, error) {
	return t.Transactions.Get(ctx, id)
}

// Add validates in and stores it as a new transaction.
func (t *Tracker) Add(ctx context.Context, in validate.Input) (repository.Transaction, error) {
	if errs := t.Rules.Transaction(in); len(errs) > 0 {
		return repository.Transaction{}, &ValidationError{Fields: errs}
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
	if err != nil {
		return repository.Transaction{}, fmt.Errorf("parse amount: %w", err)
	}
	now := database.Now()
	row := repository.Transaction{
		Description: strings.TrimSpace(in.Description),
		Amount:      amount,
		Date:        strings.TrimSpace(in.Date),
		Category:    strings.TrimSpace(in.Category),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	stored, err := t.Transactions.Insert(ctx, row)
	if err != nil {
		return repository.Transaction{}, err
	}
	t.Log.Info().Int64("id", stored.ID).Str("category", stored.Category).Msg("transaction added")
	return stored, nil
}

// Update validates in and rewrites the transaction with the given id,
// keeping its creation timestamp.
func (t *Tracker) Update(ctx context.Context, id int64, in validate.Input) (repository.Transaction, error) {
	if errs := t.Rules.Transaction(in); len(errs) > 0 {
		return repository.Transaction{}, &ValidationError{Fields: errs}
	}
	existing, err := t.Transactions.Get(ctx, id)
	if err != nil {
		return repository.Transaction{}, err
	}
	if existing == nil {
		return repository.Transaction{}, repository.ErrNotFound
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
	if err != nil {
		return repository.Transaction{}, fmt.Errorf("parse amount: %w", err)
	}
	row := repository.Transaction{
		ID:          id,
		Description: strings.TrimSpace(in.Description),
		Amount:      amount,
		Date:        strings.TrimSpace(in.Date),
		Category:    strings.TrimSpace(in.Category),
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   database.Now(),
	}
	if err := t.Transactions.Update(ctx, row); err != nil {
		return repository.Transaction{}, err
	}
	t.Log.Info().Int64("id", id).Msg("transaction updated")
	return row, nil
}

// Delete removes the transaction with the given id.
func (t *Tracker) Delete(ctx context.Context, id int64) error {
	if err := t.Transactions.Delete(ctx, id); err != nil {
		return err
	}
	t.Log.Info().Int64("id", id).Msg("transaction deleted")
	return nil
}
