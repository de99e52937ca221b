package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/okwera/fintrack/internal/database"
	"github.com/okwera/fintrack/internal/database/repository"
)

func seedOne(t *testing.T, repo *repository.TransactionRepo) repository.Transaction {
	t.Helper()
	now := database.Now()
	stored, err := repo.Insert(context.Background(), repository.Transaction{
		Description: "Coffee",
		Amount:      decimal.New(450, -2),
		Date:        "2024-06-01",
		Category:    "Food",
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	return stored
}

func TestExportShape(t *testing.T) {
	ctx := context.Background()
	txRepo, settingsRepo := testRepos(t)
	seedOne(t, txRepo)
	p := NewPortability(txRepo, settingsRepo)

	data, err := p.Export(ctx)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	require.Equal(t, "1.0", env.Version)
	require.NotEmpty(t, env.ExportID)
	require.False(t, env.ExportDate.IsZero())
	require.Len(t, env.Transactions, 1)
	require.Equal(t, "Coffee", env.Transactions[0].Description)
	require.Equal(t, "USD", env.Settings.BaseCurrency)
}

func TestImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	txRepo, settingsRepo := testRepos(t)
	seedOne(t, txRepo)
	p := NewPortability(txRepo, settingsRepo)

	data, err := p.Export(ctx)
	require.NoError(t, err)

	// import into a fresh store
	txRepo2, settingsRepo2 := testRepos(t)
	p2 := NewPortability(txRepo2, settingsRepo2)
	require.NoError(t, p2.Import(ctx, data))

	rows, err := txRepo2.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Coffee", rows[0].Description)
	require.True(t, rows[0].Amount.Equal(decimal.New(450, -2)))
}

func TestImportReplacesExisting(t *testing.T) {
	ctx := context.Background()
	txRepo, settingsRepo := testRepos(t)
	seedOne(t, txRepo)
	p := NewPortability(txRepo, settingsRepo)

	payload := `{
		"transactions": [
			{"id": 7, "description": "Imported", "amount": "3.00", "date": "2024-05-01", "category": "Bills"}
		],
		"settings": {"budgetCap": "500", "baseCurrency": "EUR", "exchangeRates": {"USD": "1", "EUR": "0.92"}},
		"exportDate": "2024-06-01T00:00:00Z",
		"version": "1.0"
	}`
	require.NoError(t, p.Import(ctx, []byte(payload)))

	rows, err := txRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, int64(7), rows[0].ID)

	s, err := settingsRepo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "EUR", s.BaseCurrency)
	require.NotNil(t, s.BudgetCap)
	require.True(t, s.BudgetCap.Equal(decimal.NewFromInt(500)))
}

func TestImportRejectsIncompleteRows(t *testing.T) {
	ctx := context.Background()
	txRepo, settingsRepo := testRepos(t)
	seedOne(t, txRepo)
	p := NewPortability(txRepo, settingsRepo)

	cases := []string{
		`{"settings": {}, "version": "1.0"}`,                                                                            // no transactions key
		`{"transactions": [{"id": 1, "description": "", "amount": "1", "date": "2024-01-01", "category": "Food"}]}`,      // empty description
		`{"transactions": [{"id": 1, "description": "x", "amount": "0", "date": "2024-01-01", "category": "Food"}]}`,     // zero amount
		`{"transactions": [{"id": 1, "description": "x", "amount": "1", "date": "", "category": "Food"}]}`,               // empty date
		`{"transactions": [{"id": 1, "description": "x", "amount": "1", "date": "2024-01-01", "category": ""}]}`,         // empty category
		`not json`,
	}
	for _, c := range cases {
		require.ErrorIs(t, p.Import(ctx, []byte(c)), ErrInvalidImport, "payload %s", c)
	}

	// the existing collection survives every rejected import
	rows, err := txRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Coffee", rows[0].Description)
}
