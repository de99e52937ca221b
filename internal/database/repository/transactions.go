package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when an id does not exist in the store.
var ErrNotFound = errors.New("transaction not found")

// TransactionRepo handles transaction rows.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const txColumns = "id, description, amount, date_iso, category, created_at, updated_at"

// List returns the whole collection, newest date first.
func (r *TransactionRepo) List(ctx context.Context) ([]Transaction, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+txColumns+" FROM transactions ORDER BY date_iso DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get returns one transaction, or nil when the id is absent.
func (r *TransactionRepo) Get(ctx context.Context, id int64) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+txColumns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Insert stores t under the next free id and returns the stored row. The id
// comes from MAX(id)+1 inside the same transaction, so identifiers stay
// unique without any ambient counter state.
func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) (Transaction, error) {
	err := withTx(r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) + 1 FROM transactions").Scan(&t.ID); err != nil {
			return fmt.Errorf("next id: %w", err)
		}
		return insertRow(ctx, tx, t)
	})
	if err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// Update rewrites the mutable fields of the row with t.ID. The id and
// created_at columns are never touched; callers set UpdatedAt.
func (r *TransactionRepo) Update(ctx context.Context, t Transaction) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET description = ?, amount = ?, date_iso = ?, category = ?, updated_at = ? WHERE id = ?",
		t.Description, t.Amount.String(), t.Date, t.Category, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the row with the given id.
func (r *TransactionRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceAll swaps the whole collection in one transaction. Ids are kept as
// given; a duplicate id fails the statement and rolls the swap back, leaving
// the prior collection untouched.
func (r *TransactionRepo) ReplaceAll(ctx context.Context, list []Transaction) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM transactions"); err != nil {
			return fmt.Errorf("clear transactions: %w", err)
		}
		for _, t := range list {
			if err := insertRow(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertRow(ctx context.Context, tx *sql.Tx, t Transaction) error {
	_, err := tx.ExecContext(ctx, "INSERT INTO transactions("+txColumns+") VALUES(?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.Description, t.Amount.String(), t.Date, t.Category, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction %d: %w", t.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(rs rowScanner) (Transaction, error) {
	var t Transaction
	var amount string
	if err := rs.Scan(&t.ID, &t.Description, &amount, &t.Date, &t.Category, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return Transaction{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	t.Amount = a
	return t, nil
}
