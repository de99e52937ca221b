package database

import (
	"context"
	"database/sql"

	"github.com/okwera/fintrack/internal/database/repository"
)

// SeedDefaults ensures a settings row with the stock exchange rates exists
// for new databases. It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM settings").Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return repository.NewSettingsRepo(db).Save(ctx, repository.DefaultSettings())
}
