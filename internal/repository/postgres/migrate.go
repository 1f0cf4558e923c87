package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"evrental-backend/internal/logger"
)

//go:embed schema.sql
var schema string

// Migrate creates any missing tables and indexes. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	logger.DatabaseCall("migrate", "schema.sql")
	if _, err := db.ExecContext(ctx, schema); err != nil {
		logger.DatabaseResult("migrate", 0, err)
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Info("Database schema is up to date")
	return nil
}
