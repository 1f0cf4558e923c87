package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	t.Run("applies schema", func(t *testing.T) {
		mock.ExpectExec(schema).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.NoError(t, Migrate(context.Background(), db))
	})

	t.Run("wraps failure", func(t *testing.T) {
		mock.ExpectExec(schema).WillReturnError(errors.New("permission denied"))
		err := Migrate(context.Background(), db)
		assert.ErrorContains(t, err, "apply schema")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchema_OptionalColumnsAreNullable(t *testing.T) {
	// Optional domain fields are bound as NULL, so their columns must accept it.
	for _, col := range []string{"txn_ref", "email", "actual_return_date", "settled_at", "assigned_rental_id", "tax_percent"} {
		line := regexp.MustCompile(`(?m)^\s+` + col + `\s+[A-Z].*$`).FindString(schema)
		require.NotEmpty(t, line, col)
		assert.NotContains(t, line, "NOT NULL", col)
	}
}
