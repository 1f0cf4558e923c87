package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"evrental-backend/internal/domain"
	"evrental-backend/internal/logger"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type txKey struct{}

// Postgres error codes that mean "the same transaction may succeed if retried".
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// TxOptions configures how transactions are opened.
type TxOptions struct {
	Isolation  sql.IsolationLevel
	MaxRetries int
}

type TxManager struct {
	db   *sql.DB
	opts TxOptions
}

func NewTxManager(db *sql.DB, opts TxOptions) *TxManager {
	if opts.Isolation == sql.LevelDefault {
		opts.Isolation = sql.LevelReadCommitted
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &TxManager{db: db, opts: opts}
}

// RunInTx runs fn in a transaction, retrying serialization failures and
// deadlocks up to MaxRetries times. A nested call joins the outer transaction.
func (tm *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	ctx, span := otel.Tracer("evrental-backend/postgres").Start(ctx, "postgres.RunInTx")
	defer span.End()

	var err error
	for attempt := 0; attempt <= tm.opts.MaxRetries; attempt++ {
		span.SetAttributes(attribute.Int("db.tx.attempt", attempt+1))
		err = tm.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		logger.Warn("Retrying transaction", "attempt", attempt+1, "error", err)
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "retries exhausted")
	if errors.Is(err, domain.ErrTransactionFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrTransactionFailure, err)
}

func (tm *TxManager) runOnce(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := tm.db.BeginTx(ctx, &sql.TxOptions{Isolation: tm.opts.Isolation})
	if err != nil {
		return fmt.Errorf("%w: begin: %w", domain.ErrTransactionFailure, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		// Rollback after a failed commit is a no-op.
		return fmt.Errorf("%w: commit: %w", domain.ErrTransactionFailure, err)
	}
	return nil
}

func retryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == codeSerializationFailure || pqErr.Code == codeDeadlockDetected
	}
	return false
}

// ParseIsolation maps a config value to a sql.IsolationLevel.
func ParseIsolation(level string) (sql.IsolationLevel, error) {
	switch level {
	case "", "read_committed":
		return sql.LevelReadCommitted, nil
	case "repeatable_read":
		return sql.LevelRepeatableRead, nil
	case "serializable":
		return sql.LevelSerializable, nil
	}
	return sql.LevelDefault, fmt.Errorf("unknown isolation level %q", level)
}
