package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/osse101/ItemForge_Go/internal/domain"
)

// querier is satisfied by both the pool and an open transaction
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// translate maps driver errors onto domain sentinels. what names the row for messages.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s | %w", what, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case PgCodeLockNotAvailable:
			return fmt.Errorf("%s is held by another operation | %w", what, domain.ErrStaleItemState)
		case PgCodeSerializationFailure, PgCodeDeadlockDetected:
			return fmt.Errorf("%s: %s | %w", what, pgErr.Message, domain.ErrStaleItemState)
		case PgCodeCheckViolation:
			if pgErr.ConstraintName == ConstraintWalletNonNegative {
				return fmt.Errorf("%s | %w", what, domain.ErrInsufficientFunds)
			}
			return fmt.Errorf("%s: %s | %w", what, pgErr.Message, domain.ErrInvariantViolation)
		case PgCodeForeignKeyViolation:
			return fmt.Errorf("%s: %s | %w", what, pgErr.Message, domain.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}
