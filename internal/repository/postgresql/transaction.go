package postgresql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// ErrNoTransaction is returned by WithSavepoint when ctx carries no transaction.
var ErrNoTransaction = errors.New("no transaction in context")

// WithTransaction executes fn inside a database transaction
func WithTransaction(ctx context.Context, db *database.DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	return finish(ctx, tx, fn)
}

// WithSavepoint runs fn inside a savepoint of the transaction carried by ctx.
// On error only the savepoint is rolled back; the outer transaction stays usable.
func WithSavepoint(ctx context.Context, fn func(tx pgx.Tx) error) error {
	outer, ok := ctx.Value("tx").(pgx.Tx)
	if !ok {
		return ErrNoTransaction
	}
	sp, err := outer.Begin(ctx)
	if err != nil {
		return fmt.Errorf("create savepoint: %w", err)
	}
	return finish(ctx, sp, fn)
}

func finish(ctx context.Context, tx pgx.Tx, fn func(tx pgx.Tx) error) error {
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				slog.Error("rollback error during panic recovery", "error", rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetQuerier returns either transaction or pool
// Used in repositories to support both transactional and non-transactional operations
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := ctx.Value("tx").(pgx.Tx); ok {
		return tx
	}
	return db.Pool
}

type transactor struct {
	db *database.DB
}

func NewTransactor(db *database.DB) timesheet.Transactor {
	return &transactor{db: db}
}

// WithinTransaction implements timesheet.Transactor.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTransaction(ctx, t.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		return fn(txCtx)
	})
}

// WithinSavepoint implements timesheet.Transactor.
func (t *transactor) WithinSavepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithSavepoint(ctx, func(tx pgx.Tx) error {
		spCtx := context.WithValue(ctx, "tx", tx)
		return fn(spCtx)
	})
}
