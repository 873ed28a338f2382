package core

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
)

// TxBeginner is satisfied by *sql.DB and *sqlx.DB.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type TransactionOption func(*sql.TxOptions)

func WithIsolationLevel(isolationLevel sql.IsolationLevel) TransactionOption {
	return func(opts *sql.TxOptions) {
		opts.Isolation = isolationLevel
	}
}

func WithReadOnly() TransactionOption {
	return func(opts *sql.TxOptions) {
		opts.ReadOnly = true
	}
}

// Tx runs transaction inside a database transaction, committing when it
// returns nil and rolling back otherwise. A panic inside transaction is
// rolled back and returned as an error.
func Tx(
	ctx context.Context,
	db TxBeginner,
	transaction func(context.Context, *sql.Tx) error,
	opts ...TransactionOption,
) (err error) {
	options := sql.TxOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	tx, err := db.BeginTx(ctx, &options)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}

		err = fmt.Errorf("transaction panicked with: %v", r)
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			err = errors.Wrap(err, rollbackErr.Error())
		}
	}()

	if err = transaction(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return errors.Wrap(err, rollbackErr.Error())
		}
		return err
	}

	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}
