package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/datingapp/internal/common"
)

// Change is a single staged mutation waiting for the next Flush.
type Change struct {
	Query string
	Args  []any
}

// Tracker is the part of a unit of work handed to repositories. They read
// through it and stage mutations into it; flushing and committing stay with
// whoever opened the unit of work.
type Tracker interface {
	DBTX
	Stage(query string, args ...any)
}

// UnitOfWork is one database transaction plus the set of mutations staged
// against it but not yet flushed. It is not safe for concurrent use and is
// not reentrant: one logical operation owns one UnitOfWork.
//
// Before Begin (and after Commit/Rollback) the DBTX methods go straight to
// the connection pool.
type UnitOfWork struct {
	db      *sql.DB
	tx      *sql.Tx
	pending []Change
}

// NewUnitOfWork returns an idle unit of work over db.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Begin opens the transaction. Calling it while a transaction is already
// open returns common.ErrAlreadyInTransaction.
func (u *UnitOfWork) Begin(ctx context.Context, opts *sql.TxOptions) error {
	if u.tx != nil {
		return common.ErrAlreadyInTransaction
	}
	tx, err := u.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	u.tx = tx
	return nil
}

// InTransaction reports whether Begin succeeded and the transaction is
// still open.
func (u *UnitOfWork) InTransaction() bool {
	return u.tx != nil
}

// Stage appends a mutation to the pending change set.
func (u *UnitOfWork) Stage(query string, args ...any) {
	u.pending = append(u.pending, Change{Query: query, Args: args})
}

// HasPendingChanges reports whether anything was staged since the last
// successful Flush.
func (u *UnitOfWork) HasPendingChanges() bool {
	return len(u.pending) > 0
}

// Flush executes the staged mutations in order inside the transaction and
// reports whether at least one row was affected. The change set is cleared
// only when every statement succeeded.
func (u *UnitOfWork) Flush(ctx context.Context) (bool, error) {
	if u.tx == nil {
		return false, common.ErrNotInTransaction
	}

	var affected int64
	for _, c := range u.pending {
		res, err := u.tx.ExecContext(ctx, c.Query, c.Args...)
		if err != nil {
			return false, fmt.Errorf("flush: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("flush rows affected: %w", err)
		}
		affected += n
	}

	u.pending = nil
	return affected > 0, nil
}

// Commit commits the transaction. It is a no-op when Begin never
// succeeded. Mutations staged but never flushed are dropped.
func (u *UnitOfWork) Commit() error {
	if u.tx == nil {
		return nil
	}
	tx := u.tx
	u.tx = nil
	u.pending = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards the pending change set and rolls the transaction back.
// It is a no-op when nothing is open.
func (u *UnitOfWork) Rollback() error {
	u.pending = nil
	if u.tx == nil {
		return nil
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

func (u *UnitOfWork) handle() DBTX {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// ExecContext runs query immediately, inside the transaction when one is open.
func (u *UnitOfWork) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return u.handle().ExecContext(ctx, query, args...)
}

// QueryContext runs query inside the transaction when one is open.
func (u *UnitOfWork) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return u.handle().QueryContext(ctx, query, args...)
}

// QueryRowContext runs query inside the transaction when one is open.
func (u *UnitOfWork) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return u.handle().QueryRowContext(ctx, query, args...)
}

var _ Tracker = (*UnitOfWork)(nil)
