package db

import (
	"context"
	"database/sql"
	"time"
)

// TxOptions is the isolation every seat-mutating transaction runs at.
// Combined with FOR UPDATE it keeps the locked seat set phantom-free.
var TxOptions = &sql.TxOptions{Isolation: sql.LevelRepeatableRead}

// Bound applies the statement timeout to ctx. A zero timeout leaves ctx
// untouched.
func Bound(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// WithTx runs fn inside one transaction. Any error from fn, or a panic,
// rolls the transaction back; nothing fn wrote survives.
func WithTx(ctx context.Context, conn *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := conn.BeginTx(ctx, TxOptions)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
