package repositories

import (
	"context"
	"database/sql/driver"
	stderrors "errors"

	"seatbooking/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
	mysqlErrDuplicateEntry  = 1062
)

// classify turns a driver error into a domain error. Errors that are
// already typed pass through untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.KindOf(err) != domain.KindInternal || domain.IsInternal(err) {
		return err
	}

	wrapped := errors.Wrap(err, op)
	if stderrors.Is(err, context.DeadlineExceeded) ||
		stderrors.Is(err, context.Canceled) ||
		stderrors.Is(err, driver.ErrBadConn) ||
		stderrors.Is(err, mysql.ErrInvalidConn) {
		return domain.TransientError{Op: op, Err: wrapped}
	}

	var me *mysql.MySQLError
	if stderrors.As(err, &me) {
		switch me.Number {
		case mysqlErrLockWaitTimeout, mysqlErrDeadlock:
			return domain.TransientError{Op: op, Err: wrapped}
		case mysqlErrDuplicateEntry:
			return domain.ConflictError{Resource: op, Msg: "duplicate entry", Err: wrapped}
		}
	}
	return domain.InternalError{Msg: op + " failed", Err: wrapped}
}
