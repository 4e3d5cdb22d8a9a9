package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"osapio-backend/internal/shared/apperr"
)

// Classify wraps a query error for op. Errors that mean the database could
// not be reached become apperr.ErrUnavailable; the rest stay internal.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if Unreachable(err) {
		return apperr.Wrap(apperr.ErrUnavailable, fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Unreachable reports whether err is a connection-class failure.
func Unreachable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
