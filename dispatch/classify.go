package dispatch

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

// Store errors are classified into a closed {transient, permanent} set at the
// collaborator boundary. Only transient errors are worth retrying; in
// particular a permission failure is a misconfiguration, not flakiness, and
// retrying it would only mask the problem.
func isTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", // serialization_failure
			"40P01", // deadlock_detected
			"53300", // too_many_connections
			"53400", // configuration_limit_exceeded
			"57P03", // cannot_connect_now
			"58000", // system_error
			"58030": // io_error
			return true
		}
		// Connection exceptions (class 08) resolve when the database comes back.
		if len(pgErr.Code) == 5 && pgErr.Code[:2] == "08" {
			return true
		}
		return false
	}

	if pgconn.SafeToRetry(err) {
		return true
	}

	return false
}
