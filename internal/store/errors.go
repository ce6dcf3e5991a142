// internal/store/errors.go
//
// Error taxonomy for the record store.
//
// Context
// -------
// Every store call returns an explicit outcome.  Callers branch with
// errors.Is against four sentinels:
//
//   - ErrStoreUnavailable – the backing store could not be reached.
//   - ErrValidation       – submitted fields were rejected (see
//     *ValidationError for the per-field detail).
//   - ErrNotFound         – update or delete targeted a missing id.
//   - ErrQuery            – malformed list request, a programming error.
//
// The wrapped driver error stays in the chain so logs keep the detail.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/yanizio/agenda/internal/metrics"
	"github.com/yanizio/agenda/internal/model"
)

var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("record not found")
	ErrQuery            = errors.New("query error")
)

// FieldError describes one rejected field.  Field is the JSON name.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError lists every rejected field of one submission.
type ValidationError struct {
	Kind   model.Kind   `json:"kind"`
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, ErrValidation, strings.Join(names, ", "))
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Field returns the error attached to name, if any.
func (e *ValidationError) Field(name string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldError{}, false
}

// MySQL error numbers that indicate a malformed statement rather than an
// unreachable server.
var mysqlQueryErrors = map[uint16]bool{
	1054: true, // unknown column
	1064: true, // syntax error
	1146: true, // table does not exist
}

// classify maps a driver error onto the store taxonomy.  sql.ErrNoRows
// becomes ErrNotFound; anything not recognised as a statement error is
// treated as the store being unavailable.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrQuery),
		errors.Is(err, ErrValidation), errors.Is(err, ErrStoreUnavailable):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) && mysqlQueryErrors[me.Number] {
		return fmt.Errorf("%w: %w", ErrQuery, err)
	}
	if isConnError(err) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "no such column") || strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "syntax error") {
		return fmt.Errorf("%w: %w", ErrQuery, err)
	}
	// Constraint and driver-internal failures: the store could not serve
	// the request either way.
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// isConnError recognises transport-level failures across drivers.
func isConnError(err error) bool {
	var ne net.Error
	return errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.As(err, &ne)
}

// Outcome returns the metrics label for a classified error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OK
	case errors.Is(err, ErrNotFound):
		return metrics.NotFound
	case errors.Is(err, ErrValidation):
		return metrics.Invalid
	case errors.Is(err, ErrQuery):
		return metrics.QueryError
	default:
		return metrics.Unavailable
	}
}
