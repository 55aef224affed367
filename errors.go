// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lazyconn

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrInTransaction is returned when serializing a connection that is
	// inside a transaction.
	ErrInTransaction = errors.New("cannot serialize in transaction")

	ErrNoTransaction        = errors.New("no active transaction")
	ErrTransactionActive    = errors.New("transaction already active")
	ErrReadOnlyAttribute    = errors.New("attribute is read-only")
	ErrUnsupportedAttribute = errors.New("unsupported attribute")
	ErrUnsupportedDriver    = errors.New("unsupported driver")
	ErrNoResultSet          = errors.New("statement has no result set")
	ErrInvalidValue         = errors.New("invalid attribute value")

	// ErrNoSource is returned by a Decorator or LazyConnection that was
	// not created by its constructor or restored with UnmarshalBinary.
	ErrNoSource = errors.New("no connection source")
)

const (
	// primary result code of SQLITE_CONSTRAINT
	sqliteConstraint = 19

	sqlStateOK         = "00000"
	sqlStateGeneral    = "HY000"
	sqlStateConstraint = "23000"
)

// SQLError is returned by handles and statements in ErrModeException.
type SQLError struct {
	SQLState string
	Code     int
	Message  string
	Err      error
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("SQLSTATE[%s]: %d %s", e.SQLState, e.Code, e.Message)
}

func (e *SQLError) Unwrap() error {
	return e.Err
}

// errorRecorder holds the last error and applies the error mode.
// Embedded by sqliteHandle and sqliteStatement.
type errorRecorder struct {
	info ErrorInfo
}

func (r *errorRecorder) ErrorCode() string {
	if r.info.SQLState == "" {
		return sqlStateOK
	}
	return r.info.SQLState
}

func (r *errorRecorder) ErrorInfo() ErrorInfo {
	info := r.info
	if info.SQLState == "" {
		info.SQLState = sqlStateOK
	}
	return info
}

func (r *errorRecorder) clearError() {
	r.info = ErrorInfo{SQLState: sqlStateOK}
}

// record stores err and returns it shaped by mode. A nil err clears the
// recorded state and returns nil.
func (r *errorRecorder) record(err error, mode ErrMode, logger *slog.Logger) error {
	if err == nil {
		r.clearError()
		return nil
	}
	code, msg := errorDetail(err)
	state := sqlStateGeneral
	if code&0xff == sqliteConstraint {
		state = sqlStateConstraint
	}
	r.info = ErrorInfo{SQLState: state, DriverCode: code, Message: msg}

	switch mode {
	case ErrModeWarning:
		logger.Warn("sql error", "sqlstate", state, "code", code, "error", msg)
	case ErrModeException:
		return &SQLError{SQLState: state, Code: code, Message: msg, Err: err}
	}
	return err
}
