// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lazyconn

import (
	"context"
	"io"
)

// Handle is a live database connection.
//
// A nil error from SetAttribute means the attribute was applied. Every
// method reports failures exactly as the underlying driver does.
type Handle interface {
	SetAttribute(ctx context.Context, attr Attribute, value any) error
	GetAttribute(ctx context.Context, attr Attribute) (any, error)
	InTransaction() bool
	BeginTransaction(ctx context.Context) error
	Commit() error
	RollBack() error
	ErrorCode() string
	ErrorInfo() ErrorInfo
	Exec(ctx context.Context, statement string) (int64, error)
	Prepare(ctx context.Context, statement string, options Options) (Statement, error)
	Quote(value string, typ ...ParamType) (string, error)
	LastInsertID(ctx context.Context, name string) (string, error)
	Query(ctx context.Context, statement string, args ...any) (Statement, error)
	Close() error
}

// Statement is a prepared statement and, after Execute, its current result.
//
// Parameters are identified by name (":id" or "id") or by 1-based position
// ("1", "2", ...). BindParam and BindColumn take pointers: BindParam reads
// through the pointer at Execute time and BindColumn writes through it on
// each Fetch in FetchBound mode.
type Statement interface {
	Execute(ctx context.Context, params ...Params) error
	Fetch(mode ...FetchMode) (any, error)
	FetchAll(mode ...FetchMode) ([]any, error)
	FetchColumn(column int) (any, error)
	FetchObject(dest any) error
	BindParam(param string, ref any, typ ...ParamType) error
	BindValue(param string, value any, typ ...ParamType) error
	BindColumn(column any, ref any) error
	RowCount() int64
	ColumnCount() int
	ColumnMeta(column int) (ColumnMeta, error)
	SetFetchMode(mode FetchMode, args ...any) error
	NextRowset() (bool, error)
	CloseCursor() error
	ErrorCode() string
	ErrorInfo() ErrorInfo
	GetAttribute(attr Attribute) (any, error)
	SetAttribute(attr Attribute, value any) error
	DebugDumpParams(w io.Writer) error
	QueryString() string
	Close() error
}

// Params is one parameter set for Statement.Execute.
type Params map[string]any

// ErrorInfo describes the last error on a handle or statement.
type ErrorInfo struct {
	SQLState   string // "00000" when there was no error
	DriverCode int
	Message    string
}

// ColumnMeta describes one column of a result set.
type ColumnMeta struct {
	Name      string
	DeclType  string
	Nullable  bool
	Precision int64
	Scale     int64
}
