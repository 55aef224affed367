// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lazyconn

import (
	"context"
	"io"
)

// StatementDecorator forwards every Statement method to the statement it
// was built with. It satisfies Statement, so decorators can be stacked.
// Pointers given to BindParam and BindColumn are passed through untouched.
type StatementDecorator struct {
	stmt Statement
}

// NewStatementDecorator wraps an already prepared statement.
func NewStatementDecorator(stmt Statement) *StatementDecorator {
	return &StatementDecorator{stmt: stmt}
}

// Statement returns the wrapped statement.
func (d *StatementDecorator) Statement() Statement {
	return d.stmt
}

// Execute runs the wrapped statement.
func (d *StatementDecorator) Execute(ctx context.Context, params ...Params) error {
	return d.stmt.Execute(ctx, params...)
}

// Fetch returns the next row.
func (d *StatementDecorator) Fetch(mode ...FetchMode) (any, error) {
	return d.stmt.Fetch(mode...)
}

// FetchAll returns the remaining rows.
func (d *StatementDecorator) FetchAll(mode ...FetchMode) ([]any, error) {
	return d.stmt.FetchAll(mode...)
}

// FetchColumn returns one column of the next row.
func (d *StatementDecorator) FetchColumn(column int) (any, error) {
	return d.stmt.FetchColumn(column)
}

// FetchObject scans the next row into dest.
func (d *StatementDecorator) FetchObject(dest any) error {
	return d.stmt.FetchObject(dest)
}

// BindParam binds ref, read when the statement executes.
func (d *StatementDecorator) BindParam(param string, ref any, typ ...ParamType) error {
	return d.stmt.BindParam(param, ref, typ...)
}

// BindValue binds a value to a parameter.
func (d *StatementDecorator) BindValue(param string, value any, typ ...ParamType) error {
	return d.stmt.BindValue(param, value, typ...)
}

// BindColumn binds ref, written by Fetch with FetchBound.
func (d *StatementDecorator) BindColumn(column any, ref any) error {
	return d.stmt.BindColumn(column, ref)
}

// RowCount returns the rows affected by the last execution.
func (d *StatementDecorator) RowCount() int64 {
	return d.stmt.RowCount()
}

// ColumnCount returns the number of result columns.
func (d *StatementDecorator) ColumnCount() int {
	return d.stmt.ColumnCount()
}

// ColumnMeta describes a result column.
func (d *StatementDecorator) ColumnMeta(column int) (ColumnMeta, error) {
	return d.stmt.ColumnMeta(column)
}

// SetFetchMode sets the default fetch mode.
func (d *StatementDecorator) SetFetchMode(mode FetchMode, args ...any) error {
	return d.stmt.SetFetchMode(mode, args...)
}

// NextRowset advances to the next result set.
func (d *StatementDecorator) NextRowset() (bool, error) {
	return d.stmt.NextRowset()
}

// CloseCursor releases the current result set.
func (d *StatementDecorator) CloseCursor() error {
	return d.stmt.CloseCursor()
}

// ErrorCode returns the SQLSTATE of the last operation.
func (d *StatementDecorator) ErrorCode() string {
	return d.stmt.ErrorCode()
}

// ErrorInfo returns details of the last error.
func (d *StatementDecorator) ErrorInfo() ErrorInfo {
	return d.stmt.ErrorInfo()
}

// GetAttribute returns a statement attribute.
func (d *StatementDecorator) GetAttribute(attr Attribute) (any, error) {
	return d.stmt.GetAttribute(attr)
}

// SetAttribute sets a statement attribute.
func (d *StatementDecorator) SetAttribute(attr Attribute, value any) error {
	return d.stmt.SetAttribute(attr, value)
}

// DebugDumpParams writes the bound parameters to w.
func (d *StatementDecorator) DebugDumpParams(w io.Writer) error {
	return d.stmt.DebugDumpParams(w)
}

// QueryString returns the SQL text.
func (d *StatementDecorator) QueryString() string {
	return d.stmt.QueryString()
}

// Close closes the wrapped statement.
func (d *StatementDecorator) Close() error {
	return d.stmt.Close()
}

var _ Statement = (*StatementDecorator)(nil)
