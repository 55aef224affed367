// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lazyconn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// binding is a value or pointer bound to a statement parameter.
type binding struct {
	value any
	ref   bool
	typ   *ParamType
}

// columnBinding is a pointer bound to a result column.
type columnBinding struct {
	name  string // empty when bound by number
	index int    // 0-based, -1 when bound by name
	ref   any
}

// sqliteStatement is a Statement prepared on a sqliteHandle.
type sqliteStatement struct {
	errorRecorder

	h           *sqliteHandle
	query       string
	stmt        *sqlx.Stmt
	returnsRows bool

	params  map[string]binding
	columns []columnBinding

	rows     *sqlx.Rows
	cols     []string
	colTypes []*sql.ColumnType
	affected int64

	fetchMode   FetchMode
	fetchColumn int
	attrs       Options
	closed      bool
}

func newStatement(h *sqliteHandle, query string, stmt *sqlx.Stmt) *sqliteStatement {
	st := &sqliteStatement{
		h:           h,
		query:       query,
		stmt:        stmt,
		returnsRows: returnsRows(query),
		params:      make(map[string]binding),
		fetchMode:   h.fetchMode,
		attrs:       make(Options),
	}
	st.clearError()
	return st
}

// returnsRows guesses from the SQL text whether the statement produces a
// result set.
func returnsRows(query string) bool {
	q := strings.ToUpper(strings.TrimLeft(query, " \t\r\n("))
	for _, kw := range []string{"SELECT", "WITH", "PRAGMA", "VALUES", "EXPLAIN"} {
		if strings.HasPrefix(q, kw) {
			return true
		}
	}
	return strings.Contains(q, "RETURNING")
}

func (st *sqliteStatement) check(err error) error {
	return st.record(err, st.h.errMode, st.h.logger)
}

// Execute runs the statement with params, or with the bound parameters
// when params is empty.
func (st *sqliteStatement) Execute(ctx context.Context, params ...Params) error {
	if len(params) > 1 {
		return st.check(fmt.Errorf("execute: %d parameter sets given, want at most one", len(params)))
	}
	var args []any
	var err error
	if len(params) == 1 && params[0] != nil {
		args, err = paramArgs(params[0])
	} else {
		args, err = st.boundArgs()
	}
	if err != nil {
		return st.check(err)
	}
	return st.execute(ctx, args)
}

func (st *sqliteStatement) execute(ctx context.Context, args []any) error {
	st.closeRows()
	st.affected = 0

	stmt := st.stmt
	if st.h.tx != nil {
		stmt = st.h.tx.StmtxContext(ctx, st.stmt)
	}

	if !st.returnsRows {
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return st.check(err)
		}
		if st.affected, err = res.RowsAffected(); err != nil {
			return st.check(err)
		}
		return st.check(nil)
	}

	rows, err := stmt.QueryxContext(ctx, args...)
	if err != nil {
		return st.check(err)
	}
	if err := st.setRows(rows); err != nil {
		return st.check(err)
	}
	return st.check(nil)
}

func (st *sqliteStatement) setRows(rows *sqlx.Rows) error {
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		rows.Close()
		return err
	}
	st.rows, st.cols, st.colTypes = rows, cols, types
	return nil
}

func (st *sqliteStatement) closeRows() {
	if st.rows != nil {
		st.rows.Close()
	}
	st.rows, st.cols, st.colTypes = nil, nil, nil
}

// paramKey normalizes a parameter identifier. Named parameters lose their
// leading ':'; positional ones must be 1 or more.
func paramKey(param string) (key string, pos int, err error) {
	name := strings.TrimPrefix(param, ":")
	if name == "" {
		return "", 0, fmt.Errorf("empty parameter name")
	}
	if n, err := strconv.Atoi(name); err == nil {
		if n < 1 {
			return "", 0, fmt.Errorf("parameter %q: positions start at 1", param)
		}
		return name, n, nil
	}
	return name, 0, nil
}

// paramArgs converts a parameter set into driver arguments.
func paramArgs(params Params) ([]any, error) {
	values := make(map[string]any, len(params))
	for k, v := range params {
		values[k] = v
	}
	return buildArgs(values)
}

// boundArgs reads the current value of every bound parameter.
func (st *sqliteStatement) boundArgs() ([]any, error) {
	values := make(map[string]any, len(st.params))
	for k, b := range st.params {
		v := b.value
		if b.ref {
			v = reflect.ValueOf(v).Elem().Interface()
		}
		if b.typ != nil {
			var err error
			if v, err = coerce(v, *b.typ); err != nil {
				return nil, fmt.Errorf("parameter %q: %w", k, err)
			}
		}
		values[k] = v
	}
	return buildArgs(values)
}

func buildArgs(values map[string]any) ([]any, error) {
	var named []any
	positional := make(map[int]any)
	for k, v := range values {
		key, pos, err := paramKey(k)
		if err != nil {
			return nil, err
		}
		if pos > 0 {
			positional[pos] = v
		} else {
			named = append(named, sql.Named(key, v))
		}
	}
	if len(named) > 0 && len(positional) > 0 {
		return nil, fmt.Errorf("mixed named and positional parameters")
	}
	if len(named) > 0 {
		return named, nil
	}
	args := make([]any, len(positional))
	for i := range args {
		v, ok := positional[i+1]
		if !ok {
			return nil, fmt.Errorf("missing positional parameter %d", i+1)
		}
		args[i] = v
	}
	return args, nil
}

// coerce converts v to the representation implied by typ.
func coerce(v any, typ ParamType) (any, error) {
	switch typ {
	case ParamNull:
		return nil, nil
	case ParamInt:
		switch x := v.(type) {
		case string:
			return strconv.ParseInt(x, 10, 64)
		case bool:
			if x {
				return int64(1), nil
			}
			return int64(0), nil
		}
	case ParamBool:
		switch x := v.(type) {
		case string:
			return strconv.ParseBool(x)
		case int:
			return x != 0, nil
		case int64:
			return x != 0, nil
		}
	case ParamStr:
		switch x := v.(type) {
		case nil, string:
			return x, nil
		case []byte:
			return string(x), nil
		default:
			return fmt.Sprint(x), nil
		}
	case ParamLOB:
		if s, ok := v.(string); ok {
			return []byte(s), nil
		}
	}
	return v, nil
}

func optionalType(typ []ParamType) (*ParamType, error) {
	switch len(typ) {
	case 0:
		return nil, nil
	case 1:
		t := typ[0]
		return &t, nil
	}
	return nil, fmt.Errorf("%d types given, want at most one", len(typ))
}

// BindParam binds ref, a non-nil pointer, to param. The pointed-to value
// is read each time the statement executes.
func (st *sqliteStatement) BindParam(param string, ref any, typ ...ParamType) error {
	rv := reflect.ValueOf(ref)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return st.check(fmt.Errorf("bind %q: need a non-nil pointer, got %T", param, ref))
	}
	return st.bind(param, binding{value: ref, ref: true}, typ)
}

func (st *sqliteStatement) BindValue(param string, value any, typ ...ParamType) error {
	return st.bind(param, binding{value: value}, typ)
}

func (st *sqliteStatement) bind(param string, b binding, typ []ParamType) error {
	key, _, err := paramKey(param)
	if err != nil {
		return st.check(err)
	}
	if b.typ, err = optionalType(typ); err != nil {
		return st.check(fmt.Errorf("bind %q: %w", param, err))
	}
	st.params[key] = b
	return st.check(nil)
}

// BindColumn binds ref, a non-nil pointer, to a column given by name or by
// 1-based number. Fetch in FetchBound mode scans into it.
func (st *sqliteStatement) BindColumn(column any, ref any) error {
	rv := reflect.ValueOf(ref)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return st.check(fmt.Errorf("bind column %v: need a non-nil pointer, got %T", column, ref))
	}
	cb := columnBinding{index: -1, ref: ref}
	switch c := column.(type) {
	case string:
		cb.name = c
	case int:
		if c < 1 {
			return st.check(fmt.Errorf("bind column %d: columns start at 1", c))
		}
		cb.index = c - 1
	default:
		return st.check(fmt.Errorf("bind column: want name or number, got %T", column))
	}
	st.columns = append(st.columns, cb)
	return st.check(nil)
}

// Fetch returns the next row in the given mode, or the statement's fetch
// mode when none is given. It returns sql.ErrNoRows after the last row.
func (st *sqliteStatement) Fetch(mode ...FetchMode) (any, error) {
	if len(mode) > 1 {
		return nil, st.check(fmt.Errorf("fetch: %d modes given, want at most one", len(mode)))
	}
	m := st.fetchMode
	if len(mode) == 1 {
		m = mode[0]
	}
	if err := st.next(); err != nil {
		return nil, err
	}
	row, err := st.scan(m, st.fetchColumn)
	return row, st.check(err)
}

func (st *sqliteStatement) FetchAll(mode ...FetchMode) ([]any, error) {
	all := []any{}
	for {
		row, err := st.Fetch(mode...)
		if errors.Is(err, sql.ErrNoRows) {
			return all, nil
		}
		if err != nil {
			return all, err
		}
		all = append(all, row)
	}
}

// FetchColumn returns column (0-based) of the next row.
func (st *sqliteStatement) FetchColumn(column int) (any, error) {
	if err := st.next(); err != nil {
		return nil, err
	}
	v, err := st.scan(FetchColumn, column)
	return v, st.check(err)
}

// FetchObject scans the next row into the struct dest using `db` tags.
func (st *sqliteStatement) FetchObject(dest any) error {
	if err := st.next(); err != nil {
		return err
	}
	return st.check(st.rows.StructScan(dest))
}

// next advances the cursor. At the end it returns sql.ErrNoRows without
// recording an error.
func (st *sqliteStatement) next() error {
	if st.rows == nil {
		return st.check(ErrNoResultSet)
	}
	if !st.rows.Next() {
		if err := st.rows.Err(); err != nil {
			return st.check(err)
		}
		return sql.ErrNoRows
	}
	return nil
}

func (st *sqliteStatement) scan(m FetchMode, column int) (any, error) {
	switch m {
	case FetchAssoc:
		row := make(map[string]any, len(st.cols))
		if err := st.rows.MapScan(row); err != nil {
			return nil, err
		}
		return row, nil
	case FetchNum:
		return st.rows.SliceScan()
	case FetchColumn:
		row, err := st.rows.SliceScan()
		if err != nil {
			return nil, err
		}
		if column < 0 || column >= len(row) {
			return nil, fmt.Errorf("column %d out of range [0,%d)", column, len(row))
		}
		return row[column], nil
	case FetchBound:
		return true, st.scanBound()
	}
	return nil, fmt.Errorf("fetch mode %v: %w", m, ErrInvalidValue)
}

// scanBound scans the current row into the bound column pointers.
func (st *sqliteStatement) scanBound() error {
	dest := make([]any, len(st.cols))
	for i := range dest {
		dest[i] = new(any)
	}
	for _, cb := range st.columns {
		i := cb.index
		if cb.name != "" {
			i = -1
			for j, name := range st.cols {
				if name == cb.name {
					i = j
					break
				}
			}
			if i < 0 {
				return fmt.Errorf("bound column %q not in result", cb.name)
			}
		}
		if i >= len(dest) {
			return fmt.Errorf("bound column %d out of range", i+1)
		}
		dest[i] = cb.ref
	}
	return st.rows.Scan(dest...)
}

// RowCount returns the number of rows affected by the last execution.
// Queries report 0.
func (st *sqliteStatement) RowCount() int64 {
	return st.affected
}

func (st *sqliteStatement) ColumnCount() int {
	return len(st.cols)
}

func (st *sqliteStatement) ColumnMeta(column int) (ColumnMeta, error) {
	if st.rows == nil {
		return ColumnMeta{}, st.check(ErrNoResultSet)
	}
	if column < 0 || column >= len(st.colTypes) {
		return ColumnMeta{}, st.check(fmt.Errorf("column %d out of range [0,%d)", column, len(st.colTypes)))
	}
	ct := st.colTypes[column]
	meta := ColumnMeta{
		Name:     ct.Name(),
		DeclType: ct.DatabaseTypeName(),
	}
	meta.Nullable, _ = ct.Nullable()
	meta.Precision, meta.Scale, _ = ct.DecimalSize()
	return meta, nil
}

// SetFetchMode sets the default mode for Fetch and FetchAll. FetchColumn
// takes an optional 0-based column number; other modes take no arguments.
func (st *sqliteStatement) SetFetchMode(mode FetchMode, args ...any) error {
	column := 0
	switch mode {
	case FetchColumn:
		if len(args) > 1 {
			return st.check(fmt.Errorf("fetch mode %v: %d arguments given, want at most one", mode, len(args)))
		}
		if len(args) == 1 {
			c, ok := args[0].(int)
			if !ok || c < 0 {
				return st.check(fmt.Errorf("fetch mode %v: column %v: %w", mode, args[0], ErrInvalidValue))
			}
			column = c
		}
	case FetchAssoc, FetchNum, FetchBound:
		if len(args) > 0 {
			return st.check(fmt.Errorf("fetch mode %v takes no arguments", mode))
		}
	default:
		return st.check(fmt.Errorf("fetch mode %v: %w", mode, ErrInvalidValue))
	}
	st.fetchMode, st.fetchColumn = mode, column
	return st.check(nil)
}

func (st *sqliteStatement) NextRowset() (bool, error) {
	if st.rows == nil {
		return false, st.check(ErrNoResultSet)
	}
	if !st.rows.NextResultSet() {
		return false, st.check(st.rows.Err())
	}
	rows := st.rows
	if err := st.setRows(rows); err != nil {
		st.rows = nil
		return false, st.check(err)
	}
	return true, st.check(nil)
}

// CloseCursor releases the current result set so the statement can be
// executed again.
func (st *sqliteStatement) CloseCursor() error {
	st.closeRows()
	return nil
}

func (st *sqliteStatement) GetAttribute(attr Attribute) (any, error) {
	switch attr {
	case AttrDefaultFetchMode:
		return st.fetchMode, nil
	case AttrDriverName:
		return driverName, nil
	}
	if v, ok := st.attrs[attr]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%s: %w", attr, ErrUnsupportedAttribute)
}

func (st *sqliteStatement) SetAttribute(attr Attribute, value any) error {
	switch attr {
	case AttrDefaultFetchMode:
		m, ok := value.(FetchMode)
		if !ok {
			return st.check(fmt.Errorf("%s: %v: %w", attr, value, ErrInvalidValue))
		}
		return st.SetFetchMode(m)
	case AttrDriverName, AttrServerVersion, AttrClientVersion:
		return st.check(fmt.Errorf("%s: %w", attr, ErrReadOnlyAttribute))
	}
	st.attrs[attr] = value
	return st.check(nil)
}

// DebugDumpParams writes the SQL text and the bound parameters to w.
func (st *sqliteStatement) DebugDumpParams(w io.Writer) error {
	keys := make([]string, 0, len(st.params))
	for k := range st.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if _, err := fmt.Fprintf(w, "SQL: [%d] %s\nParams:  %d\n", len(st.query), st.query, len(keys)); err != nil {
		return err
	}
	for _, k := range keys {
		b := st.params[k]
		typ := ParamStr
		if b.typ != nil {
			typ = *b.typ
		}
		var err error
		if _, pos, _ := paramKey(k); pos > 0 {
			_, err = fmt.Fprintf(w, "Key: Position #%d:\nparamno=%d\nname=[0] \"\"\nis_param=1\nparam_type=%d\n", pos-1, pos-1, typ)
		} else {
			name := ":" + k
			_, err = fmt.Fprintf(w, "Key: Name: [%d] %s\nparamno=-1\nname=[%d] %q\nis_param=1\nparam_type=%d\n", len(name), name, len(name), name, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (st *sqliteStatement) QueryString() string {
	return st.query
}

// Close releases the result set and the prepared statement.
// Close releases the statement. Closing the handle closes its statements,
// so a later Close does nothing.
func (st *sqliteStatement) Close() error {
	if st.closed {
		return nil
	}
	st.closed = true
	st.closeRows()
	delete(st.h.stmts, st)
	return st.stmt.Close()
}

var _ Statement = (*sqliteStatement)(nil)
