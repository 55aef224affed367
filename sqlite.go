// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lazyconn

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// pragma represents a SQLite pragma setting.
type pragma struct {
	name  string
	value string
}

var (
	rePragmaName  = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z_][a-z0-9_]*)?$`)
	reBarePragmaV = regexp.MustCompile(`^-?[A-Za-z0-9_]+$`)
)

// ext is what sqliteHandle needs from either its conn or its transaction.
type ext interface {
	sqlx.ExecerContext
	sqlx.QueryerContext
}

// sqliteHandle is a Handle backed by one dedicated SQLite connection.
type sqliteHandle struct {
	errorRecorder

	db     *sqlx.DB
	conn   *sqlx.Conn
	tx     *sqlx.Tx
	logger *slog.Logger

	errMode   ErrMode
	fetchMode FetchMode
	closed    bool

	// statements prepared on conn and not yet closed
	stmts map[*sqliteStatement]struct{}
}

// OpenSQLite opens the database named by d.DataSource and applies d.Options.
// It is the default Opener. Pragma options are applied while connecting;
// the rest go through SetAttribute in key order. User and Password are
// accepted and ignored; SQLite has no authentication.
func OpenSQLite(ctx context.Context, d Descriptor, logger *slog.Logger) (Handle, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ds, err := parseDataSource(d.DataSource)
	if err != nil {
		return nil, err
	}

	var pragmas []pragma
	var attrs []Attribute
	for attr, value := range d.Options {
		name, ok := attr.IsPragma()
		if !ok {
			attrs = append(attrs, attr)
			continue
		}
		v, err := pragmaValue(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", attr, err)
		}
		if !rePragmaName.MatchString(name) {
			return nil, fmt.Errorf("%s: invalid pragma name: %w", attr, ErrInvalidValue)
		}
		pragmas = append(pragmas, pragma{name: name, value: v})
	}
	sort.Slice(pragmas, func(i, j int) bool { return pragmas[i].name < pragmas[j].name })
	sort.Slice(attrs, func(i, j int) bool { return attrs[i] < attrs[j] })

	dsn, deferred := buildDSN(ds.path, pragmas)
	logger.Debug("opening database", "driver", driverName, "dsn", dsn)

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open: %w", err)
	}

	// Ensure cleanup on error
	success := false
	defer func() {
		if !success {
			db.Close()
		}
	}()

	// one handle, one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer func() {
		if !success {
			conn.Close()
		}
	}()

	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	for _, p := range deferred {
		if _, err := conn.ExecContext(ctx, fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return nil, fmt.Errorf("pragma %s: %w", p.name, err)
		}
	}

	h := &sqliteHandle{
		db:     db,
		conn:   conn,
		logger: logger,
		stmts:  make(map[*sqliteStatement]struct{}),
	}
	h.clearError()

	for _, attr := range attrs {
		if err := h.SetAttribute(ctx, attr, d.Options[attr]); err != nil {
			return nil, fmt.Errorf("apply %s: %w", attr, err)
		}
	}
	logger.Debug("database open", "pragmas", len(pragmas), "attributes", len(attrs))

	success = true
	return h, nil
}

// ext returns the transaction while one is active, the connection otherwise.
func (h *sqliteHandle) ext() ext {
	if h.tx != nil {
		return h.tx
	}
	return h.conn
}

// check records err as the handle's last error.
func (h *sqliteHandle) check(err error) error {
	return h.record(err, h.errMode, h.logger)
}

// SetAttribute applies a pragma, an error or fetch mode, or the busy
// timeout. Driver and version attributes are read-only.
func (h *sqliteHandle) SetAttribute(ctx context.Context, attr Attribute, value any) error {
	if name, ok := attr.IsPragma(); ok {
		if !rePragmaName.MatchString(name) {
			return fmt.Errorf("%s: invalid pragma name: %w", attr, ErrInvalidValue)
		}
		v, err := pragmaValue(value)
		if err != nil {
			return fmt.Errorf("%s: %w", attr, err)
		}
		_, err = h.ext().ExecContext(ctx, fmt.Sprintf("PRAGMA %s = %s", name, v))
		return h.check(err)
	}

	switch attr {
	case AttrErrMode:
		m, ok := value.(ErrMode)
		if !ok || m < ErrModeSilent || m > ErrModeException {
			return fmt.Errorf("%s: %v: %w", attr, value, ErrInvalidValue)
		}
		h.errMode = m
	case AttrDefaultFetchMode:
		m, ok := value.(FetchMode)
		if !ok || m < FetchAssoc || m > FetchBound {
			return fmt.Errorf("%s: %v: %w", attr, value, ErrInvalidValue)
		}
		h.fetchMode = m
	case AttrTimeout:
		d, err := durationValue(value)
		if err != nil {
			return fmt.Errorf("%s: %w", attr, err)
		}
		_, err = h.ext().ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", d.Milliseconds()))
		return h.check(err)
	case AttrDriverName, AttrServerVersion, AttrClientVersion:
		return fmt.Errorf("%s: %w", attr, ErrReadOnlyAttribute)
	default:
		return fmt.Errorf("%s: %w", attr, ErrUnsupportedAttribute)
	}
	h.clearError()
	return nil
}

// GetAttribute reads an attribute back, querying SQLite for pragmas.
func (h *sqliteHandle) GetAttribute(ctx context.Context, attr Attribute) (any, error) {
	if name, ok := attr.IsPragma(); ok {
		if !rePragmaName.MatchString(name) {
			return nil, fmt.Errorf("%s: invalid pragma name: %w", attr, ErrInvalidValue)
		}
		var v any
		err := sqlx.GetContext(ctx, h.ext(), &v, "PRAGMA "+name)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", attr, ErrUnsupportedAttribute)
		}
		return v, h.check(err)
	}

	switch attr {
	case AttrErrMode:
		return h.errMode, nil
	case AttrDefaultFetchMode:
		return h.fetchMode, nil
	case AttrTimeout:
		var ms int64
		if err := sqlx.GetContext(ctx, h.ext(), &ms, "PRAGMA busy_timeout"); err != nil {
			return nil, h.check(err)
		}
		return time.Duration(ms) * time.Millisecond, nil
	case AttrDriverName:
		return driverName, nil
	case AttrServerVersion:
		var v string
		if err := sqlx.GetContext(ctx, h.ext(), &v, "SELECT sqlite_version()"); err != nil {
			return nil, h.check(err)
		}
		return v, nil
	case AttrClientVersion:
		v := Version()
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch), nil
	}
	return nil, fmt.Errorf("%s: %w", attr, ErrUnsupportedAttribute)
}

// InTransaction reports whether BeginTransaction has not yet been ended.
func (h *sqliteHandle) InTransaction() bool {
	return h.tx != nil
}

// BeginTransaction starts a transaction. The transaction ends only with
// Commit, RollBack or Close; canceling ctx after BeginTransaction returns
// does not roll it back.
func (h *sqliteHandle) BeginTransaction(ctx context.Context) error {
	if h.tx != nil {
		return h.check(ErrTransactionActive)
	}
	tx, err := h.conn.BeginTxx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return h.check(err)
	}
	h.tx = tx
	return h.check(nil)
}

// Commit commits the active transaction.
func (h *sqliteHandle) Commit() error {
	if h.tx == nil {
		return h.check(ErrNoTransaction)
	}
	err := h.tx.Commit()
	h.tx = nil
	return h.check(err)
}

// RollBack rolls back the active transaction.
func (h *sqliteHandle) RollBack() error {
	if h.tx == nil {
		return h.check(ErrNoTransaction)
	}
	err := h.tx.Rollback()
	h.tx = nil
	return h.check(err)
}

// Exec runs statement and returns the number of rows affected.
func (h *sqliteHandle) Exec(ctx context.Context, statement string) (int64, error) {
	res, err := h.ext().ExecContext(ctx, statement)
	if err != nil {
		return 0, h.check(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, h.check(err)
	}
	return n, h.check(nil)
}

// Prepare prepares statement on the connection. Options are applied to the
// statement with SetAttribute.
func (h *sqliteHandle) Prepare(ctx context.Context, statement string, options Options) (Statement, error) {
	st, err := h.prepare(ctx, statement)
	if err != nil {
		return nil, err
	}
	for attr, value := range options {
		if err := st.SetAttribute(attr, value); err != nil {
			st.Close()
			return nil, err
		}
	}
	return st, nil
}

func (h *sqliteHandle) prepare(ctx context.Context, statement string) (*sqliteStatement, error) {
	stmt, err := h.conn.PreparexContext(ctx, statement)
	if err != nil {
		return nil, h.check(err)
	}
	h.clearError()
	st := newStatement(h, statement, stmt)
	h.stmts[st] = struct{}{}
	return st, nil
}

// Quote returns value as an SQL literal. typ is optional and defaults to
// ParamStr.
func (h *sqliteHandle) Quote(value string, typ ...ParamType) (string, error) {
	if len(typ) > 1 {
		return "", fmt.Errorf("quote: %d types given, want at most one", len(typ))
	}
	t := ParamStr
	if len(typ) == 1 {
		t = typ[0]
	}

	switch t {
	case ParamInt:
		if _, err := strconv.ParseInt(value, 10, 64); err == nil {
			return value, nil
		}
	case ParamBool:
		if b, err := strconv.ParseBool(value); err == nil {
			if b {
				return "1", nil
			}
			return "0", nil
		}
	case ParamNull:
		if value == "" {
			return "NULL", nil
		}
	case ParamLOB:
		return "X'" + hex.EncodeToString([]byte(value)) + "'", nil
	}
	return quoteString(value), nil
}

// LastInsertID returns the rowid of the last insert. SQLite has no
// sequences, so name is ignored.
func (h *sqliteHandle) LastInsertID(ctx context.Context, name string) (string, error) {
	var id int64
	if err := sqlx.GetContext(ctx, h.ext(), &id, "SELECT last_insert_rowid()"); err != nil {
		return "", h.check(err)
	}
	return strconv.FormatInt(id, 10), h.check(nil)
}

// Query prepares and executes statement in one step. If the first of args
// is a FetchMode, args configure the statement's fetch mode as in
// SetFetchMode; otherwise they are bound as positional parameters.
func (h *sqliteHandle) Query(ctx context.Context, statement string, args ...any) (Statement, error) {
	st, err := h.prepare(ctx, statement)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		if mode, ok := args[0].(FetchMode); ok {
			if err := st.SetFetchMode(mode, args[1:]...); err != nil {
				st.Close()
				return nil, err
			}
			args = nil
		}
	}

	if err := st.execute(ctx, args); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// Close closes every statement still open on the handle, rolls back any
// open transaction and releases the connection. Calling Close again does
// nothing.
func (h *sqliteHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true

	// an open cursor holds the connection and would block conn.Close
	if len(h.stmts) > 0 {
		h.logger.Debug("closing open statements", "statements", len(h.stmts))
	}
	for st := range h.stmts {
		_ = st.Close()
	}

	if h.tx != nil {
		_ = h.tx.Rollback()
		h.tx = nil
	}
	connErr := h.conn.Close()
	if err := h.db.Close(); err != nil {
		return err
	}
	return connErr
}

// quoteString quotes s as an SQLite string literal.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// pragmaValue formats v for a PRAGMA assignment.
func pragmaValue(v any) (string, error) {
	var s string
	switch v := v.(type) {
	case bool:
		if v {
			return "ON", nil
		}
		return "OFF", nil
	case string:
		s = v
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case nil:
		return "", fmt.Errorf("nil: %w", ErrInvalidValue)
	default:
		s = fmt.Sprint(v)
	}
	if reBarePragmaV.MatchString(s) {
		return s, nil
	}
	return quoteString(s), nil
}

// durationValue accepts a time.Duration or a whole number of seconds.
func durationValue(v any) (time.Duration, error) {
	switch v := v.(type) {
	case time.Duration:
		return v, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	}
	return 0, fmt.Errorf("%v: %w", v, ErrInvalidValue)
}

var _ Handle = (*sqliteHandle)(nil)
