// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lazyconn_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/mdhender/lazyconn"
)

// fakeHandle records every call it receives.
type fakeHandle struct {
	mu    sync.Mutex
	calls []string

	attrs     lazyconn.Options
	setErr    error
	inTx      bool
	stmt      lazyconn.Statement
	queryArgs []any
	quoteArgs []lazyconn.ParamType
	err       error
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{attrs: lazyconn.Options{}, stmt: &fakeStatement{}}
}

func (h *fakeHandle) call(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, fmt.Sprintf(format, args...))
}

func (h *fakeHandle) SetAttribute(_ context.Context, attr lazyconn.Attribute, value any) error {
	h.call("SetAttribute(%s,%v)", attr, value)
	if h.setErr != nil {
		return h.setErr
	}
	h.attrs[attr] = value
	return nil
}

func (h *fakeHandle) GetAttribute(_ context.Context, attr lazyconn.Attribute) (any, error) {
	h.call("GetAttribute(%s)", attr)
	return h.attrs[attr], h.err
}

func (h *fakeHandle) InTransaction() bool {
	h.call("InTransaction")
	return h.inTx
}

func (h *fakeHandle) BeginTransaction(context.Context) error {
	h.call("BeginTransaction")
	h.inTx = true
	return h.err
}

func (h *fakeHandle) Commit() error {
	h.call("Commit")
	h.inTx = false
	return h.err
}

func (h *fakeHandle) RollBack() error {
	h.call("RollBack")
	h.inTx = false
	return h.err
}

func (h *fakeHandle) ErrorCode() string {
	h.call("ErrorCode")
	return "HY000"
}

func (h *fakeHandle) ErrorInfo() lazyconn.ErrorInfo {
	h.call("ErrorInfo")
	return lazyconn.ErrorInfo{SQLState: "HY000", DriverCode: 1, Message: "boom"}
}

func (h *fakeHandle) Exec(_ context.Context, statement string) (int64, error) {
	h.call("Exec(%s)", statement)
	return 42, h.err
}

func (h *fakeHandle) Prepare(_ context.Context, statement string, options lazyconn.Options) (lazyconn.Statement, error) {
	h.call("Prepare(%s,%d)", statement, len(options))
	return h.stmt, h.err
}

func (h *fakeHandle) Quote(value string, typ ...lazyconn.ParamType) (string, error) {
	h.call("Quote(%s,%d)", value, len(typ))
	h.quoteArgs = typ
	return "'" + value + "'", h.err
}

func (h *fakeHandle) LastInsertID(_ context.Context, name string) (string, error) {
	h.call("LastInsertID(%s)", name)
	return "7", h.err
}

func (h *fakeHandle) Query(_ context.Context, statement string, args ...any) (lazyconn.Statement, error) {
	h.call("Query(%s,%d)", statement, len(args))
	h.queryArgs = args
	return h.stmt, h.err
}

func (h *fakeHandle) Close() error {
	h.call("Close")
	return nil
}

func (h *fakeHandle) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

// fakeSource counts how often a handle is requested.
type fakeSource struct {
	handle *fakeHandle
	err    error
	n      int
}

func (s *fakeSource) Handle(context.Context) (lazyconn.Handle, error) {
	s.n++
	if s.err != nil {
		return nil, s.err
	}
	return s.handle, nil
}

// fakeOpener returns an Opener that hands out fresh fake handles and
// remembers the descriptors it was asked to open.
type fakeOpener struct {
	mu      sync.Mutex
	opened  []lazyconn.Descriptor
	handles []*fakeHandle
	err     error
}

func (o *fakeOpener) Open(_ context.Context, d lazyconn.Descriptor, _ *slog.Logger) (lazyconn.Handle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return nil, o.err
	}
	h := newFakeHandle()
	for k, v := range d.Options {
		h.attrs[k] = v
	}
	o.opened = append(o.opened, d)
	o.handles = append(o.handles, h)
	return h, nil
}

func (o *fakeOpener) Count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.handles)
}

// fakeStatement records calls and writes through bound pointers the way a
// driver would.
type fakeStatement struct {
	calls      []string
	execParams []lazyconn.Params
	fetchArgs  []lazyconn.FetchMode
	modeArgs   []any
	paramRef   any
	columnRef  any
	err        error
}

func (s *fakeStatement) call(format string, args ...any) {
	s.calls = append(s.calls, fmt.Sprintf(format, args...))
}

func (s *fakeStatement) Execute(_ context.Context, params ...lazyconn.Params) error {
	s.call("Execute(%d)", len(params))
	s.execParams = params
	if p, ok := s.paramRef.(*string); ok {
		*p = *p + "!"
	}
	return s.err
}

func (s *fakeStatement) Fetch(mode ...lazyconn.FetchMode) (any, error) {
	s.call("Fetch(%d)", len(mode))
	s.fetchArgs = mode
	if p, ok := s.columnRef.(*int); ok {
		*p = 99
	}
	return map[string]any{"id": int64(1)}, s.err
}

func (s *fakeStatement) FetchAll(mode ...lazyconn.FetchMode) ([]any, error) {
	s.call("FetchAll(%d)", len(mode))
	s.fetchArgs = mode
	return []any{"a", "b"}, s.err
}

func (s *fakeStatement) FetchColumn(column int) (any, error) {
	s.call("FetchColumn(%d)", column)
	return "foo", s.err
}

func (s *fakeStatement) FetchObject(dest any) error {
	s.call("FetchObject")
	return s.err
}

func (s *fakeStatement) BindParam(param string, ref any, typ ...lazyconn.ParamType) error {
	s.call("BindParam(%s,%d)", param, len(typ))
	s.paramRef = ref
	return s.err
}

func (s *fakeStatement) BindValue(param string, value any, typ ...lazyconn.ParamType) error {
	s.call("BindValue(%s,%v,%d)", param, value, len(typ))
	return s.err
}

func (s *fakeStatement) BindColumn(column any, ref any) error {
	s.call("BindColumn(%v)", column)
	s.columnRef = ref
	return s.err
}

func (s *fakeStatement) RowCount() int64 {
	s.call("RowCount")
	return 3
}

func (s *fakeStatement) ColumnCount() int {
	s.call("ColumnCount")
	return 2
}

func (s *fakeStatement) ColumnMeta(column int) (lazyconn.ColumnMeta, error) {
	s.call("ColumnMeta(%d)", column)
	return lazyconn.ColumnMeta{Name: "id", DeclType: "INT"}, s.err
}

func (s *fakeStatement) SetFetchMode(mode lazyconn.FetchMode, args ...any) error {
	s.call("SetFetchMode(%v,%d)", mode, len(args))
	s.modeArgs = args
	return s.err
}

func (s *fakeStatement) NextRowset() (bool, error) {
	s.call("NextRowset")
	return false, s.err
}

func (s *fakeStatement) CloseCursor() error {
	s.call("CloseCursor")
	return s.err
}

func (s *fakeStatement) ErrorCode() string {
	s.call("ErrorCode")
	return "00000"
}

func (s *fakeStatement) ErrorInfo() lazyconn.ErrorInfo {
	s.call("ErrorInfo")
	return lazyconn.ErrorInfo{SQLState: "00000"}
}

func (s *fakeStatement) GetAttribute(attr lazyconn.Attribute) (any, error) {
	s.call("GetAttribute(%s)", attr)
	return "v", s.err
}

func (s *fakeStatement) SetAttribute(attr lazyconn.Attribute, value any) error {
	s.call("SetAttribute(%s,%v)", attr, value)
	return s.err
}

func (s *fakeStatement) DebugDumpParams(w io.Writer) error {
	s.call("DebugDumpParams")
	_, err := io.WriteString(w, "SQL: [0] ")
	return err
}

func (s *fakeStatement) QueryString() string {
	s.call("QueryString")
	return "SELECT 1"
}

func (s *fakeStatement) Close() error {
	s.call("Close")
	return s.err
}
