// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lazyconn

import "context"

// ConnectionSource supplies the live handle a Decorator forwards to.
// Implementations may open the handle on demand.
type ConnectionSource interface {
	Handle(ctx context.Context) (Handle, error)
}

// Decorator forwards every connection operation to the handle returned by
// its ConnectionSource. Results and errors are passed back unmodified.
// Calling any method obtains the handle first, so a lazy source opens it.
type Decorator struct {
	src ConnectionSource
}

// NewDecorator returns a Decorator forwarding to src.
func NewDecorator(src ConnectionSource) *Decorator {
	return &Decorator{src: src}
}

// handle returns the source's handle, or ErrNoSource for a zero Decorator.
func (d *Decorator) handle(ctx context.Context) (Handle, error) {
	if d.src == nil {
		return nil, ErrNoSource
	}
	return d.src.Handle(ctx)
}

// SetAttribute sets a connection attribute on the handle.
func (d *Decorator) SetAttribute(ctx context.Context, attr Attribute, value any) error {
	h, err := d.handle(ctx)
	if err != nil {
		return err
	}
	return h.SetAttribute(ctx, attr, value)
}

// GetAttribute returns a connection attribute from the handle.
func (d *Decorator) GetAttribute(ctx context.Context, attr Attribute) (any, error) {
	h, err := d.handle(ctx)
	if err != nil {
		return nil, err
	}
	return h.GetAttribute(ctx, attr)
}

// InTransaction reports whether the handle has an active transaction.
func (d *Decorator) InTransaction(ctx context.Context) (bool, error) {
	h, err := d.handle(ctx)
	if err != nil {
		return false, err
	}
	return h.InTransaction(), nil
}

// BeginTransaction starts a transaction on the handle.
func (d *Decorator) BeginTransaction(ctx context.Context) error {
	h, err := d.handle(ctx)
	if err != nil {
		return err
	}
	return h.BeginTransaction(ctx)
}

// Commit commits the handle's active transaction.
func (d *Decorator) Commit(ctx context.Context) error {
	h, err := d.handle(ctx)
	if err != nil {
		return err
	}
	return h.Commit()
}

// RollBack rolls back the handle's active transaction.
func (d *Decorator) RollBack(ctx context.Context) error {
	h, err := d.handle(ctx)
	if err != nil {
		return err
	}
	return h.RollBack()
}

// ErrorCode returns the SQLSTATE of the last operation on the handle.
func (d *Decorator) ErrorCode(ctx context.Context) (string, error) {
	h, err := d.handle(ctx)
	if err != nil {
		return "", err
	}
	return h.ErrorCode(), nil
}

// ErrorInfo returns the error details of the last operation on the handle.
func (d *Decorator) ErrorInfo(ctx context.Context) (ErrorInfo, error) {
	h, err := d.handle(ctx)
	if err != nil {
		return ErrorInfo{}, err
	}
	return h.ErrorInfo(), nil
}

// Exec runs statement and returns the number of affected rows.
func (d *Decorator) Exec(ctx context.Context, statement string) (int64, error) {
	h, err := d.handle(ctx)
	if err != nil {
		return 0, err
	}
	return h.Exec(ctx, statement)
}

// Prepare prepares a statement on the handle. The statement is returned
// as the handle created it, not wrapped.
func (d *Decorator) Prepare(ctx context.Context, statement string, options Options) (Statement, error) {
	h, err := d.handle(ctx)
	if err != nil {
		return nil, err
	}
	return h.Prepare(ctx, statement, options)
}

// Quote forwards typ with the arity the caller used.
func (d *Decorator) Quote(ctx context.Context, value string, typ ...ParamType) (string, error) {
	h, err := d.handle(ctx)
	if err != nil {
		return "", err
	}
	return h.Quote(value, typ...)
}

// LastInsertID returns the id of the last inserted row. An empty name
// means no sequence name.
func (d *Decorator) LastInsertID(ctx context.Context, name string) (string, error) {
	h, err := d.handle(ctx)
	if err != nil {
		return "", err
	}
	return h.LastInsertID(ctx, name)
}

// Query forwards args positionally; their meaning is up to the handle.
func (d *Decorator) Query(ctx context.Context, statement string, args ...any) (Statement, error) {
	h, err := d.handle(ctx)
	if err != nil {
		return nil, err
	}
	return h.Query(ctx, statement, args...)
}
