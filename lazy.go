// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lazyconn

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Opener opens a live handle for a descriptor.
type Opener func(ctx context.Context, d Descriptor, logger *slog.Logger) (Handle, error)

// Config holds connection configuration.
type Config struct {
	// Descriptor is the data source, credentials and options used to open
	// the connection. Only the descriptor survives serialization.
	Descriptor

	// Logger for operational logging. Uses slog.Default() if nil.
	Logger *slog.Logger

	// Opener creates the live handle. Uses OpenSQLite if nil.
	Opener Opener
}

// defaults returns a copy of cfg with default values applied.
func (cfg Config) defaults() Config {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Opener == nil {
		cfg.Opener = OpenSQLite
	}
	cfg.Descriptor = cfg.Descriptor.clone()
	return cfg
}

// LazyConnection is a connection that is opened on first use.
//
// The handle is created once, by the first operation that needs it, and is
// reused until the connection is closed. InTransaction does not open it.
// Attributes set successfully are recorded in the descriptor's options, so
// a connection restored by UnmarshalBinary opens with the same attributes.
//
// Create connections with New or Unmarshal. A zero LazyConnection has no
// descriptor; its operations return ErrNoSource until UnmarshalBinary
// gives it one.
type LazyConnection struct {
	Decorator

	mu     sync.Mutex
	desc   Descriptor
	handle Handle

	id     string
	logger *slog.Logger
	opener Opener
}

// New returns an unopened connection. It does not validate the data source.
func New(cfg Config) *LazyConnection {
	c := &LazyConnection{}
	c.init(cfg)
	return c
}

// Unmarshal returns an unopened connection for a descriptor encoded by
// MarshalBinary. The descriptor in cfg is ignored.
func Unmarshal(data []byte, cfg Config) (*LazyConnection, error) {
	if err := cfg.Descriptor.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return New(cfg), nil
}

func (c *LazyConnection) init(cfg Config) {
	cfg = cfg.defaults()
	c.desc = cfg.Descriptor
	c.id = uuid.NewString()
	c.logger = cfg.Logger.With("conn", c.id)
	c.opener = cfg.Opener
	c.Decorator = Decorator{src: c}
}

// Handle returns the live handle, opening it on the first call.
// A failed open leaves the connection unopened.
func (c *LazyConnection) Handle(ctx context.Context) (Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opener == nil {
		return nil, ErrNoSource
	}

	if c.handle != nil {
		return c.handle, nil
	}

	c.logger.Debug("opening connection", "data_source", c.desc.DataSource, "options", len(c.desc.Options))
	h, err := c.opener(ctx, c.desc.clone(), c.logger)
	if err != nil {
		return nil, err
	}
	c.handle = h
	return h, nil
}

// IsOpen reports whether the handle has been created.
func (c *LazyConnection) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != nil
}

// InTransaction reports false for an unopened connection without opening it.
func (c *LazyConnection) InTransaction(ctx context.Context) (bool, error) {
	if !c.IsOpen() {
		return false, nil
	}
	return c.Decorator.InTransaction(ctx)
}

// SetAttribute applies the attribute to the handle and, if that succeeds,
// records it in the descriptor's options.
func (c *LazyConnection) SetAttribute(ctx context.Context, attr Attribute, value any) error {
	if err := c.Decorator.SetAttribute(ctx, attr, value); err != nil {
		return err
	}

	c.mu.Lock()
	c.desc.Options[attr] = value
	c.mu.Unlock()
	return nil
}

// Descriptor returns a copy of the current descriptor.
func (c *LazyConnection) Descriptor() Descriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.desc.clone()
}

// MarshalBinary encodes the descriptor. It fails with ErrInTransaction
// while a transaction is active. The live handle is never encoded.
func (c *LazyConnection) MarshalBinary() ([]byte, error) {
	inTx, err := c.InTransaction(context.Background())
	if err != nil {
		return nil, err
	}
	if inTx {
		return nil, ErrInTransaction
	}
	return c.Descriptor().MarshalBinary()
}

// UnmarshalBinary replaces the descriptor with the decoded one and leaves
// the connection unopened. A handle opened earlier is closed.
func (c *LazyConnection) UnmarshalBinary(data []byte) error {
	var d Descriptor
	if err := d.UnmarshalBinary(data); err != nil {
		return err
	}

	if c.opener == nil {
		c.init(Config{Descriptor: d})
		return nil
	}

	c.mu.Lock()
	old := c.handle
	c.handle = nil
	c.desc = d
	c.mu.Unlock()

	if old != nil {
		c.logger.Debug("closing replaced connection")
		return old.Close()
	}
	return nil
}

// Close closes the handle if it was opened. The handle stays in place, so
// later operations report the closed handle's errors.
func (c *LazyConnection) Close() error {
	c.mu.Lock()
	h := c.handle
	c.mu.Unlock()

	if h == nil {
		return nil
	}
	c.logger.Debug("closing connection")
	return h.Close()
}

var _ ConnectionSource = (*LazyConnection)(nil)
