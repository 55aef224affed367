// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package lazyconn provides a database connection that is not opened until
// it is used, and whose configuration can be serialized and restored.
//
// The package implements a connection lifecycle where:
//   - Constructing a connection only records its descriptor
//   - The first operation that needs the database opens it, exactly once
//   - Attributes set on the connection are remembered in the descriptor
//   - Serializing captures the descriptor, never the open connection
//
// # Basic Usage
//
//	conn := lazyconn.New(lazyconn.Config{
//	    Descriptor: lazyconn.Descriptor{
//	        DataSource: "sqlite:/var/lib/app/app.db",
//	        Options:    lazyconn.Options{lazyconn.Pragma("foreign_keys"): true},
//	    },
//	})
//	defer conn.Close()
//
//	// opens the database
//	if _, err := conn.Exec(ctx, `CREATE TABLE t (id INT, name TEXT)`); err != nil {
//	    return err
//	}
//
// # Serialization
//
// LazyConnection implements encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler. The encoded form holds the data source, user,
// password and options, in that order. A restored connection is unopened
// and opens with the recorded options on first use. Serializing inside a
// transaction fails with ErrInTransaction.
//
// # Decorators
//
// Decorator forwards every connection operation to the handle supplied by
// a ConnectionSource; LazyConnection is one such source. StatementDecorator
// forwards every statement operation to a wrapped Statement. Neither adds
// error handling: failures come back exactly as the handle reported them.
//
// # Driver Support
//
// The default Opener, OpenSQLite, supports two SQLite drivers via build tags:
//   - modernc.org/sqlite (default, pure Go, no CGO)
//   - github.com/mattn/go-sqlite3 (CGO, use -tags mattn)
//
// Data sources have the form "sqlite:<path>". Use "sqlite::memory:" for a
// private in-memory database.
//
// # Configuration
//
// Key Config fields:
//   - Descriptor: data source, user, password and options
//   - Logger: *slog.Logger for operational logging (default: slog.Default())
//   - Opener: function that opens the live handle (default: OpenSQLite)
package lazyconn
