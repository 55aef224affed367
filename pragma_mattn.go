// Copyright (c) 2026 Michael D Henderson. All rights reserved.

//go:build mattn

package lazyconn

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// driverName is the database/sql name registered by github.com/mattn/go-sqlite3.
const driverName = "sqlite3"

// buildDSN constructs a DSN for github.com/mattn/go-sqlite3.
// mattn only understands a fixed set of pragma parameters, so all pragmas
// are returned to be run as statements once the connection is up.
func buildDSN(path string, pragmas []pragma) (string, []pragma) {
	if path == memoryPath {
		return "file::memory:", pragmas
	}
	return "file:" + path, pragmas
}

// errorDetail extracts the SQLite result code and message from err.
func errorDetail(err error) (int, string) {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return int(se.ExtendedCode), se.Error()
	}
	return 0, err.Error()
}
