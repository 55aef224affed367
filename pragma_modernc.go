// Copyright (c) 2026 Michael D Henderson. All rights reserved.

//go:build !mattn

package lazyconn

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"modernc.org/sqlite"
)

// driverName is the database/sql name registered by modernc.org/sqlite.
const driverName = "sqlite"

// buildDSN constructs a DSN for modernc.org/sqlite.
// modernc uses the syntax: file:path?_pragma=name(value)&_pragma=name2(value2)
// Every pragma fits in the DSN, so none are left for the caller to run.
func buildDSN(path string, pragmas []pragma) (string, []pragma) {
	var sb strings.Builder

	if path == memoryPath {
		sb.WriteString("file::memory:")
	} else {
		sb.WriteString("file:")
		sb.WriteString(path)
	}

	for i, p := range pragmas {
		if i == 0 {
			sb.WriteString("?")
		} else {
			sb.WriteString("&")
		}
		fmt.Fprintf(&sb, "_pragma=%s", url.QueryEscape(p.name+"("+p.value+")"))
	}

	return sb.String(), nil
}

// errorDetail extracts the SQLite result code and message from err.
func errorDetail(err error) (int, string) {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code(), se.Error()
	}
	return 0, err.Error()
}
