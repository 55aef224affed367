// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lazyconn

import (
	"encoding/gob"
	"fmt"
	"strings"
	"time"
)

// Attribute identifies a connection or statement attribute.
type Attribute string

const (
	// AttrErrMode controls how errors are reported. See ErrMode.
	AttrErrMode Attribute = "errmode"

	// AttrDefaultFetchMode is the fetch mode given to new statements.
	AttrDefaultFetchMode Attribute = "default_fetch_mode"

	// AttrTimeout is the busy timeout, as a time.Duration or whole seconds.
	AttrTimeout Attribute = "timeout"

	// AttrDriverName reports the registered database/sql driver. Read-only.
	AttrDriverName Attribute = "driver_name"

	// AttrServerVersion reports the SQLite library version. Read-only.
	AttrServerVersion Attribute = "server_version"

	// AttrClientVersion reports the version of this package. Read-only.
	AttrClientVersion Attribute = "client_version"
)

const pragmaPrefix = "pragma."

// Pragma returns the attribute for the named SQLite pragma.
func Pragma(name string) Attribute {
	return Attribute(pragmaPrefix + strings.ToLower(name))
}

// IsPragma reports whether a names a pragma and returns the pragma name.
func (a Attribute) IsPragma() (string, bool) {
	if name, ok := strings.CutPrefix(string(a), pragmaPrefix); ok && name != "" {
		return name, true
	}
	return "", false
}

// Options maps attributes to values.
type Options map[Attribute]any

// clone returns a shallow copy; never nil.
func (o Options) clone() Options {
	c := make(Options, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}

// ErrMode is the value of AttrErrMode.
type ErrMode int

const (
	// ErrModeSilent records errors in ErrorCode/ErrorInfo and returns them as is.
	ErrModeSilent ErrMode = iota
	// ErrModeWarning also logs each error at warn level.
	ErrModeWarning
	// ErrModeException wraps each returned error in a *SQLError.
	ErrModeException
)

func (m ErrMode) String() string {
	switch m {
	case ErrModeSilent:
		return "silent"
	case ErrModeWarning:
		return "warning"
	case ErrModeException:
		return "exception"
	}
	return fmt.Sprintf("ErrMode(%d)", int(m))
}

// FetchMode selects the shape of rows returned by Fetch.
type FetchMode int

const (
	// FetchAssoc returns map[string]any keyed by column name.
	FetchAssoc FetchMode = iota
	// FetchNum returns []any in column order.
	FetchNum
	// FetchColumn returns the value of a single column (0-based, default 0).
	FetchColumn
	// FetchBound writes columns into the pointers given to BindColumn and returns true.
	FetchBound
)

func (m FetchMode) String() string {
	switch m {
	case FetchAssoc:
		return "assoc"
	case FetchNum:
		return "num"
	case FetchColumn:
		return "column"
	case FetchBound:
		return "bound"
	}
	return fmt.Sprintf("FetchMode(%d)", int(m))
}

// ParamType is a type hint for quoting and binding.
type ParamType int

const (
	ParamStr ParamType = iota
	ParamInt
	ParamBool
	ParamNull
	ParamLOB
)

func init() {
	// option values travel through gob inside an interface
	gob.Register(ErrMode(0))
	gob.Register(FetchMode(0))
	gob.Register(time.Duration(0))
}
