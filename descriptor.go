// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lazyconn

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Descriptor holds everything needed to open a connection.
// An empty User or Password means none was given.
type Descriptor struct {
	DataSource string
	User       string
	Password   string
	Options    Options
}

// clone returns a copy that shares no map with d.
func (d Descriptor) clone() Descriptor {
	d.Options = d.Options.clone()
	return d
}

// descriptorWire is the encoded form. Field order is part of the format:
// data source, user, password, options.
type descriptorWire struct {
	DataSource string
	User       string
	Password   string
	Options    map[Attribute]any
}

// MarshalBinary encodes the descriptor with encoding/gob.
func (d Descriptor) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	w := descriptorWire{
		DataSource: d.DataSource,
		User:       d.User,
		Password:   d.Password,
		Options:    d.Options,
	}
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, fmt.Errorf("encode descriptor: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary replaces d with the decoded descriptor.
func (d *Descriptor) UnmarshalBinary(data []byte) error {
	var w descriptorWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return fmt.Errorf("decode descriptor: %w", err)
	}
	*d = Descriptor{
		DataSource: w.DataSource,
		User:       w.User,
		Password:   w.Password,
		Options:    Options(w.Options).clone(),
	}
	return nil
}
