// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lazyconn

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const memoryPath = ":memory:"

// dataSource is a parsed "driver:path" data source.
type dataSource struct {
	driver string
	path   string
}

// parseDataSource splits a data source such as "sqlite:/var/app.db" or
// "sqlite::memory:". Only the sqlite driver is supported.
func parseDataSource(s string) (dataSource, error) {
	driver, path, ok := strings.Cut(s, ":")
	if !ok || driver != "sqlite" {
		return dataSource{}, fmt.Errorf("%q: %w", s, ErrUnsupportedDriver)
	}
	if path == "" {
		path = memoryPath
	}
	ds := dataSource{driver: driver, path: path}
	if !ds.isMemory() {
		if err := validatePath(path); err != nil {
			return dataSource{}, err
		}
	}
	return ds, nil
}

// isMemory returns true if path indicates an in-memory database.
func (ds dataSource) isMemory() bool {
	return ds.path == memoryPath || strings.HasPrefix(ds.path, "file::memory:")
}

// validatePath checks that a database path can be opened or created.
func validatePath(path string) error {
	if isDirectory(path) {
		return fmt.Errorf("%s: path is a directory", path)
	}
	dir := filepath.Dir(path)
	if !isDirectory(dir) {
		return fmt.Errorf("%s: parent directory does not exist", dir)
	}
	return nil
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
