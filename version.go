// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lazyconn

import (
	"github.com/maloquacious/semver"
)

// version is reported by Version and, without the build, by the
// AttrClientVersion attribute.
var version = semver.Version{
	Major: 0,
	Minor: 3,
	Patch: 2,
	Build: semver.Commit(),
}

// Version returns the lazyconn package version.
func Version() semver.Version {
	return version
}
