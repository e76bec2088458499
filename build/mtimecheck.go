// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import "os"

// CompiledUnit pairs one source file with its derived object file.
// Units are created per build invocation and consulted once; the only
// persisted build state is the object file's own mtime.
type CompiledUnit struct {
	Source string
	Object string
}

// NeedsCompile decides recompile or skip for the unit.
// A forced full build always recompiles. Otherwise the unit is skipped
// only when the object file exists and its mtime is strictly newer than
// the source mtime.
//
// This is an approximate, non-content-based check: header changes, flag
// changes, and toolchain upgrades are not tracked. Use a full build
// when in doubt.
func (u CompiledUnit) NeedsCompile(fullBuild bool) bool {
	if fullBuild {
		return true
	}
	obj, err := os.Stat(u.Object)
	if err != nil {
		return true
	}
	src, err := os.Stat(u.Source)
	if err != nil {
		// Missing source surfaces as a compile error rather than a
		// silent skip.
		return true
	}
	return !obj.ModTime().After(src.ModTime())
}
