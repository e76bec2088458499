// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import "strings"

var (
	releaseCompileFlags = []string{"-O2", "-DNDEBUG"}
	debugCompileFlags   = []string{"-O0", "-g3", "-DDEBUG", "-fno-omit-frame-pointer"}
)

// ApplyMode filters desktop flag lists for a build mode: any
// optimization, debug-info, and assertion-control flags already present
// are stripped, then the fixed per-mode set is appended. Mode-specific
// flags can therefore never be duplicated or left stale from descriptor
// authoring, and the debug and release token sets are mutually
// exclusive.
func ApplyMode(cc, cpp, ld []string, mode Mode) (ccOut, cppOut, ldOut []string) {
	modeFlags := releaseCompileFlags
	if mode == Debug {
		modeFlags = debugCompileFlags
	}
	ccOut = append(filterCompileFlags(cc), modeFlags...)
	cppOut = append(filterCompileFlags(cpp), modeFlags...)
	ldOut = filterLinkFlags(ld, mode)
	return ccOut, cppOut, ldOut
}

func filterCompileFlags(flags []string) []string {
	out := make([]string, 0, len(flags))
	for _, flag := range flags {
		flag = strings.TrimSpace(flag)
		switch {
		case flag == "":
		case flag == "-DDEBUG", flag == "-DNDEBUG", flag == "-s":
		case strings.HasPrefix(flag, "-O"):
		case strings.HasPrefix(flag, "-g"):
		default:
			out = append(out, flag)
		}
	}
	return out
}

func filterLinkFlags(flags []string, mode Mode) []string {
	out := make([]string, 0, len(flags))
	for _, flag := range flags {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			continue
		}
		// Strip-symbols link flags defeat a debug build.
		if mode == Debug && (flag == "-s" || flag == "-Wl,-s") {
			continue
		}
		out = append(out, flag)
	}
	return out
}
