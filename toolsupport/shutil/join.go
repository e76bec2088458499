// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package shutil formats and parses command lines for display and
// descriptor flag strings.
package shutil

import "strings"

// Join joins command line args into a single human readable string.
// Args containing whitespace or quotes are double-quoted so the
// printed line can be copied back into a shell.
func Join(args []string) string {
	var sb strings.Builder
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(Quote(arg))
	}
	return sb.String()
}

// Quote quotes arg if it needs quoting for a shell, or returns it as is.
func Quote(arg string) string {
	if arg == "" {
		return `""`
	}
	if !strings.ContainsAny(arg, " \t\n\"'\\$") {
		return arg
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for _, ch := range arg {
		switch ch {
		case '"', '\\', '$':
			sb.WriteByte('\\')
		}
		sb.WriteRune(ch)
	}
	sb.WriteByte('"')
	return sb.String()
}
