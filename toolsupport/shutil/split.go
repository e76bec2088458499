// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

import "strings"

// Split splits a descriptor flag string into individual flags.
// Flags are separated by whitespace; double quotes keep a flag with
// embedded spaces together. Empty fields are dropped.
func Split(s string) []string {
	var args []string
	var sb strings.Builder
	inquote := false
	flush := func() {
		if sb.Len() > 0 {
			args = append(args, sb.String())
			sb.Reset()
		}
	}
	for _, ch := range s {
		switch {
		case ch == '"':
			inquote = !inquote
		case !inquote && (ch == ' ' || ch == '\t' || ch == '\n'):
			flush()
		default:
			sb.WriteRune(ch)
		}
	}
	flush()
	return args
}
