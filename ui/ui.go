// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ui provides user interface functionalities.
//
// Build components receive a UI value explicitly instead of sharing a
// process-wide trace object, so tests can capture output and callers
// can decide how progress is rendered.
package ui

import (
	"os"

	"golang.org/x/term"
)

// Spinner reports the lifetime of a long-running operation.
type Spinner interface {
	// Start starts the spinner with the specified formatted string.
	Start(format string, args ...any)
	// Stop stops the spinner, outputting an error if provided.
	Stop(err error)
	// Done finishes the spinner with message.
	Done(format string, args ...any)
}

// UI is a user interface for build progress and diagnostics.
type UI interface {
	// Infof reports a message to the user.
	Infof(format string, args ...any)
	// Warningf reports a non-fatal problem.
	Warningf(format string, args ...any)
	// Errorf reports a failure.
	Errorf(format string, args ...any)
	// Progress reports per-unit progress, e.g. "[3/12] CC main.c".
	Progress(done, total int, desc string)
	// NewSpinner returns a new spinner.
	NewSpinner() Spinner
}

// Default returns the UI appropriate for the current stdout:
// a line-rewriting terminal UI when stdout is a terminal,
// a log-based UI otherwise.
func Default() UI {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return &TermUI{}
	}
	return LogUI{}
}
