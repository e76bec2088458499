// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

type logSpinner struct {
	started time.Time
}

// Start implements the ui.Spinner interface.
// Because a log-based UI cannot support an animated spinner, this is used only to report spinner start.
func (l *logSpinner) Start(format string, args ...any) {
	l.started = time.Now()
	log.Infof(format, args...)
}

// Stop implements the ui.Spinner interface, reporting how long the operation took to complete.
func (l *logSpinner) Stop(err error) {
	if err != nil {
		log.Warnf("-> failed %s %v", time.Since(l.started), err)
		return
	}
	log.Infof("-> done %s", time.Since(l.started))
}

// Done finishes the spinner with message.
func (l *logSpinner) Done(format string, args ...any) {
	log.Infof("-> %s %s", fmt.Sprintf(format, args...), time.Since(l.started))
}

// LogUI is a log-based UI.
type LogUI struct{}

// NewSpinner returns an implementation of ui.Spinner.
func (LogUI) NewSpinner() Spinner {
	return &logSpinner{}
}

// Infof reports to the log at info level.
func (LogUI) Infof(format string, args ...any) {
	log.Helper()
	log.Infof(format, args...)
}

// Warningf reports to the log at warn level.
func (LogUI) Warningf(format string, args ...any) {
	log.Helper()
	log.Warnf(format, args...)
}

// Errorf reports to the log at error level.
func (LogUI) Errorf(format string, args ...any) {
	log.Helper()
	log.Errorf(format, args...)
}

// Progress logs one line per progress update.
func (LogUI) Progress(done, total int, desc string) {
	log.Infof("[%d/%d] %s", done, total, desc)
}
