// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// TermUI is a terminal-based UI that rewrites the progress line in place.
type TermUI struct {
	progressShown bool
}

func (t *TermUI) width() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

func (t *TermUI) clearProgress() {
	if t.progressShown {
		fmt.Fprint(os.Stdout, "\r\033[K")
		t.progressShown = false
	}
}

// Infof reports to stdout on its own line.
func (t *TermUI) Infof(format string, args ...any) {
	t.clearProgress()
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}

// Warningf reports to stderr on its own line.
func (t *TermUI) Warningf(format string, args ...any) {
	t.clearProgress()
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// Errorf reports to stderr on its own line.
func (t *TermUI) Errorf(format string, args ...any) {
	t.clearProgress()
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}

// Progress rewrites the current line with "[done/total] desc".
func (t *TermUI) Progress(done, total int, desc string) {
	line := fmt.Sprintf("[%d/%d] %s", done, total, desc)
	if w := t.width(); len(line) > w-1 {
		line = elideMiddle(line, w-1)
	}
	fmt.Fprintf(os.Stdout, "\r\033[K%s", line)
	t.progressShown = true
	if done == total {
		fmt.Fprintln(os.Stdout)
		t.progressShown = false
	}
}

// NewSpinner returns an implementation of ui.Spinner.
func (t *TermUI) NewSpinner() Spinner {
	return &termSpinner{ui: t}
}

type termSpinner struct {
	ui      *TermUI
	started time.Time
	msg     string
}

func (s *termSpinner) Start(format string, args ...any) {
	s.started = time.Now()
	s.msg = fmt.Sprintf(format, args...)
	s.ui.clearProgress()
	fmt.Fprintf(os.Stdout, "%s...", s.msg)
}

func (s *termSpinner) Stop(err error) {
	if err != nil {
		fmt.Fprintf(os.Stdout, " failed %s %v\n", time.Since(s.started).Round(time.Millisecond), err)
		return
	}
	fmt.Fprintf(os.Stdout, " done %s\n", time.Since(s.started).Round(time.Millisecond))
}

func (s *termSpinner) Done(format string, args ...any) {
	fmt.Fprintf(os.Stdout, " %s %s\n", fmt.Sprintf(format, args...), time.Since(s.started).Round(time.Millisecond))
}

// elideMiddle truncates msg in the middle so it fits in width columns.
func elideMiddle(msg string, width int) string {
	if width < 5 || len(msg) <= width {
		return msg
	}
	const sep = "..."
	keep := width - len(sep)
	head := keep / 2
	tail := keep - head
	return msg[:head] + sep + msg[len(msg)-tail:]
}

// StripANSIEscapeCodes removes ANSI escape sequences from tool output
// before it is embedded in log lines.
func StripANSIEscapeCodes(s string) string {
	if !strings.ContainsRune(s, '\033') {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\033' {
			sb.WriteByte(s[i])
			continue
		}
		// Skip "\033[...m" style sequences.
		i++
		if i < len(s) && s[i] == '[' {
			for i < len(s) && !(s[i] >= '@' && s[i] <= '~' && s[i] != '[') {
				i++
			}
		}
	}
	return sb.String()
}
