// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package localexec

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/crosside/crossbuild/execute"
)

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses /bin/sh")
	}
	ctx := context.Background()

	cmd := execute.NewCmd("sh", "echo", []string{"/bin/sh", "-c", "echo hello"})
	if err := Run(ctx, cmd); err != nil {
		t.Fatalf("Run=%v; want nil", err)
	}
	if got := strings.TrimSpace(string(cmd.Stdout())); got != "hello" {
		t.Errorf("stdout=%q; want %q", got, "hello")
	}
}

func TestRun_ExitError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses /bin/sh")
	}
	ctx := context.Background()

	cmd := execute.NewCmd("sh", "fail", []string{"/bin/sh", "-c", "echo broken >&2; exit 3"})
	err := Run(ctx, cmd)
	var eerr *execute.ExitError
	if !errors.As(err, &eerr) {
		t.Fatalf("Run=%v; want *execute.ExitError", err)
	}
	if eerr.ExitCode != 3 {
		t.Errorf("ExitCode=%d; want 3", eerr.ExitCode)
	}
	if !strings.Contains(string(eerr.Stderr), "broken") {
		t.Errorf("Stderr=%q; want to contain %q", eerr.Stderr, "broken")
	}
}

func TestRun_NoArgs(t *testing.T) {
	ctx := context.Background()
	if err := Run(ctx, &execute.Cmd{ID: "x"}); err == nil {
		t.Error("Run with no args succeeded; want error")
	}
}
