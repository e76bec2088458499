// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package localexec implements local command execution.
package localexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"github.com/crosside/crossbuild/execute"
)

// LocalExec implements the execute.Executor interface and runs commands
// on the local machine, one blocking invocation at a time per caller.
type LocalExec struct{}

// Run runs cmd with LocalExec.
func Run(ctx context.Context, cmd *execute.Cmd) error {
	return LocalExec{}.Run(ctx, cmd)
}

// forkSema bounds concurrent process spawns. The orchestrator itself is
// sequential, but several builder instances may share one process.
var forkSema = semaphore.NewWeighted(int64(runtime.NumCPU()))

// Run runs a cmd, capturing its stdout/stderr into the cmd buffers.
// A non-zero exit is returned as *execute.ExitError carrying the
// captured error stream.
func (LocalExec) Run(ctx context.Context, cmd *execute.Cmd) error {
	if len(cmd.Args) == 0 {
		return fmt.Errorf("no arguments in the command. ID: %s", cmd.ID)
	}
	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Env = cmd.Env
	c.Dir = cmd.Dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := forkSema.Acquire(ctx, 1); err != nil {
		return err
	}
	err := c.Start()
	forkSema.Release(1)
	if err == nil {
		err = c.Wait()
	}

	cmd.StdoutWriter().Write(stdout.Bytes())
	cmd.StderrWriter().Write(stderr.Bytes())

	code := exitCode(err)
	log.Debugf("%s %s exit=%d stdout=%d stderr=%d", cmd.ActionName, cmd.ID, code, stdout.Len(), stderr.Len())
	if code != 0 {
		return &execute.ExitError{ExitCode: code, Stderr: stderr.Bytes()}
	}
	return nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var eerr *exec.ExitError
	if errors.As(err, &eerr) {
		return eerr.ProcessState.ExitCode()
	}
	return 1
}
