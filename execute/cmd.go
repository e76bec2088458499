// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package execute runs external toolchain commands.
package execute

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/crosside/crossbuild/toolsupport/shutil"
)

// Executor is an interface to run the cmd.
type Executor interface {
	Run(ctx context.Context, cmd *Cmd) error
}

// Cmd includes all the information required to run a toolchain command.
type Cmd struct {
	// ID is used as a unique identifier for this action in logs.
	// It does not have to be human-readable, so using a UUID is fine.
	ID string

	// Desc is a short, human-readable identifier shown to the user
	// when referencing this action. Example: "CXX hello.o".
	Desc string

	// ActionName is the kind of action. Example: "cc", "link", "aapt".
	ActionName string

	// Args holds the command line. Args[0] is the tool path.
	Args []string

	// Env specifies the environment of the process.
	// Nil means inherit the current environment.
	Env []string

	// Dir specifies the working directory of the cmd.
	Dir string

	stdoutBuffer, stderrBuffer bytes.Buffer
}

// NewCmd creates a cmd for the given action with a fresh ID.
func NewCmd(actionName, desc string, args []string) *Cmd {
	return &Cmd{
		ID:         uuid.NewString(),
		Desc:       desc,
		ActionName: actionName,
		Args:       args,
	}
}

// String returns an ID of the cmd.
func (c *Cmd) String() string {
	return c.ID
}

// Command returns a human readable command line string.
func (c *Cmd) Command() string {
	return shutil.Join(c.Args)
}

// StdoutWriter returns a writer set for stdout.
func (c *Cmd) StdoutWriter() io.Writer {
	c.stdoutBuffer.Reset()
	return &c.stdoutBuffer
}

// StderrWriter returns a writer set for stderr.
func (c *Cmd) StderrWriter() io.Writer {
	c.stderrBuffer.Reset()
	return &c.stderrBuffer
}

// Stdout returns stdout output of the cmd.
func (c *Cmd) Stdout() []byte {
	return c.stdoutBuffer.Bytes()
}

// Stderr returns stderr output of the cmd.
func (c *Cmd) Stderr() []byte {
	return c.stderrBuffer.Bytes()
}

// ExitError is an error of cmd exit.
type ExitError struct {
	ExitCode int
	// Stderr is the captured error stream of the failed cmd.
	Stderr []byte
}

func (e ExitError) Error() string {
	if len(e.Stderr) > 0 {
		return fmt.Sprintf("exit=%d: %s", e.ExitCode, bytes.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("exit=%d", e.ExitCode)
}
