// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package listcmd provides the list subcommand.
package listcmd

import (
	"fmt"
	"strings"

	"github.com/maruel/subcommands"

	"github.com/crosside/crossbuild/workspace"
)

// Cmd returns the Command for the `list` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "list [modules|apps]",
		ShortDesc: "lists workspace modules and projects",
		LongDesc: `lists the modules and projects of the workspace.

 $ crossbuild list            # both
 $ crossbuild list modules
 $ crossbuild list apps
`,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	rootDir string
}

func (c *run) init() {
	c.Flags.StringVar(&c.rootDir, "C", ".", "workspace root directory")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if err := c.run(a, args); err != nil {
		fmt.Fprintf(a.GetErr(), "list: %v\n", err)
		return 1
	}
	return 0
}

func (c *run) run(a subcommands.Application, args []string) error {
	what := "all"
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "modules", "module", "mod":
			what = "modules"
		case "apps", "app", "projects", "project", "proj":
			what = "apps"
		default:
			return fmt.Errorf("unknown subject %q (use: modules, apps)", args[0])
		}
	}
	ws, err := workspace.Load(c.rootDir)
	if err != nil {
		return err
	}
	w := a.GetOut()
	if what != "apps" {
		fmt.Fprintln(w, "modules:")
		for _, name := range ws.Registry.Names() {
			m := ws.Registry.Lookup(name)
			kind := "shared"
			if m.Static {
				kind = "static"
			}
			fmt.Fprintf(w, "  %-24s %s  %s\n", name, kind, m.Dir)
		}
	}
	if what != "modules" {
		fmt.Fprintln(w, "apps:")
		for _, p := range ws.Projects() {
			fmt.Fprintf(w, "  %-24s %s\n", p.Name, p.Root)
		}
	}
	return nil
}
