// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package cleancmd provides the clean subcommand.
package cleancmd

import (
	"fmt"
	"strings"

	"github.com/maruel/subcommands"

	"github.com/crosside/crossbuild/build"
	"github.com/crosside/crossbuild/ui"
	"github.com/crosside/crossbuild/workspace"
)

// Cmd returns the Command for the `clean` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "clean [module|app] <name> [target...]",
		ShortDesc: "removes build outputs of a module or project",
		LongDesc: `removes object trees and linked artifacts of a module or project.

 $ crossbuild clean [module|app] <name> [target...]

With no targets every target is cleaned. Sources and descriptors are
never touched.
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
	abis    string
	dryRun  bool
}

func (c *run) init() {
	c.Flags.StringVar(&c.rootDir, "C", ".", "workspace root directory")
	c.Flags.StringVar(&c.abis, "abi", "", `android ABI list, comma separated. "arm7", "arm64". empty cleans all`)
	c.Flags.BoolVar(&c.dryRun, "n", false, "report what would be removed without removing it")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if err := c.run(args); err != nil {
		fmt.Fprintf(a.GetErr(), "clean: %v\n", err)
		return 1
	}
	return 0
}

func (c *run) run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing clean subject. usage: clean [module|app] <name> [target...]")
	}
	kind := "app"
	switch strings.ToLower(args[0]) {
	case "module", "mod":
		kind = "module"
		args = args[1:]
	case "app", "project", "proj":
		args = args[1:]
	}
	if len(args) == 0 {
		return fmt.Errorf("missing %s name", kind)
	}
	name, targetTokens := args[0], args[1:]

	ws, err := workspace.Load(c.rootDir)
	if err != nil {
		return err
	}
	targets := build.AllTargets
	if len(targetTokens) > 0 {
		targets, err = build.ParseTargets(targetTokens, build.Desktop)
		if err != nil {
			return err
		}
	}
	abis, err := build.ParseABIs(c.abis)
	if err != nil {
		return err
	}

	cleaner := build.Cleaner{UI: ui.Default(), DryRun: c.dryRun}
	var removed int
	if kind == "module" {
		m := ws.Registry.Lookup(name)
		if m == nil {
			return fmt.Errorf("module not found: %s", name)
		}
		removed, err = cleaner.CleanModule(m, targets, abis)
	} else {
		p, ferr := ws.FindProject(name)
		if ferr != nil {
			return ferr
		}
		removed, err = cleaner.CleanProject(p, targets, abis)
	}
	if err != nil {
		return err
	}
	if removed == 0 {
		ui.Default().Infof("nothing to clean for %s %s", kind, name)
	}
	return nil
}
