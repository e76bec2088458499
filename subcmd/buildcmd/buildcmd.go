// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package buildcmd provides the build subcommand.
package buildcmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/maruel/subcommands"

	"github.com/crosside/crossbuild/apk"
	"github.com/crosside/crossbuild/build"
	"github.com/crosside/crossbuild/ui"
	"github.com/crosside/crossbuild/workspace"
)

const usage = `build a module or a project.

 $ crossbuild build [module|app] <name> [target...]

Targets: desktop (default from config.json), android, web.
Building an app builds its module closure first, then compiles and
links the app itself. Android app builds are packaged into a signed
APK; pass -deploy to install on the connected device.
`

// Cmd returns the Command for the `build` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "build [module|app] <name> [target...]",
		ShortDesc: "builds a module or project",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	rootDir        string
	mode           string
	abis           string
	fullBuild      bool
	runAfter       bool
	pack           bool
	deploy         bool
	requireAllABIs bool
}

func (c *run) init() {
	c.Flags.StringVar(&c.rootDir, "C", ".", "workspace root directory")
	c.Flags.StringVar(&c.mode, "mode", "release", `desktop build mode. "release" or "debug"`)
	c.Flags.StringVar(&c.abis, "abi", "", `android ABI list, comma separated. "arm7", "arm64". empty builds all`)
	c.Flags.BoolVar(&c.fullBuild, "full", false, "recompile every source regardless of timestamps")
	c.Flags.BoolVar(&c.runAfter, "run", false, "start the app after a successful build (desktop executable or android activity)")
	c.Flags.BoolVar(&c.pack, "package", true, "package android app builds into a signed APK")
	c.Flags.BoolVar(&c.deploy, "deploy", false, "install the packaged APK on the connected device")
	c.Flags.BoolVar(&c.requireAllABIs, "require-all-abis", false, "fail packaging when a native library is missing for any ABI")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := c.run(ctx, args); err != nil {
		fmt.Fprintf(a.GetErr(), "build: %v\n", err)
		return 1
	}
	return 0
}

// parseSubject splits "build [module|app] <name> [target...]"; a bare
// first argument is an app name.
func parseSubject(args []string) (kind, name string, targets []string, err error) {
	if len(args) == 0 {
		return "", "", nil, fmt.Errorf("missing build subject. usage: build [module|app] <name> [target...]")
	}
	switch strings.ToLower(args[0]) {
	case "module", "mod":
		kind = "module"
	case "app", "project", "proj":
		kind = "app"
	default:
		return "app", args[0], args[1:], nil
	}
	if len(args) < 2 {
		return "", "", nil, fmt.Errorf("missing %s name. usage: build %s <name> [target...]", kind, kind)
	}
	return kind, args[1], args[2:], nil
}

func (c *run) run(ctx context.Context, args []string) error {
	kind, name, targetTokens, err := parseSubject(args)
	if err != nil {
		return err
	}
	ws, err := workspace.Load(c.rootDir)
	if err != nil {
		return err
	}
	mode, err := build.ParseMode(c.mode)
	if err != nil {
		return err
	}
	defaultTarget, err := build.ParseTarget(ws.Config.DefaultTarget)
	if err != nil {
		defaultTarget = build.Desktop
	}
	targets, err := build.ParseTargets(targetTokens, defaultTarget)
	if err != nil {
		return err
	}
	abis, err := build.ParseABIs(c.abis)
	if err != nil {
		return err
	}

	out := ui.Default()
	b := build.New(build.Options{
		Registry:      ws.Registry,
		Toolchain:     ws.Toolchain,
		UI:            out,
		Mode:          mode,
		FullBuild:     c.fullBuild,
		ModulesRoot:   ws.ModulesRoot(),
		LibRoot:       ws.LibRoot(),
		GlobalModules: ws.Config.Modules,
		StopRequested: func() bool { return ctx.Err() != nil },
	})

	for _, target := range targets {
		switch kind {
		case "module":
			m := ws.Registry.Lookup(name)
			if m == nil {
				return fmt.Errorf("module not found: %s", name)
			}
			if err := b.BuildModule(ctx, m, target, abis); err != nil {
				return err
			}
		default:
			p, err := ws.FindProject(name)
			if err != nil {
				return err
			}
			popts := build.ProjectOptions{
				BuildModules: true,
				Run:          c.runAfter,
			}
			if err := b.BuildProject(ctx, p, target, abis, popts); err != nil {
				return err
			}
			if target == build.Android && c.pack {
				packager := &apk.Packager{
					Toolchain:      ws.Toolchain,
					Executor:       b.Executor(),
					UI:             out,
					TemplatesRoot:  ws.TemplatesRoot(),
					RequireAllABIs: c.requireAllABIs,
				}
				app, err := packager.Package(ctx, p, abis)
				if err != nil {
					return err
				}
				if c.deploy {
					if err := packager.Deploy(ctx, app, c.runAfter); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}
