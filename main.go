// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Crossbuild compiles C/C++ modules and apps for desktop, Android and
// the web from one workspace, and packages Android builds into signed
// APKs.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"github.com/crosside/crossbuild/subcmd/buildcmd"
	"github.com/crosside/crossbuild/subcmd/cleancmd"
	"github.com/crosside/crossbuild/subcmd/listcmd"
	"github.com/crosside/crossbuild/subcmd/versioncmd"
)

// version is overridden at link time by -ldflags="-X main.version=...".
var version = "dev"

func main() {
	if lvl := os.Getenv("CROSSBUILD_LOG"); lvl != "" {
		if parsed, err := log.ParseLevel(lvl); err == nil {
			log.SetLevel(parsed)
		}
	}
	app := &subcommands.DefaultApplication{
		Name:  "crossbuild",
		Title: "build tool for cross-platform native apps",
		Commands: []*subcommands.Command{
			buildcmd.Cmd(),
			cleancmd.Cmd(),
			listcmd.Cmd(),
			versioncmd.Cmd(version),
			subcommands.CmdHelp,
		},
	}
	os.Exit(subcommands.Run(app, nil))
}
