// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package workspace locates a crossbuild workspace and loads the state
// shared by every command: configuration, the module registry, and the
// resolved toolchain.
//
// A workspace is a directory with modules/ and projects/ trees and an
// optional config.json.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/crosside/crossbuild/descriptor"
	"github.com/crosside/crossbuild/toolchain"
)

// Workspace is a loaded workspace.
type Workspace struct {
	Root      string
	Config    descriptor.Config
	Registry  *descriptor.Registry
	Toolchain toolchain.Paths
}

// Load loads the workspace rooted at dir ("" means the working
// directory).
func Load(dir string) (*Workspace, error) {
	if dir == "" {
		dir = "."
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("workspace root is not a directory: %s", root)
	}
	cfgFile := filepath.Join(root, "config.json")
	return &Workspace{
		Root:      root,
		Config:    descriptor.LoadConfig(cfgFile),
		Registry:  descriptor.DiscoverModules(filepath.Join(root, "modules")),
		Toolchain: toolchain.Resolve(cfgFile),
	}, nil
}

// ModulesRoot is the directory module sources live under.
func (w *Workspace) ModulesRoot() string { return filepath.Join(w.Root, "modules") }

// ProjectsRoot is the directory project trees live under.
func (w *Workspace) ProjectsRoot() string { return filepath.Join(w.Root, "projects") }

// LibRoot is the prebuilt-library directory added to link search paths.
func (w *Workspace) LibRoot() string { return filepath.Join(w.Root, "libs") }

// TemplatesRoot holds shared resource templates (Android launcher
// icons).
func (w *Workspace) TemplatesRoot() string { return filepath.Join(w.Root, "Templates") }

// Projects loads every project descriptor of the workspace.
func (w *Workspace) Projects() []*descriptor.ProjectDescriptor {
	return descriptor.DiscoverProjects(w.ProjectsRoot())
}

// FindProject locates a project of the workspace by name.
func (w *Workspace) FindProject(name string) (*descriptor.ProjectDescriptor, error) {
	return descriptor.FindProject(w.ProjectsRoot(), name)
}
