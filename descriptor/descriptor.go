// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package descriptor loads module and project build descriptors.
//
// A module descriptor is a module.json file next to the module sources.
// A project descriptor is a main.mk JSON file in the project root.
// Descriptors are immutable after load.
package descriptor

import (
	"encoding/json"
	"strings"

	"github.com/crosside/crossbuild/toolsupport/shutil"
)

// Platform block keys as stored in a loaded descriptor.
const (
	BlockDesktop = "desktop"
	BlockAndroid = "android"
	BlockWeb     = "web"
)

// PlatformBlock is the per-target subset of a module descriptor:
// sources, includes, flags, and an optional web shell template.
type PlatformBlock struct {
	Src      []string
	Include  []string
	CPPArgs  []string
	CCArgs   []string
	LDArgs   []string
	Template string
}

// ModuleDescriptor describes one reusable compiled unit (library).
type ModuleDescriptor struct {
	// Name is the module identity, unique in a registry.
	Name string
	// Dir is the absolute module source directory.
	Dir string
	// Static selects a static archive instead of a shared library.
	Static bool
	// Depends lists names of modules this module depends on.
	Depends []string
	// Systems is the build-system allow-list ("linux", "windows",
	// "android", "emscripten"). Empty means all.
	Systems []string

	Src     []string
	Include []string
	CPPArgs []string
	CCArgs  []string
	LDArgs  []string

	blocks map[string]PlatformBlock
}

// Block returns the platform block for the given key
// (BlockDesktop, BlockAndroid or BlockWeb).
func (m *ModuleDescriptor) Block(key string) PlatformBlock {
	return m.blocks[key]
}

// SupportsSystem reports whether the module allows the given
// build-system identifier. An empty allow-list allows everything.
func (m *ModuleDescriptor) SupportsSystem(system string) bool {
	if len(m.Systems) == 0 {
		return true
	}
	for _, s := range m.Systems {
		if s == system {
			return true
		}
	}
	return false
}

// FlagBlock holds per-platform project flag overrides.
type FlagBlock struct {
	CPP []string
	CC  []string
	LD  []string
}

// ProjectDescriptor describes a top-level application.
type ProjectDescriptor struct {
	// Name is the project and output artifact name.
	Name string
	// Root is the resolved absolute project root directory.
	Root string
	// FilePath is the descriptor file the project was loaded from.
	FilePath string
	// Modules lists referenced module names. Empty falls back to the
	// globally configured module list.
	Modules []string

	// Src and Include are absolute paths.
	Src     []string
	Include []string

	Main    FlagBlock
	Desktop FlagBlock
	Android FlagBlock
	Web     FlagBlock

	// AndroidPackage and AndroidActivity identify the Android app.
	AndroidPackage  string
	AndroidActivity string
	// WebShell is the emscripten shell template path (web only).
	WebShell string
}

// flagList accepts either a JSON list of flags or a single flag string
// that is split on whitespace (quotes keep a flag together).
type flagList []string

func (f *flagList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = shutil.Split(s)
		return nil
	}
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	var out []string
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*f = out
	return nil
}

// stringList trims entries and drops empty ones.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	var out []string
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}
