// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/crosside/crossbuild/descriptor"
	"github.com/crosside/crossbuild/ui"
)

// Cleaner removes build outputs for modules and projects.
// Only paths the builder itself writes are touched; sources and
// descriptors are never candidates.
type Cleaner struct {
	UI ui.UI
	// DryRun reports what would be removed without removing it.
	DryRun bool
}

// CleanModule removes the object trees and library artifacts of a
// module for the given targets. It returns the number of paths removed
// (or, in dry-run, that would be removed).
func (c Cleaner) CleanModule(m *descriptor.ModuleDescriptor, targets []Target, abis []ABI) (int, error) {
	var paths []string
	for _, t := range targets {
		paths = append(paths, filepath.Join(m.Dir, "obj", t.OutDirName(), m.Name))
		switch t {
		case Android:
			for _, abi := range abiList(abis) {
				paths = append(paths, LibraryFile(m, t, abi))
			}
		default:
			paths = append(paths, LibraryFile(m, t, 0))
		}
	}
	return c.removeAll(paths)
}

// CleanProject removes the object trees and linked artifacts of a
// project for the given targets, including the web companion files and
// the Android packaging work directory.
func (c Cleaner) CleanProject(p *descriptor.ProjectDescriptor, targets []Target, abis []ABI) (int, error) {
	var paths []string
	for _, t := range targets {
		paths = append(paths, filepath.Join(p.Root, "obj", t.OutDirName(), p.Name))
		switch t {
		case Android:
			for _, abi := range abiList(abis) {
				paths = append(paths, filepath.Join(p.Root, "Android", abi.Dir(), "lib"+p.Name+".so"))
			}
			paths = append(paths, filepath.Join(p.Root, "Android", p.Name))
		case Web:
			html := filepath.Join(p.Root, "Web", p.Name+".html")
			base := strings.TrimSuffix(html, filepath.Ext(html))
			paths = append(paths,
				html,
				base+".js",
				base+".wasm",
				base+".data",
				base+".worker.js",
				filepath.Join(p.Root, "Web", "lib"+p.Name+".a"),
			)
		default:
			paths = append(paths, filepath.Join(p.Root, p.Name+exeSuffix()))
		}
	}
	return c.removeAll(paths)
}

func abiList(abis []ABI) []ABI {
	if len(abis) == 0 {
		return DefaultABIs
	}
	return abis
}

func (c Cleaner) removeAll(paths []string) (int, error) {
	removed := 0
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if c.DryRun {
			c.UI.Infof("would remove %s", path)
			removed++
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return removed, err
		}
		c.UI.Infof("removed %s", path)
		removed++
	}
	return removed, nil
}
