// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package descriptor

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
)

// ProjectFiles returns every main.mk descriptor under root, sorted.
func ProjectFiles(root string) []string {
	var files []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == "main.mk" {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files
}

// DiscoverProjects loads every project descriptor under root. Invalid
// descriptors are reported and skipped.
func DiscoverProjects(root string) []*ProjectDescriptor {
	var out []*ProjectDescriptor
	for _, file := range ProjectFiles(root) {
		p, err := LoadProject(file)
		if err != nil {
			log.Warnf("skip invalid project file %s: %v", file, err)
			continue
		}
		out = append(out, p)
	}
	return out
}

// FindProject locates a project by name under root, matching the
// declared name first and the containing directory name second.
func FindProject(root, name string) (*ProjectDescriptor, error) {
	var byDir *ProjectDescriptor
	for _, p := range DiscoverProjects(root) {
		if p.Name == name {
			return p, nil
		}
		if byDir == nil && filepath.Base(p.Root) == name {
			byDir = p
		}
	}
	if byDir != nil {
		return byDir, nil
	}
	return nil, fmt.Errorf("project not found under %s: %s", root, name)
}
