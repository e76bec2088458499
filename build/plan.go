// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// BuildType selects the kind of link artifact.
type BuildType int

const (
	// Executable links a runnable program (an .html/.js/.wasm bundle
	// for web, a native activity .so for Android).
	Executable BuildType = iota
	// SharedLibrary links a dynamic library.
	SharedLibrary
	// StaticArchive produces an ar archive.
	StaticArchive
)

// Entry is one planned unit of work: a module or project built for one
// target (and ABI, for Android) with fully composed flags and the
// resolved source list. Entries are created fresh for every build
// invocation and never cached.
type Entry struct {
	// Name is the module or project name; it names the artifact.
	Name string
	// Dir is the module or project root directory.
	Dir string

	Target    Target
	ABI       ABI
	BuildType BuildType
	Flags     Flags

	// Sources are absolute paths of compilable sources.
	Sources []string
	// UseCPP is set when any source is C++, selecting the C++ driver
	// for the link.
	UseCPP bool
	// LinkExtras are appended to the link flags (web shell template and
	// asset preloads for project web builds).
	LinkExtras []string
}

// compileExts are the source extensions the orchestrator compiles.
var compileExts = map[string]bool{
	".c": true, ".cc": true, ".cpp": true, ".cxx": true,
	".xpp": true, ".m": true, ".mm": true,
}

// cppExts are the extensions compiled with the C++ driver.
var cppExts = map[string]bool{
	".cc": true, ".cpp": true, ".cxx": true, ".xpp": true, ".mm": true,
}

func isCPPSource(path string) bool {
	return cppExts[strings.ToLower(filepath.Ext(path))]
}

// normalizeSources resolves the source list against rootDir and drops
// non-compilable files with a notice.
func normalizeSources(rootDir string, sources []string) []string {
	var out []string
	for _, src := range sources {
		if strings.TrimSpace(src) == "" {
			continue
		}
		if !filepath.IsAbs(src) {
			src = filepath.Join(rootDir, src)
		}
		if !compileExts[strings.ToLower(filepath.Ext(src))] {
			log.Infof("skip non-compilable file: %s", src)
			continue
		}
		out = append(out, filepath.Clean(src))
	}
	return out
}

func anyCPP(sources []string) bool {
	for _, src := range sources {
		if isCPPSource(src) {
			return true
		}
	}
	return false
}

// objRoot returns the object-output directory of the entry.
func (e Entry) objRoot() string {
	root := filepath.Join(e.Dir, "obj", e.Target.OutDirName(), e.Name)
	if e.Target == Android {
		root = filepath.Join(root, e.ABI.Dir())
	}
	return root
}

// objPath derives the object file path for a source. Desktop and web
// objects mirror the source subtree under the object root; Android
// objects are flattened per ABI.
func (e Entry) objPath(src string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".o"
	if e.Target == Android {
		return filepath.Join(e.objRoot(), base)
	}
	srcDir := filepath.Dir(src)
	rel, err := filepath.Rel(e.Dir, srcDir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Join(e.objRoot(), base)
	}
	return filepath.Join(e.objRoot(), rel, base)
}

// outPath returns the link artifact path of the entry.
func (e Entry) outPath() string {
	switch e.Target {
	case Android:
		dir := filepath.Join(e.Dir, "Android", e.ABI.Dir())
		if e.BuildType == StaticArchive {
			return filepath.Join(dir, "lib"+e.Name+".a")
		}
		return filepath.Join(dir, "lib"+e.Name+".so")
	case Web:
		dir := filepath.Join(e.Dir, "Web")
		if e.BuildType == StaticArchive {
			return filepath.Join(dir, "lib"+e.Name+".a")
		}
		return filepath.Join(dir, e.Name+".html")
	}
	switch e.BuildType {
	case StaticArchive:
		return filepath.Join(e.Dir, e.Target.OutDirName(), "lib"+e.Name+".a")
	case SharedLibrary:
		return filepath.Join(e.Dir, e.Target.OutDirName(), "lib"+e.Name+".so")
	}
	return filepath.Join(e.Dir, e.Name+exeSuffix())
}

func (e Entry) String() string {
	if e.Target == Android {
		return fmt.Sprintf("%s/%s/%s", e.Name, e.Target, e.ABI)
	}
	return fmt.Sprintf("%s/%s", e.Name, e.Target)
}
