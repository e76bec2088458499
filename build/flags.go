// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/crosside/crossbuild/descriptor"
)

// FlagSet accumulates compiler or linker flags in order, dropping
// duplicates and empty entries. The result is taken once with Flags;
// composing the same inputs twice yields the same list.
type FlagSet struct {
	seen  map[string]bool
	flags []string
}

// NewFlagSet returns a flag set seeded with the given flags.
func NewFlagSet(flags ...string) *FlagSet {
	f := &FlagSet{seen: map[string]bool{}}
	f.Add(flags...)
	return f
}

// Add appends the flags that are not already present.
func (f *FlagSet) Add(flags ...string) {
	for _, flag := range flags {
		flag = strings.TrimSpace(flag)
		if flag == "" || f.seen[flag] {
			continue
		}
		f.seen[flag] = true
		f.flags = append(f.flags, flag)
	}
}

// Flags returns the composed flag list.
func (f *FlagSet) Flags() []string {
	return slices.Clone(f.flags)
}

// Composer composes per-target flag lists for modules and projects,
// pulling include and link flags transitively from the dependency
// closure in the registry.
type Composer struct {
	Registry *descriptor.Registry
	Target   Target
	ABI      ABI
}

// Flags is a composed, ordered, duplicate-free set of compile and link
// arguments for one (module or project, target, ABI) combination.
type Flags struct {
	CC  []string
	CPP []string
	LD  []string
}

// addIncludeFlags adds -I flags for the module's own src/, include/ and
// include/<platform> directories plus descriptor-declared include dirs.
func (c Composer) addIncludeFlags(m *descriptor.ModuleDescriptor, block descriptor.PlatformBlock, cc, cpp *FlagSet) {
	dirs := []string{
		filepath.Join(m.Dir, "src"),
		filepath.Join(m.Dir, "include"),
		filepath.Join(m.Dir, "include", c.Target.IncludeSuffix()),
	}
	for _, rel := range m.Include {
		dirs = append(dirs, filepath.Join(m.Dir, rel))
	}
	for _, rel := range block.Include {
		dirs = append(dirs, filepath.Join(m.Dir, rel))
	}
	for _, dir := range dirs {
		flag := "-I" + dir
		cc.Add(flag)
		cpp.Add(flag)
	}
}

// addLinkFlags adds the dependency's library search path, a -l<name>
// flag when the built library already exists on disk, and the
// dependency's declared link flags.
func (c Composer) addLinkFlags(m *descriptor.ModuleDescriptor, block descriptor.PlatformBlock, ld *FlagSet) {
	ld.Add("-L" + LibraryDir(m, c.Target, c.ABI))
	if fileExists(LibraryFile(m, c.Target, c.ABI)) {
		ld.Add("-l" + m.Name)
	}
	ld.Add(m.LDArgs...)
	ld.Add(block.LDArgs...)
}

// Module composes the flag lists for building one module.
func (c Composer) Module(m *descriptor.ModuleDescriptor) Flags {
	block := m.Block(c.Target.BlockKey())
	cc, cpp, ld := NewFlagSet(), NewFlagSet(), NewFlagSet()

	c.addIncludeFlags(m, block, cc, cpp)

	cc.Add(m.CCArgs...)
	cc.Add(block.CCArgs...)
	cpp.Add(m.CPPArgs...)
	cpp.Add(block.CPPArgs...)

	for _, depName := range m.Depends {
		depName = strings.TrimSpace(depName)
		if depName == "" || depName == m.Name {
			continue
		}
		dep := c.Registry.Lookup(depName)
		if dep == nil {
			log.Warnf("dependency module not found for %s: %s", m.Name, depName)
			continue
		}
		depBlock := dep.Block(c.Target.BlockKey())
		c.addIncludeFlags(dep, depBlock, cc, cpp)
		c.addLinkFlags(dep, depBlock, ld)
	}

	ld.Add(m.LDArgs...)
	ld.Add(block.LDArgs...)

	return Flags{CC: cc.Flags(), CPP: cpp.Flags(), LD: ld.Flags()}
}

// projectBlock returns the per-target flag override block of a project.
func (c Composer) projectBlock(p *descriptor.ProjectDescriptor) descriptor.FlagBlock {
	switch c.Target {
	case Android:
		return p.Android
	case Web:
		return p.Web
	}
	return p.Desktop
}

// Project composes the flag lists for building a project against the
// closure of activeModules. Project common and per-target flags come
// first; desktop flags pass through the mode filter before module
// closure flags are appended. Modules missing from the registry fall
// back to conventional include/lib paths under modulesRoot.
func (c Composer) Project(p *descriptor.ProjectDescriptor, activeModules []string, modulesRoot string, mode Mode) Flags {
	block := c.projectBlock(p)
	ccFlags := append(slices.Clone(p.Main.CC), block.CC...)
	cppFlags := append(slices.Clone(p.Main.CPP), block.CPP...)
	ldFlags := append(slices.Clone(p.Main.LD), block.LD...)
	if c.Target == Desktop {
		ccFlags, cppFlags, ldFlags = ApplyMode(ccFlags, cppFlags, ldFlags, mode)
	}

	cc, cpp, ld := NewFlagSet(ccFlags...), NewFlagSet(cppFlags...), NewFlagSet(ldFlags...)
	for _, include := range p.Include {
		cc.Add("-I" + include)
		cpp.Add("-I" + include)
	}

	for _, name := range Closure(c.Registry, activeModules) {
		m := c.Registry.Lookup(name)
		if m != nil {
			mBlock := m.Block(c.Target.BlockKey())
			c.addIncludeFlags(m, mBlock, cc, cpp)
			c.addLinkFlags(m, mBlock, ld)
			continue
		}
		c.addFallbackModuleFlags(name, modulesRoot, cc, cpp, ld)
	}

	return Flags{CC: cc.Flags(), CPP: cpp.Flags(), LD: ld.Flags()}
}

// addFallbackModuleFlags points at the conventional module layout for a
// module that has no descriptor, assuming a prebuilt library.
func (c Composer) addFallbackModuleFlags(name, modulesRoot string, cc, cpp, ld *FlagSet) {
	dir := filepath.Join(modulesRoot, name)
	include := filepath.Join(dir, "include")
	for _, flag := range []string{"-I" + include, "-I" + filepath.Join(include, c.Target.IncludeSuffix())} {
		cc.Add(flag)
		cpp.Add(flag)
	}

	var libDir string
	switch c.Target {
	case Android:
		libDir = filepath.Join(dir, "Android", c.ABI.Dir())
	case Web:
		libDir = filepath.Join(dir, "Web")
	default:
		libDir = filepath.Join(dir, c.Target.OutDirName())
	}
	ld.Add("-L" + libDir)
	ld.Add("-l" + name)
}
