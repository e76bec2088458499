// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package descriptor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// rawPlatformBlock is the JSON shape of one "plataforms" entry.
// The key spelling is historical and kept for descriptor compatibility.
type rawPlatformBlock struct {
	Src      stringList `json:"src"`
	Include  stringList `json:"include"`
	CPPArgs  flagList   `json:"CPP_ARGS"`
	CCArgs   flagList   `json:"CC_ARGS"`
	LDArgs   flagList   `json:"LD_ARGS"`
	Template string     `json:"template"`
}

func (r rawPlatformBlock) block() PlatformBlock {
	return PlatformBlock{
		Src:      r.Src,
		Include:  r.Include,
		CPPArgs:  r.CPPArgs,
		CCArgs:   r.CCArgs,
		LDArgs:   r.LDArgs,
		Template: strings.TrimSpace(r.Template),
	}
}

type rawModule struct {
	Module    string                      `json:"module"`
	Static    *bool                       `json:"static"`
	Depends   stringList                  `json:"depends"`
	System    stringList                  `json:"system"`
	Src       stringList                  `json:"src"`
	Include   stringList                  `json:"include"`
	CPPArgs   flagList                    `json:"CPP_ARGS"`
	CCArgs    flagList                    `json:"CC_ARGS"`
	LDArgs    flagList                    `json:"LD_ARGS"`
	Platforms map[string]rawPlatformBlock `json:"plataforms"`
}

// hostPlatformKey returns the descriptor key used for the desktop block
// on this host.
func hostPlatformKey() string {
	if runtime.GOOS == "windows" {
		return "windows"
	}
	return "linux"
}

// LoadModule loads a module descriptor from a module.json file.
// The module name defaults to the directory name.
func LoadModule(file string) (*ModuleDescriptor, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var raw rawModule
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid module descriptor %s: %w", file, err)
	}

	dir, err := filepath.Abs(filepath.Dir(file))
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(raw.Module)
	if name == "" {
		name = filepath.Base(dir)
	}
	static := true
	if raw.Static != nil {
		static = *raw.Static
	}
	systems := make([]string, 0, len(raw.System))
	for _, s := range raw.System {
		systems = append(systems, strings.ToLower(s))
	}

	m := &ModuleDescriptor{
		Name:    name,
		Dir:     dir,
		Static:  static,
		Depends: raw.Depends,
		Systems: systems,
		Src:     raw.Src,
		Include: raw.Include,
		CPPArgs: raw.CPPArgs,
		CCArgs:  raw.CCArgs,
		LDArgs:  raw.LDArgs,
		blocks: map[string]PlatformBlock{
			BlockDesktop: raw.Platforms[hostPlatformKey()].block(),
			BlockAndroid: raw.Platforms["android"].block(),
			BlockWeb:     raw.Platforms["emscripten"].block(),
		},
	}
	return m, nil
}

// Registry maps module names to descriptors.
// A later Add for the same name overwrites the earlier entry.
type Registry struct {
	modules map[string]*ModuleDescriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: map[string]*ModuleDescriptor{}}
}

// Add registers the module, overwriting any module of the same name.
func (r *Registry) Add(m *ModuleDescriptor) {
	r.modules[m.Name] = m
}

// Lookup returns the module descriptor for name, or nil.
func (r *Registry) Lookup(name string) *ModuleDescriptor {
	return r.modules[name]
}

// Names returns the registered module names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DiscoverModules loads every modules/*/module.json under root into a
// registry. Invalid descriptor files are reported and skipped; module
// graphs are hand-maintained and must degrade gracefully.
func DiscoverModules(root string) *Registry {
	reg := NewRegistry()
	files, err := filepath.Glob(filepath.Join(root, "*", "module.json"))
	if err != nil {
		return reg
	}
	sort.Strings(files)
	for _, file := range files {
		m, err := LoadModule(file)
		if err != nil {
			log.Warnf("skip invalid module file %s: %v", file, err)
			continue
		}
		reg.Add(m)
	}
	return reg
}

type rawFlagBlock struct {
	CPP flagList `json:"CPP"`
	CC  flagList `json:"CC"`
	LD  flagList `json:"LD"`
	// Android identity / web shell, present only on their blocks.
	Package  string `json:"PACKAGE"`
	Activity string `json:"ACTIVITY"`
	Shell    string `json:"SHELL"`
}

func (r rawFlagBlock) flags() FlagBlock {
	return FlagBlock{CPP: r.CPP, CC: r.CC, LD: r.LD}
}

type rawProject struct {
	Name    string       `json:"Name"`
	Path    string       `json:"Path"`
	Modules stringList   `json:"Modules"`
	Src     stringList   `json:"Src"`
	Include stringList   `json:"Include"`
	Main    rawFlagBlock `json:"Main"`
	Desktop rawFlagBlock `json:"Desktop"`
	Android rawFlagBlock `json:"Android"`
	Web     rawFlagBlock `json:"Web"`
}

// LoadProject loads a project descriptor file.
// Relative Src/Include entries are resolved against the project root.
func LoadProject(file string) (*ProjectDescriptor, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var raw rawProject
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid project descriptor %s: %w", file, err)
	}

	file, err = filepath.Abs(file)
	if err != nil {
		return nil, err
	}
	root := filepath.Dir(file)
	if p := strings.TrimSpace(raw.Path); p != "" {
		if filepath.IsAbs(p) {
			root = filepath.Clean(p)
		} else {
			root = filepath.Join(root, p)
		}
	}

	abs := func(paths []string) []string {
		out := make([]string, 0, len(paths))
		for _, p := range paths {
			if !filepath.IsAbs(p) {
				p = filepath.Join(root, p)
			}
			out = append(out, filepath.Clean(p))
		}
		return out
	}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}

	return &ProjectDescriptor{
		Name:            name,
		Root:            root,
		FilePath:        file,
		Modules:         raw.Modules,
		Src:             abs(raw.Src),
		Include:         abs(raw.Include),
		Main:            raw.Main.flags(),
		Desktop:         raw.Desktop.flags(),
		Android:         raw.Android.flags(),
		Web:             raw.Web.flags(),
		AndroidPackage:  strings.TrimSpace(raw.Android.Package),
		AndroidActivity: strings.TrimSpace(raw.Android.Activity),
		WebShell:        strings.TrimSpace(raw.Web.Shell),
	}, nil
}
