// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package build orchestrates compiling and linking modules and projects
// for the desktop, Android, and web targets.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/crosside/crossbuild/descriptor"
	"github.com/crosside/crossbuild/execute"
	"github.com/crosside/crossbuild/execute/localexec"
	"github.com/crosside/crossbuild/toolchain"
	"github.com/crosside/crossbuild/ui"
)

// ErrStopped reports a build interrupted by a stop request.
// Compilation stops between translation units; the unit in flight is
// finished first.
var ErrStopped = errors.New("build stopped")

// Options configures a Builder.
type Options struct {
	Registry  *descriptor.Registry
	Toolchain toolchain.Paths
	// Executor runs toolchain commands. Nil means local execution.
	Executor execute.Executor
	// UI receives progress and diagnostics. Nil picks the default.
	UI ui.UI

	Mode Mode
	// FullBuild recompiles every unit regardless of mtimes.
	FullBuild bool

	// ModulesRoot is the directory module sources live under; used for
	// the fallback include/lib layout of modules with no descriptor.
	ModulesRoot string
	// LibRoot is the workspace libs/ directory added to link search
	// paths. Empty defaults to libs/ under the working directory.
	LibRoot string
	// GlobalModules is the configured module list used when a project
	// declares none.
	GlobalModules []string
	// StopRequested is polled between compile steps. Nil means never.
	StopRequested func() bool
}

// Builder runs module and project builds.
// A Builder is single-use state-light: the only cross-call cache is the
// per-target toolchain readiness check.
type Builder struct {
	opts  Options
	ready map[Target]bool
}

// New creates a builder.
func New(opts Options) *Builder {
	if opts.Executor == nil {
		opts.Executor = localexec.LocalExec{}
	}
	if opts.UI == nil {
		opts.UI = ui.Default()
	}
	if opts.LibRoot == "" {
		if wd, err := os.Getwd(); err == nil {
			opts.LibRoot = filepath.Join(wd, "libs")
		}
	}
	return &Builder{opts: opts, ready: map[Target]bool{}}
}

// Executor exposes the command executor, so packaging steps can share
// it with the build.
func (b *Builder) Executor() execute.Executor { return b.opts.Executor }

func (b *Builder) stopRequested() bool {
	return b.opts.StopRequested != nil && b.opts.StopRequested()
}

// checkReady verifies the toolchain surface for a target once per
// builder. A missing toolchain fails the whole target before any
// compilation starts.
func (b *Builder) checkReady(t Target) error {
	if b.ready[t] {
		return nil
	}
	var err error
	switch t {
	case Android:
		err = b.opts.Toolchain.CheckAndroid()
	case Web:
		err = b.opts.Toolchain.CheckWeb()
	default:
		err = b.opts.Toolchain.CheckDesktop()
	}
	if err != nil {
		return err
	}
	b.ready[t] = true
	return nil
}

// libSearchDir returns the workspace prebuilt-library directory linked
// into every shared or executable artifact of the target.
func (b *Builder) libSearchDir(t Target, abi ABI) string {
	switch t {
	case Android:
		return filepath.Join(b.opts.LibRoot, "android", abi.Dir())
	case Web:
		return filepath.Join(b.opts.LibRoot, "Web")
	}
	return filepath.Join(b.opts.LibRoot, t.OutDirName())
}

// BuildModule compiles and links one module for a target. Android fans
// out over abis; every ABI is attempted and the first error is returned
// after the loop. Modules whose system allow-list excludes the target
// are skipped without error.
func (b *Builder) BuildModule(ctx context.Context, m *descriptor.ModuleDescriptor, target Target, abis []ABI) error {
	if !m.SupportsSystem(target.SystemName()) {
		b.opts.UI.Infof("skip module %s: not built for %s", m.Name, target.SystemName())
		return nil
	}
	if err := b.checkReady(target); err != nil {
		return err
	}

	block := m.Block(target.BlockKey())
	sources := normalizeSources(m.Dir, append(slices.Clone(m.Src), block.Src...))
	if len(sources) == 0 {
		return fmt.Errorf("module %s has no compilable sources for %s", m.Name, target)
	}

	buildType := SharedLibrary
	// Web modules are always archived; there is no shared linking
	// across wasm modules.
	if m.Static || target == Web {
		buildType = StaticArchive
	}

	entry := func(abi ABI) Entry {
		flags := Composer{Registry: b.opts.Registry, Target: target, ABI: abi}.Module(m)
		if target == Desktop {
			flags.CC, flags.CPP, flags.LD = ApplyMode(flags.CC, flags.CPP, flags.LD, b.opts.Mode)
		}
		return Entry{
			Name:      m.Name,
			Dir:       m.Dir,
			Target:    target,
			ABI:       abi,
			BuildType: buildType,
			Flags:     flags,
			Sources:   sources,
			UseCPP:    anyCPP(sources),
		}
	}

	if target == Android {
		return b.buildPerABI(ctx, entry, abis)
	}
	return b.buildEntry(ctx, entry(0))
}

// ProjectOptions configures one project build invocation.
type ProjectOptions struct {
	// BuildModules builds the project's module closure before the
	// project itself.
	BuildModules bool
	// Run starts the produced desktop executable after a successful
	// link. Ignored for other targets.
	Run bool
}

// BuildProject compiles and links a project for a target.
func (b *Builder) BuildProject(ctx context.Context, p *descriptor.ProjectDescriptor, target Target, abis []ABI, popts ProjectOptions) error {
	if err := b.checkReady(target); err != nil {
		return err
	}

	active := p.Modules
	if len(active) == 0 {
		active = b.opts.GlobalModules
	}

	if popts.BuildModules {
		for _, name := range Closure(b.opts.Registry, active) {
			m := b.opts.Registry.Lookup(name)
			if m == nil {
				b.opts.UI.Warningf("module not found, assuming prebuilt: %s", name)
				continue
			}
			if err := b.BuildModule(ctx, m, target, abis); err != nil {
				return fmt.Errorf("build module %s: %w", name, err)
			}
		}
	}

	sources := normalizeSources(p.Root, p.Src)
	if len(sources) == 0 {
		return fmt.Errorf("project %s has no compilable sources", p.Name)
	}
	useCPP := anyCPP(sources)

	entry := func(abi ABI) Entry {
		e := Entry{
			Name:      p.Name,
			Dir:       p.Root,
			Target:    target,
			ABI:       abi,
			BuildType: Executable,
			Flags:     Composer{Registry: b.opts.Registry, Target: target, ABI: abi}.Project(p, active, b.opts.ModulesRoot, b.opts.Mode),
			Sources:   sources,
			UseCPP:    useCPP,
		}
		if target == Web {
			e.LinkExtras = WebLinkExtras(p, active, b.opts.Registry)
		}
		return e
	}

	if target == Android {
		return b.buildPerABI(ctx, entry, abis)
	}
	e := entry(0)
	if err := b.buildEntry(ctx, e); err != nil {
		return err
	}
	if target == Desktop && popts.Run {
		return b.runExecutable(ctx, e.outPath())
	}
	return nil
}

// buildPerABI attempts every requested ABI even when one fails, so a
// single broken ABI does not hide errors in the others. The first error
// is returned after the loop; a stop request aborts immediately.
func (b *Builder) buildPerABI(ctx context.Context, entry func(ABI) Entry, abis []ABI) error {
	if len(abis) == 0 {
		abis = DefaultABIs
	}
	var firstErr error
	for _, abi := range abis {
		err := b.buildEntry(ctx, entry(abi))
		if err == nil {
			continue
		}
		if errors.Is(err, ErrStopped) || ctx.Err() != nil {
			return err
		}
		b.opts.UI.Errorf("%s: %v", abi, err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (b *Builder) runExecutable(ctx context.Context, exe string) error {
	b.opts.UI.Infof("run %s", exe)
	cmd := execute.NewCmd("run", filepath.Base(exe), []string{exe})
	cmd.Dir = filepath.Dir(exe)
	if err := b.opts.Executor.Run(ctx, cmd); err != nil {
		return fmt.Errorf("run %s: %w", filepath.Base(exe), err)
	}
	return nil
}

func (b *Builder) buildEntry(ctx context.Context, e Entry) error {
	b.opts.UI.Infof("build %s", e)
	if err := b.compileAll(ctx, e); err != nil {
		return err
	}
	return b.link(ctx, e)
}

// compileAll compiles the entry's sources one by one, skipping units
// whose object is already newer than the source.
func (b *Builder) compileAll(ctx context.Context, e Entry) error {
	total := len(e.Sources)
	for i, src := range e.Sources {
		if b.stopRequested() {
			return ErrStopped
		}
		if !fileExists(src) {
			b.opts.UI.Warningf("source file not found: %s", src)
			continue
		}
		obj := e.objPath(src)
		if err := os.MkdirAll(filepath.Dir(obj), 0o755); err != nil {
			return err
		}
		unit := CompiledUnit{Source: src, Object: obj}
		if !unit.NeedsCompile(b.opts.FullBuild) {
			b.opts.UI.Progress(i+1, total, "skip "+filepath.Base(src))
			continue
		}

		cpp := isCPPSource(src)
		desc := "CC " + filepath.Base(src)
		if cpp {
			desc = "CXX " + filepath.Base(src)
		}
		b.opts.UI.Progress(i+1, total, desc)

		cmd := execute.NewCmd("cc", desc, b.compileArgs(e, src, obj, cpp))
		log.Debugf("compile: %s", cmd.Command())
		if err := b.opts.Executor.Run(ctx, cmd); err != nil {
			b.opts.UI.Errorf("compile failed: %s\n%s", src, commandStderr(cmd, err))
			return fmt.Errorf("compile %s: %w", filepath.Base(src), err)
		}
	}
	return nil
}

func compileFlags(f Flags, cpp bool) []string {
	if cpp {
		return f.CPP
	}
	return f.CC
}

func (b *Builder) compileArgs(e Entry, src, obj string, cpp bool) []string {
	tc := b.opts.Toolchain
	switch e.Target {
	case Android:
		return b.androidCompileArgs(e, src, obj, cpp)
	case Web:
		driver := tc.EMCC
		if cpp {
			driver = tc.EMXX
		}
		args := append([]string{driver, "-c", src, "-o", obj}, compileFlags(e.Flags, cpp)...)
		return args
	}
	driver := tc.CC
	if cpp {
		driver = tc.CXX
	}
	args := append([]string{driver, "-c", src, "-o", obj}, compileFlags(e.Flags, cpp)...)
	// Desktop objects may end up in shared libraries.
	return append(args, "-fPIC")
}

// link archives or links the objects found under the entry's object
// root. Objects from earlier builds of the same entry participate even
// when their source was skipped this run.
func (b *Builder) link(ctx context.Context, e Entry) error {
	objs, err := collectObjects(e.objRoot())
	if err != nil {
		return fmt.Errorf("collect objects for %s: %w", e.Name, err)
	}
	if len(objs) == 0 {
		return fmt.Errorf("no objects found for %s under %s", e.Name, e.objRoot())
	}
	out := e.outPath()
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}

	switch {
	case e.BuildType == StaticArchive:
		// ar appends into an existing archive; stale members survive
		// otherwise.
		if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
			return err
		}
	case e.Target == Web:
		removeStaleWebOutputs(out)
	}

	var cmd *execute.Cmd
	switch e.Target {
	case Android:
		cmd = b.androidLinkCmd(e, out, objs)
	case Web:
		cmd = b.webLinkCmd(e, out, objs)
	default:
		cmd = b.desktopLinkCmd(e, out, objs)
	}
	b.opts.UI.Infof("link %s", out)
	log.Debugf("link: %s", cmd.Command())
	if err := b.opts.Executor.Run(ctx, cmd); err != nil {
		b.opts.UI.Errorf("link failed: %s\n%s", out, commandStderr(cmd, err))
		return fmt.Errorf("link %s: %w", filepath.Base(out), err)
	}

	if e.Target == Web && e.BuildType == StaticArchive {
		// emar exits zero even when it wrote only the archive magic.
		if info, err := os.Stat(out); err != nil || info.Size() <= 8 {
			return fmt.Errorf("generated web archive is empty: %s", out)
		}
	}
	if e.Target == Android && e.BuildType != StaticArchive {
		strip := execute.NewCmd("strip", "STRIP "+filepath.Base(out),
			[]string{b.opts.Toolchain.LLVMStrip(), "--strip-unneeded", out})
		if err := b.opts.Executor.Run(ctx, strip); err != nil {
			return fmt.Errorf("strip %s: %w", filepath.Base(out), err)
		}
	}
	return nil
}

func (b *Builder) desktopLinkCmd(e Entry, out string, objs []string) *execute.Cmd {
	tc := b.opts.Toolchain
	if e.BuildType == StaticArchive {
		args := append([]string{tc.AR, "rcs", out}, objs...)
		return execute.NewCmd("ar", "AR "+filepath.Base(out), args)
	}
	driver := tc.CC
	if e.UseCPP {
		driver = tc.CXX
	}
	var args []string
	if e.BuildType == SharedLibrary {
		args = []string{driver, "-shared", "-fPIC", "-o", out}
	} else {
		args = []string{driver, "-o", out}
	}
	args = append(args, objs...)
	args = append(args, e.Flags.LD...)
	args = append(args, "-L"+b.libSearchDir(e.Target, e.ABI))
	return execute.NewCmd("link", "LINK "+filepath.Base(out), args)
}

func (b *Builder) webLinkCmd(e Entry, out string, objs []string) *execute.Cmd {
	tc := b.opts.Toolchain
	if e.BuildType == StaticArchive {
		args := append([]string{tc.EMAR, "rcs", out}, objs...)
		return execute.NewCmd("ar", "AR "+filepath.Base(out), args)
	}
	driver := tc.EMCC
	if e.UseCPP {
		driver = tc.EMXX
	}
	ld := NormalizeEmscriptenSettings(append(slices.Clone(e.Flags.LD), e.LinkExtras...))
	ld = EnsureWebRuntimeFlags(ld)
	args := append([]string{driver, "-o", out}, objs...)
	args = append(args, ld...)
	args = append(args, "-L"+b.libSearchDir(Web, e.ABI))
	return execute.NewCmd("link", "WASM "+filepath.Base(out), args)
}

// collectObjects walks the object root and returns every .o file,
// sorted for a stable link line.
func collectObjects(objRoot string) ([]string, error) {
	var objs []string
	err := filepath.WalkDir(objRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".o" {
			objs = append(objs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(objs)
	return objs, nil
}

func commandStderr(cmd *execute.Cmd, err error) string {
	if out := strings.TrimSpace(string(cmd.Stderr())); out != "" {
		return out
	}
	return err.Error()
}
