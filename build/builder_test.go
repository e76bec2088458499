// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/crosside/crossbuild/descriptor"
	"github.com/crosside/crossbuild/execute"
	"github.com/crosside/crossbuild/toolchain"
	"github.com/crosside/crossbuild/ui"
)

// fakeExecutor records commands and materializes their output files so
// later build steps observe them on disk.
type fakeExecutor struct {
	cmds []*execute.Cmd
}

func (f *fakeExecutor) Run(ctx context.Context, cmd *execute.Cmd) error {
	f.cmds = append(f.cmds, cmd)
	out := ""
	for i, arg := range cmd.Args {
		if arg == "-o" && i+1 < len(cmd.Args) {
			out = cmd.Args[i+1]
		}
	}
	if out == "" && len(cmd.Args) > 2 && cmd.Args[1] == "rcs" {
		out = cmd.Args[2]
	}
	if out != "" {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out, []byte("!<arch>\nfake output"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeExecutor) byAction(action string) []*execute.Cmd {
	var out []*execute.Cmd
	for _, cmd := range f.cmds {
		if cmd.ActionName == action {
			out = append(out, cmd)
		}
	}
	return out
}

type testUI struct {
	msgs []string
}

func (u *testUI) Infof(format string, args ...any) {
	u.msgs = append(u.msgs, fmt.Sprintf(format, args...))
}
func (u *testUI) Warningf(format string, args ...any) {
	u.msgs = append(u.msgs, fmt.Sprintf(format, args...))
}
func (u *testUI) Errorf(format string, args ...any) {
	u.msgs = append(u.msgs, fmt.Sprintf(format, args...))
}
func (u *testUI) Progress(done, total int, desc string) {}
func (u *testUI) NewSpinner() ui.Spinner                { return nopSpinner{} }

type nopSpinner struct{}

func (nopSpinner) Start(string, ...any) {}
func (nopSpinner) Stop(error)           {}
func (nopSpinner) Done(string, ...any)  {}

func desktopToolchain() toolchain.Paths {
	return toolchain.Paths{CC: "gcc", CXX: "g++", AR: "ar"}
}

// Bare tool names skip the existence check; the tests only assert the
// composed command lines.
func androidToolchain() toolchain.Paths {
	return toolchain.Paths{
		AndroidSDK:  "sdk",
		AndroidNDK:  "ndk",
		AAPT:        "aapt",
		DX:          "dx",
		D8:          "d8",
		APKSigner:   "apksigner",
		PlatformJAR: "android.jar",
	}
}

func webToolchain() toolchain.Paths {
	return toolchain.Paths{EMCC: "emcc", EMXX: "em++", EMAR: "emar"}
}

func writeSource(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	// Back-date so objects written in the same test run count as newer.
	mustChtimes(t, path, time.Now().Add(-time.Hour))
	return path
}

func TestBuildModuleDesktopStatic(t *testing.T) {
	root := t.TempDir()
	m := writeModule(t, root, "raylib", `{
		"module": "raylib",
		"static": true,
		"src": ["src/rcore.c"],
		"CC_ARGS": "-O3 -w"
	}`)
	writeSource(t, m.Dir, "src/rcore.c", "int rcore;")
	reg := descriptor.NewRegistry()
	reg.Add(m)

	exec := &fakeExecutor{}
	b := New(Options{
		Registry:  reg,
		Toolchain: desktopToolchain(),
		Executor:  exec,
		UI:        &testUI{},
		Mode:      Release,
		LibRoot:   filepath.Join(root, "libs"),
	})
	if err := b.BuildModule(context.Background(), m, Desktop, nil); err != nil {
		t.Fatalf("BuildModule: %v", err)
	}

	ccs := exec.byAction("cc")
	if len(ccs) != 1 {
		t.Fatalf("got %d compiles; want 1", len(ccs))
	}
	args := ccs[0].Args
	if args[0] != "gcc" {
		t.Errorf("compile driver=%s; want gcc", args[0])
	}
	if args[len(args)-1] != "-fPIC" {
		t.Errorf("compile args end with %s; want -fPIC", args[len(args)-1])
	}
	if slices.Contains(args, "-O3") {
		t.Errorf("release compile kept descriptor -O3: %v", args)
	}
	if !slices.Contains(args, "-O2") || !slices.Contains(args, "-DNDEBUG") {
		t.Errorf("release compile missing mode flags: %v", args)
	}

	ars := exec.byAction("ar")
	if len(ars) != 1 {
		t.Fatalf("got %d archive commands; want 1", len(ars))
	}
	wantLib := filepath.Join(m.Dir, Desktop.OutDirName(), "libraylib.a")
	if ars[0].Args[2] != wantLib {
		t.Errorf("archive output=%s; want %s", ars[0].Args[2], wantLib)
	}
	if !fileExists(wantLib) {
		t.Errorf("archive %s not materialized", wantLib)
	}
}

func TestBuildModuleIncrementalSkip(t *testing.T) {
	root := t.TempDir()
	m := writeModule(t, root, "raylib", `{
		"module": "raylib",
		"static": true,
		"src": ["src/rcore.c", "src/rshapes.c"]
	}`)
	writeSource(t, m.Dir, "src/rcore.c", "int rcore;")
	rshapes := writeSource(t, m.Dir, "src/rshapes.c", "int rshapes;")
	reg := descriptor.NewRegistry()
	reg.Add(m)

	exec := &fakeExecutor{}
	b := New(Options{Registry: reg, Toolchain: desktopToolchain(), Executor: exec, UI: &testUI{}})
	ctx := context.Background()
	if err := b.BuildModule(ctx, m, Desktop, nil); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if got := len(exec.byAction("cc")); got != 2 {
		t.Fatalf("first build compiles=%d; want 2", got)
	}

	// Touch one source; only it recompiles, the link still runs.
	mustChtimes(t, rshapes, time.Now().Add(time.Hour))
	if err := b.BuildModule(ctx, m, Desktop, nil); err != nil {
		t.Fatalf("second build: %v", err)
	}
	if got := len(exec.byAction("cc")); got != 3 {
		t.Errorf("total compiles=%d; want 3 (one incremental)", got)
	}
	if got := len(exec.byAction("ar")); got != 2 {
		t.Errorf("total links=%d; want 2", got)
	}
}

func TestBuildModuleAndroidABIFanOut(t *testing.T) {
	root := t.TempDir()
	m := writeModule(t, root, "native", `{
		"module": "native",
		"static": false,
		"src": ["src/native.cpp"]
	}`)
	writeSource(t, m.Dir, "src/native.cpp", "int native;")
	reg := descriptor.NewRegistry()
	reg.Add(m)

	exec := &fakeExecutor{}
	b := New(Options{Registry: reg, Toolchain: androidToolchain(), Executor: exec, UI: &testUI{}, LibRoot: filepath.Join(root, "libs")})
	if err := b.BuildModule(context.Background(), m, Android, nil); err != nil {
		t.Fatalf("BuildModule: %v", err)
	}

	ccs := exec.byAction("cc")
	if len(ccs) != 2 {
		t.Fatalf("got %d compiles; want one per ABI", len(ccs))
	}
	if !slices.Contains(ccs[0].Args, "armv7a-linux-androideabi21") || !slices.Contains(ccs[0].Args, "-march=armv7-a") {
		t.Errorf("arm32 compile missing baked ABI flags: %v", ccs[0].Args)
	}
	if !slices.Contains(ccs[1].Args, "aarch64-linux-android21") || !slices.Contains(ccs[1].Args, "-O2") {
		t.Errorf("arm64 compile missing baked ABI flags: %v", ccs[1].Args)
	}
	// C++ source selects clang++ and the libc++ include.
	if !strings.HasSuffix(ccs[0].Args[0], "clang++") {
		t.Errorf("C++ source compiled with %s; want clang++", ccs[0].Args[0])
	}
	if !slices.Contains(ccs[0].Args, "-nostdinc++") {
		t.Errorf("C++ compile missing -nostdinc++: %v", ccs[0].Args)
	}

	links := exec.byAction("link")
	if len(links) != 2 {
		t.Fatalf("got %d links; want one per ABI", len(links))
	}
	if !slices.Contains(links[0].Args, "-Wl,-soname,libnative.so") {
		t.Errorf("link missing soname: %v", links[0].Args)
	}
	if got := len(exec.byAction("strip")); got != 2 {
		t.Errorf("got %d strips; want one per shared object", got)
	}

	for _, abi := range DefaultABIs {
		so := filepath.Join(m.Dir, "Android", abi.Dir(), "libnative.so")
		if !fileExists(so) {
			t.Errorf("missing artifact %s", so)
		}
	}
}

func TestBuildModuleSkipsUnsupportedSystem(t *testing.T) {
	root := t.TempDir()
	m := writeModule(t, root, "sensors", `{
		"module": "sensors",
		"system": ["android"],
		"src": ["src/sensors.c"]
	}`)
	reg := descriptor.NewRegistry()
	reg.Add(m)

	exec := &fakeExecutor{}
	b := New(Options{Registry: reg, Toolchain: desktopToolchain(), Executor: exec, UI: &testUI{}})
	if err := b.BuildModule(context.Background(), m, Desktop, nil); err != nil {
		t.Fatalf("BuildModule: %v", err)
	}
	if len(exec.cmds) != 0 {
		t.Errorf("unsupported system still ran %d commands", len(exec.cmds))
	}
}

func TestBuildProjectWeb(t *testing.T) {
	root := t.TempDir()
	projectRoot := filepath.Join(root, "game")
	main := writeSource(t, projectRoot, "main.c", "int main(){}")
	p := &descriptor.ProjectDescriptor{
		Name: "game",
		Root: projectRoot,
		Src:  []string{main},
		Main: descriptor.FlagBlock{LD: []string{"-s", "USE_GLFW=3"}},
	}

	exec := &fakeExecutor{}
	b := New(Options{
		Registry:  descriptor.NewRegistry(),
		Toolchain: webToolchain(),
		Executor:  exec,
		UI:        &testUI{},
		LibRoot:   filepath.Join(root, "libs"),
	})
	if err := b.BuildProject(context.Background(), p, Web, nil, ProjectOptions{}); err != nil {
		t.Fatalf("BuildProject: %v", err)
	}

	links := exec.byAction("link")
	if len(links) != 1 {
		t.Fatalf("got %d links; want 1", len(links))
	}
	args := links[0].Args
	if args[0] != "emcc" {
		t.Errorf("link driver=%s; want emcc", args[0])
	}
	wantOut := filepath.Join(projectRoot, "Web", "game.html")
	if args[2] != wantOut {
		t.Errorf("link output=%s; want %s", args[2], wantOut)
	}
	if !slices.Contains(args, "-sUSE_GLFW=3") {
		t.Errorf("link missing normalized settings flag: %v", args)
	}
	if !slices.Contains(args, "-sASYNCIFY") || !slices.Contains(args, exportedRuntimeMethods) {
		t.Errorf("link missing forced runtime flags: %v", args)
	}
}

func TestBuildProjectDesktopRun(t *testing.T) {
	root := t.TempDir()
	projectRoot := filepath.Join(root, "game")
	main := writeSource(t, projectRoot, "main.cpp", "int main(){}")
	p := &descriptor.ProjectDescriptor{Name: "game", Root: projectRoot, Src: []string{main}}

	exec := &fakeExecutor{}
	b := New(Options{Registry: descriptor.NewRegistry(), Toolchain: desktopToolchain(), Executor: exec, UI: &testUI{}})
	err := b.BuildProject(context.Background(), p, Desktop, nil, ProjectOptions{Run: true})
	if err != nil {
		t.Fatalf("BuildProject: %v", err)
	}

	links := exec.byAction("link")
	if len(links) != 1 {
		t.Fatalf("got %d links; want 1", len(links))
	}
	if links[0].Args[0] != "g++" {
		t.Errorf("C++ project linked with %s; want g++", links[0].Args[0])
	}
	runs := exec.byAction("run")
	if len(runs) != 1 {
		t.Fatalf("got %d runs; want 1", len(runs))
	}
	// The executable carries the host suffix (.exe on windows), and the
	// cleaner removes the same path the linker produced.
	wantExe := filepath.Join(projectRoot, "game"+exeSuffix())
	if runs[0].Args[0] != wantExe {
		t.Errorf("ran %s; want %s", runs[0].Args[0], wantExe)
	}
	if !fileExists(wantExe) {
		t.Fatalf("missing executable %s", wantExe)
	}
	if _, err := (Cleaner{UI: &testUI{}}).CleanProject(p, []Target{Desktop}, nil); err != nil {
		t.Fatalf("CleanProject: %v", err)
	}
	if fileExists(wantExe) {
		t.Errorf("executable %s survived clean", wantExe)
	}
}

func TestBuildModuleStopRequested(t *testing.T) {
	root := t.TempDir()
	m := writeModule(t, root, "raylib", `{
		"module": "raylib",
		"src": ["src/rcore.c"]
	}`)
	writeSource(t, m.Dir, "src/rcore.c", "int rcore;")
	reg := descriptor.NewRegistry()
	reg.Add(m)

	exec := &fakeExecutor{}
	b := New(Options{
		Registry:      reg,
		Toolchain:     desktopToolchain(),
		Executor:      exec,
		UI:            &testUI{},
		StopRequested: func() bool { return true },
	})
	err := b.BuildModule(context.Background(), m, Desktop, nil)
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("BuildModule err=%v; want ErrStopped", err)
	}
	if len(exec.cmds) != 0 {
		t.Errorf("stopped build still ran %d commands", len(exec.cmds))
	}
}

func TestCleanModule(t *testing.T) {
	root := t.TempDir()
	m := writeModule(t, root, "raylib", `{
		"module": "raylib",
		"static": true,
		"src": ["src/rcore.c"]
	}`)
	writeSource(t, m.Dir, "src/rcore.c", "int rcore;")
	reg := descriptor.NewRegistry()
	reg.Add(m)

	exec := &fakeExecutor{}
	b := New(Options{Registry: reg, Toolchain: desktopToolchain(), Executor: exec, UI: &testUI{}})
	if err := b.BuildModule(context.Background(), m, Desktop, nil); err != nil {
		t.Fatalf("BuildModule: %v", err)
	}
	lib := LibraryFile(m, Desktop, 0)
	if !fileExists(lib) {
		t.Fatalf("missing artifact %s", lib)
	}

	c := Cleaner{UI: &testUI{}, DryRun: true}
	n, err := c.CleanModule(m, []Target{Desktop}, nil)
	if err != nil {
		t.Fatalf("CleanModule dry-run: %v", err)
	}
	if n == 0 {
		t.Error("dry-run found nothing to remove")
	}
	if !fileExists(lib) {
		t.Error("dry-run removed the artifact")
	}

	c.DryRun = false
	if _, err := c.CleanModule(m, []Target{Desktop}, nil); err != nil {
		t.Fatalf("CleanModule: %v", err)
	}
	if fileExists(lib) {
		t.Errorf("artifact %s survived clean", lib)
	}
	if _, err := os.Stat(filepath.Join(m.Dir, "obj")); err == nil {
		if fileExists(filepath.Join(m.Dir, "obj", Desktop.OutDirName(), m.Name)) {
			t.Error("object tree survived clean")
		}
	}
}

func TestCleanProjectAndroid(t *testing.T) {
	root := t.TempDir()
	p := &descriptor.ProjectDescriptor{Name: "game", Root: root}

	write := func(rel string) string {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	lib32 := write(filepath.Join("Android", "armeabi-v7a", "libgame.so"))
	lib64 := write(filepath.Join("Android", "arm64-v8a", "libgame.so"))
	// Packaging work directory is <root>/Android/<name>.
	manifest := write(filepath.Join("Android", "game", "AndroidManifest.xml"))
	signed := write(filepath.Join("Android", "game", "game.signed.apk"))
	keep := write(filepath.Join("Android", "notes.txt"))

	c := Cleaner{UI: &testUI{}}
	if _, err := c.CleanProject(p, []Target{Android}, nil); err != nil {
		t.Fatalf("CleanProject: %v", err)
	}
	for _, path := range []string{lib32, lib64, manifest, signed} {
		if fileExists(path) {
			t.Errorf("%s survived clean", path)
		}
	}
	if !fileExists(keep) {
		t.Errorf("clean removed %s, which the builder never wrote", keep)
	}
}
