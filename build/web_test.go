// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/crosside/crossbuild/descriptor"
)

func TestNormalizeEmscriptenSettings(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "two token setting",
			in:   []string{"-s", "USE_GLFW=3", "-O2"},
			want: []string{"-sUSE_GLFW=3", "-O2"},
		},
		{
			name: "already single token",
			in:   []string{"-sUSE_GLFW=3"},
			want: []string{"-sUSE_GLFW=3"},
		},
		{
			name: "mixed",
			in:   []string{"-lm", "-s", "WASM=1", "-s", "ALLOW_MEMORY_GROWTH=1"},
			want: []string{"-lm", "-sWASM=1", "-sALLOW_MEMORY_GROWTH=1"},
		},
		{
			name: "trailing lone -s kept",
			in:   []string{"-O2", "-s"},
			want: []string{"-O2", "-s"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeEmscriptenSettings(tc.in)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("NormalizeEmscriptenSettings diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEnsureWebRuntimeFlags(t *testing.T) {
	t.Run("adds missing", func(t *testing.T) {
		got := EnsureWebRuntimeFlags([]string{"-sUSE_GLFW=3"})
		if !slices.Contains(got, "-sASYNCIFY") {
			t.Errorf("missing forced -sASYNCIFY: %v", got)
		}
		if !slices.Contains(got, exportedRuntimeMethods) {
			t.Errorf("missing forced exported runtime methods: %v", got)
		}
	})

	t.Run("keeps explicit settings", func(t *testing.T) {
		custom := "-sEXPORTED_RUNTIME_METHODS=['ccall']"
		got := EnsureWebRuntimeFlags([]string{"-sASYNCIFY=1", custom})
		if slices.Contains(got, "-sASYNCIFY") {
			t.Errorf("explicit ASYNCIFY setting was duplicated: %v", got)
		}
		if slices.Contains(got, exportedRuntimeMethods) {
			t.Errorf("explicit exported methods were overridden: %v", got)
		}
		if !slices.Contains(got, custom) {
			t.Errorf("explicit exported methods dropped: %v", got)
		}
	})
}

func TestWebLinkExtras(t *testing.T) {
	root := t.TempDir()
	p := &descriptor.ProjectDescriptor{
		Name:     "game",
		Root:     root,
		WebShell: "shell.html",
	}
	reg := descriptor.NewRegistry()

	t.Run("no shell no assets", func(t *testing.T) {
		if got := WebLinkExtras(p, nil, reg); len(got) != 0 {
			t.Errorf("WebLinkExtras=%v; want empty", got)
		}
	})

	shell := filepath.Join(root, "shell.html")
	if err := os.WriteFile(shell, []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "assets"), 0o755); err != nil {
		t.Fatal(err)
	}

	t.Run("shell and asset mount", func(t *testing.T) {
		got := WebLinkExtras(p, nil, reg)
		want := []string{
			"--shell-file", shell,
			"--preload-file", filepath.Join(root, "assets") + "@/assets",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("WebLinkExtras diff (-want +got):\n%s", diff)
		}
	})
}

func TestWebShellModuleFallback(t *testing.T) {
	root := t.TempDir()
	m := writeModule(t, root, "raylib", `{
		"module": "raylib",
		"plataforms": {
			"emscripten": {"template": "shell.html"}
		}
	}`)
	if err := os.WriteFile(filepath.Join(m.Dir, "shell.html"), []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	reg := descriptor.NewRegistry()
	reg.Add(m)

	p := &descriptor.ProjectDescriptor{Name: "game", Root: filepath.Join(root, "game")}
	got := WebShell(p, []string{"raylib"}, reg)
	want := filepath.Join(m.Dir, "shell.html")
	if got != want {
		t.Errorf("WebShell=%q; want %q", got, want)
	}
}
