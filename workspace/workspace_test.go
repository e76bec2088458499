// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "config.json"), `{"Modules": ["raylib"]}`)
	writeFile(t, filepath.Join(root, "modules", "raylib", "module.json"),
		`{"module": "raylib", "static": true, "src": ["rcore.c"]}`)
	writeFile(t, filepath.Join(root, "projects", "bugame", "main.mk"),
		`{"Name": "bugame", "Src": ["main.c"]}`)

	ws, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if ws.Root != root {
		t.Errorf("Root=%s; want %s", ws.Root, root)
	}
	if got := ws.Config.Modules; len(got) != 1 || got[0] != "raylib" {
		t.Errorf("Config.Modules=%v; want [raylib]", got)
	}
	if ws.Registry.Lookup("raylib") == nil {
		t.Error("Lookup(raylib)=nil; want the discovered module")
	}

	p, err := ws.FindProject("bugame")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "bugame" {
		t.Errorf("project Name=%s; want bugame", p.Name)
	}
	if got := ws.Projects(); len(got) != 1 {
		t.Errorf("Projects()=%d entries; want 1", len(got))
	}

	if got, want := ws.LibRoot(), filepath.Join(root, "libs"); got != want {
		t.Errorf("LibRoot=%s; want %s", got, want)
	}
}

func TestLoadMissingRoot(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Load of a missing directory succeeded; want error")
	}
}
