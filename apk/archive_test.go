// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package apk

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
)

func writeBaseArchive(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	for name, content := range entries {
		out, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := out.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func archiveEntries(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	out := map[string]string{}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func TestAppendToArchive(t *testing.T) {
	dir := t.TempDir()
	apkPath := filepath.Join(dir, "game.apk")
	writeBaseArchive(t, apkPath, map[string]string{
		"AndroidManifest.xml": "<manifest/>",
		"resources.arsc":      "res",
	})

	lib := filepath.Join(dir, "libgame.so")
	if err := os.WriteFile(lib, []byte("elf"), 0o644); err != nil {
		t.Fatal(err)
	}
	assets := filepath.Join(dir, "assets-src")
	if err := os.MkdirAll(filepath.Join(assets, "maps"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(assets, "maps", "level1.txt"), []byte("map"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := appendToArchive(apkPath, func(w *zip.Writer) error {
		if err := addFile(w, lib, "lib/arm64-v8a/libgame.so"); err != nil {
			return err
		}
		n, err := addTree(w, assets, "assets/data")
		if err != nil {
			return err
		}
		if n != 1 {
			t.Errorf("addTree added %d files; want 1", n)
		}
		// Missing trees add nothing and do not fail.
		if n, err := addTree(w, filepath.Join(dir, "nope"), "assets/none"); err != nil || n != 0 {
			t.Errorf("addTree(missing)=%d,%v; want 0,nil", n, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("appendToArchive: %v", err)
	}

	got := archiveEntries(t, apkPath)
	want := map[string]string{
		"AndroidManifest.xml":       "<manifest/>",
		"resources.arsc":            "res",
		"lib/arm64-v8a/libgame.so":  "elf",
		"assets/data/maps/level1.txt": "map",
	}
	for name, content := range want {
		if got[name] != content {
			t.Errorf("entry %s = %q; want %q", name, got[name], content)
		}
	}
	if len(got) != len(want) {
		t.Errorf("archive has %d entries; want %d: %v", len(got), len(want), got)
	}
}
