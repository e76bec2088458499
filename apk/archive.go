// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package apk

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// appendToArchive rewrites the archive at path with every original
// entry copied over plus whatever add writes. aapt produces the base
// archive; appending in place is not possible without rewriting the
// central directory, so a temp file is written and renamed over.
func appendToArchive(path string, add func(*zip.Writer) error) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open apk %s: %w", path, err)
	}
	defer r.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := zip.NewWriter(tmp)
	for _, f := range r.File {
		if err := w.Copy(f); err != nil {
			w.Close()
			tmp.Close()
			return fmt.Errorf("copy apk entry %s: %w", f.Name, err)
		}
	}
	if err := add(w); err != nil {
		w.Close()
		tmp.Close()
		return err
	}
	if err := w.Close(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := r.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// addFile stores one disk file under name inside the archive.
func addFile(w *zip.Writer, diskPath, name string) error {
	in, err := os.Open(diskPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := w.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	return err
}

// addTree stores every file under srcRoot below base inside the
// archive, returning the number of files added. A missing srcRoot adds
// nothing.
func addTree(w *zip.Writer, srcRoot, base string) (int, error) {
	if info, err := os.Stat(srcRoot); err != nil || !info.IsDir() {
		return 0, nil
	}
	base = strings.Trim(base, "/")
	count := 0
	err := filepath.WalkDir(srcRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(srcRoot, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if base != "" {
			name = base + "/" + name
		}
		if err := addFile(w, path, name); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}
