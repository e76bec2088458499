// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/crosside/crossbuild/descriptor"
)

// exportedRuntimeMethods are the emscripten runtime entry points the
// generated JS glue must expose; without them the module loads but the
// engine cannot reach the heap or call into the wasm.
const exportedRuntimeMethods = "-sEXPORTED_RUNTIME_METHODS=['HEAP8','HEAPU8','HEAP16','HEAPU16','HEAP32','HEAPU32','HEAPF32','HEAPF64','ccall','cwrap']"

// NormalizeEmscriptenSettings rewrites two-token settings flags
// ("-s NAME=VALUE") into the single-token "-sNAME=VALUE" form the
// emscripten linker expects, leaving other flags untouched.
func NormalizeEmscriptenSettings(ld []string) []string {
	out := make([]string, 0, len(ld))
	for i := 0; i < len(ld); i++ {
		flag := strings.TrimSpace(ld[i])
		if flag == "-s" && i+1 < len(ld) {
			if setting := strings.TrimSpace(ld[i+1]); setting != "" {
				out = append(out, "-s"+setting)
			}
			i++
			continue
		}
		if flag != "" {
			out = append(out, flag)
		}
	}
	return out
}

// EnsureWebRuntimeFlags force-enables ASYNCIFY and the exported runtime
// methods unless the caller already set them explicitly. The emscripten
// toolchain silently produces a non-functional binary without them.
func EnsureWebRuntimeFlags(ld []string) []string {
	hasAsyncify := false
	hasExported := false
	for _, flag := range ld {
		if strings.HasPrefix(flag, "-sASYNCIFY") {
			hasAsyncify = true
		}
		if strings.HasPrefix(flag, "-sEXPORTED_RUNTIME_METHODS=") {
			hasExported = true
		}
	}
	if !hasAsyncify {
		ld = append(ld, "-sASYNCIFY")
	}
	if !hasExported {
		ld = append(ld, exportedRuntimeMethods)
	}
	return ld
}

// AssetMounts maps project asset directories to their fixed mount
// names inside the web bundle and the Android package.
var AssetMounts = []struct {
	Host  string
	Mount string
}{
	{"scripts", "scripts"},
	{"assets", "assets"},
	{"resources", "resources"},
	{"data", "data"},
	{"media", "media"},
}

// WebShell resolves the shell template for a project: the project's own
// shell if it exists, otherwise the first module-declared shell that
// does. Returns "" when no shell is available.
func WebShell(p *descriptor.ProjectDescriptor, activeModules []string, reg *descriptor.Registry) string {
	if p.WebShell != "" {
		shell := p.WebShell
		if !filepath.IsAbs(shell) {
			shell = filepath.Join(p.Root, shell)
		}
		if fileExists(shell) {
			return shell
		}
		log.Warnf("web shell not found: %s", shell)
	}
	for _, name := range activeModules {
		m := reg.Lookup(name)
		if m == nil {
			continue
		}
		tmpl := m.Block(descriptor.BlockWeb).Template
		if tmpl == "" {
			continue
		}
		shell := filepath.Join(m.Dir, tmpl)
		if fileExists(shell) {
			return shell
		}
	}
	return ""
}

// WebLinkExtras returns the additional link flags for a project web
// build: the shell template and --preload-file entries for each asset
// directory that exists under the project root.
func WebLinkExtras(p *descriptor.ProjectDescriptor, activeModules []string, reg *descriptor.Registry) []string {
	var extras []string
	if shell := WebShell(p, activeModules, reg); shell != "" {
		extras = append(extras, "--shell-file", shell)
	}
	for _, mount := range AssetMounts {
		host := filepath.Join(p.Root, mount.Host)
		if _, err := os.Stat(host); err == nil {
			extras = append(extras, "--preload-file", host+"@/"+mount.Mount)
		}
	}
	return extras
}

// removeStaleWebOutputs deletes output files left from a previous link
// of the same name; emscripten does not rewrite every companion file.
func removeStaleWebOutputs(htmlOut string) {
	base := strings.TrimSuffix(htmlOut, filepath.Ext(htmlOut))
	for _, stale := range []string{
		htmlOut,
		base + ".js",
		base + ".wasm",
		base + ".data",
		base + ".worker.js",
	} {
		if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
			log.Warnf("remove stale web output %s: %v", stale, err)
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
