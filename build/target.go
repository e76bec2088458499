// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/crosside/crossbuild/descriptor"
)

// Target is a build target: one toolchain and output format.
type Target int

const (
	// Desktop builds with the host gcc/g++ toolchain.
	Desktop Target = iota
	// Android builds with the NDK clang toolchain, fanned out per ABI.
	Android
	// Web builds with the emscripten toolchain.
	Web
)

// AllTargets lists every target, in build order.
var AllTargets = []Target{Desktop, Android, Web}

// ParseTarget normalizes a target token.
// Accepted aliases: desktop|linux|native, android, web|emscripten.
func ParseTarget(token string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "desktop", "linux", "native":
		return Desktop, nil
	case "android":
		return Android, nil
	case "web", "emscripten":
		return Web, nil
	}
	return 0, fmt.Errorf("unknown target %q (use: desktop, android, web)", token)
}

// ParseTargets normalizes a list of target tokens, deduplicating while
// preserving first-seen order. An empty list yields the default target.
func ParseTargets(tokens []string, defaultTarget Target) ([]Target, error) {
	if len(tokens) == 0 {
		return []Target{defaultTarget}, nil
	}
	var out []Target
	for _, token := range tokens {
		t, err := ParseTarget(token)
		if err != nil {
			return nil, err
		}
		seen := false
		for _, have := range out {
			if have == t {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, t)
		}
	}
	return out, nil
}

func (t Target) String() string {
	switch t {
	case Android:
		return "android"
	case Web:
		return "web"
	}
	return "desktop"
}

// BlockKey returns the descriptor platform block key for the target.
func (t Target) BlockKey() string {
	switch t {
	case Android:
		return descriptor.BlockAndroid
	case Web:
		return descriptor.BlockWeb
	}
	return descriptor.BlockDesktop
}

// SystemName returns the build-system identifier used in a module's
// "system" allow-list.
func (t Target) SystemName() string {
	switch t {
	case Android:
		return "android"
	case Web:
		return "emscripten"
	}
	if runtime.GOOS == "windows" {
		return "windows"
	}
	return "linux"
}

// IncludeSuffix returns the include/<suffix> directory name probed for
// target-specific headers.
func (t Target) IncludeSuffix() string {
	switch t {
	case Android:
		return "android"
	case Web:
		return "web"
	}
	if runtime.GOOS == "windows" {
		return "windows"
	}
	return "linux"
}

// OutDirName returns the per-target artifact directory name.
func (t Target) OutDirName() string {
	switch t {
	case Android:
		return "Android"
	case Web:
		return "Web"
	}
	if runtime.GOOS == "windows" {
		return "Windows"
	}
	return "Linux"
}

// exeSuffix is the desktop executable suffix on this host.
func exeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

// ABI is an Android instruction-set variant.
type ABI int

const (
	// ABIArm32 is 32-bit ARM (armeabi-v7a).
	ABIArm32 ABI = iota
	// ABIArm64 is 64-bit ARM (arm64-v8a).
	ABIArm64
)

// DefaultABIs is the fan-out used when no ABI list is given.
var DefaultABIs = []ABI{ABIArm32, ABIArm64}

// ParseABIs parses a comma separated ABI list.
// Accepted aliases: arm7|armeabi|armeabi-v7a, arm64|arm64-v8a|aarch64.
func ParseABIs(raw string) ([]ABI, error) {
	var out []ABI
	for _, token := range strings.Split(raw, ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		var abi ABI
		switch token {
		case "arm7", "armeabi", "armeabi-v7a":
			abi = ABIArm32
		case "arm64", "arm64-v8a", "aarch64":
			abi = ABIArm64
		default:
			return nil, fmt.Errorf("unknown Android ABI %q (use arm7, arm64)", token)
		}
		seen := false
		for _, have := range out {
			if have == abi {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, abi)
		}
	}
	if len(out) == 0 {
		return DefaultABIs, nil
	}
	return out, nil
}

// Dir returns the ABI output directory name.
func (a ABI) Dir() string {
	if a == ABIArm64 {
		return "arm64-v8a"
	}
	return "armeabi-v7a"
}

// TargetTriple returns the clang -target value for the ABI.
func (a ABI) TargetTriple() string {
	if a == ABIArm64 {
		return "aarch64-linux-android21"
	}
	return "armv7a-linux-androideabi21"
}

// IncludeTriple returns the per-ABI sysroot include directory name.
func (a ABI) IncludeTriple() string {
	if a == ABIArm64 {
		return "aarch64-linux-android"
	}
	return "arm-linux-androideabi"
}

// LibTriple returns the per-ABI sysroot library directory name.
func (a ABI) LibTriple() string {
	if a == ABIArm64 {
		return "aarch64-linux-android"
	}
	return "arm-linux-androideabi"
}

// UnwindArch returns the clang runtime libunwind directory name.
func (a ABI) UnwindArch() string {
	if a == ABIArm64 {
		return "aarch64"
	}
	return "arm"
}

func (a ABI) String() string {
	return a.Dir()
}

// Mode is the desktop build mode.
type Mode int

const (
	// Release strips debug flags and compiles with -O2 -DNDEBUG.
	Release Mode = iota
	// Debug strips optimization flags and compiles with -O0 -g3 -DDEBUG.
	Debug
)

// ParseMode normalizes a mode token.
func ParseMode(token string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "", "release":
		return Release, nil
	case "debug":
		return Debug, nil
	}
	return 0, fmt.Errorf("unknown mode %q (use: release, debug)", token)
}

func (m Mode) String() string {
	if m == Debug {
		return "debug"
	}
	return "release"
}

// LibraryDir returns the directory a module's built library lives in
// for the target (and ABI, for Android).
func LibraryDir(m *descriptor.ModuleDescriptor, t Target, abi ABI) string {
	switch t {
	case Android:
		return filepath.Join(m.Dir, "Android", abi.Dir())
	case Web:
		return filepath.Join(m.Dir, "Web")
	}
	return filepath.Join(m.Dir, t.OutDirName())
}

// LibraryFile returns the expected library file path for the module.
// Web libraries are always static archives.
func LibraryFile(m *descriptor.ModuleDescriptor, t Target, abi ABI) string {
	ext := ".so"
	if m.Static || t == Web {
		ext = ".a"
	}
	return filepath.Join(LibraryDir(m, t, abi), "lib"+m.Name+ext)
}
