// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package toolchain holds resolved toolchain paths.
//
// Path and version discovery happens outside the build orchestrator;
// the orchestrator consumes a Paths value as an opaque record and only
// verifies that the tools a target needs actually exist before any
// compilation starts.
package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Paths is the resolved toolchain surface consumed by the builder and
// the Android packager.
type Paths struct {
	// Desktop tools. Bare command names are looked up in PATH by the
	// executor.
	CC  string
	CXX string
	AR  string

	// Emscripten tools.
	EMCC string
	EMXX string
	EMAR string

	// Android SDK/NDK surface.
	AndroidSDK  string
	AndroidNDK  string
	JavaHome    string
	AAPT string
	DX   string
	D8   string
	// Zipalign is resolved for completeness but the pipeline signs the
	// unaligned archive; apksigner does not require alignment for debug
	// installs.
	Zipalign    string
	APKSigner   string
	PlatformJAR string
}

// ADB returns the adb path under the SDK.
func (p Paths) ADB() string {
	return filepath.Join(p.AndroidSDK, "platform-tools", "adb")
}

// Keytool returns the JDK keytool path.
func (p Paths) Keytool() string {
	return filepath.Join(p.JavaHome, "bin", "keytool")
}

// Javac returns the JDK compiler path.
func (p Paths) Javac() string {
	return filepath.Join(p.JavaHome, "bin", "javac")
}

// NDKPrebuilt returns the host prebuilt LLVM toolchain root inside the NDK.
func (p Paths) NDKPrebuilt() string {
	host := "linux-x86_64"
	switch runtime.GOOS {
	case "darwin":
		host = "darwin-x86_64"
	case "windows":
		host = "windows-x86_64"
	}
	return filepath.Join(p.AndroidNDK, "toolchains", "llvm", "prebuilt", host)
}

// Sysroot returns the NDK sysroot directory.
func (p Paths) Sysroot() string {
	return filepath.Join(p.NDKPrebuilt(), "sysroot")
}

// Clang returns the NDK C compiler path.
func (p Paths) Clang() string {
	return filepath.Join(p.NDKPrebuilt(), "bin", "clang")
}

// ClangXX returns the NDK C++ compiler path.
func (p Paths) ClangXX() string {
	return filepath.Join(p.NDKPrebuilt(), "bin", "clang++")
}

// LLVMAr returns the NDK archiver path.
func (p Paths) LLVMAr() string {
	return filepath.Join(p.NDKPrebuilt(), "bin", "llvm-ar")
}

// LLVMStrip returns the NDK strip tool path.
func (p Paths) LLVMStrip() string {
	return filepath.Join(p.NDKPrebuilt(), "bin", "llvm-strip")
}

// CPPIncludeDir returns the NDK libc++ include directory.
func (p Paths) CPPIncludeDir() string {
	return filepath.Join(p.Sysroot(), "usr", "include", "c++", "v1")
}

// MissingToolsError lists toolchain paths a target needs that do not
// exist. It is fatal to the whole target before any compilation starts.
type MissingToolsError struct {
	Target  string
	Missing []string
}

func (e *MissingToolsError) Error() string {
	return fmt.Sprintf("missing %s toolchain paths:\n  %s", e.Target, strings.Join(e.Missing, "\n  "))
}

// missing returns the subset of paths that do not exist on disk.
// Empty entries count as missing; bare command names are not checked
// (the executor resolves them in PATH).
func missing(paths []string) []string {
	var out []string
	for _, p := range paths {
		if p == "" {
			out = append(out, "(unset)")
			continue
		}
		if !strings.ContainsRune(p, os.PathSeparator) {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			out = append(out, p)
		}
	}
	return out
}

// CheckAndroid verifies the Android toolchain surface.
func (p Paths) CheckAndroid() error {
	m := missing([]string{p.AndroidNDK, p.AndroidSDK, p.AAPT, p.DX, p.APKSigner, p.PlatformJAR})
	if len(m) > 0 {
		return &MissingToolsError{Target: "android", Missing: m}
	}
	return nil
}

// CheckWeb verifies the emscripten toolchain surface.
func (p Paths) CheckWeb() error {
	m := missing([]string{p.EMCC, p.EMXX, p.EMAR})
	if len(m) > 0 {
		return &MissingToolsError{Target: "web", Missing: m}
	}
	return nil
}

// CheckDesktop verifies the desktop toolchain surface.
func (p Paths) CheckDesktop() error {
	m := missing([]string{p.CC, p.CXX, p.AR})
	if len(m) > 0 {
		return &MissingToolsError{Target: "desktop", Missing: m}
	}
	return nil
}
