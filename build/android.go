// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"path/filepath"
	"sort"

	"github.com/crosside/crossbuild/execute"
)

// androidCompileArgs builds the NDK clang command line for one source.
// The baked flag block matches what ndk-build passes for a native
// activity at API level 21; descriptor flags come after it so they can
// override warnings but not the ABI selection.
func (b *Builder) androidCompileArgs(e Entry, src, obj string, cpp bool) []string {
	tc := b.opts.Toolchain
	driver := tc.Clang()
	if cpp {
		driver = tc.ClangXX()
	}

	args := []string{
		driver,
		"-target", e.ABI.TargetTriple(),
		"-fdata-sections",
		"-ffunction-sections",
		"-fstack-protector-strong",
		"-funwind-tables",
		"-no-canonical-prefixes",
		"--sysroot", tc.Sysroot(),
		"-g",
		"-Wno-invalid-command-line-argument",
		"-Wno-unused-command-line-argument",
		"-D_FORTIFY_SOURCE=2",
		"-fno-exceptions",
		"-fno-rtti",
		"-fpic",
	}
	if e.ABI == ABIArm32 {
		args = append(args, "-march=armv7-a", "-mthumb", "-Oz")
	} else {
		args = append(args, "-O2")
	}
	args = append(args,
		"-DNDEBUG",
		"-I"+filepath.Join(tc.Sysroot(), "usr", "include", e.ABI.IncludeTriple()),
		"-I"+filepath.Join(tc.Sysroot(), "usr", "include"),
		"-I"+e.Dir,
		"-I"+filepath.Dir(src),
		"-DANDROID",
	)
	if cpp {
		args = append(args, "-nostdinc++", "-I"+tc.CPPIncludeDir())
	}
	args = append(args,
		"-Wformat",
		"-Werror=format-security",
		"-fno-strict-aliasing",
		"-DPLATFORM_ANDROID",
	)
	args = append(args, compileFlags(e.Flags, cpp)...)
	return append(args, "-c", src, "-o", obj)
}

// androidLinkCmd builds the link command for an Android entry: llvm-ar
// for static archives, clang with the NDK shared-object flag block
// otherwise. Native activities link as shared objects too; the Android
// runtime dlopens them.
func (b *Builder) androidLinkCmd(e Entry, out string, objs []string) *execute.Cmd {
	tc := b.opts.Toolchain
	if e.BuildType == StaticArchive {
		args := append([]string{tc.LLVMAr(), "rcs", out}, objs...)
		return execute.NewCmd("ar", "AR "+filepath.Base(out), args)
	}

	driver := tc.Clang()
	if e.UseCPP {
		driver = tc.ClangXX()
	}
	args := []string{
		driver,
		"-Wl,-soname,lib" + e.Name + ".so",
		"-shared",
	}
	args = append(args, objs...)
	args = append(args, "-L"+b.libSearchDir(Android, e.ABI))
	if e.UseCPP {
		args = append(args, "-L"+filepath.Join(tc.Sysroot(), "usr", "lib"))
	}
	args = append(args, e.Flags.LD...)
	args = append(args, "-Wl,--no-whole-archive")
	if e.UseCPP {
		args = append(args, androidCPPRuntimeLibs(tc.NDKPrebuilt(), e.ABI)...)
	}
	args = append(args,
		"-target", e.ABI.TargetTriple(),
		"--sysroot", tc.Sysroot(),
		"-no-canonical-prefixes",
		"-Wl,--build-id",
	)
	if e.UseCPP {
		args = append(args, "-nostdlib++")
	}
	args = append(args,
		"-Wl,--no-undefined",
		"-Wl,--fatal-warnings",
		"-o", out,
	)
	return execute.NewCmd("link", "SOLINK "+filepath.Base(out), args)
}

// androidCPPRuntimeLibs returns the static C++ runtime archives a C++
// link needs with -nostdlib++: libc++_static, libc++abi, and the newest
// clang libunwind for the ABI. Archives missing from the installed NDK
// are silently omitted; the linker reports unresolved symbols if they
// were actually needed.
func androidCPPRuntimeLibs(prebuilt string, abi ABI) []string {
	var libs []string
	for _, name := range []string{"libc++_static.a", "libc++abi.a"} {
		lib := filepath.Join(prebuilt, "sysroot", "usr", "lib", abi.LibTriple(), name)
		if fileExists(lib) {
			libs = append(libs, lib)
		}
	}
	pattern := filepath.Join(prebuilt, "lib", "clang", "*", "lib", "linux", abi.UnwindArch(), "libunwind.a")
	if matches, err := filepath.Glob(pattern); err == nil && len(matches) > 0 {
		sort.Strings(matches)
		libs = append(libs, matches[len(matches)-1])
	}
	return libs
}
