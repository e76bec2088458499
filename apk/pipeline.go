// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package apk

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zip"

	"github.com/crosside/crossbuild/build"
	"github.com/crosside/crossbuild/descriptor"
	"github.com/crosside/crossbuild/execute"
	"github.com/crosside/crossbuild/toolchain"
	"github.com/crosside/crossbuild/ui"
)

// Debug signing identity baked into every development APK. Release
// signing is out of scope; these match the keystore the IDE has always
// generated.
const (
	keyAlias = "djokersoft"
	keyPass  = "14781478"
	keyDName = "CN=djokersoft,O=Android,C=PT"
)

// StepError is a failed packaging step with the tool's error stream.
type StepError struct {
	Step   string
	Err    error
	Stderr string
}

func (e *StepError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("apk %s: %v\n%s", e.Step, e.Err, e.Stderr)
	}
	return fmt.Sprintf("apk %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// App identifies a packaged application.
type App struct {
	Package  string
	Activity string
	// APK is the signed archive path.
	APK string
}

// Packager assembles signed APKs from built native libraries.
type Packager struct {
	Toolchain toolchain.Paths
	Executor  execute.Executor
	UI        ui.UI

	// TemplatesRoot holds shared Android resources (launcher icons)
	// seeded into new apps. Empty skips seeding.
	TemplatesRoot string
	// RequireAllABIs fails packaging when the native library is missing
	// for any requested ABI. The default packages the subset that built
	// and warns about the rest.
	RequireAllABIs bool
}

func (p *Packager) step(ctx context.Context, step string, args []string) (*execute.Cmd, error) {
	cmd := execute.NewCmd(step, step, args)
	log.Debugf("%s: %s", step, cmd.Command())
	if err := p.Executor.Run(ctx, cmd); err != nil {
		return cmd, &StepError{Step: step, Err: err, Stderr: strings.TrimSpace(string(cmd.Stderr()))}
	}
	return cmd, nil
}

// Package assembles and signs the APK for a project whose native
// libraries were already built. The packaging work directory is
// <root>/Android/<name>/ and survives between runs; resources, the
// manifest, and the debug keystore in it are reused.
func (p *Packager) Package(ctx context.Context, proj *descriptor.ProjectDescriptor, abis []build.ABI) (*App, error) {
	name := proj.Name
	workDir := filepath.Join(proj.Root, "Android", name)
	resDir := filepath.Join(workDir, "res")
	javaDir := filepath.Join(workDir, "java")
	tmpDir := filepath.Join(workDir, "tmp")
	outDir := filepath.Join(workDir, "out")
	dexDir := filepath.Join(workDir, "dex")
	for _, dir := range []string{resDir, javaDir, tmpDir, outDir, dexDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	p.seedLauncherIcons(resDir)

	pkg := SanitizePackage(proj.AndroidPackage)
	if pkg != strings.TrimSpace(proj.AndroidPackage) {
		p.UI.Warningf("fix package name: %q -> %q", proj.AndroidPackage, pkg)
	}
	activity := NormalizeActivity(pkg, proj.AndroidActivity)
	label := name

	manifest := filepath.Join(workDir, "AndroidManifest.xml")
	if err := EnsureManifest(manifest, pkg, label, activity, name); err != nil {
		return nil, err
	}
	ensureIconFallback(manifest, resDir)

	if err := os.MkdirAll(filepath.Join(javaDir, filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/"))), 0o755); err != nil {
		return nil, err
	}

	keystore := filepath.Join(workDir, name+".key")
	if err := p.ensureDebugKeystore(ctx, keystore); err != nil {
		return nil, err
	}

	if err := p.generateResources(ctx, manifest, resDir, javaDir); err != nil {
		return nil, err
	}
	hadJava, err := p.compileJava(ctx, javaDir, outDir)
	if err != nil {
		return nil, err
	}
	if err := p.dex(ctx, outDir, dexDir, hadJava); err != nil {
		return nil, err
	}

	unaligned := filepath.Join(tmpDir, name+".unaligned.apk")
	if _, err := p.step(ctx, "aapt", []string{
		p.Toolchain.AAPT, "package", "-f", "-m",
		"-F", unaligned,
		"-M", manifest,
		"-S", resDir,
		"-I", p.Toolchain.PlatformJAR,
	}); err != nil {
		return nil, err
	}

	if err := p.fillArchive(proj, unaligned, name, abis, dexDir); err != nil {
		return nil, err
	}

	signed := filepath.Join(workDir, name+".signed.apk")
	sp := p.UI.NewSpinner()
	sp.Start("sign %s", filepath.Base(unaligned))
	if _, err := p.step(ctx, "apksigner", []string{
		p.Toolchain.APKSigner, "sign",
		"--ks", keystore,
		"--ks-key-alias", keyAlias,
		"--ks-pass", "pass:" + keyPass,
		"--in", unaligned,
		"--out", signed,
	}); err != nil {
		sp.Stop(err)
		return nil, err
	}
	sp.Done("signed %s", signed)
	return &App{Package: pkg, Activity: activity, APK: signed}, nil
}

// seedLauncherIcons copies the template launcher icon into each density
// bucket that does not have one yet.
func (p *Packager) seedLauncherIcons(resDir string) {
	if p.TemplatesRoot == "" {
		return
	}
	src := filepath.Join(p.TemplatesRoot, "Android", "Res", "mipmap-hdpi", "ic_launcher.png")
	data, err := os.ReadFile(src)
	if err != nil {
		return
	}
	for _, bucket := range []string{"mipmap-hdpi", "mipmap-mdpi", "mipmap-xhdpi", "mipmap-xxhdpi"} {
		dir := filepath.Join(resDir, bucket)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			continue
		}
		dst := filepath.Join(dir, "ic_launcher.png")
		if _, err := os.Stat(dst); err == nil {
			continue
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			log.Warnf("seed launcher icon: %v", err)
		}
	}
}

func (p *Packager) ensureDebugKeystore(ctx context.Context, keystore string) error {
	if _, err := os.Stat(keystore); err == nil {
		return nil
	}
	sp := p.UI.NewSpinner()
	sp.Start("generate debug keystore %s", filepath.Base(keystore))
	_, err := p.step(ctx, "keytool", []string{
		p.Toolchain.Keytool(),
		"-genkeypair",
		"-validity", "1000",
		"-dname", keyDName,
		"-keystore", keystore,
		"-storepass", keyPass,
		"-keypass", keyPass,
		"-alias", keyAlias,
		"-keyalg", "RSA",
	})
	sp.Stop(err)
	return err
}

// generateResources runs aapt in generate-R mode. Generated R.java
// files from earlier package names are purged first so a rename does
// not leave a stale class tree behind.
func (p *Packager) generateResources(ctx context.Context, manifest, resDir, javaDir string) error {
	purge(javaDir, func(name string) bool {
		return name == "R.java" || strings.HasPrefix(name, "R$")
	})
	_, err := p.step(ctx, "aapt", []string{
		p.Toolchain.AAPT, "package", "-f", "-m",
		"-J", javaDir,
		"-M", manifest,
		"-S", resDir,
		"-I", p.Toolchain.PlatformJAR,
	})
	return err
}

// compileJava compiles every .java under javaDir into outDir,
// skipping sources whose class file is already newer. It reports
// whether any java sources exist at all.
func (p *Packager) compileJava(ctx context.Context, javaDir, outDir string) (bool, error) {
	sources := collect(javaDir, ".java")
	sort.Sort(sort.Reverse(sort.StringSlice(sources)))
	classpath := p.Toolchain.PlatformJAR + string(os.PathListSeparator) + outDir
	sourcepath := strings.Join([]string{javaDir, filepath.Join(javaDir, "org"), outDir}, string(os.PathListSeparator))

	for _, src := range sources {
		if skip, err := classUpToDate(javaDir, outDir, src); err == nil && skip {
			p.UI.Progress(0, 0, "skip "+filepath.Base(src))
			continue
		}
		p.UI.Progress(0, 0, "JAVAC "+filepath.Base(src))
		if _, err := p.step(ctx, "javac", []string{
			p.Toolchain.Javac(),
			"-nowarn",
			"-Xlint:none",
			"-J-Xmx2048m",
			"-Xlint:unchecked",
			"-source", "1.8",
			"-target", "1.8",
			"-d", outDir,
			"-classpath", classpath,
			"-sourcepath", sourcepath,
			src,
		}); err != nil {
			return true, err
		}
	}
	return len(sources) > 0, nil
}

// classUpToDate reports whether the class file for a java source exists
// and is strictly newer than the source.
func classUpToDate(javaDir, outDir, src string) (bool, error) {
	rel, err := filepath.Rel(javaDir, src)
	if err != nil {
		return false, err
	}
	class := filepath.Join(outDir, strings.TrimSuffix(rel, ".java")+".class")
	classInfo, err := os.Stat(class)
	if err != nil {
		return false, err
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	return classInfo.ModTime().After(srcInfo.ModTime()), nil
}

// dex translates compiled classes to Dalvik bytecode, preferring d8
// and falling back to the legacy dx. A native-only app with no classes
// skips the step entirely.
func (p *Packager) dex(ctx context.Context, outDir, dexDir string, hadJava bool) error {
	purge(dexDir, func(name string) bool { return strings.HasSuffix(name, ".dex") })

	classes := collect(outDir, ".class")
	if len(classes) == 0 {
		if hadJava {
			p.UI.Warningf("java sources found but no classes generated, skipping dex")
		} else {
			p.UI.Infof("no java sources, native-only apk")
		}
		return nil
	}

	if p.Toolchain.D8 != "" {
		args := append([]string{p.Toolchain.D8, "--release", "--output", dexDir, "--lib", p.Toolchain.PlatformJAR}, classes...)
		if _, err := p.step(ctx, "d8", args); err == nil {
			return nil
		}
		p.UI.Warningf("d8 failed, falling back to dx")
	}
	args := append([]string{p.Toolchain.DX, "--dex", "--output=" + filepath.Join(dexDir, "classes.dex")}, classes...)
	_, err := p.step(ctx, "dx", args)
	return err
}

// fillArchive appends the native libraries, project assets, and dex
// files to the aapt-produced base archive.
func (p *Packager) fillArchive(proj *descriptor.ProjectDescriptor, apkPath, name string, abis []build.ABI, dexDir string) error {
	if len(abis) == 0 {
		abis = build.DefaultABIs
	}
	return appendToArchive(apkPath, func(w *zip.Writer) error {
		for _, abi := range abis {
			lib := filepath.Join(proj.Root, "Android", abi.Dir(), "lib"+name+".so")
			if _, err := os.Stat(lib); err != nil {
				if p.RequireAllABIs {
					return fmt.Errorf("missing native library for %s: %s", abi, lib)
				}
				p.UI.Warningf("missing native library for %s: %s", abi, lib)
				continue
			}
			if err := addFile(w, lib, "lib/"+abi.Dir()+"/lib"+name+".so"); err != nil {
				return err
			}
			p.UI.Infof("pack %s", lib)
		}
		for _, mount := range build.AssetMounts {
			host := filepath.Join(proj.Root, mount.Host)
			added, err := addTree(w, host, "assets/"+mount.Mount)
			if err != nil {
				return err
			}
			if added > 0 {
				p.UI.Infof("pack %s -> assets/%s (%d files)", mount.Host, mount.Mount, added)
			}
		}
		for _, dex := range collect(dexDir, ".dex") {
			if err := addFile(w, dex, filepath.Base(dex)); err != nil {
				return err
			}
		}
		return nil
	})
}

// collect returns every file under root with the extension, sorted.
func collect(root, ext string) []string {
	var out []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && filepath.Ext(path) == ext {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out
}

// purge removes files under root whose name matches.
func purge(root string, match func(name string) bool) {
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if match(d.Name()) {
			if err := os.Remove(path); err != nil {
				log.Warnf("purge %s: %v", path, err)
			}
		}
		return nil
	})
}
