// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package toolchain

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/charmbracelet/log"
)

// toolchainConfig is the optional "Toolchain" block of config.json,
// either at the top level or nested under "Configuration".
type toolchainConfig struct {
	AndroidSdk string `json:"AndroidSdk"`
	AndroidNdk string `json:"AndroidNdk"`
	JavaSdk    string `json:"JavaSdk"`
	Emsdk      string `json:"Emsdk"`
	BuildTools string `json:"BuildTools"`
	Platform   string `json:"Platform"`
}

func readToolchainConfig(file string) toolchainConfig {
	var raw struct {
		Toolchain     *toolchainConfig `json:"Toolchain"`
		Configuration *struct {
			Toolchain *toolchainConfig `json:"Toolchain"`
		} `json:"Configuration"`
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return toolchainConfig{}
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Debugf("ignore malformed config %s: %v", file, err)
		return toolchainConfig{}
	}
	if raw.Toolchain != nil {
		return *raw.Toolchain
	}
	if raw.Configuration != nil && raw.Configuration.Toolchain != nil {
		return *raw.Configuration.Toolchain
	}
	return toolchainConfig{}
}

var digitsRe = regexp.MustCompile(`\d+`)

// versionKey turns "30.0.3" (or "android-30") into a comparable slice.
func versionKey(value string) []int {
	parts := digitsRe.FindAllString(value, -1)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

func versionLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// pickLatest returns the highest-versioned subdirectory name of root
// that satisfies ok, or "".
func pickLatest(root string, ok func(dir string) bool) string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return ""
	}
	best := ""
	var bestKey []int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if ok != nil && !ok(filepath.Join(root, entry.Name())) {
			continue
		}
		key := versionKey(entry.Name())
		if best == "" || versionLess(bestKey, key) {
			best = entry.Name()
			bestKey = key
		}
	}
	return best
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// selectBuildTools returns the preferred build-tools version when
// installed, otherwise the newest installed one.
func selectBuildTools(sdkRoot, preferred string) string {
	root := filepath.Join(sdkRoot, "build-tools")
	if preferred != "" && isDir(filepath.Join(root, preferred)) {
		return preferred
	}
	if latest := pickLatest(root, nil); latest != "" {
		return latest
	}
	return preferred
}

// selectPlatform returns the preferred platforms/ version carrying an
// android.jar, otherwise the newest installed one.
func selectPlatform(sdkRoot, preferred string) string {
	root := filepath.Join(sdkRoot, "platforms")
	if preferred != "" && isFile(filepath.Join(root, preferred, "android.jar")) {
		return preferred
	}
	if latest := pickLatest(root, func(dir string) bool {
		return isFile(filepath.Join(dir, "android.jar"))
	}); latest != "" {
		return latest
	}
	return preferred
}

// selectNDK prefers an explicitly configured NDK, falling back to the
// newest NDK bundled under the SDK.
func selectNDK(sdkRoot, preferred string) string {
	if preferred != "" && isDir(preferred) {
		return preferred
	}
	root := filepath.Join(sdkRoot, "ndk")
	if latest := pickLatest(root, nil); latest != "" {
		return filepath.Join(root, latest)
	}
	return preferred
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Resolve discovers the toolchain surface: environment variables win
// over the config file, which wins over convention. Bare command names
// (gcc, emcc) are left for PATH resolution at execution time.
func Resolve(configFile string) Paths {
	cfg := readToolchainConfig(configFile)

	sdk := firstNonEmpty(os.Getenv("ANDROID_SDK_ROOT"), os.Getenv("ANDROID_HOME"), cfg.AndroidSdk)
	ndk := selectNDK(sdk, firstNonEmpty(os.Getenv("ANDROID_NDK_ROOT"), cfg.AndroidNdk))
	java := firstNonEmpty(os.Getenv("JAVA_HOME"), cfg.JavaSdk)

	buildTools := selectBuildTools(sdk, firstNonEmpty(os.Getenv("CROSSBUILD_BUILD_TOOLS"), cfg.BuildTools))
	platform := selectPlatform(sdk, firstNonEmpty(os.Getenv("CROSSBUILD_PLATFORM"), cfg.Platform))
	buildToolsRoot := filepath.Join(sdk, "build-tools", buildTools)

	emcc, emxx, emar := "emcc", "em++", "emar"
	if emsdk := firstNonEmpty(os.Getenv("EMSDK"), cfg.Emsdk); emsdk != "" {
		emscripten := filepath.Join(emsdk, "upstream", "emscripten")
		emcc = filepath.Join(emscripten, "emcc")
		emxx = filepath.Join(emscripten, "em++")
		emar = filepath.Join(emscripten, "emar")
	}

	p := Paths{
		CC:  firstNonEmpty(os.Getenv("CC"), "gcc"),
		CXX: firstNonEmpty(os.Getenv("CXX"), "g++"),
		AR:  firstNonEmpty(os.Getenv("AR"), "ar"),

		EMCC: emcc,
		EMXX: emxx,
		EMAR: emar,

		AndroidSDK:  sdk,
		AndroidNDK:  ndk,
		JavaHome:    java,
		AAPT:        filepath.Join(buildToolsRoot, "aapt"),
		DX:          filepath.Join(buildToolsRoot, "dx"),
		D8:          filepath.Join(buildToolsRoot, "d8"),
		Zipalign:    filepath.Join(buildToolsRoot, "zipalign"),
		APKSigner:   filepath.Join(buildToolsRoot, "apksigner"),
		PlatformJAR: filepath.Join(sdk, "platforms", platform, "android.jar"),
	}
	log.Debugf("toolchain: sdk=%s ndk=%s java=%s build-tools=%s platform=%s", sdk, ndk, java, buildTools, platform)
	return p
}
