// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package apk packages built Android native libraries into signed,
// installable APKs.
package apk

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
)

// nativeManifestTemplate is the manifest written for a native activity
// app. Placeholders: @apppkg@ package, @applbl@ label, @appact@
// activity class, @appLIBNAME@ the lib<name>.so base name.
const nativeManifestTemplate = `<?xml version="1.0" encoding="utf-8"?>
<manifest xmlns:android="http://schemas.android.com/apk/res/android"
          package="@apppkg@"
          android:versionCode="1"
          android:versionName="1.0">

           <uses-sdk  android:compileSdkVersion="30"     android:minSdkVersion="16"  android:targetSdkVersion="23" />

  <application
      android:allowBackup="false"
      android:fullBackupContent="false"
      android:icon="@mipmap/ic_launcher"
      android:label="@applbl@"
      android:hasCode="false">


    <activity android:name="@appact@"
              android:label="@applbl@"
              android:configChanges="orientation|keyboardHidden|screenSize"
             android:screenOrientation="landscape" android:launchMode="singleTask"
             android:clearTaskOnLaunch="true">

      <meta-data android:name="android.app.lib_name"
                 android:value="@appLIBNAME@" />
      <intent-filter>
        <action android:name="android.intent.action.MAIN" />
        <category android:name="android.intent.category.LAUNCHER" />
      </intent-filter>
    </activity>
  </application>

</manifest>`

// fallbackPackage is used when a declared package cannot be repaired
// into a valid Android application id.
const fallbackPackage = "com.djokersoft.game"

// defaultActivity is the platform native activity used when a project
// declares none.
const defaultActivity = "android.app.NativeActivity"

var (
	invalidPackageRunes = regexp.MustCompile(`[^A-Za-z0-9_.]`)
	repeatedDots        = regexp.MustCompile(`\.+`)
	invalidPartRunes    = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

// SanitizePackage repairs a declared package name into a valid Android
// application id: slashes become dots, invalid characters are dropped,
// leading digits get a "p" prefix. Anything that does not survive as at
// least two segments falls back to a fixed package.
func SanitizePackage(name string) string {
	value := strings.ReplaceAll(strings.TrimSpace(name), "/", ".")
	value = invalidPackageRunes.ReplaceAllString(value, "")
	value = strings.Trim(repeatedDots.ReplaceAllString(value, "."), ".")

	var parts []string
	for _, part := range strings.Split(value, ".") {
		part = invalidPartRunes.ReplaceAllString(part, "")
		if part == "" {
			continue
		}
		if part[0] >= '0' && part[0] <= '9' {
			part = "p" + part
		}
		parts = append(parts, part)
	}
	if len(parts) < 2 {
		return fallbackPackage
	}
	return strings.Join(parts, ".")
}

// NormalizeActivity resolves an activity declaration against the
// package: empty means the platform NativeActivity, a leading dot or a
// bare class name is qualified with the package.
func NormalizeActivity(pkg, activity string) string {
	activity = strings.TrimSpace(activity)
	switch {
	case activity == "":
		return defaultActivity
	case strings.HasPrefix(activity, "."):
		return pkg + activity
	case !strings.Contains(activity, "."):
		return pkg + "." + activity
	}
	return activity
}

// RenderManifest fills the native manifest template.
func RenderManifest(pkg, label, activity, libName string) string {
	data := nativeManifestTemplate
	data = strings.ReplaceAll(data, "@apppkg@", pkg)
	data = strings.ReplaceAll(data, "@applbl@", label)
	data = strings.ReplaceAll(data, "@appact@", activity)
	data = strings.ReplaceAll(data, "@appLIBNAME@", libName)
	return data
}

var (
	manifestPackageRe  = regexp.MustCompile(`package="([^"]+)"`)
	manifestActivityRe = regexp.MustCompile(`<activity android:name="([^"]+)"`)
	manifestLibRe      = regexp.MustCompile(`android:name="android\.app\.lib_name"[\s\S]*?android:value="([^"]+)"`)
	manifestIconRe     = regexp.MustCompile(`android:icon="(@[^"]+)"`)
)

// manifestMatches reports whether an existing manifest already declares
// the same app identity, in which case hand edits to it are preserved.
func manifestMatches(data []byte, pkg, activity, libName string) bool {
	get := func(re *regexp.Regexp) string {
		if m := re.FindSubmatch(data); m != nil {
			return string(m[1])
		}
		return ""
	}
	return get(manifestPackageRe) == pkg &&
		get(manifestActivityRe) == activity &&
		get(manifestLibRe) == libName
}

// EnsureManifest writes the AndroidManifest.xml for the app unless one
// with the same identity already exists.
func EnsureManifest(file, pkg, label, activity, libName string) error {
	if data, err := os.ReadFile(file); err == nil {
		if manifestMatches(data, pkg, activity, libName) {
			return nil
		}
	}
	return os.WriteFile(file, []byte(RenderManifest(pkg, label, activity, libName)), 0o644)
}

// hasResource reports whether a manifest resource reference resolves:
// platform references always do, project references need a matching
// file under any res/<type>[-qualifier]/ directory.
func hasResource(resRoot, ref string) bool {
	if !strings.HasPrefix(ref, "@") || strings.HasPrefix(ref, "@android:") {
		return true
	}
	resType, resName, ok := strings.Cut(ref[1:], "/")
	if !ok || resType == "" || resName == "" {
		return false
	}
	entries, err := os.ReadDir(resRoot)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if entry.Name() != resType && !strings.HasPrefix(entry.Name(), resType+"-") {
			continue
		}
		files, err := os.ReadDir(filepath.Join(resRoot, entry.Name()))
		if err != nil {
			continue
		}
		for _, f := range files {
			name := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
			if name == resName {
				return true
			}
		}
	}
	return false
}

// ensureIconFallback rewrites the manifest icon to the platform default
// when the referenced resource does not exist under res/. aapt would
// otherwise fail the whole package step over a missing launcher icon.
func ensureIconFallback(manifestFile, resRoot string) {
	data, err := os.ReadFile(manifestFile)
	if err != nil {
		return
	}
	m := manifestIconRe.FindSubmatchIndex(data)
	if m == nil {
		return
	}
	ref := string(data[m[2]:m[3]])
	if hasResource(resRoot, ref) {
		return
	}
	const fallback = "@android:drawable/sym_def_app_icon"
	patched := append([]byte{}, data[:m[2]]...)
	patched = append(patched, fallback...)
	patched = append(patched, data[m[3]:]...)
	if err := os.WriteFile(manifestFile, patched, 0o644); err != nil {
		log.Warnf("patch manifest icon: %v", err)
		return
	}
	log.Infof("missing icon resource %s, using %s", ref, fallback)
}
