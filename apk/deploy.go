// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package apk

import (
	"context"
)

// Deploy pushes a packaged app to the connected device: the running
// instance is stopped, the APK reinstalled, and the activity optionally
// started. An install that fails over a signature or downgrade conflict
// is retried once after uninstalling the package.
func (p *Packager) Deploy(ctx context.Context, app *App, run bool) error {
	adb := p.Toolchain.ADB()

	// Best effort; the app may simply not be running.
	if _, err := p.step(ctx, "adb", []string{adb, "shell", "am", "force-stop", app.Package}); err != nil {
		p.UI.Warningf("stop %s: %v", app.Package, err)
	}

	p.UI.Infof("install %s", app.APK)
	if _, err := p.step(ctx, "adb", []string{adb, "install", "-r", app.APK}); err != nil {
		p.UI.Warningf("install failed, retrying after uninstall: %v", err)
		if _, err := p.step(ctx, "adb", []string{adb, "uninstall", app.Package}); err != nil {
			return err
		}
		if _, err := p.step(ctx, "adb", []string{adb, "install", "-r", app.APK}); err != nil {
			return err
		}
	}

	if !run {
		return nil
	}
	p.UI.Infof("start %s/%s", app.Package, app.Activity)
	_, err := p.step(ctx, "adb", []string{adb, "shell", "am", "start", "-n", app.Package + "/" + app.Activity})
	return err
}
