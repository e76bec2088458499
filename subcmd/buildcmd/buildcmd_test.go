// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildcmd

import (
	"slices"
	"testing"
)

func TestParseSubject(t *testing.T) {
	for _, tc := range []struct {
		name    string
		args    []string
		kind    string
		subject string
		targets []string
		wantErr bool
	}{
		{
			name:    "bare name is an app",
			args:    []string{"bugame"},
			kind:    "app",
			subject: "bugame",
		},
		{
			name:    "module with targets",
			args:    []string{"module", "raylib", "android", "web"},
			kind:    "module",
			subject: "raylib",
			targets: []string{"android", "web"},
		},
		{
			name:    "mod alias",
			args:    []string{"mod", "raylib"},
			kind:    "module",
			subject: "raylib",
		},
		{
			name:    "project alias",
			args:    []string{"project", "bugame", "desktop"},
			kind:    "app",
			subject: "bugame",
			targets: []string{"desktop"},
		},
		{
			name:    "bare name with targets",
			args:    []string{"bugame", "android"},
			kind:    "app",
			subject: "bugame",
			targets: []string{"android"},
		},
		{
			name:    "no args",
			args:    nil,
			wantErr: true,
		},
		{
			name:    "module without name",
			args:    []string{"module"},
			wantErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			kind, name, targets, err := parseSubject(tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseSubject(%v)=%q,%q,%v; want error", tc.args, kind, name, targets)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSubject(%v)=%v", tc.args, err)
			}
			if kind != tc.kind || name != tc.subject || !slices.Equal(targets, tc.targets) {
				t.Errorf("parseSubject(%v)=%q,%q,%v; want %q,%q,%v",
					tc.args, kind, name, targets, tc.kind, tc.subject, tc.targets)
			}
		})
	}
}
