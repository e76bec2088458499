// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package descriptor

import (
	"encoding/json"
	"os"
)

// Config is the optional workspace config.json. It only carries the
// fields the build orchestrator consumes; toolchain discovery reads the
// rest and is outside this package.
type Config struct {
	// Modules is the global module list used when a project lists none.
	Modules []string
	// DefaultTarget is derived from the stored session platform.
	DefaultTarget string
}

type rawConfig struct {
	Configuration *rawConfigRoot `json:"Configuration"`
	rawConfigRoot
}

type rawConfigRoot struct {
	Modules stringList `json:"Modules"`
	Session *struct {
		CurrentPlatform int `json:"CurrentPlatform"`
	} `json:"Session"`
}

// LoadConfig reads config.json. A missing or malformed file yields the
// zero config with the desktop default; configuration is optional.
func LoadConfig(file string) Config {
	cfg := Config{DefaultTarget: "desktop"}
	data, err := os.ReadFile(file)
	if err != nil {
		return cfg
	}
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return cfg
	}
	root := raw.rawConfigRoot
	if raw.Configuration != nil {
		root = *raw.Configuration
	}
	cfg.Modules = root.Modules
	if root.Session != nil {
		switch root.Session.CurrentPlatform {
		case 1:
			cfg.DefaultTarget = "android"
		case 2:
			cfg.DefaultTarget = "web"
		}
	}
	return cfg
}
