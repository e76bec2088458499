// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/crosside/crossbuild/descriptor"
)

// The dependency graph resolver produces a best-effort build order and
// never fails outright: module graphs are hand-maintained JSON and must
// degrade gracefully during iterative development. Unknown dependencies
// and cycles are reported and skipped.

type visitState int8

const (
	stateNew visitState = iota
	stateActive
	stateDone
)

// Order returns the post-order dependency traversal starting at root:
// every module appears after all of its resolved dependencies, each
// exactly once. An unknown root yields an empty order.
//
// The traversal is iterative with an explicit visit-state table, so a
// deep module graph cannot exhaust the call stack.
func Order(reg *descriptor.Registry, root string) []string {
	root = strings.TrimSpace(root)
	m := reg.Lookup(root)
	if m == nil {
		log.Warnf("module dependency not found: %s", root)
		return nil
	}

	type frame struct {
		name string
		deps []string
		next int
	}
	state := map[string]visitState{root: stateActive}
	stack := []frame{{name: root, deps: m.Depends}}
	var order []string

	for len(stack) > 0 {
		top := len(stack) - 1
		if stack[top].next >= len(stack[top].deps) {
			state[stack[top].name] = stateDone
			order = append(order, stack[top].name)
			stack = stack[:top]
			continue
		}
		dep := strings.TrimSpace(stack[top].deps[stack[top].next])
		stack[top].next++
		if dep == "" || dep == stack[top].name {
			continue
		}
		switch state[dep] {
		case stateDone:
			continue
		case stateActive:
			log.Warnf("circular module dependency detected on %s", dep)
			continue
		}
		dm := reg.Lookup(dep)
		if dm == nil {
			log.Warnf("module dependency not found: %s", dep)
			continue
		}
		state[dep] = stateActive
		stack = append(stack, frame{name: dep, deps: dm.Depends})
	}
	return order
}

// Closure unions the individual orders of the requested modules,
// preserving first-seen order and removing duplicates.
func Closure(reg *descriptor.Registry, roots []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, root := range roots {
		for _, name := range Order(reg, root) {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
