// Copyright 2026 The Crossbuild Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/crosside/crossbuild/descriptor"
)

func registryOf(deps map[string][]string) *descriptor.Registry {
	reg := descriptor.NewRegistry()
	for name, d := range deps {
		reg.Add(&descriptor.ModuleDescriptor{Name: name, Depends: d})
	}
	return reg
}

func TestOrder(t *testing.T) {
	reg := registryOf(map[string][]string{
		"app":     {"gfx", "audio"},
		"gfx":     {"core"},
		"audio":   {"core"},
		"core":    nil,
		"unused":  nil,
		"broken":  {"nosuch"},
		"selfdep": {"selfdep"},
	})

	t.Run("deps before dependents", func(t *testing.T) {
		got := Order(reg, "app")
		want := []string{"core", "gfx", "audio", "app"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Order(app): diff -want +got:\n%s", diff)
		}
	})

	t.Run("unknown dep skipped", func(t *testing.T) {
		got := Order(reg, "broken")
		want := []string{"broken"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Order(broken): diff -want +got:\n%s", diff)
		}
	})

	t.Run("unknown root", func(t *testing.T) {
		if got := Order(reg, "nosuch"); got != nil {
			t.Errorf("Order(nosuch)=%v; want nil", got)
		}
	})

	t.Run("self edge dropped", func(t *testing.T) {
		got := Order(reg, "selfdep")
		want := []string{"selfdep"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Order(selfdep): diff -want +got:\n%s", diff)
		}
	})
}

func TestOrder_Cycle(t *testing.T) {
	reg := registryOf(map[string][]string{
		"a": {"b"},
		"b": {"a"},
	})

	// Must terminate and return both modules exactly once, with the
	// back edge dropped.
	got := Order(reg, "a")
	want := []string{"b", "a"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Order(a): diff -want +got:\n%s", diff)
	}
}

func TestOrder_DeepChain(t *testing.T) {
	// A chain deep enough to break naive recursion.
	deps := map[string][]string{}
	const depth = 100000
	for i := 0; i < depth; i++ {
		name := chainName(i)
		if i+1 < depth {
			deps[name] = []string{chainName(i + 1)}
		} else {
			deps[name] = nil
		}
	}
	reg := registryOf(deps)

	got := Order(reg, chainName(0))
	if len(got) != depth {
		t.Fatalf("len(Order)=%d; want %d", len(got), depth)
	}
	if got[0] != chainName(depth-1) || got[depth-1] != chainName(0) {
		t.Errorf("Order ends=%q,%q; want leaf first, root last", got[0], got[depth-1])
	}
}

func chainName(i int) string {
	return fmt.Sprintf("m%06d", i)
}

func TestClosure(t *testing.T) {
	reg := registryOf(map[string][]string{
		"gfx":   {"core"},
		"audio": {"core"},
		"core":  nil,
	})

	got := Closure(reg, []string{"gfx", "audio"})
	want := []string{"core", "gfx", "audio"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Closure: diff -want +got:\n%s", diff)
	}
}
