// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

import "testing"

func TestResolve_MissingEntry(t *testing.T) {
	_, err := Resolve("a.van", map[string]string{})
	if err == nil {
		t.Fatalf("expected an error for a missing entry file")
	}
}

func TestResolve_MissingImport(t *testing.T) {
	_, err := Resolve("a.van", map[string]string{
		"a.van": `<template><b /></template><script setup>import B from './b.van'</script>`,
	})
	if err == nil {
		t.Fatalf("expected an error for a missing imported file")
	}
}

func TestResolve_DiamondImportVisitedOnce(t *testing.T) {
	g, err := Resolve("a.van", map[string]string{
		"a.van": `<template><b /><c /></template>
<script setup>
import B from './b.van'
import C from './c.van'
</script>`,
		"b.van": `<template><shared /></template><script setup>import Shared from './shared.van'</script>`,
		"c.van": `<template><shared /></template><script setup>import Shared from './shared.van'</script>`,
		"shared.van": `<template><p>shared</p></template>`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := g.Nodes["shared.van"]; !ok {
		t.Fatalf("expected shared.van in the graph")
	}
	count := 0
	for _, p := range g.Order {
		if p == "shared.van" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected shared.van to appear exactly once in Order, got %d", count)
	}
}

func TestResolve_SelfImportCycle(t *testing.T) {
	_, err := Resolve("a.van", map[string]string{
		"a.van": `<template><a /></template><script setup>import A from './a.van'</script>`,
	})
	if err == nil {
		t.Fatalf("expected a cycle error")
	}
}

func TestResolve_DepthBoundExceeded(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < maxImportDepth+2; i++ {
		name := pathFor(i)
		next := pathFor(i + 1)
		files[name] = `<template><x /></template><script setup>import X from './` + next + `'</script>`
	}
	files[pathFor(maxImportDepth+2)] = `<template><p>leaf</p></template>`
	_, err := Resolve(pathFor(0), files)
	if err == nil {
		t.Fatalf("expected a depth-bound error")
	}
}

func pathFor(i int) string {
	return "n" + string(rune('a'+i)) + ".van"
}

func TestResolve_ImportTargetsPopulated(t *testing.T) {
	g, err := Resolve("a.van", map[string]string{
		"a.van": `<template><hi /></template><script setup>import Hi from './hi.van'</script>`,
		"hi.van": `<template><p>hi</p></template>`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.ImportTargets["a.van"]["hi"] != "hi.van" {
		t.Fatalf("expected ImportTargets[a.van][hi] == hi.van, got %v", g.ImportTargets["a.van"])
	}
}
