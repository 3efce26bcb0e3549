// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

import (
	"strings"
	"testing"
)

func TestGenerateSignals_NoneCase(t *testing.T) {
	js, err := GenerateSignals("", `<p class="v-x">static</p>`, ScopeId("v-x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if js != "" {
		t.Fatalf("expected empty module for no refs/bindings, got: %q", js)
	}
}

func TestGenerateSignals_RefAndComputed(t *testing.T) {
	script := `
const count = ref(0)
const double = computed(() => count.value * 2)
`
	js, err := GenerateSignals(script, `<p class="v-x">{{ double }}</p>`, ScopeId("v-x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(js, "VanSignal.signal(0)") {
		t.Fatalf("expected count signal init, got: %q", js)
	}
	if !strings.Contains(js, "VanSignal.computed(function(){ return count.value * 2; })") {
		t.Fatalf("expected computed wiring with rewritten count.value, got: %q", js)
	}
}

func TestGenerateSignals_LetSugarIncrement(t *testing.T) {
	script := "let count = 0"
	js, err := GenerateSignals(script, `<button class="v-x" @click="count++">{{ count }}</button>`, ScopeId("v-x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(js, "count.value++") {
		t.Fatalf("expected count++ rewritten to count.value++, got: %q", js)
	}
}

func TestGenerateSignals_WatchEmitsRuntimeWatchCall(t *testing.T) {
	script := `
const count = ref(0)
watch(count, (next, prev) => { console.log(next, prev) })
`
	js, err := GenerateSignals(script, `<p class="v-x"></p>`, ScopeId("v-x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(js, "VanSignal.watch(count,") {
		t.Fatalf("expected a watch() wiring call, got: %q", js)
	}
}

func TestGenerateSignals_UnbalancedRefIsError(t *testing.T) {
	_, err := GenerateSignals("const count = ref(0", `<p class="v-x"></p>`, ScopeId("v-x"))
	if err == nil {
		t.Fatalf("expected an error for an unbalanced ref(...) call")
	}
}

func TestGenerateSignals_NamedFunctionHandlerCalledDirectly(t *testing.T) {
	script := `
function onClick() { console.log('hi') }
`
	js, err := GenerateSignals(script, `<button class="v-x" @click="onClick"></button>`, ScopeId("v-x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(js, "addEventListener(\"click\", onClick)") {
		t.Fatalf("expected the named handler passed directly, got: %q", js)
	}
}

func TestRewriteExpr_SkipsPropertyAccessAndAlreadyDotValue(t *testing.T) {
	names := map[string]bool{"count": true}
	got := rewriteExpr("count.value + foo.count", names)
	want := "count.value + foo.count"
	if got != want {
		t.Fatalf("expected property accesses left untouched, got: %q want: %q", got, want)
	}
}

func TestRewriteExpr_RewritesBareIdentifier(t *testing.T) {
	got := rewriteExpr("count + 1", map[string]bool{"count": true})
	if got != "count.value + 1" {
		t.Fatalf("expected bare identifier rewritten, got: %q", got)
	}
}

func TestCollectBindings_OnlyCountsScopeClassedElements(t *testing.T) {
	nodes, err := parseFragment(`<div><span class="v-x">{{ count }}</span><hi class="other">{{ count }}</hi><p class="v-x">{{ count }}</p></div>`)
	if err != nil {
		t.Fatalf("parseFragment failed: %v", err)
	}
	bindings := collectBindings(nodes, ScopeId("v-x"))
	if len(bindings) != 2 {
		t.Fatalf("expected 2 bindings from the two v-x-classed elements, got %d: %+v", len(bindings), bindings)
	}
	if bindings[0].Path[0] != 0 || bindings[1].Path[0] != 1 {
		t.Fatalf("expected sequential scope-classed indices 0 and 1, got %v and %v", bindings[0].Path, bindings[1].Path)
	}
}

func TestCollectBindings_SlotNeverConsumesAnIndex(t *testing.T) {
	// Even a <slot> that (incorrectly, were scope.go to misbehave) carried
	// the scope class must never be counted: it never survives rendering.
	nodes, err := parseFragment(`<div><slot class="v-x">{{ count }}</slot><span class="v-x">{{ count }}</span></div>`)
	if err != nil {
		t.Fatalf("parseFragment failed: %v", err)
	}
	bindings := collectBindings(nodes, ScopeId("v-x"))
	if len(bindings) != 1 {
		t.Fatalf("expected only the span's binding (slot skipped entirely), got %d: %+v", len(bindings), bindings)
	}
	if bindings[0].Path[0] != 0 {
		t.Fatalf("expected the span to land on index 0, not pushed past the slot, got %v", bindings[0].Path)
	}
}

func TestExtractArrowBody_ExpressionVsBlock(t *testing.T) {
	body, isBlock := extractArrowBody("() => count.value * 2")
	if isBlock || body != "count.value * 2" {
		t.Fatalf("expected expression-form body, got %q block=%v", body, isBlock)
	}
	body, isBlock = extractArrowBody("() => { return count.value * 2 }")
	if !isBlock || body != "return count.value * 2" {
		t.Fatalf("expected block-form body, got %q block=%v", body, isBlock)
	}
}
