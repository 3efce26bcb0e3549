// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

import (
	"strings"
	"testing"
)

func TestAddScopeClass_AddsClassToPlainElements(t *testing.T) {
	out, err := AddScopeClass(`<div><p>x</p></div>`, ScopeId("v-abc"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(out, `class="v-abc"`) != 2 {
		t.Fatalf("expected both div and p classed, got: %q", out)
	}
}

func TestAddScopeClass_SkipsComponentTags(t *testing.T) {
	isComponent := func(tag string) bool { return tag == "hi" }
	out, err := AddScopeClass(`<div><hi></hi></div>`, ScopeId("v-abc"), isComponent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `<div class="v-abc">`) {
		t.Fatalf("expected div classed, got: %q", out)
	}
	if strings.Contains(out, `<hi class`) {
		t.Fatalf("expected the component tag left unclassed, got: %q", out)
	}
}

func TestAddScopeClass_MergesWithExistingClass(t *testing.T) {
	out, err := AddScopeClass(`<p class="existing">x</p>`, ScopeId("v-abc"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `class="existing v-abc"`) {
		t.Fatalf("expected merged class list, got: %q", out)
	}
}

func TestAddScopeClass_Idempotent(t *testing.T) {
	once, err := AddScopeClass(`<p>x</p>`, ScopeId("v-abc"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := AddScopeClass(once, ScopeId("v-abc"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if once != twice {
		t.Fatalf("expected a second pass to be a no-op, got %q then %q", once, twice)
	}
}

func TestScopeCSS_SimpleSelector(t *testing.T) {
	out := ScopeCSS(`h1 { color: red }`, ScopeId("v-abc"))
	if !strings.Contains(out, "h1.v-abc") {
		t.Fatalf("expected a scoped selector, got: %q", out)
	}
}

func TestScopeCSS_CompoundSelectorScopesLastSimple(t *testing.T) {
	out := ScopeCSS(`div p { color: red }`, ScopeId("v-abc"))
	if !strings.Contains(out, "div p.v-abc") {
		t.Fatalf("expected only the last compound selector scoped, got: %q", out)
	}
}

func TestScopeCSS_RootHtmlBodyUnscoped(t *testing.T) {
	out := ScopeCSS(`:root { --x: 1 } html { margin: 0 } body { padding: 0 }`, ScopeId("v-abc"))
	if strings.Contains(out, ".v-abc") {
		t.Fatalf("expected :root/html/body left unscoped, got: %q", out)
	}
}

func TestScopeCSS_MultipleSelectorsInList(t *testing.T) {
	out := ScopeCSS(`h1, h2 { color: red }`, ScopeId("v-abc"))
	if !strings.Contains(out, "h1.v-abc") || !strings.Contains(out, "h2.v-abc") {
		t.Fatalf("expected both selectors in the list scoped, got: %q", out)
	}
}

func TestScopeCSS_MediaQueryRecursesIntoNestedRules(t *testing.T) {
	out := ScopeCSS(`@media (min-width: 0) { h1 { color: red } }`, ScopeId("v-abc"))
	if !strings.Contains(out, "@media (min-width: 0)") || !strings.Contains(out, "h1.v-abc") {
		t.Fatalf("expected the media query preserved with its nested rule scoped, got: %q", out)
	}
}

func TestScopeCSS_PseudoElementInsertedBeforeDoubleColon(t *testing.T) {
	out := ScopeCSS(`p::before { content: "x" }`, ScopeId("v-abc"))
	if !strings.Contains(out, "p.v-abc::before") {
		t.Fatalf("expected the scope class inserted before ::before, got: %q", out)
	}
}
