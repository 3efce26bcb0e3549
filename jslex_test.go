// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

import (
	"strings"
	"testing"
)

func TestMaskJS_BlanksStringAndCommentContent(t *testing.T) {
	src := `const x = "ref(1)" // ref(2)
const y = ref(3)`
	mask := maskJS(src)
	if len(mask) != len(src) {
		t.Fatalf("expected mask to preserve length, got %d want %d", len(mask), len(src))
	}
	if strings.Contains(mask, "ref(1)") || strings.Contains(mask, "ref(2)") {
		t.Fatalf("expected string and comment content masked, got: %q", mask)
	}
	if !strings.Contains(mask, "ref(3)") {
		t.Fatalf("expected real code left intact, got: %q", mask)
	}
}

func TestMaskJS_TemplateLiteralInterpolationResumesCode(t *testing.T) {
	src := "const s = `hi ${ref(1)}`"
	mask := maskJS(src)
	if !strings.Contains(mask, "ref(1)") {
		t.Fatalf("expected the ${...} interpolation to resume code mode, got: %q", mask)
	}
	if strings.Contains(mask, "hi") {
		t.Fatalf("expected template literal text outside interpolation masked, got: %q", mask)
	}
}

func TestMaskJS_BlockCommentMasked(t *testing.T) {
	src := "/* ref(1) */ ref(2)"
	mask := maskJS(src)
	if strings.Contains(mask, "ref(1)") {
		t.Fatalf("expected block comment content masked, got: %q", mask)
	}
	if !strings.Contains(mask, "ref(2)") {
		t.Fatalf("expected code after the comment left intact, got: %q", mask)
	}
}

func TestFindMatching_BalancedParens(t *testing.T) {
	src := "(a, (b, c), d)"
	mask := maskJS(src)
	closeIdx, ok := findMatching(src, mask, 0)
	if !ok || closeIdx != len(src)-1 {
		t.Fatalf("expected the matching close at the last index, got %d ok=%v", closeIdx, ok)
	}
}

func TestFindMatching_Unbalanced(t *testing.T) {
	src := "(a, (b, c)"
	mask := maskJS(src)
	_, ok := findMatching(src, mask, 0)
	if ok {
		t.Fatalf("expected unbalanced parens to report !ok")
	}
}

func TestSplitTopLevel_IgnoresNestedCommas(t *testing.T) {
	src := "a, fn(b, c), d"
	mask := maskJS(src)
	parts := splitTopLevel(src, mask)
	if len(parts) != 3 {
		t.Fatalf("expected 3 top-level parts, got %d: %+v", len(parts), parts)
	}
	if strings.TrimSpace(parts[1]) != "fn(b, c)" {
		t.Fatalf("expected the nested call kept whole, got %q", parts[1])
	}
}

func TestReadIdent(t *testing.T) {
	ident, next, ok := readIdent("count++", 0)
	if !ok || ident != "count" || next != 5 {
		t.Fatalf("unexpected result: %q %d %v", ident, next, ok)
	}
}

func TestReadQuoted(t *testing.T) {
	content, next, ok := readQuoted(`"a\"b" rest`, 0)
	if !ok || content != `a\"b` {
		t.Fatalf("unexpected content: %q ok=%v", content, ok)
	}
	if next != len(`"a\"b"`) {
		t.Fatalf("unexpected next index: %d", next)
	}
}

func TestSkipSpace(t *testing.T) {
	if got := skipSpace("   x", 0); got != 3 {
		t.Fatalf("expected index 3, got %d", got)
	}
}
