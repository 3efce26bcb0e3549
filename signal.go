// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// SignalError is returned by GenerateSignals only for structurally
// malformed input it cannot skip over: an unbalanced ref/computed/watch
// call (spec.md §4.5 "Failure semantics"). Every other unrecognized shape
// is simply left out of the emission.
type SignalError struct{ Message string }

func (e *SignalError) Error() string { return e.Message }

type refDecl struct {
	name    string
	initial string
}

type computedDecl struct {
	name string
	raw  string // the full "(...) => ..." argument text of computed(...)
}

type watchDecl struct {
	source   string
	callback string
}

// GenerateSignals analyzes a component's script_setup and its already
// scope-classed template HTML, and emits one JS module wiring signals and
// DOM effects for it (spec.md §4.5). It returns "" with a nil error when
// the script declares no reactive state and the template has no bindings
// to wire (the "None" case).
func GenerateSignals(scriptSetup, scopedTemplateHTML string, scopeId ScopeId) (string, error) {
	refs, computeds, watches, functions, err := parseReactiveScript(scriptSetup)
	if err != nil {
		return "", err
	}

	nodes, err := parseFragment(scopedTemplateHTML)
	if err != nil {
		return "", err
	}
	bindings := collectBindings(nodes, scopeId)

	if len(refs) == 0 && len(computeds) == 0 && len(watches) == 0 && len(bindings) == 0 {
		return "", nil
	}

	refLike := make(map[string]bool, len(refs)+len(computeds))
	for _, r := range refs {
		refLike[r.name] = true
	}
	for _, c := range computeds {
		refLike[c.name] = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "(function(){\n  var __els = document.querySelectorAll(%q);\n", "."+string(scopeId))

	for _, r := range refs {
		fmt.Fprintf(&b, "  var %s = VanSignal.signal(%s);\n", r.name, r.initial)
	}
	for _, c := range computeds {
		body, isBlock := extractArrowBody(c.raw)
		body = rewriteExpr(body, refLike)
		if isBlock {
			fmt.Fprintf(&b, "  var %s = VanSignal.computed(function(){ %s });\n", c.name, body)
		} else {
			fmt.Fprintf(&b, "  var %s = VanSignal.computed(function(){ return %s; });\n", c.name, body)
		}
	}

	for _, tb := range bindings {
		emitBinding(&b, tb, refLike, functions)
	}

	for _, w := range watches {
		fmt.Fprintf(&b, "  VanSignal.watch(%s, %s);\n", w.source, rewriteExpr(w.callback, refLike))
	}

	b.WriteString("})();")
	return b.String(), nil
}

// parseReactiveScript scans script_setup per spec.md §4.5 "Script
// analysis", using maskJS so keywords and shapes are only recognized
// outside strings, template literals, and comments. const ref()/computed(),
// top-level let, and top-level function declarations are only recognized
// at bracket depth 0; watch(...) calls are recognized anywhere.
func parseReactiveScript(script string) (refs []refDecl, computeds []computedDecl, watches []watchDecl, functions map[string]bool, err error) {
	functions = make(map[string]bool)
	mask := maskJS(script)
	depth := 0
	i := 0
	for i < len(script) {
		c := mask[i]
		switch c {
		case '(', '{', '[':
			depth++
			i++
			continue
		case ')', '}', ']':
			if depth > 0 {
				depth--
			}
			i++
			continue
		}
		if !isIdentStart(c) {
			i++
			continue
		}

		word, next, _ := readIdent(mask, i)

		if word == "watch" {
			j := skipSpace(mask, next)
			if j < len(mask) && mask[j] == '(' {
				closeIdx, ok := findMatching(mask, mask, j)
				if !ok {
					return nil, nil, nil, nil, &SignalError{Message: "unbalanced watch(...) call"}
				}
				inner := script[j+1 : closeIdx]
				innerMask := mask[j+1 : closeIdx]
				parts := splitTopLevel(inner, innerMask)
				if len(parts) >= 2 {
					watches = append(watches, watchDecl{
						source:   strings.TrimSpace(parts[0]),
						callback: strings.TrimSpace(strings.Join(parts[1:], ",")),
					})
				}
				i = closeIdx + 1
				continue
			}
		}

		if depth == 0 {
			switch word {
			case "const":
				j := skipSpace(mask, next)
				name, j2, ok := readIdent(mask, j)
				if ok {
					j3 := skipSpace(mask, j2)
					if j3 < len(mask) && mask[j3] == '=' {
						j4 := skipSpace(mask, j3+1)
						if strings.HasPrefix(mask[j4:], "ref(") {
							openIdx := j4 + len("ref")
							closeIdx, ok2 := findMatching(mask, mask, openIdx)
							if !ok2 {
								return nil, nil, nil, nil, &SignalError{Message: fmt.Sprintf("unbalanced ref(...) call for %q", name)}
							}
							refs = append(refs, refDecl{name: name, initial: strings.TrimSpace(script[openIdx+1 : closeIdx])})
							i = closeIdx + 1
							continue
						}
						if strings.HasPrefix(mask[j4:], "computed(") {
							openIdx := j4 + len("computed")
							closeIdx, ok2 := findMatching(mask, mask, openIdx)
							if !ok2 {
								return nil, nil, nil, nil, &SignalError{Message: fmt.Sprintf("unbalanced computed(...) call for %q", name)}
							}
							computeds = append(computeds, computedDecl{name: name, raw: script[openIdx+1 : closeIdx]})
							i = closeIdx + 1
							continue
						}
					}
				}
			case "let":
				j := skipSpace(mask, next)
				name, j2, ok := readIdent(mask, j)
				if ok {
					j3 := skipSpace(mask, j2)
					if j3 < len(mask) && mask[j3] == '=' {
						j4 := skipSpace(mask, j3+1)
						end := findStatementEnd(mask, j4)
						refs = append(refs, refDecl{name: name, initial: strings.TrimSpace(script[j4:end])})
						i = end
						continue
					}
				}
			case "function":
				j := skipSpace(mask, next)
				name, j2, ok := readIdent(mask, j)
				if ok {
					functions[name] = true
					i = j2
					continue
				}
			}
		}

		i = next
	}
	return refs, computeds, watches, functions, nil
}

// findStatementEnd returns the index of the first top-level ';' or '\n'
// at or after start, or len(mask) if none is found first.
func findStatementEnd(mask string, start int) int {
	depth := 0
	for i := start; i < len(mask); i++ {
		switch mask[i] {
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			if depth == 0 {
				return i
			}
			depth--
		case ';', '\n':
			if depth == 0 {
				return i
			}
		}
	}
	return len(mask)
}

// extractArrowBody splits a computed(...)'s captured argument text (e.g.
// "() => count.value * 2" or "() => { return x }") into its body and
// whether that body is a block (braces) rather than a bare expression.
func extractArrowBody(raw string) (body string, isBlock bool) {
	m := maskJS(raw)
	idx := strings.Index(m, "=>")
	if idx == -1 {
		return strings.TrimSpace(raw), false
	}
	rest := strings.TrimSpace(raw[idx+2:])
	if strings.HasPrefix(rest, "{") && strings.HasSuffix(rest, "}") {
		return strings.TrimSpace(rest[1 : len(rest)-1]), true
	}
	return rest, false
}

// rewriteExpr rewrites every bare occurrence of a name in names to
// "name.value", per the `count++` → `count.value++` sugar of spec.md §4.5
// scenario 2. Occurrences already preceded by '.' (a property access) or
// already followed by ".value" are left untouched.
func rewriteExpr(expr string, names map[string]bool) string {
	if len(names) == 0 || expr == "" {
		return expr
	}
	mask := maskJS(expr)
	var b strings.Builder
	i := 0
	for i < len(expr) {
		if isIdentStart(mask[i]) {
			word, next, _ := readIdent(mask, i)
			precededByDot := i > 0 && expr[i-1] == '.'
			alreadyDotValue := strings.HasPrefix(expr[next:], ".value")
			if names[word] && !precededByDot && !alreadyDotValue {
				b.WriteString(word)
				b.WriteString(".value")
			} else {
				b.WriteString(expr[i:next])
			}
			i = next
			continue
		}
		b.WriteByte(expr[i])
		i++
	}
	return b.String()
}

// collectBindings walks a component's own scope-classed template, pairing
// each directive/interpolation with the index, in document order, of the
// scope-classed element it is found on (spec.md §4.5 "Template walk"). An
// element is counted only if it actually carries the scope class: add-
// scope-class never classes component tags, so this walk never needs to
// know which tags are components either — it just follows what the class
// attribute already says. <slot> is excluded outright, since it is always
// replaced wholesale at render time and never itself reaches the DOM the
// generated script's __els selector runs against.
func collectBindings(nodes []*html.Node, scopeId ScopeId) []TemplateBinding {
	var out []TemplateBinding
	idx := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		// <slot> is replaced wholesale during rendering and never itself
		// reaches the final DOM, so it must never consume an __els index
		// even though add-scope-class's own exclusion already keeps it
		// unclassed; skip it explicitly here too.
		if n.Type == html.ElementNode && n.Data != "slot" {
			if hasScopeClass(n, string(scopeId)) {
				myIdx := idx
				idx++
				collectElementBindings(n, myIdx, &out)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

func hasScopeClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, t := range strings.Fields(a.Val) {
			if t == class {
				return true
			}
		}
	}
	return false
}

func collectElementBindings(n *html.Node, idx int, out *[]TemplateBinding) {
	for _, a := range n.Attr {
		switch {
		case strings.HasPrefix(a.Key, "@"):
			*out = append(*out, TemplateBinding{Kind: BindEvent, Name: a.Key[1:], Expr: strings.TrimSpace(a.Val), Path: []int{idx}})
		case a.Key == "v-show":
			*out = append(*out, bareOrExpr(BindShow, a.Val, idx))
		case a.Key == "v-if":
			*out = append(*out, bareOrExpr(BindIf, a.Val, idx))
		case a.Key == "v-html":
			*out = append(*out, bareOrExpr(BindHtml, a.Val, idx))
		case a.Key == "v-text":
			*out = append(*out, bareOrExpr(BindText, a.Val, idx))
		case a.Key == ":class" || a.Key == "v-bind:class":
			*out = append(*out, TemplateBinding{Kind: BindClassBind, Expr: strings.TrimSpace(a.Val), Path: []int{idx}})
		case strings.HasPrefix(a.Key, ":"):
			b := bareOrExpr(BindAttr, a.Val, idx)
			b.Name = a.Key[1:]
			*out = append(*out, b)
		case strings.HasPrefix(a.Key, "v-bind:"):
			b := bareOrExpr(BindAttr, a.Val, idx)
			b.Name = a.Key[len("v-bind:"):]
			*out = append(*out, b)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.Contains(c.Data, "{{") {
			for _, expr := range extractInterpolationExprs(c.Data) {
				*out = append(*out, bareOrExpr(BindText, expr, idx))
			}
		}
	}
}

func bareOrExpr(kind BindingKind, raw string, idx int) TemplateBinding {
	trimmed := strings.TrimSpace(raw)
	if isBareIdentifier(trimmed) {
		return TemplateBinding{Kind: kind, RefID: trimmed, Path: []int{idx}}
	}
	return TemplateBinding{Kind: kind, Expr: trimmed, Path: []int{idx}}
}

func isBareIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

// extractInterpolationExprs returns the trimmed inner expression of every
// "{{ ... }}" span in text.
func extractInterpolationExprs(text string) []string {
	var out []string
	i := 0
	for i < len(text) {
		start := strings.Index(text[i:], "{{")
		if start == -1 {
			break
		}
		start += i
		end := strings.Index(text[start+2:], "}}")
		if end == -1 {
			break
		}
		end = start + 2 + end
		out = append(out, strings.TrimSpace(text[start+2:end]))
		i = end + 2
	}
	return out
}

// bindingValueExpr resolves a binding to the JS expression read on every
// effect re-run: a signal's ".value" for a bare ref/computed identifier, or
// the (rewritten) raw expression text otherwise.
func bindingValueExpr(tb TemplateBinding, refLike map[string]bool) string {
	if tb.RefID != "" {
		if refLike[tb.RefID] {
			return tb.RefID + ".value"
		}
		return tb.RefID
	}
	return rewriteExpr(tb.Expr, refLike)
}

func emitBinding(b *strings.Builder, tb TemplateBinding, refLike map[string]bool, functions map[string]bool) {
	el := fmt.Sprintf("__els[%d]", tb.Path[0])
	switch tb.Kind {
	case BindText:
		fmt.Fprintf(b, "  VanSignal.effect(function(){ %s.textContent = (%s); });\n", el, bindingValueExpr(tb, refLike))
	case BindHtml:
		fmt.Fprintf(b, "  VanSignal.effect(function(){ %s.innerHTML = (%s); });\n", el, bindingValueExpr(tb, refLike))
	case BindShow, BindIf:
		fmt.Fprintf(b, "  VanSignal.effect(function(){ %s.style.display = (%s) ? '' : 'none'; });\n", el, bindingValueExpr(tb, refLike))
	case BindClassBind:
		fmt.Fprintf(b, "  VanSignal.effect(function(){ %s.className = (%s); });\n", el, bindingValueExpr(tb, refLike))
	case BindAttr:
		fmt.Fprintf(b, "  VanSignal.effect(function(){ %s.setAttribute(%q, (%s)); });\n", el, tb.Name, bindingValueExpr(tb, refLike))
	case BindEvent:
		handler := strings.TrimSpace(tb.Expr)
		if functions[handler] {
			fmt.Fprintf(b, "  %s.addEventListener(%q, %s);\n", el, tb.Name, handler)
		} else {
			fmt.Fprintf(b, "  %s.addEventListener(%q, function(){ %s; });\n", el, tb.Name, rewriteExpr(handler, refLike))
		}
	}
}
