// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ComponentTagPredicate reports whether a tag's local name refers to a
// component, so AddScopeClass can leave it untouched (spec.md §4.4:
// "component tags themselves are transparent").
type ComponentTagPredicate func(tagName string) bool

var noComponents ComponentTagPredicate = func(string) bool { return false }

// AddScopeClass tokenizes html into tags, text, and comments, merging id
// into the class attribute of every open tag that is not a component tag
// (spec.md §4.2). Applying it twice with the same id is a no-op beyond the
// first pass (§8 "Idempotent scoping"), since an existing class token
// matching id is never duplicated.
func AddScopeClass(htmlSrc string, id ScopeId, isComponent ComponentTagPredicate) (string, error) {
	if isComponent == nil {
		isComponent = noComponents
	}
	nodes, err := parseFragment(htmlSrc)
	if err != nil {
		return "", err
	}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		// <slot> is always replaced wholesale during rendering (by caller-
		// supplied content or by its own fallback children), so it never
		// itself survives into the final DOM; classing it would only make
		// GenerateSignals' __els indexing count an element that's never there.
		if n.Type == html.ElementNode && n.Data != "slot" && !isComponent(n.Data) {
			mergeClass(n, string(id))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return renderFragment(nodes)
}

// mergeClass adds class into n's class attribute, creating the attribute
// if needed, without duplicating an existing token.
func mergeClass(n *html.Node, class string) {
	for i, a := range n.Attr {
		if a.Key == "class" {
			tokens := strings.Fields(a.Val)
			for _, t := range tokens {
				if t == class {
					return
				}
			}
			n.Attr[i].Val = strings.TrimSpace(a.Val + " " + class)
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
}

// parseFragment parses htmlSrc as a fragment of <body> content, the same
// lenient approach html.go's IndexHtmlProcessor relies on for the document
// it rewrites: unclosed tags at EOF are closed implicitly by the parser.
func parseFragment(htmlSrc string) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	return html.ParseFragment(strings.NewReader(htmlSrc), context)
}

// renderFragment serializes a slice of fragment nodes back to HTML text.
func renderFragment(nodes []*html.Node) (string, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// cssRule is one flat selector-list + declaration-body pair, or an at-rule
// passed through verbatim (possibly with a recursively-scoped body).
type cssRule struct {
	selectors []string // empty for a pass-through at-rule without a nested block
	body      string
	atRule    string // the at-rule prelude text (e.g. "@media (min-width: 0)"), empty for ordinary rules
	nested    []cssRule
}

// ScopeCSS parses css into a flat sequence of rules and appends ".id" to
// the last simple selector of every selector, except selectors beginning
// with :root, html, body, or @ (spec.md §4.2). @media/@supports/@container
// blocks are passed through with their nested rules recursively scoped;
// other at-rules are passed through unchanged.
func ScopeCSS(css string, id ScopeId) string {
	rules := parseCSSRules(css)
	var b strings.Builder
	writeCSSRules(&b, rules, id)
	return b.String()
}

func writeCSSRules(b *strings.Builder, rules []cssRule, id ScopeId) {
	for _, r := range rules {
		if r.atRule != "" {
			b.WriteString(r.atRule)
			if recursesIntoAtRule(r.atRule) {
				b.WriteString("{")
				writeCSSRules(b, r.nested, id)
				b.WriteString("}")
			} else {
				b.WriteString("{")
				b.WriteString(r.body)
				b.WriteString("}")
			}
			continue
		}
		scoped := make([]string, len(r.selectors))
		for i, sel := range r.selectors {
			scoped[i] = scopeSelector(sel, id)
		}
		b.WriteString(strings.Join(scoped, ","))
		b.WriteString("{")
		b.WriteString(r.body)
		b.WriteString("}")
	}
}

func recursesIntoAtRule(prelude string) bool {
	p := strings.TrimSpace(prelude)
	return strings.HasPrefix(p, "@media") || strings.HasPrefix(p, "@supports") || strings.HasPrefix(p, "@container")
}

// parseCSSRules splits css into a flat sequence of rules, handling
// /* ... */ comments and balanced braces.
func parseCSSRules(css string) []cssRule {
	var rules []cssRule
	i := 0
	n := len(css)
	for i < n {
		// Skip comments and whitespace between rules.
		if strings.HasPrefix(css[i:], "/*") {
			end := strings.Index(css[i:], "*/")
			if end == -1 {
				break
			}
			i += end + 2
			continue
		}
		if css[i] == ' ' || css[i] == '\t' || css[i] == '\n' || css[i] == '\r' {
			i++
			continue
		}
		preludeStart := i
		depth := 0
		j := i
		for j < n {
			if strings.HasPrefix(css[j:], "/*") {
				end := strings.Index(css[j:], "*/")
				if end == -1 {
					j = n
					break
				}
				j += end + 2
				continue
			}
			if css[j] == '{' {
				break
			}
			if css[j] == '}' {
				// Stray close brace with no opener; bail on this rule.
				j++
				i = j
				preludeStart = -1
				break
			}
			j++
		}
		if preludeStart == -1 {
			continue
		}
		if j >= n {
			break
		}
		prelude := strings.TrimSpace(css[preludeStart:j])
		braceOpen := j
		depth = 1
		k := braceOpen + 1
		for k < n && depth > 0 {
			if strings.HasPrefix(css[k:], "/*") {
				end := strings.Index(css[k:], "*/")
				if end == -1 {
					k = n
					break
				}
				k += end + 2
				continue
			}
			switch css[k] {
			case '{':
				depth++
			case '}':
				depth--
			}
			k++
		}
		body := css[braceOpen+1 : k-1]

		if strings.HasPrefix(prelude, "@") {
			rule := cssRule{atRule: prelude, body: body}
			if recursesIntoAtRule(prelude) {
				rule.nested = parseCSSRules(body)
			}
			rules = append(rules, rule)
		} else {
			rules = append(rules, cssRule{selectors: splitSelectors(prelude), body: body})
		}
		i = k
	}
	return rules
}

func splitSelectors(prelude string) []string {
	parts := strings.Split(prelude, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// scopeSelector appends ".id" to sel's last simple selector, unless sel
// begins with :root, html, or body.
func scopeSelector(sel string, id ScopeId) string {
	trimmed := strings.TrimSpace(sel)
	if hasUnscopedPrefix(trimmed) {
		return sel
	}
	boundary := lastCombinatorBoundary(trimmed)
	head := trimmed[:boundary]
	tail := trimmed[boundary:]

	suffix := "." + string(id)
	if pe := strings.Index(tail, "::"); pe != -1 {
		tail = tail[:pe] + suffix + tail[pe:]
	} else {
		tail = tail + suffix
	}
	return head + tail
}

func hasUnscopedPrefix(sel string) bool {
	for _, kw := range []string{":root", "html", "body"} {
		if sel == kw || strings.HasPrefix(sel, kw+" ") || strings.HasPrefix(sel, kw+".") ||
			strings.HasPrefix(sel, kw+":") || strings.HasPrefix(sel, kw+"[") || strings.HasPrefix(sel, kw+">") {
			return true
		}
	}
	return false
}

// lastCombinatorBoundary returns the index just past the last combinator
// (whitespace, '>', '+', '~') outside of [] or () groups, so the caller can
// isolate the rightmost compound selector.
func lastCombinatorBoundary(sel string) int {
	depth := 0
	boundary := 0
	for i := 0; i < len(sel); i++ {
		switch sel[i] {
		case '[', '(':
			depth++
		case ']', ')':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				c := sel[i]
				if c == ' ' || c == '>' || c == '+' || c == '~' {
					boundary = i + 1
				}
			}
		}
	}
	return boundary
}
