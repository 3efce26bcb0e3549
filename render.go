// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// RenderOptions carries the per-request rendering knobs of spec.md §6:
// debug boundary comments and their file_origins annotations. Per the
// design note in §9 ("No global state"), these never live on a long-lived
// Compiler — they are passed fresh on every call to RenderPage.
type RenderOptions struct {
	Debug       bool
	FileOrigins map[string]string
}

// RenderError is a fatal rendering failure: a missing required prop, or an
// internal consistency violation (spec.md §7 "Prop validation error").
type RenderError struct{ Message string }

func (e *RenderError) Error() string { return e.Message }

// propBinding is one resolved component-tag attribute, classified as
// either a dynamic (":"/"v-bind:") or static binding (spec.md §4.4 "Prop
// binding").
type propBinding struct {
	dynamic bool
	raw     string
}

// renderState accumulates everything that must be collected exactly once
// per distinct component across an entire page render: its CSS and its
// generated signal module (spec.md §4.4 "CSS collection"/"Signal
// collection").
type renderState struct {
	graph       *ResolvedGraph
	opts        RenderOptions
	cssChunks   []string
	jsModules   []string
	contributed map[string]bool
}

// nodeCtx is the per-component-instance context threaded through one
// recursive template walk: which component owns the template, what props
// and slot content it was invoked with, and its ScopeId.
type nodeCtx struct {
	rs      *renderState
	path    string
	block   *VanBlock
	props   map[string]propBinding
	slots   map[string][]*html.Node
	scopeId ScopeId
}

// RenderPage produces the final server HTML, concatenated scoped CSS, and
// concatenated signal JS for a resolved component graph (spec.md §4.4
// "render_page(graph) → (html, scoped_styles, signal_scripts)").
func RenderPage(graph *ResolvedGraph, opts RenderOptions) (bodyHTML, css, js string, err error) {
	rs := &renderState{graph: graph, opts: opts, contributed: make(map[string]bool)}
	nodes, err := rs.renderComponent(graph.Entry, nil, nil)
	if err != nil {
		return "", "", "", err
	}
	bodyHTML, err = renderFragment(nodes)
	if err != nil {
		return "", "", "", err
	}
	return bodyHTML, strings.Join(rs.cssChunks, "\n"), assembleSignalScripts(rs.jsModules), nil
}

// assembleSignalScripts prepends the signal runtime, verbatim, ahead of
// every generated component module (spec.md §4.5 "Emitted JS"), or returns
// "" if no component contributed one.
func assembleSignalScripts(modules []string) string {
	if len(modules) == 0 {
		return ""
	}
	return signalRuntimeJS + "\n" + strings.Join(modules, "\n")
}

// renderComponent renders one component instance: it scopes the template
// (if any of the component's styles is scoped or it has a script setup
// block), walks it to resolve nested
// component tags/slots/prop interpolations, and — the first time this
// component path is reached during the whole page render — collects its
// CSS and generates its signal module.
func (rs *renderState) renderComponent(path string, props map[string]propBinding, slots map[string][]*html.Node) ([]*html.Node, error) {
	block, ok := rs.graph.Nodes[path]
	if !ok {
		return nil, &RenderError{Message: fmt.Sprintf("internal: unresolved component %q", path)}
	}

	scoped := block.StyleScoped
	for _, s := range block.ExtraStyles {
		if s.Scoped {
			scoped = true
		}
	}
	// The scope class doubles as the signal generator's DOM anchor (spec.md
	// §4.5 "selects its scope root by ScopeId class"), so it is applied
	// whenever there is reactive script to wire up even if no style is
	// scoped.
	needsScopeClass := scoped || block.ScriptSetup != ""

	scopeId := deriveScopeId(path)
	templateHTML := block.Template
	if needsScopeClass && templateHTML != "" {
		scopedHTML, err := AddScopeClass(templateHTML, scopeId, isComponentTagOf(block))
		if err != nil {
			return nil, err
		}
		templateHTML = scopedHTML
	}

	nodes, err := parseFragment(templateHTML)
	if err != nil {
		return nil, err
	}

	ctx := &nodeCtx{rs: rs, path: path, block: block, props: props, slots: slots, scopeId: scopeId}
	out, err := ctx.processNodes(nodes)
	if err != nil {
		return nil, err
	}

	if !rs.contributed[path] {
		rs.contributed[path] = true
		rs.collectCSS(block, scopeId)
		if block.ScriptSetup != "" {
			jsMod, err := GenerateSignals(block.ScriptSetup, templateHTML, scopeId)
			if err != nil {
				return nil, fmt.Errorf("generating signals for %s: %w", path, err)
			}
			if jsMod != "" {
				rs.jsModules = append(rs.jsModules, jsMod)
			}
		}
	}

	return out, nil
}

func (rs *renderState) collectCSS(block *VanBlock, scopeId ScopeId) {
	if block.Style != "" {
		css := block.Style
		if block.StyleScoped {
			css = ScopeCSS(css, scopeId)
		}
		rs.cssChunks = append(rs.cssChunks, css)
	}
	for _, s := range block.ExtraStyles {
		css := s.CSS
		if s.Scoped {
			css = ScopeCSS(css, scopeId)
		}
		rs.cssChunks = append(rs.cssChunks, css)
	}
}

func isComponentTagOf(block *VanBlock) ComponentTagPredicate {
	tags := make(map[string]bool, len(block.Imports))
	for _, imp := range block.Imports {
		tags[imp.KebabTag] = true
	}
	return func(tag string) bool { return tags[tag] }
}

// processNodes walks nodes in document order, substituting prop
// interpolations in text, dispatching component tags, and expanding
// <slot> elements.
func (ctx *nodeCtx) processNodes(nodes []*html.Node) ([]*html.Node, error) {
	var out []*html.Node
	for _, n := range nodes {
		rendered, err := ctx.processNode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered...)
	}
	return out, nil
}

func (ctx *nodeCtx) processNode(n *html.Node) ([]*html.Node, error) {
	switch n.Type {
	case html.TextNode:
		clone := cloneShallow(n)
		clone.Data = substituteInterpolations(n.Data, ctx.props)
		return []*html.Node{clone}, nil
	case html.CommentNode, html.DoctypeNode:
		return []*html.Node{cloneShallow(n)}, nil
	case html.ElementNode:
		if n.Data == "slot" {
			return ctx.expandSlot(n)
		}
		if target, ok := ctx.rs.graph.ImportTargets[ctx.path][n.Data]; ok {
			return ctx.dispatchComponent(n, target)
		}
		return ctx.passthroughElement(n)
	default:
		return nil, nil
	}
}

func cloneShallow(n *html.Node) *html.Node {
	attrs := make([]html.Attribute, len(n.Attr))
	copy(attrs, n.Attr)
	return &html.Node{Type: n.Type, DataAtom: n.DataAtom, Data: n.Data, Attr: attrs}
}

func childrenSlice(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// passthroughElement clones an ordinary (non-component, non-slot) element
// verbatim, recursing into its children. Directive attributes (@event,
// v-show, v-if, v-html, v-text, :class, :attr) are left untouched for the
// client signal generator to locate later.
func (ctx *nodeCtx) passthroughElement(n *html.Node) ([]*html.Node, error) {
	clone := cloneShallow(n)
	children, err := ctx.processNodes(childrenSlice(n))
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		clone.AppendChild(c)
	}
	return []*html.Node{clone}, nil
}

// expandSlot replaces a <slot> element with the caller-supplied content of
// matching name, or its own fallback children if the caller supplied none.
func (ctx *nodeCtx) expandSlot(n *html.Node) ([]*html.Node, error) {
	name := "default"
	for _, a := range n.Attr {
		if a.Key == "name" && a.Val != "" {
			name = a.Val
		}
	}

	var content []*html.Node
	if provided, ok := ctx.slots[name]; ok {
		content = provided
	} else {
		rendered, err := ctx.processNodes(childrenSlice(n))
		if err != nil {
			return nil, err
		}
		content = rendered
	}

	if !ctx.rs.opts.Debug {
		return content, nil
	}
	comment := fmt.Sprintf(" [slot %s] ", name)
	open := &html.Node{Type: html.CommentNode, Data: comment}
	closeNode := &html.Node{Type: html.CommentNode, Data: comment}
	out := make([]*html.Node, 0, len(content)+2)
	out = append(out, open)
	out = append(out, content...)
	out = append(out, closeNode)
	return out, nil
}

// dispatchComponent renders a component-tag reference: it classifies the
// tag's attributes into prop bindings, validates required props, renders
// each slot bucket in the *caller's* context, then recurses into the
// callee's own template with those props and rendered slots.
func (ctx *nodeCtx) dispatchComponent(n *html.Node, targetPath string) ([]*html.Node, error) {
	calleeBlock, ok := ctx.rs.graph.Nodes[targetPath]
	if !ok {
		return nil, &RenderError{Message: fmt.Sprintf("internal: unresolved import target %q", targetPath)}
	}

	attrs := make(map[string]propBinding, len(n.Attr))
	for _, a := range n.Attr {
		name := a.Key
		dynamic := false
		switch {
		case strings.HasPrefix(name, ":"):
			dynamic = true
			name = name[1:]
		case strings.HasPrefix(name, "v-bind:"):
			dynamic = true
			name = name[len("v-bind:"):]
		}
		attrs[name] = propBinding{dynamic: dynamic, raw: a.Val}
	}

	// Only attributes the callee actually declared via defineProps are
	// eligible for {{ expr }} substitution (spec.md §4.4 "Recursion": "expr
	// is exactly a declared prop name"); a pass-through attribute that isn't
	// a declared prop must never be confused for one.
	props := make(map[string]propBinding, len(calleeBlock.Props))
	for _, pd := range calleeBlock.Props {
		binding, ok := attrs[pd.Name]
		if !ok {
			if pd.Required {
				return nil, &RenderError{Message: fmt.Sprintf("required prop %q missing at %s", pd.Name, targetPath)}
			}
			continue
		}
		props[pd.Name] = binding
	}

	rawSlots := make(map[string][]*html.Node)
	var defaultRaw []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "template" {
			if slotName, ok := templateSlotName(c); ok {
				rawSlots[slotName] = append(rawSlots[slotName], childrenSlice(c)...)
				continue
			}
		}
		defaultRaw = append(defaultRaw, c)
	}
	if len(defaultRaw) > 0 {
		rawSlots["default"] = defaultRaw
	}

	renderedSlots := make(map[string][]*html.Node, len(rawSlots))
	for name, raw := range rawSlots {
		rendered, err := ctx.processNodes(raw)
		if err != nil {
			return nil, err
		}
		renderedSlots[name] = rendered
	}

	calleeOut, err := ctx.rs.renderComponent(targetPath, props, renderedSlots)
	if err != nil {
		return nil, err
	}

	if !ctx.rs.opts.Debug {
		return calleeOut, nil
	}
	label := ctx.componentDebugLabel(n.Data, targetPath)
	open := &html.Node{Type: html.CommentNode, Data: label}
	closeNode := &html.Node{Type: html.CommentNode, Data: label}
	out := make([]*html.Node, 0, len(calleeOut)+2)
	out = append(out, open)
	out = append(out, calleeOut...)
	out = append(out, closeNode)
	return out, nil
}

// componentDebugLabel builds the " [Component Foo] " / " [Component Foo
// (origin)] " comment text of spec.md §4.4, annotated with file_origins
// per SPEC_FULL.md's supplemented debug-comment format.
func (ctx *nodeCtx) componentDebugLabel(tag, targetPath string) string {
	pascal := tag
	for _, imp := range ctx.block.Imports {
		if imp.KebabTag == tag {
			pascal = imp.PascalName
			break
		}
	}
	if origin, ok := ctx.rs.opts.FileOrigins[targetPath]; ok && origin != "" {
		return fmt.Sprintf(" [Component %s (%s)] ", pascal, origin)
	}
	return fmt.Sprintf(" [Component %s] ", pascal)
}

// templateSlotName reports the slot name of a <template #name> or
// <template v-slot:name> wrapper, and false if c names neither form.
func templateSlotName(c *html.Node) (string, bool) {
	for _, a := range c.Attr {
		if strings.HasPrefix(a.Key, "#") {
			return a.Key[1:], true
		}
		if strings.HasPrefix(a.Key, "v-slot:") {
			return a.Key[len("v-slot:"):], true
		}
	}
	return "", false
}

// substituteInterpolations replaces "{{ expr }}" spans whose trimmed expr
// exactly names a bound prop with that prop's value: the literal string for
// a static prop, or a fresh "{{ rawExpr }}" placeholder for a dynamic one
// (spec.md §4.4 "Recursion"). Every other interpolation, including any
// whose expr is not a declared prop, is left untouched verbatim (§8
// "Placeholder preservation").
func substituteInterpolations(text string, props map[string]propBinding) string {
	if len(props) == 0 || !strings.Contains(text, "{{") {
		return text
	}
	var b strings.Builder
	i := 0
	for i < len(text) {
		start := strings.Index(text[i:], "{{")
		if start == -1 {
			b.WriteString(text[i:])
			break
		}
		start += i
		b.WriteString(text[i:start])
		end := strings.Index(text[start+2:], "}}")
		if end == -1 {
			b.WriteString(text[start:])
			break
		}
		end = start + 2 + end
		expr := strings.TrimSpace(text[start+2 : end])
		if pb, ok := props[expr]; ok {
			if pb.dynamic {
				b.WriteString("{{ ")
				b.WriteString(pb.raw)
				b.WriteString(" }}")
			} else {
				b.WriteString(pb.raw)
			}
		} else {
			b.WriteString(text[start : end+2])
		}
		i = end + 2
	}
	return b.String()
}
