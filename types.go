// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

// VanBlock is the parsed representation of one component file. A VanBlock
// exists only for the duration of one compile request.
type VanBlock struct {
	Template string // raw template fragment text, empty if none

	ScriptSetup  string // client script text
	ScriptServer string // server script text, preserved but never evaluated or emitted

	Style       string       // primary style block text
	StyleScoped bool         // whether Style is scoped
	ExtraStyles []StyleBlock // any additional <style> blocks beyond the first

	Props         []PropDef
	Imports       []VanImport
	ScriptImports []ScriptImport

	// Path is the normalized POSIX path this block was parsed from. Set by
	// the resolver, not by parse_blocks itself.
	Path string
}

// StyleBlock is one <style> occurrence beyond the primary one tracked on
// VanBlock.Style/StyleScoped. See SPEC_FULL.md "Supplemented features".
type StyleBlock struct {
	CSS    string
	Scoped bool
}

// PropDef is one entry of a defineProps({ ... }) declaration.
type PropDef struct {
	Name     string
	PropType string // empty if not declared
	Required bool
}

// VanImport is a component reference extracted from script_setup.
type VanImport struct {
	PascalName string
	KebabTag   string
	Path       string // importer-relative source path ending in .van
}

// ScriptImport is any non-.van import preserved as raw text.
type ScriptImport struct {
	Raw        string // the full import statement text as written
	IsTypeOnly bool
	Path       string
}

// ResolvedGraph is the result of resolving an entry path against a file map:
// every transitively-imported component, parsed exactly once.
type ResolvedGraph struct {
	Entry string // normalized entry path
	Nodes map[string]*VanBlock
	// Order is the depth-first pre-order of first appearance, per §4.3
	// "Determinism".
	Order []string
	// ImportTargets maps an owning component's normalized path, then a
	// kebab tag name it declares, to the resolved normalized path of the
	// imported component. Populated by Resolve so the renderer can dispatch
	// a component tag without re-deriving realpath() itself.
	ImportTargets map[string]map[string]string
}

// ScopeId is the short stable identifier derived from a component's
// normalized path (§4.5 "ScopeId derivation").
type ScopeId string

// BindingKind enumerates the TemplateBinding variants of §3.
type BindingKind int

const (
	BindText BindingKind = iota
	BindAttr
	BindEvent
	BindShow
	BindIf
	BindHtml
	BindClassBind
)

// TemplateBinding is one reactive wiring point discovered by the signal
// generator's template walk.
type TemplateBinding struct {
	Kind BindingKind

	// RefID is the bare identifier bound, when the binding's source
	// expression is a bare identifier (e.g. "count"). Empty when Expr holds
	// a non-identifier expression instead.
	RefID string

	// Expr is the raw expression text when it is not a bare identifier
	// (e.g. an :attr or :class binding whose value is a small expression).
	Expr string

	// Name is the attribute/event name for Attr/Event bindings (e.g. "href"
	// for :href, "click" for @click). Empty for Text/Show/If/Html/ClassBind.
	Name string

	// Path locates the bound element: a single index, in document order,
	// among the component's scope-classed elements (the __els index used
	// by the generated script).
	Path []int
}
