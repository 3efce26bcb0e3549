// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

import "fmt"

// maxImportDepth is the depth bound of spec.md §4.3 / §3, counting the
// entry as depth 1.
const maxImportDepth = 10

// ResolveError is returned by Resolve for missing files, cycles, and
// depth-bound violations (spec.md §7 "Resolution error").
type ResolveError struct {
	Message string
}

func (e *ResolveError) Error() string { return e.Message }

// Resolve walks the component dependency graph starting at entryPath,
// parsing every transitively-referenced component exactly once (spec.md
// §4.3). The graph is represented as a flat map keyed by normalized path,
// per the design note in §9: cycle detection uses an on-stack set during
// traversal rather than relying on parent/child ownership.
func Resolve(entryPath string, files map[string]string) (*ResolvedGraph, error) {
	vfs := newVirtualFS(files)
	entry := normalizePath(entryPath)

	if !vfs.exists(entry) {
		return nil, &ResolveError{Message: fmt.Sprintf("entry file not found: %s", entry)}
	}

	g := &ResolvedGraph{
		Entry:         entry,
		Nodes:         make(map[string]*VanBlock),
		ImportTargets: make(map[string]map[string]string),
	}
	onStack := make(map[string]bool)
	var stack []string

	var visit func(p string, depth int) error
	visit = func(p string, depth int) error {
		if depth > maxImportDepth {
			return &ResolveError{Message: fmt.Sprintf(
				"import depth exceeds %d at %s (chain: %s)", maxImportDepth, p, joinChain(append(stack, p)))}
		}
		if onStack[p] {
			return &ResolveError{Message: fmt.Sprintf(
				"import cycle detected: %s", joinChain(append(stack, p)))}
		}
		if _, already := g.Nodes[p]; already {
			return nil
		}

		src, ok := vfs.readFile(p)
		if !ok {
			importer := "<entry>"
			if len(stack) > 0 {
				importer = stack[len(stack)-1]
			}
			return &ResolveError{Message: fmt.Sprintf("missing file %q imported from %q", p, importer)}
		}

		block, err := ParseBlocks(src)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", p, err)
		}
		block.Path = p

		g.Nodes[p] = &block
		g.Order = append(g.Order, p)

		onStack[p] = true
		stack = append(stack, p)
		targets := make(map[string]string, len(block.Imports))
		for _, imp := range block.Imports {
			childPath := vfs.realpath(p, imp.Path)
			targets[imp.KebabTag] = childPath
			if err := visit(childPath, depth+1); err != nil {
				return err
			}
		}
		g.ImportTargets[p] = targets
		stack = stack[:len(stack)-1]
		onStack[p] = false
		return nil
	}

	if err := visit(entry, 1); err != nil {
		return nil, err
	}
	return g, nil
}

func joinChain(chain []string) string {
	out := ""
	for i, p := range chain {
		if i > 0 {
			out += " -> "
		}
		out += p
	}
	return out
}
