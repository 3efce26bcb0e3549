// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

import (
	"path"
	"strings"
)

// virtualFS is the resolver's only file-access surface. Adapted from
// engine/fs.go's fileExists/readFile/realpath trio (there, exposed to a
// sandboxed QuickJS context as the `compilerFs` global); here the same
// three operations are backed by the immutable file map handed in with a
// compile request instead of the real filesystem, since spec.md §5 forbids
// any I/O beyond stdin/stdout.
type virtualFS struct {
	files map[string]string
}

func newVirtualFS(files map[string]string) *virtualFS {
	normalized := make(map[string]string, len(files))
	for p, src := range files {
		normalized[normalizePath(p)] = src
	}
	return &virtualFS{files: normalized}
}

// exists reports whether realpath exists in the file map.
func (v *virtualFS) exists(p string) bool {
	_, ok := v.files[p]
	return ok
}

// readFile returns the source text at p, if any.
func (v *virtualFS) readFile(p string) (string, bool) {
	src, ok := v.files[p]
	return src, ok
}

// realpath resolves importPath relative to the importer's normalized path
// using POSIX semantics, exactly as toPosixPath/filepath.Clean(Join(...))
// do in the teacher's vue.go/pathalias.go, but purely textual (never
// touching the OS filesystem) since the spec's paths are virtual.
func (v *virtualFS) realpath(importerPath, importPath string) string {
	importPath = toPosixPath(importPath)
	if strings.HasPrefix(importPath, "./") || strings.HasPrefix(importPath, "../") {
		dir := path.Dir(toPosixPath(importerPath))
		return normalizePath(path.Join(dir, importPath))
	}
	return normalizePath(importPath)
}

// toPosixPath converts Windows-style paths to POSIX-style paths, exactly
// as vue.go's helper of the same name does.
func toPosixPath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// normalizePath puts a POSIX path into the canonical form used as a
// ResolvedGraph key: forward slashes, no leading "./", `path.Clean`-ed.
func normalizePath(p string) string {
	p = toPosixPath(p)
	p = path.Clean(p)
	return strings.TrimPrefix(p, "./")
}
