// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

import "testing"

func TestVirtualFS_ExistsAndReadFile(t *testing.T) {
	vfs := newVirtualFS(map[string]string{"a.van": "content-a"})
	if !vfs.exists("a.van") {
		t.Fatalf("expected a.van to exist")
	}
	if vfs.exists("missing.van") {
		t.Fatalf("expected missing.van to not exist")
	}
	src, ok := vfs.readFile("a.van")
	if !ok || src != "content-a" {
		t.Fatalf("expected content-a, got %q ok=%v", src, ok)
	}
}

func TestVirtualFS_NormalizesKeysOnConstruction(t *testing.T) {
	vfs := newVirtualFS(map[string]string{"./sub/../a.van": "x"})
	if !vfs.exists("a.van") {
		t.Fatalf("expected the file map key to be normalized to a.van")
	}
}

func TestVirtualFS_RealpathRelative(t *testing.T) {
	vfs := newVirtualFS(nil)
	got := vfs.realpath("pages/index.van", "../components/hello.van")
	if got != "components/hello.van" {
		t.Fatalf("expected components/hello.van, got %q", got)
	}
}

func TestVirtualFS_RealpathSameDir(t *testing.T) {
	vfs := newVirtualFS(nil)
	got := vfs.realpath("pages/index.van", "./hello.van")
	if got != "pages/hello.van" {
		t.Fatalf("expected pages/hello.van, got %q", got)
	}
}

func TestVirtualFS_RealpathAbsoluteLikePath(t *testing.T) {
	vfs := newVirtualFS(nil)
	got := vfs.realpath("pages/index.van", "components/hello.van")
	if got != "components/hello.van" {
		t.Fatalf("expected a non-relative import path normalized as-is, got %q", got)
	}
}

func TestNormalizePath_StripsDotSlashAndBackslashes(t *testing.T) {
	if got := normalizePath(`.\a\b.van`); got != "a/b.van" {
		t.Fatalf("expected a/b.van, got %q", got)
	}
	if got := normalizePath("./a.van"); got != "a.van" {
		t.Fatalf("expected a.van, got %q", got)
	}
}
