// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

import (
	"strconv"

	"github.com/cespare/xxhash"
)

// scopeIdPrefix is fixed per spec.md §4.4 ("ScopeId derivation").
const scopeIdPrefix = "v-"

// deriveScopeId hashes a normalized component path with a stable
// non-cryptographic 64-bit hash and formats it as "v-" plus the first 8 hex
// characters. Grounded on vue.go's generateHashId, but hashes the path
// rather than the source text: spec.md requires the id be stable per path
// across runs, independent of content. xxhash has no caller-configurable
// seed, which satisfies the "fixed seed" requirement of §9 by construction.
func deriveScopeId(normalizedPath string) ScopeId {
	sum := xxhash.Sum64String(normalizedPath)
	hex := strconv.FormatUint(sum, 16)
	for len(hex) < 16 {
		hex = "0" + hex
	}
	return ScopeId(scopeIdPrefix + hex[:8])
}

// contentHash hashes asset content for the van-<hash>.css / van-<hash>.js
// names of spec.md §6 ("Asset naming").
func contentHash(content string) string {
	sum := xxhash.Sum64String(content)
	hex := strconv.FormatUint(sum, 16)
	for len(hex) < 16 {
		hex = "0" + hex
	}
	return hex[:8]
}
