// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

import (
	_ "embed"
	"strings"
)

// signalRuntimeJS is the ≤4KiB signal runtime of spec.md §4.5, embedded
// verbatim and prepended once to every page's generated signal scripts.
//
//go:embed runtime.js
var signalRuntimeJS string

func init() {
	signalRuntimeJS = strings.TrimRight(signalRuntimeJS, "\n")
}
