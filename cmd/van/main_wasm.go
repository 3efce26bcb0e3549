//go:build js && wasm

package main

import (
	"fmt"
	"os"
)

// createCPUProfile is unavailable in the WASM build: runtime/pprof writes
// to the host filesystem, which a sandboxed WASM instance has none of.
func createCPUProfile(path string) func() {
	fmt.Fprintln(os.Stderr, "van: --cpuprofile is not supported when running as WebAssembly")
	return nil
}
