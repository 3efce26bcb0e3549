//go:build !js || !wasm
// +build !js !wasm

package main

import (
	"fmt"
	"os"
	"runtime/pprof"
)

func createCPUProfile(path string) func() {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "van: failed to create cpuprofile file:", err)
		return nil
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		fmt.Fprintln(os.Stderr, "van: failed to start cpuprofile:", err)
		f.Close()
		return nil
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}
}
