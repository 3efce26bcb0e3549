// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vanhq/van"
)

const version = "0.1.0"

const helpText = `Usage:
  van [options]

Reads one compile request envelope from stdin and writes one response
envelope to stdout (spec.md §6), unless --daemon is given.

Options:
  --daemon        Read one JSON request per line until EOF, writing one
                   JSON response per line (spec.md §5).
  --cpuprofile=F  Write a CPU profile to F while compiling (not supported
                   in the WASM build).
  --version       Print the version and exit.
  --help          Print this help text and exit.
`

func main() {
	osArgs := os.Args[1:]

	daemonMode := false
	cpuprofileFile := ""
	for _, arg := range osArgs {
		switch {
		case arg == "--daemon":
			daemonMode = true
		case arg == "--version":
			fmt.Println(version)
			os.Exit(0)
		case arg == "--help":
			fmt.Print(helpText)
			os.Exit(0)
		case strings.HasPrefix(arg, "--cpuprofile="):
			cpuprofileFile = arg[len("--cpuprofile="):]
		}
	}

	if cpuprofileFile != "" {
		if stop := createCPUProfile(cpuprofileFile); stop != nil {
			defer stop()
		}
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	compiler := van.NewCompiler(van.WithLogger(logger))

	if daemonMode {
		if err := van.RunDaemon(compiler, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "van: daemon loop failed:", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	exitCode := runOnce(compiler, os.Stdin, os.Stdout)
	os.Exit(exitCode)
}

// runOnce reads exactly one request envelope from in and writes exactly
// one response envelope to out, per spec.md §6 single-shot mode. It
// returns 0 unless the request itself could not be read at all (or the
// response could not be written), per §6
// "non-zero on envelope read failure before any response could be
// produced" — a successfully-read-but-invalid request still produces a
// normal {"ok":false,...} response and a zero exit code.
func runOnce(c *van.Compiler, in io.Reader, out io.Writer) int {
	body, err := io.ReadAll(in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "van: failed to read request:", err)
		return 1
	}

	var req van.Request
	var resp van.Response
	if err := json.Unmarshal(body, &req); err != nil {
		resp = van.Response{OK: false, Error: "malformed request JSON: " + err.Error()}
	} else {
		resp = c.Compile(req)
	}

	if err := json.NewEncoder(out).Encode(resp); err != nil {
		fmt.Fprintln(os.Stderr, "van: failed to write response:", err)
		return 1
	}
	return 0
}
