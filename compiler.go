// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

import "log/slog"

// Compiler is the single entry point of spec.md §2/§9: resolve the
// component graph, render server HTML, generate signal scripts, and
// assemble the final document or asset set. Grounded on plugin.go's
// NewPlugin, narrowed to one operation since spec.md §9 rules out a build
// pipeline, processor-chain extension points, and any retained state
// between compiles.
type Compiler struct {
	logger *slog.Logger
}

// NewCompiler builds a Compiler, applying the functional options.
func NewCompiler(optsFunc ...OptionFunc) *Compiler {
	o := newOptions()
	for _, fn := range optsFunc {
		fn(o)
	}
	return &Compiler{logger: o.logger}
}

// Compile runs one compile request to completion and returns a full
// success or full error Response, never a partial one (spec.md §7).
func (c *Compiler) Compile(req Request) Response {
	graph, err := Resolve(req.EntryPath, req.Files)
	if err != nil {
		c.logger.Error("resolve failed", "entry_path", req.EntryPath, "error", err)
		return errorResponse(err.Error())
	}

	bodyHTML, css, js, err := RenderPage(graph, RenderOptions{
		Debug:       req.Debug,
		FileOrigins: req.FileOrigins,
	})
	if err != nil {
		c.logger.Error("render failed", "entry_path", req.EntryPath, "error", err)
		return errorResponse(err.Error())
	}

	document, assets, err := AssembleDocument(bodyHTML, css, js, req.AssetPrefix)
	if err != nil {
		c.logger.Error("asset assembly failed", "entry_path", req.EntryPath, "error", err)
		return errorResponse(err.Error())
	}

	c.logger.Debug("compile ok", "entry_path", req.EntryPath, "components", len(graph.Nodes))
	return Response{OK: true, HTML: document, Assets: assets}
}
