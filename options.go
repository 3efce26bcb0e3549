// Copyright 2025 Brian Wang <wangbuke@gmail.com>
// SPDX-License-Identifier: Apache-2.0

package van

import "log/slog"

// Options holds Compiler configuration. Grounded on option.go's Options,
// narrowed to the one knob spec.md's ambient stack actually calls for: a
// structured logger. The compiler owns no build pipeline, sass/html
// processor chains, or JS executor to configure, since spec.md §3/§9 rule
// those concerns out entirely.
type Options struct {
	logger *slog.Logger
}

// OptionFunc configures a Compiler via the functional-options pattern,
// exactly as option.go's OptionFunc does for the esbuild plugin.
type OptionFunc func(*Options)

func newOptions() *Options {
	return &Options{logger: slog.Default()}
}

// WithLogger overrides the Compiler's structured logger.
func WithLogger(logger *slog.Logger) OptionFunc {
	return func(o *Options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
