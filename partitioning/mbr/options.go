// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package mbr

import "go.uber.org/zap"

// Options configure MBR decoding.
type Options struct {
	// Logger to use for logging.
	Logger *zap.Logger
}

// Option is a function that sets some option.
type Option func(*Options)

// WithLogger sets the logger for decoding.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func applyOptions(opts ...Option) Options {
	o := Options{
		Logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
