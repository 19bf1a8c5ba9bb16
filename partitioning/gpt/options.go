// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt

import "go.uber.org/zap"

// Options is a set of options for decoding a partition table.
type Options struct {
	// Logger to use for logging.
	Logger *zap.Logger

	// SectorSize is the logical sector size of the device, in bytes.
	SectorSize uint

	// ValidateHeader enables signature, checksum and sanity checks of the header
	// and the partition entry array.
	ValidateHeader bool

	// MaxEntries is the maximum number of partition entries accepted when the header is validated.
	MaxEntries uint32
}

// Option is a function that sets some option.
type Option func(*Options)

// WithLogger sets the logger for decoding.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithSectorSize sets the logical sector size.
func WithSectorSize(size uint) Option {
	return func(o *Options) {
		o.SectorSize = size
	}
}

// WithHeaderValidation enables validation of the GPT header and the partition entry array.
//
// By default the header fields are trusted as is.
func WithHeaderValidation() Option {
	return func(o *Options) {
		o.ValidateHeader = true
	}
}

// WithMaxEntries sets the limit on the number of partition entries, only used with header validation.
func WithMaxEntries(n uint32) Option {
	return func(o *Options) {
		o.MaxEntries = n
	}
}

func applyOptions(opts ...Option) Options {
	o := Options{
		Logger:     zap.NewNop(),
		SectorSize: DefaultSectorSize,
		MaxEntries: DefaultMaxEntries,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
