// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package bytecodec implements fixed-width little-endian field extraction for on-disk structures.
package bytecodec

import (
	"fmt"

	"github.com/siderolabs/go-parttable/partitioning"
)

// Units is a flat buffer addressable by byte offset.
type Units []byte

// GroupBytes returns the addressable byte units of the raw buffer.
//
// The buffer is copied, so the caller is free to reuse raw.
func GroupBytes(raw []byte) Units {
	return append(Units(nil), raw...)
}

// Window returns width units starting at offset.
func (u Units) Window(offset, width int) ([]byte, error) {
	if offset < 0 || width < 0 || offset+width > len(u) {
		return nil, fmt.Errorf("window [%d:%d) of %d bytes: %w", offset, offset+width, len(u), partitioning.ErrTruncatedField)
	}

	return u[offset : offset+width : offset+width], nil
}

// IsZero returns true if every unit is zero.
func (u Units) IsZero() bool {
	for _, b := range u {
		if b != 0 {
			return false
		}
	}

	return true
}

// DecodeUintLE interprets the first width bytes as an unsigned little-endian integer.
//
// Width should be within 1..8.
func DecodeUintLE(units []byte, width int) (uint64, error) {
	if width < 1 || width > 8 {
		return 0, fmt.Errorf("unsupported integer width %d", width)
	}

	if len(units) < width {
		return 0, fmt.Errorf("need %d bytes, have %d: %w", width, len(units), partitioning.ErrTruncatedField)
	}

	var v uint64

	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint64(units[i])
	}

	return v, nil
}
