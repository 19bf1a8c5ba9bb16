// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package bytecodec

import "fmt"

// Field describes a fixed-width field at a fixed offset within a structure.
type Field struct {
	Name   string
	Offset int
	Width  int
}

// Bytes returns the raw bytes of the field.
func (f Field) Bytes(u Units) ([]byte, error) {
	b, err := u.Window(f.Offset, f.Width)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", f.Name, err)
	}

	return b, nil
}

// Uint decodes the field as an unsigned little-endian integer.
func (f Field) Uint(u Units) (uint64, error) {
	b, err := f.Bytes(u)
	if err != nil {
		return 0, err
	}

	v, err := DecodeUintLE(b, f.Width)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", f.Name, err)
	}

	return v, nil
}

// End returns the offset just past the field.
func (f Field) End() int {
	return f.Offset + f.Width
}
