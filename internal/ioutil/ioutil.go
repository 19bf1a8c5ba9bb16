// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package ioutil provides IO utility functions.
package ioutil

import (
	"io"
)

// ReadFull is io.ReadFull which reports any short read (including an empty one) as io.ErrUnexpectedEOF.
func ReadFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	if err == io.EOF { //nolint:errorlint
		err = io.ErrUnexpectedEOF
	}

	return err
}

// ReadFullFrom seeks to the offset and fills the buffer.
func ReadFullFrom(r io.ReadSeeker, buf []byte, offset int64) error {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return err
	}

	return ReadFull(r, buf)
}
