// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

//go:build !linux

package block

import (
	"fmt"
	"os"
)

// Open opens a block device or a disk image for reading.
func Open(path string) (*os.File, error) {
	return os.Open(path)
}

// Probe returns the geometry of an opened disk image.
//
// Block devices are detected, but their size and sector size are not queried.
func Probe(f *os.File) (Geometry, error) {
	st, err := f.Stat()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to stat %q: %w", f.Name(), err)
	}

	mode := st.Mode()

	return Geometry{
		Size:        uint64(max(st.Size(), 0)),
		SectorSize:  DefaultSectorSize,
		BlockDevice: mode&os.ModeDevice != 0 && mode&os.ModeCharDevice == 0,
	}, nil
}
