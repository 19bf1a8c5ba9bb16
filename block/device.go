// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package block reports the geometry of block devices and disk images.
package block

// DefaultSectorSize is assumed for disk images and for devices which don't report a logical sector size.
const DefaultSectorSize = 512

// Geometry describes a block device or a disk image.
type Geometry struct {
	// Size in bytes.
	Size uint64
	// SectorSize is the logical sector size in bytes.
	SectorSize uint

	BlockDevice bool
}

// Sectors returns the number of whole logical sectors.
func (g Geometry) Sectors() uint64 {
	if g.SectorSize == 0 {
		return 0
	}

	return g.Size / uint64(g.SectorSize)
}

func validSectorSize(size uint32) bool {
	return size >= DefaultSectorSize && size&(size-1) == 0
}
