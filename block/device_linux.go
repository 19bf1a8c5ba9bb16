// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package block

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Open opens a block device or a disk image for reading.
func Open(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDONLY|unix.O_CLOEXEC, 0)
}

// Probe returns the geometry of an opened block device or disk image.
func Probe(f *os.File) (Geometry, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return Geometry{}, fmt.Errorf("failed to stat %q: %w", f.Name(), err)
	}

	if st.Mode&unix.S_IFMT != unix.S_IFBLK {
		return Geometry{
			Size:       uint64(st.Size),
			SectorSize: DefaultSectorSize,
		}, nil
	}

	g := Geometry{
		SectorSize:  DefaultSectorSize,
		BlockDevice: true,
	}

	if err := ioctl(f, unix.BLKGETSIZE64, unsafe.Pointer(&g.Size)); err != nil {
		return Geometry{}, fmt.Errorf("failed to get size of %q: %w", f.Name(), err)
	}

	var sectorSize uint32

	// the kernel reports the logical sector size as an int
	if err := ioctl(f, unix.BLKSSZGET, unsafe.Pointer(&sectorSize)); err == nil && validSectorSize(sectorSize) {
		g.SectorSize = uint(sectorSize)
	}

	return g, nil
}

func ioctl(f *os.File, req uintptr, arg unsafe.Pointer) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), req, uintptr(arg)); errno != 0 {
		return errno
	}

	return nil
}
