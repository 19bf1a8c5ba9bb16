// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package mbr decodes the legacy Master Boot Record partition table.
package mbr

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/siderolabs/go-parttable/internal/bytecodec"
	"github.com/siderolabs/go-parttable/internal/ioutil"
	"github.com/siderolabs/go-parttable/partitioning"
)

const (
	// SectorSize is the size of the boot sector.
	SectorSize = 512

	// NumSlots is the number of primary partition slots.
	NumSlots = 4

	tableOffset = 446
	slotSize    = 16

	// TypeGPTProtective is the partition type of the GPT protective MBR entry.
	TypeGPTProtective = 0xee
)

// slot layout, offsets are relative to the slot base.
var (
	slotType     = bytecodec.Field{Name: "type", Offset: 4, Width: 1}
	slotStartLBA = bytecodec.Field{Name: "start LBA", Offset: 8, Width: 4}
	slotSectors  = bytecodec.Field{Name: "sector count", Offset: 12, Width: 4}
)

// Partition is a single primary partition entry in the MBR.
type Partition struct {
	// Number is the slot index (0-3).
	Number int
	Type   byte

	Start uint64
	// Size is the sector count as stored in the slot.
	Size uint64
	End  uint64
}

// GetNumber implements partitioning.Partition.
func (p Partition) GetNumber() int {
	return p.Number
}

// GetStart implements partitioning.Partition.
func (p Partition) GetStart() uint64 {
	return p.Start
}

// GetEnd implements partitioning.Partition.
func (p Partition) GetEnd() uint64 {
	return p.End
}

// GetType implements partitioning.Partition.
func (p Partition) GetType() string {
	return "0x" + strconv.FormatUint(uint64(p.Type), 16)
}

var _ partitioning.Partition = Partition{}

// Decode decodes the partition table embedded in the boot sector.
//
// Empty slots (type 0) are skipped, surviving entries keep their slot index.
func Decode(sector []byte, opts ...Option) ([]Partition, error) {
	options := applyOptions(opts...)

	if len(sector) < SectorSize {
		return nil, fmt.Errorf("boot sector is %d bytes, expected %d: %w", len(sector), SectorSize, partitioning.ErrTruncatedField)
	}

	units := bytecodec.GroupBytes(sector[:SectorSize])

	var partitions []Partition

	for i := 0; i < NumSlots; i++ {
		slot, err := units.Window(tableOffset+slotSize*i, slotSize)
		if err != nil {
			return nil, err
		}

		typ, err := slotType.Uint(slot)
		if err != nil {
			return nil, err
		}

		if typ == 0 {
			options.Logger.Debug("skipping empty MBR slot", zap.Int("slot", i))

			continue
		}

		start, err := slotStartLBA.Uint(slot)
		if err != nil {
			return nil, err
		}

		size, err := slotSectors.Uint(slot)
		if err != nil {
			return nil, err
		}

		partitions = append(partitions, Partition{
			Number: i,
			Type:   byte(typ),
			Start:  start,
			Size:   size,
			End:    start + size - 1,
		})
	}

	return partitions, nil
}

// Read reads the boot sector from the beginning of the source and decodes it.
func Read(r io.ReadSeeker, opts ...Option) ([]Partition, error) {
	sector := make([]byte, SectorSize)

	if err := ioutil.ReadFullFrom(r, sector, 0); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("reading boot sector: %w", partitioning.ErrTruncatedField)
		}

		return nil, fmt.Errorf("reading boot sector: %w", err)
	}

	return Decode(sector, opts...)
}

// IsProtective returns true if the table contains a GPT protective entry.
func IsProtective(partitions []Partition) bool {
	for _, p := range partitions {
		if p.Type == TypeGPTProtective {
			return true
		}
	}

	return false
}
