// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package testimage builds in-memory disk images for tests.
package testimage

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"

	"github.com/siderolabs/go-parttable/internal/gptutil"
)

// Slot is a primary MBR partition slot.
type Slot struct {
	Index   int
	Type    byte
	Start   uint32
	Sectors uint32
}

// BootSector returns a 512-byte boot sector with the given slots filled in.
func BootSector(slots ...Slot) []byte {
	sector := make([]byte, 512)

	// boot signature
	sector[510], sector[511] = 0x55, 0xaa

	for _, s := range slots {
		b := sector[446+16*s.Index : 446+16*(s.Index+1)]

		b[4] = s.Type
		binary.LittleEndian.PutUint32(b[8:12], s.Start)
		binary.LittleEndian.PutUint32(b[12:16], s.Sectors)
	}

	return sector
}

// Entry is a GPT partition entry.
type Entry struct {
	Index int

	Type       uuid.UUID
	Start, End uint64
	Name       string

	// RawName overrides the encoded name.
	RawName []byte
}

// GPT describes a GPT disk image.
//
// Zero values are replaced with the usual layout: 512-byte sectors, 128 entries of 128 bytes at LBA 2.
type GPT struct { //nolint:govet
	SectorSize int
	EntriesLBA uint64
	NumEntries uint32
	EntrySize  uint32

	Signature string
	Revision  uint32

	// ProtectiveMBR writes the protective MBR to LBA 0.
	ProtectiveMBR bool

	Entries []Entry

	// Corrupt is called on the image after checksums are calculated.
	Corrupt func(image []byte)
}

func (g GPT) withDefaults() GPT {
	if g.SectorSize == 0 {
		g.SectorSize = 512
	}

	if g.EntriesLBA == 0 {
		g.EntriesLBA = 2
	}

	if g.NumEntries == 0 {
		g.NumEntries = 128
	}

	if g.EntrySize == 0 {
		g.EntrySize = 128
	}

	if g.Signature == "" {
		g.Signature = "EFI PART"
	}

	if g.Revision == 0 {
		g.Revision = 0x00010000
	}

	return g
}

// Build returns the image bytes.
func (g GPT) Build() ([]byte, error) {
	g = g.withDefaults()

	entriesOffset := int(g.EntriesLBA) * g.SectorSize
	entriesLen := int(g.NumEntries) * int(g.EntrySize)

	image := make([]byte, entriesOffset+entriesLen+g.SectorSize)
	entries := image[entriesOffset : entriesOffset+entriesLen]
	lastLBA := uint64(len(image)/g.SectorSize - 1)

	utf16 := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

	for _, e := range g.Entries {
		if e.Index >= int(g.NumEntries) {
			return nil, fmt.Errorf("entry index %d out of range", e.Index)
		}

		b := entries[e.Index*int(g.EntrySize) : (e.Index+1)*int(g.EntrySize)]

		copy(b[0:16], gptutil.UUIDToGUID(e.Type[:]))

		partGUID := uuid.New()
		copy(b[16:32], gptutil.UUIDToGUID(partGUID[:]))

		binary.LittleEndian.PutUint64(b[32:40], e.Start)
		binary.LittleEndian.PutUint64(b[40:48], e.End)

		name := e.RawName

		if name == nil {
			var err error

			if name, err = utf16.NewEncoder().Bytes([]byte(e.Name)); err != nil {
				return nil, err
			}
		}

		if len(name) > 72 {
			return nil, fmt.Errorf("partition name %q too long: %d bytes", e.Name, len(name))
		}

		copy(b[56:128], name)
	}

	hdr := image[g.SectorSize : g.SectorSize+92]

	copy(hdr[0:8], g.Signature)
	binary.LittleEndian.PutUint32(hdr[8:12], g.Revision)
	binary.LittleEndian.PutUint32(hdr[12:16], 92)
	binary.LittleEndian.PutUint64(hdr[24:32], 1)
	binary.LittleEndian.PutUint64(hdr[32:40], lastLBA)
	binary.LittleEndian.PutUint64(hdr[40:48], g.EntriesLBA+uint64((entriesLen+g.SectorSize-1)/g.SectorSize))
	binary.LittleEndian.PutUint64(hdr[48:56], lastLBA-1)

	diskGUID := uuid.New()
	copy(hdr[56:72], gptutil.UUIDToGUID(diskGUID[:]))

	binary.LittleEndian.PutUint64(hdr[72:80], g.EntriesLBA)
	binary.LittleEndian.PutUint32(hdr[80:84], g.NumEntries)
	binary.LittleEndian.PutUint32(hdr[84:88], g.EntrySize)
	binary.LittleEndian.PutUint32(hdr[88:92], crc32.ChecksumIEEE(entries))
	binary.LittleEndian.PutUint32(hdr[16:20], crc32.ChecksumIEEE(hdr))

	if g.ProtectiveMBR {
		copy(image, BootSector(Slot{
			Index:   0,
			Type:    0xee,
			Start:   1,
			Sectors: uint32(min(lastLBA, math.MaxUint32)),
		}))
	}

	if g.Corrupt != nil {
		g.Corrupt(image)
	}

	return image, nil
}
