// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"slices"

	"go.uber.org/zap"

	"github.com/siderolabs/go-parttable/internal/bytecodec"
	"github.com/siderolabs/go-parttable/internal/ioutil"
	"github.com/siderolabs/go-parttable/partitioning"
)

const (
	// HeaderSize is the size of the defined part of the GPT header.
	HeaderSize = 92

	// MagicEFIPart is the GPT header signature.
	MagicEFIPart = "EFI PART"

	// Revision is the only GPT header revision defined (1.0).
	Revision = 0x00010000

	primaryLBA = 1
)

// header layout.
var (
	hdrSignature  = bytecodec.Field{Name: "signature", Offset: 0, Width: 8}
	hdrRevision   = bytecodec.Field{Name: "revision", Offset: 8, Width: 4}
	hdrSize       = bytecodec.Field{Name: "header size", Offset: 12, Width: 4}
	hdrCRC        = bytecodec.Field{Name: "header CRC32", Offset: 16, Width: 4}
	hdrMyLBA      = bytecodec.Field{Name: "my LBA", Offset: 24, Width: 8}
	hdrEntriesLBA = bytecodec.Field{Name: "partition entries LBA", Offset: 72, Width: 8}
	hdrNumEntries = bytecodec.Field{Name: "number of partition entries", Offset: 80, Width: 4}
	hdrEntrySize  = bytecodec.Field{Name: "size of partition entry", Offset: 84, Width: 4}
	hdrEntriesCRC = bytecodec.Field{Name: "partition entry array CRC32", Offset: 88, Width: 4}
)

type header struct {
	raw bytecodec.Units

	entriesLBA uint64
	numEntries uint32
	entrySize  uint32
}

func readHeader(r io.ReadSeeker, options Options) (*header, error) {
	buf := make([]byte, options.SectorSize)

	if err := ioutil.ReadFullFrom(r, buf, int64(options.SectorSize)*primaryLBA); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("reading GPT header: %w", partitioning.ErrTruncatedField)
		}

		return nil, fmt.Errorf("reading GPT header: %w", err)
	}

	hdr := &header{
		raw: bytecodec.GroupBytes(buf),
	}

	entriesLBA, err := hdrEntriesLBA.Uint(hdr.raw)
	if err != nil {
		return nil, err
	}

	numEntries, err := hdrNumEntries.Uint(hdr.raw)
	if err != nil {
		return nil, err
	}

	entrySize, err := hdrEntrySize.Uint(hdr.raw)
	if err != nil {
		return nil, err
	}

	hdr.entriesLBA = entriesLBA
	hdr.numEntries = uint32(numEntries)
	hdr.entrySize = uint32(entrySize)

	options.Logger.Debug("decoded GPT header",
		zap.Uint64("entries_lba", hdr.entriesLBA),
		zap.Uint32("num_entries", hdr.numEntries),
		zap.Uint32("entry_size", hdr.entrySize),
	)

	if options.ValidateHeader {
		if err = hdr.validate(options); err != nil {
			return nil, err
		}
	}

	return hdr, nil
}

func (h *header) validate(options Options) error {
	signature, err := hdrSignature.Bytes(h.raw)
	if err != nil {
		return err
	}

	if !bytes.Equal(signature, []byte(MagicEFIPart)) {
		return fmt.Errorf("expected signature of %q, got %q: %w", MagicEFIPart, signature, partitioning.ErrInvalidHeader)
	}

	revision, err := hdrRevision.Uint(h.raw)
	if err != nil {
		return err
	}

	if revision != Revision {
		return fmt.Errorf("unsupported header revision %#08x: %w", revision, partitioning.ErrInvalidHeader)
	}

	size, err := hdrSize.Uint(h.raw)
	if err != nil {
		return err
	}

	if size < HeaderSize || size > uint64(options.SectorSize) {
		return fmt.Errorf("header size %d out of range: %w", size, partitioning.ErrInvalidHeader)
	}

	checksum, err := hdrCRC.Uint(h.raw)
	if err != nil {
		return err
	}

	if expected := h.calculateChecksum(int(size)); uint32(checksum) != expected {
		return fmt.Errorf("expected header checksum of %#08x, got %#08x: %w", expected, checksum, partitioning.ErrInvalidHeader)
	}

	myLBA, err := hdrMyLBA.Uint(h.raw)
	if err != nil {
		return err
	}

	if myLBA != primaryLBA {
		return fmt.Errorf("header claims to be at LBA %d: %w", myLBA, partitioning.ErrInvalidHeader)
	}

	if h.entrySize < EntrySize || h.entrySize > MaxEntrySize || h.entrySize&(h.entrySize-1) != 0 {
		return fmt.Errorf("unsupported partition entry size %d: %w", h.entrySize, partitioning.ErrInvalidHeader)
	}

	if h.numEntries == 0 || h.numEntries > options.MaxEntries {
		return fmt.Errorf("number of partition entries %d out of range: %w", h.numEntries, partitioning.ErrInvalidHeader)
	}

	return nil
}

// calculateChecksum returns the CRC32 of the header with the checksum field zeroed.
func (h *header) calculateChecksum(size int) uint32 {
	b := slices.Clone(h.raw[:size])

	clear(b[hdrCRC.Offset:hdrCRC.End()])

	return crc32.ChecksumIEEE(b)
}

func (h *header) entriesChecksum() (uint32, error) {
	v, err := hdrEntriesCRC.Uint(h.raw)

	return uint32(v), err
}
