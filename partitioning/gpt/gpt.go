// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package gpt implements read support for GPT partition tables.
package gpt

import (
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"math"
	"math/bits"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siderolabs/go-parttable/internal/bytecodec"
	"github.com/siderolabs/go-parttable/internal/gptutil"
	"github.com/siderolabs/go-parttable/internal/ioutil"
	"github.com/siderolabs/go-parttable/internal/textcodec"
	"github.com/siderolabs/go-parttable/partitioning"
)

const (
	// DefaultSectorSize is the default logical sector size in bytes.
	DefaultSectorSize = 512

	// EntrySize is the minimum (and the usual) size of a partition entry.
	EntrySize = 128

	// MaxEntrySize is the largest partition entry size accepted by header validation.
	MaxEntrySize = 4096

	// DefaultMaxEntries is the default limit on the number of partition entries for header validation.
	DefaultMaxEntries = 1024
)

// entry layout.
var (
	entryTypeGUID = bytecodec.Field{Name: "partition type GUID", Offset: 0, Width: gptutil.GUIDSize}
	entryStartLBA = bytecodec.Field{Name: "starting LBA", Offset: 32, Width: 8}
	entryEndLBA   = bytecodec.Field{Name: "ending LBA", Offset: 40, Width: 8}
	entryName     = bytecodec.Field{Name: "partition name", Offset: 56, Width: 72}
)

// Partition is a single partition entry in GPT.
type Partition struct {
	// Number is the index of the entry in the partition entry array.
	Number int

	Type uuid.UUID

	Start uint64
	End   uint64

	Name string
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
	return strings.ToUpper(p.Type.String())
}

var _ partitioning.Partition = Partition{}

// Decode reads the primary GPT header and the partition entry array it points to.
//
// Entries which are all zeroes are skipped, the remaining entries keep their index in the array.
// Any error aborts decoding, no partial results are returned.
func Decode(r io.ReadSeeker, opts ...Option) ([]Partition, error) {
	options := applyOptions(opts...)

	if options.SectorSize == 0 {
		return nil, errors.New("sector size should be positive")
	}

	hdr, err := readHeader(r, options)
	if err != nil {
		return nil, err
	}

	// every entry must hold all the decoded fields, empty or not
	if hdr.entrySize < uint32(entryName.End()) {
		return nil, fmt.Errorf("partition entry size %d: %w", hdr.entrySize, partitioning.ErrTruncatedField)
	}

	hi, offset := bits.Mul64(hdr.entriesLBA, uint64(options.SectorSize))
	if hi != 0 || offset > math.MaxInt64 {
		return nil, fmt.Errorf("partition entry array at LBA %d is out of range: %w", hdr.entriesLBA, partitioning.ErrTruncatedField)
	}

	if _, err = r.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to partition entry array: %w", err)
	}

	var checksummer hash.Hash32

	if options.ValidateHeader {
		checksummer = crc32.NewIEEE()
	}

	var (
		partitions []Partition
		buf        = make([]byte, hdr.entrySize)
	)

	for idx := 0; idx < int(hdr.numEntries); idx++ {
		if err := ioutil.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("reading partition entry %d: %w", idx, partitioning.ErrTruncatedField)
			}

			return nil, fmt.Errorf("reading partition entry %d: %w", idx, err)
		}

		if checksummer != nil {
			checksummer.Write(buf) //nolint:errcheck
		}

		entry := bytecodec.GroupBytes(buf)

		if entry.IsZero() {
			options.Logger.Debug("skipping empty partition entry", zap.Int("index", idx))

			continue
		}

		part, err := decodeEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("partition entry %d: %w", idx, err)
		}

		part.Number = idx

		partitions = append(partitions, part)
	}

	if checksummer != nil {
		var expected uint32

		if expected, err = hdr.entriesChecksum(); err != nil {
			return nil, err
		}

		if checksummer.Sum32() != expected {
			return nil, fmt.Errorf("expected partition checksum of %#08x, got %#08x: %w", expected, checksummer.Sum32(), partitioning.ErrInvalidHeader)
		}
	}

	return partitions, nil
}

func decodeEntry(entry bytecodec.Units) (Partition, error) {
	var part Partition

	guid, err := entryTypeGUID.Bytes(entry)
	if err != nil {
		return part, err
	}

	if part.Type, err = gptutil.DecodeGUID(guid); err != nil {
		return part, err
	}

	if part.Start, err = entryStartLBA.Uint(entry); err != nil {
		return part, err
	}

	if part.End, err = entryEndLBA.Uint(entry); err != nil {
		return part, err
	}

	name, err := entryName.Bytes(entry)
	if err != nil {
		return part, err
	}

	if part.Name, err = textcodec.DecodeFixedUTF16(name); err != nil {
		return part, err
	}

	return part, nil
}
