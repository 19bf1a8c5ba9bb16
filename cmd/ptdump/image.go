// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/siderolabs/go-parttable/block"
)

// image is a seekable view of a disk image or a block device.
type image struct {
	io.ReadSeeker

	f *os.File

	path        string
	sectorSize  uint
	blockDevice bool
}

func (img *image) Close() error {
	return img.f.Close()
}

// devicePath returns the path of the block device, or empty string for images.
func (img *image) devicePath() string {
	if img.blockDevice {
		return img.path
	}

	return ""
}

// defaultMaxDecompressedSize covers the partition tables of any usual layout.
const defaultMaxDecompressedSize = 64 << 20

// openImage opens the image, compressed images are decompressed into memory up to maxDecompressed bytes.
func openImage(path string, maxDecompressed int64, logger *zap.Logger) (*image, error) {
	f, err := block.Open(path)
	if err != nil {
		return nil, err
	}

	img := &image{
		f:          f,
		path:       path,
		sectorSize: block.DefaultSectorSize,
	}

	decompress, compressed := decompressors[strings.ToLower(filepath.Ext(path))]
	if compressed {
		logger.Debug("decompressing image", zap.String("path", path))

		data, err := readHead(f, decompress, maxDecompressed)
		if err != nil {
			f.Close() //nolint:errcheck

			return nil, fmt.Errorf("failed to decompress %q: %w", path, err)
		}

		if int64(len(data)) == maxDecompressed {
			logger.Debug("decompressed image is truncated", zap.String("path", path), zap.Int64("max_size", maxDecompressed))
		}

		img.ReadSeeker = bytes.NewReader(data)

		return img, nil
	}

	img.ReadSeeker = f

	geometry, err := block.Probe(f)
	if err != nil {
		f.Close() //nolint:errcheck

		return nil, err
	}

	img.blockDevice = geometry.BlockDevice
	img.sectorSize = geometry.SectorSize

	logger.Debug("opened image",
		zap.String("path", path),
		zap.Bool("block_device", geometry.BlockDevice),
		zap.Uint64("size", geometry.Size),
		zap.Uint("sector_size", geometry.SectorSize),
	)

	return img, nil
}

func readHead(r io.Reader, decompress func(io.Reader) (io.ReadCloser, error), limit int64) ([]byte, error) {
	zr, err := decompress(r)
	if err != nil {
		return nil, err
	}

	defer zr.Close() //nolint:errcheck

	return io.ReadAll(io.LimitReader(zr, limit))
}

var decompressors = map[string]func(io.Reader) (io.ReadCloser, error){
	".zst": func(r io.Reader) (io.ReadCloser, error) {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}

		return zr.IOReadCloser(), nil
	},
	".gz": func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	},
	".bz2": func(r io.Reader) (io.ReadCloser, error) {
		return bzip2.NewReader(r, nil)
	},
}
