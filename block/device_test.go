// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package block_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-parttable/block"
)

const (
	MiB = 1024 * 1024
	GiB = 1024 * MiB
)

func createImage(t *testing.T, size int64) string {
	t.Helper()

	rawImage := filepath.Join(t.TempDir(), "image.raw")

	f, err := os.Create(rawImage)
	require.NoError(t, err)

	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())

	return rawImage
}

func TestProbeImage(t *testing.T) {
	t.Parallel()

	f, err := block.Open(createImage(t, 3*MiB+100))
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, f.Close())
	})

	geometry, err := block.Probe(f)
	require.NoError(t, err)

	assert.Equal(t, block.Geometry{Size: 3*MiB + 100, SectorSize: block.DefaultSectorSize}, geometry)
	assert.EqualValues(t, 3*MiB/512, geometry.Sectors())
}

func TestOpenMissing(t *testing.T) {
	t.Parallel()

	_, err := block.Open(filepath.Join(t.TempDir(), "missing.raw"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSectors(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		name     string
		geometry block.Geometry
		expected uint64
	}{
		{
			name:     "512",
			geometry: block.Geometry{Size: 2 * GiB, SectorSize: 512},
			expected: 4 * MiB,
		},
		{
			name:     "4k partial",
			geometry: block.Geometry{Size: 1*MiB + 4095, SectorSize: 4096},
			expected: 256,
		},
		{
			name:     "no sector size",
			geometry: block.Geometry{Size: MiB},
		},
	} {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, test.expected, test.geometry.Sectors())
		})
	}
}
