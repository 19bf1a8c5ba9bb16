// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package mbr_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/siderolabs/go-parttable/internal/testimage"
	"github.com/siderolabs/go-parttable/partitioning"
	"github.com/siderolabs/go-parttable/partitioning/mbr"
)

func TestDecodeEmpty(t *testing.T) {
	t.Parallel()

	partitions, err := mbr.Decode(testimage.BootSector())
	require.NoError(t, err)

	assert.Empty(t, partitions)
}

func TestDecodeSlotGap(t *testing.T) {
	t.Parallel()

	sector := testimage.BootSector()

	b := sector[478:494]
	b[4] = 0x07
	copy(b[8:12], []byte{0x00, 0x08, 0x00, 0x00})
	copy(b[12:16], []byte{0x00, 0x10, 0x00, 0x00})

	partitions, err := mbr.Decode(sector, mbr.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	assert.Equal(t, []mbr.Partition{
		{
			Number: 2,
			Type:   0x07,
			Start:  2048,
			Size:   4096,
			End:    6143,
		},
	}, partitions)

	assert.Equal(t, "0x7", partitions[0].GetType())
}

func TestDecode(t *testing.T) {
	t.Parallel()

	for _, test := range []struct { //nolint:govet
		name  string
		slots []testimage.Slot

		expected []mbr.Partition
	}{
		{
			name: "all slots",
			slots: []testimage.Slot{
				{Index: 0, Type: 0x83, Start: 2048, Sectors: 2048},
				{Index: 1, Type: 0x82, Start: 4096, Sectors: 8192},
				{Index: 2, Type: 0x0c, Start: 12288, Sectors: 1},
				{Index: 3, Type: 0x8e, Start: 12289, Sectors: 0xffffffff},
			},
			expected: []mbr.Partition{
				{Number: 0, Type: 0x83, Start: 2048, Size: 2048, End: 4095},
				{Number: 1, Type: 0x82, Start: 4096, Size: 8192, End: 12287},
				{Number: 2, Type: 0x0c, Start: 12288, Size: 1, End: 12288},
				{Number: 3, Type: 0x8e, Start: 12289, Size: 0xffffffff, End: 12289 + 0xffffffff - 1},
			},
		},
		{
			name: "first and last",
			slots: []testimage.Slot{
				{Index: 0, Type: 0xee, Start: 1, Sectors: 4194303},
				{Index: 3, Type: 0x05, Start: 63, Sectors: 16065},
			},
			expected: []mbr.Partition{
				{Number: 0, Type: 0xee, Start: 1, Size: 4194303, End: 4194303},
				{Number: 3, Type: 0x05, Start: 63, Size: 16065, End: 16127},
			},
		},
		{
			name: "type set, extent zeroed",
			slots: []testimage.Slot{
				{Index: 1, Type: 0x83, Start: 100, Sectors: 0},
			},
			expected: []mbr.Partition{
				{Number: 1, Type: 0x83, Start: 100, Size: 0, End: 99},
			},
		},
	} {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			partitions, err := mbr.Decode(testimage.BootSector(test.slots...))
			require.NoError(t, err)

			assert.Equal(t, test.expected, partitions)
		})
	}
}

func TestDecodeIgnoresTrailingData(t *testing.T) {
	t.Parallel()

	sector := append(testimage.BootSector(testimage.Slot{Index: 0, Type: 0x83, Start: 2048, Sectors: 2048}), bytes.Repeat([]byte{0xff}, 512)...)

	partitions, err := mbr.Decode(sector)
	require.NoError(t, err)
	require.Len(t, partitions, 1)

	assert.EqualValues(t, 4095, partitions[0].GetEnd())
	assert.EqualValues(t, 2048, partitioning.Length(partitions[0]))
}

func TestDecodeTruncated(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, 1, 445, 511} {
		_, err := mbr.Decode(make([]byte, size))
		assert.ErrorIs(t, err, partitioning.ErrTruncatedField)
	}
}

func TestRead(t *testing.T) {
	t.Parallel()

	image := append(testimage.BootSector(testimage.Slot{Index: 1, Type: 0x83, Start: 2048, Sectors: 4096}), make([]byte, 4096)...)

	r := bytes.NewReader(image)

	// the source position doesn't matter
	_, err := r.Seek(1024, 0)
	require.NoError(t, err)

	partitions, err := mbr.Read(r)
	require.NoError(t, err)

	assert.Equal(t, []mbr.Partition{
		{Number: 1, Type: 0x83, Start: 2048, Size: 4096, End: 6143},
	}, partitions)

	_, err = mbr.Read(bytes.NewReader(image[:300]))
	assert.ErrorIs(t, err, partitioning.ErrTruncatedField)
}

func TestIsProtective(t *testing.T) {
	t.Parallel()

	partitions, err := mbr.Decode(testimage.BootSector(testimage.Slot{Index: 0, Type: mbr.TypeGPTProtective, Start: 1, Sectors: 0xffffffff}))
	require.NoError(t, err)

	assert.True(t, mbr.IsProtective(partitions))

	partitions, err = mbr.Decode(testimage.BootSector(testimage.Slot{Index: 0, Type: 0x83, Start: 2048, Sectors: 1}))
	require.NoError(t, err)

	assert.False(t, mbr.IsProtective(partitions))
	assert.False(t, mbr.IsProtective(nil))
}
