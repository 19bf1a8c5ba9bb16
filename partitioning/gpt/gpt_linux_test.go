// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

//go:build linux

package gpt_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/siderolabs/go-cmd/pkg/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/siderolabs/go-parttable/partitioning/gpt"
	"github.com/siderolabs/go-parttable/partitioning/mbr"
)

const MiB = 1024 * 1024

func TestDecodeSgdisk(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sgdisk"); err != nil {
		t.Skip("sgdisk is not available")
	}

	rawImage := filepath.Join(t.TempDir(), "image.raw")

	f, err := os.Create(rawImage)
	require.NoError(t, err)

	require.NoError(t, f.Truncate(64*MiB))
	require.NoError(t, f.Close())

	out, err := cmd.Run("sgdisk",
		"--new=1:2048:4095", "--typecode=1:EF00", "--change-name=1:EFI",
		"--new=3:4096:24575", "--typecode=3:8300", "--change-name=3:root",
		rawImage,
	)
	require.NoError(t, err)

	t.Log("sgdisk output:\n", out)

	f, err = os.Open(rawImage)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, f.Close())
	})

	pmbr, err := mbr.Read(f)
	require.NoError(t, err)

	assert.Equal(t, []mbr.Partition{
		{Number: 0, Type: mbr.TypeGPTProtective, Start: 1, Size: 64*MiB/512 - 1, End: 64*MiB/512 - 1},
	}, pmbr)

	partitions, err := gpt.Decode(f, gpt.WithHeaderValidation(), gpt.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	assert.Equal(t, []gpt.Partition{
		{Number: 0, Type: typeEFI, Start: 2048, End: 4095, Name: "EFI"},
		{Number: 2, Type: typeLinux, Start: 4096, End: 24575, Name: "root"},
	}, partitions)
}
