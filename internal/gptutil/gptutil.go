// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package gptutil implements helper functions for GPT tables.
package gptutil

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"github.com/siderolabs/go-parttable/partitioning"
)

// GUIDSize is the size of an on-disk GUID.
const GUIDSize = 16

// GUIDToUUID converts a GPT GUID to a UUID.
//
// The first three fields are stored little-endian on disk, the last two big-endian.
func GUIDToUUID(g []byte) []byte {
	u := make([]byte, GUIDSize)

	// time_low
	binary.BigEndian.PutUint32(u[0:4], binary.LittleEndian.Uint32(g[0:4]))
	// time_mid
	binary.BigEndian.PutUint16(u[4:6], binary.LittleEndian.Uint16(g[4:6]))
	// time_hi_and_version
	binary.BigEndian.PutUint16(u[6:8], binary.LittleEndian.Uint16(g[6:8]))
	// clock_seq, node
	copy(u[8:16], g[8:16])

	return u
}

// UUIDToGUID converts a UUID to a GPT GUID.
func UUIDToGUID(u []byte) []byte {
	g := make([]byte, GUIDSize)

	binary.LittleEndian.PutUint32(g[0:4], binary.BigEndian.Uint32(u[0:4]))
	binary.LittleEndian.PutUint16(g[4:6], binary.BigEndian.Uint16(u[4:6]))
	binary.LittleEndian.PutUint16(g[6:8], binary.BigEndian.Uint16(u[6:8]))
	copy(g[8:16], u[8:16])

	return g
}

// DecodeGUID decodes an on-disk GPT GUID.
func DecodeGUID(g []byte) (uuid.UUID, error) {
	if len(g) != GUIDSize {
		return uuid.Nil, fmt.Errorf("GUID is %d bytes, expected %d: %w", len(g), GUIDSize, partitioning.ErrInvalidGUID)
	}

	u, err := uuid.FromBytes(GUIDToUUID(g))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", partitioning.ErrInvalidGUID, err)
	}

	return u, nil
}
