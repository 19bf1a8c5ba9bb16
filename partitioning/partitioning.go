// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package partitioning implements common partitioning functions.
package partitioning

import "strconv"

// Partition is the common view over decoded MBR and GPT entries.
type Partition interface {
	// GetNumber returns the zero-based slot (MBR) or array index (GPT) of the entry.
	GetNumber() int
	// GetStart returns the first LBA of the partition (inclusive).
	GetStart() uint64
	// GetEnd returns the last LBA of the partition (inclusive).
	GetEnd() uint64
	// GetType returns the partition type as a string.
	GetType() string
}

// Length returns the partition's length in LBAs.
func Length(p Partition) uint64 {
	// start and end are both inclusive
	return p.GetEnd() - p.GetStart() + 1
}

// DevName returns the devname for the partition on a disk.
//
// Partition numbers on Linux are one-based, so the decoded zero-based number should be incremented.
func DevName(device string, part uint) string {
	result := device

	if len(result) > 0 && result[len(result)-1] >= '0' && result[len(result)-1] <= '9' {
		result += "p"
	}

	return result + strconv.FormatUint(uint64(part), 10)
}
