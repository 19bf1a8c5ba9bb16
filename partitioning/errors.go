// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package partitioning

import "errors"

// Common errors.
//
// Decoders wrap these with context, use errors.Is to match them.
var (
	// ErrTruncatedField is returned when fewer bytes are available than a field (or a whole
	// sector, slot or entry) requires.
	ErrTruncatedField = errors.New("truncated field")

	// ErrInvalidText is returned for odd-length or malformed UTF-16 name fields.
	ErrInvalidText = errors.New("invalid UTF-16 text")

	// ErrInvalidGUID is returned when a GUID field can't be decoded.
	ErrInvalidGUID = errors.New("invalid GUID")

	// ErrInvalidHeader is returned when GPT header validation is enabled and the header
	// or the partition entry array fails the checks.
	ErrInvalidHeader = errors.New("invalid GPT header")
)
