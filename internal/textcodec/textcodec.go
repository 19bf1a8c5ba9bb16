// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package textcodec decodes null-padded fixed-size UTF-16LE text fields.
package textcodec

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	"golang.org/x/text/encoding/unicode"

	"github.com/siderolabs/go-parttable/partitioning"
)

const (
	surrLow = 0xdc00
	surrEnd = 0xe000
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeFixedUTF16 decodes the span as UTF-16LE and returns the text up to the first NUL code point.
//
// The whole span is validated, including the padding after the first NUL.
func DecodeFixedUTF16(span []byte) (string, error) {
	if len(span)%2 != 0 {
		return "", fmt.Errorf("odd byte length %d: %w", len(span), partitioning.ErrInvalidText)
	}

	end := -1

	for i := 0; i < len(span); i += 2 {
		u := binary.LittleEndian.Uint16(span[i:])

		switch {
		case u == 0:
			if end < 0 {
				end = i
			}
		case !utf16.IsSurrogate(rune(u)):
		case u >= surrLow:
			return "", fmt.Errorf("unpaired low surrogate %#04x at offset %d: %w", u, i, partitioning.ErrInvalidText)
		default:
			if i+4 > len(span) {
				return "", fmt.Errorf("unpaired high surrogate %#04x at offset %d: %w", u, i, partitioning.ErrInvalidText)
			}

			if next := binary.LittleEndian.Uint16(span[i+2:]); next < surrLow || next >= surrEnd {
				return "", fmt.Errorf("unpaired high surrogate %#04x at offset %d: %w", u, i, partitioning.ErrInvalidText)
			}

			i += 2
		}
	}

	if end < 0 {
		end = len(span)
	}

	decoded, err := utf16le.NewDecoder().Bytes(span[:end])
	if err != nil {
		return "", fmt.Errorf("%w: %w", partitioning.ErrInvalidText, err)
	}

	return string(decoded), nil
}
