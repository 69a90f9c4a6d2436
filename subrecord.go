// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package espm

import (
	"encoding/binary"
	"fmt"
)

const (
	// Subrecord header sizes: a 4-byte type code followed by a
	// little-endian size (2 bytes in TES4, 4 bytes in TES3).
	tes4SubrecordHeaderLen = 6
	tes3SubrecordHeaderLen = 8

	// largeSizeSubrecordType is the TES4 extension for subrecords whose
	// payload exceeds the 2-byte size field. An XXXX subrecord carries a
	// 4-byte size that replaces the next subrecord's declared size.
	largeSizeSubrecordType = "XXXX"
)

// Subrecord is a typed field inside a record. The type code is always four
// bytes; the payload is opaque at this layer.
type Subrecord struct {
	Type string
	Data []byte
}

// parseSubrecord decodes one subrecord from the front of input and returns
// the remaining bytes.
//
// largeSize, when nonzero, overrides the subrecord's declared size; it comes
// from a preceding XXXX subrecord (TES4 dialect only). The returned override
// applies to the subrecord that follows this one, so callers must thread it
// through their decode loop.
func parseSubrecord(input []byte, gameId GameId, largeSize uint32) (Subrecord, []byte, uint32, error) {
	headerLen := tes4SubrecordHeaderLen
	if gameId == Morrowind {
		headerLen = tes3SubrecordHeaderLen
	}

	if len(input) < headerLen {
		return Subrecord{}, nil, 0, fmt.Errorf("%w: subrecord header needs %d bytes, have %d",
			ErrParsingIncomplete, headerLen, len(input))
	}

	subrecordType := string(input[:4])

	var dataSize uint32
	if gameId == Morrowind {
		dataSize = binary.LittleEndian.Uint32(input[4:8])
	} else {
		dataSize = uint32(binary.LittleEndian.Uint16(input[4:6]))
		if largeSize != 0 {
			dataSize = largeSize
		}
	}

	rest := input[headerLen:]
	if uint32(len(rest)) < dataSize {
		return Subrecord{}, nil, 0, fmt.Errorf("%w: subrecord %q needs %d data bytes, have %d",
			ErrParsingIncomplete, subrecordType, dataSize, len(rest))
	}

	// Copy the payload so parse results do not alias the input buffer.
	data := make([]byte, dataSize)
	copy(data, rest[:dataSize])
	rest = rest[dataSize:]

	var nextLargeSize uint32
	if gameId != Morrowind && subrecordType == largeSizeSubrecordType {
		if dataSize != 4 {
			return Subrecord{}, nil, 0, fmt.Errorf("%w: XXXX subrecord has %d-byte payload, want 4",
				ErrParsingError, dataSize)
		}
		nextLargeSize = binary.LittleEndian.Uint32(data)
	}

	return Subrecord{Type: subrecordType, Data: data}, rest, nextLargeSize, nil
}

// parseSubrecords decodes subrecords until data is exhausted, threading the
// XXXX large-size override between adjacent subrecords.
func parseSubrecords(data []byte, gameId GameId) ([]Subrecord, error) {
	var subrecords []Subrecord
	var largeSize uint32

	for len(data) > 0 {
		var subrecord Subrecord
		var err error
		subrecord, data, largeSize, err = parseSubrecord(data, gameId, largeSize)
		if err != nil {
			return nil, err
		}
		subrecords = append(subrecords, subrecord)
	}

	return subrecords, nil
}
