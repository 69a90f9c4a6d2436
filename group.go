// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package espm

import (
	"encoding/binary"
	"fmt"
)

const (
	// Group header: "GRUP", total size u32 (header included), label[4],
	// group type u32, stamp u32, version/unknown u32.
	groupHeaderLen = 24

	groupType = "GRUP"
)

// parseGroup decodes one TES4-family group from the front of input and
// returns the form IDs of every record in it, in document order, including
// records inside nested groups. The remaining input follows the group's
// declared extent.
func parseGroup(input []byte, gameId GameId) ([]uint32, []byte, error) {
	// The tag decides whether this is a group at all, so it is checked
	// before the full header length: a short non-group trailer is a
	// structural violation, not truncated input.
	if len(input) < 4 {
		return nil, nil, fmt.Errorf("%w: group tag needs 4 bytes, have %d",
			ErrParsingIncomplete, len(input))
	}

	if string(input[:4]) != groupType {
		return nil, nil, fmt.Errorf("%w: expected group tag %q, found %q",
			ErrParsingError, groupType, input[:4])
	}

	if len(input) < groupHeaderLen {
		return nil, nil, fmt.Errorf("%w: group header needs %d bytes, have %d",
			ErrParsingIncomplete, groupHeaderLen, len(input))
	}

	totalSize := binary.LittleEndian.Uint32(input[4:8])
	if totalSize < groupHeaderLen {
		return nil, nil, fmt.Errorf("%w: group total size %d is smaller than its %d-byte header",
			ErrParsingError, totalSize, groupHeaderLen)
	}

	bodySize := totalSize - groupHeaderLen
	rest := input[groupHeaderLen:]
	if uint32(len(rest)) < bodySize {
		return nil, nil, fmt.Errorf("%w: group body needs %d bytes, have %d",
			ErrParsingIncomplete, bodySize, len(rest))
	}

	formIds, err := parseGroupBody(rest[:bodySize], gameId)
	if err != nil {
		// A body that cannot be walked to its declared extent means the
		// group's size field is inconsistent with its contents.
		return nil, nil, fmt.Errorf("%w: group body inconsistent with declared size %d: %v",
			ErrParsingError, totalSize, err)
	}

	return formIds, rest[bodySize:], nil
}

// parseGroupBody walks a group body, a free mix of records and nested
// groups, and accumulates every record's form ID.
func parseGroupBody(body []byte, gameId GameId) ([]uint32, error) {
	var formIds []uint32

	for len(body) > 0 {
		if len(body) >= 4 && string(body[:4]) == groupType {
			nested, rest, err := parseGroup(body, gameId)
			if err != nil {
				return nil, err
			}
			formIds = append(formIds, nested...)
			body = rest
			continue
		}

		formId, rest, err := parseRecordFormId(body, gameId)
		if err != nil {
			return nil, err
		}
		formIds = append(formIds, formId)
		body = rest
	}

	return formIds, nil
}
