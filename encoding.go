// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package espm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeWindows1252 decodes a Windows-1252 byte string strictly: bytes with
// no Windows-1252 mapping (0x81, 0x8D, 0x8F, 0x90, 0x9D) are an error, not
// a replacement character.
//
// The charmap decoder substitutes U+FFFD for unmapped bytes instead of
// failing, and no Windows-1252 byte legitimately decodes to U+FFFD, so a
// replacement character in the output marks undecodable input.
func decodeWindows1252(data []byte) (string, error) {
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNonTextStringData, err)
	}

	s := string(decoded)
	if strings.ContainsRune(s, utf8.RuneError) {
		return "", fmt.Errorf("%w: byte sequence has no Windows-1252 mapping", ErrNonTextStringData)
	}

	return s, nil
}
