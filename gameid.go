// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package espm

// GameId identifies which game's plugin dialect to parse.
//
// Morrowind uses the older TES3 layout (no groups, no form IDs, 4-byte
// subrecord sizes); all other games share the TES4-family layout.
type GameId int

const (
	Morrowind GameId = iota
	Oblivion
	Skyrim
	SkyrimSE
	Fallout3
	FalloutNV
	Fallout4
)

// String returns the game's name.
func (g GameId) String() string {
	switch g {
	case Morrowind:
		return "Morrowind"
	case Oblivion:
		return "Oblivion"
	case Skyrim:
		return "Skyrim"
	case SkyrimSE:
		return "Skyrim Special Edition"
	case Fallout3:
		return "Fallout 3"
	case FalloutNV:
		return "Fallout: New Vegas"
	case Fallout4:
		return "Fallout 4"
	default:
		return "unknown game"
	}
}
