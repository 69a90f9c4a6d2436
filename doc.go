// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package espm provides pure Go support for reading Elder Scrolls and Fallout
plugin files (ESM/ESP/ESL).

Plugin files describe game-world modifications for Bethesda's TES4-family
games (Oblivion, Skyrim, Skyrim SE, Fallout 3, Fallout New Vegas, Fallout 4)
and for Morrowind's older TES3 dialect. This package parses a plugin's binary
content and exposes the metadata needed to reason about it without loading it
into a game: the declared masters, the header description and record count,
the master-file flag, and the fully-qualified form IDs of every record.

# Features

  - TES3 (Morrowind) and TES4-family record, group and subrecord decoding
  - Header-only parsing for fast plugin inspection
  - Form ID resolution against the plugin's master list
  - Zlib-compressed record support
  - Ghosted plugin (.ghost) handling
  - Optional memory-mapped file parsing

# Basic Usage

Reading a plugin's header:

	plugin := espm.NewPlugin(espm.SkyrimSE, "Data/Unofficial Skyrim Patch.esp")
	if err := plugin.ParseFile(true); err != nil {
		log.Fatal(err)
	}

	masters, err := plugin.Masters()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(masters, plugin.IsMasterFile())

Enumerating form IDs requires a full parse:

	if err := plugin.ParseFile(false); err != nil {
		log.Fatal(err)
	}
	for _, id := range plugin.FormIds() {
		fmt.Printf("%s: %06X\n", id.PluginName, id.ObjectIndex)
	}

# Form ID Identity

A raw 32-bit form ID is only meaningful relative to its plugin's master list:
the high byte indexes the masters (with the plugin itself one past the end).
[FormId] replaces that index with the owning plugin's filename, so form IDs
from independently parsed plugins compare correctly. Comparison is
case-insensitive on the filename; use [FormId.Equal].

# Limitations

This package focuses on metadata extraction:

  - No writing or re-serialization of plugins
  - Compressed record payloads are only inflated when their subrecords are
    needed (the plugin header); bulk form ID enumeration never inflates
  - No semantic validation of record contents
*/
package espm
