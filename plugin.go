// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package espm

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/mmap"
)

// Header subrecord types.
const (
	masterSubrecordType      = "MAST" // one per declared master, in order
	headerSubrecordType      = "HEDR" // version, record count; description too in TES3
	descriptionSubrecordType = "SNAM" // description (TES4 family)
)

// Description and record-count field offsets inside the header subrecords.
const (
	tes3DescriptionOffset = 40
	tes4DescriptionOffset = 0
	tes3RecordCountOffset = 296
	tes4RecordCountOffset = 4
)

// pluginData is the owned result of a successful parse.
type pluginData struct {
	headerRecord Record
	formIds      []FormId
}

// Plugin reads a single ESM/ESP/ESL plugin file. Construct it with
// [NewPlugin], parse it once with [Plugin.Parse], [Plugin.ParseFile] or
// [Plugin.ParseMmappedFile], then use the accessors. A failed parse leaves
// any previously parsed data untouched.
//
// A Plugin is not safe for concurrent use, but independent Plugins may be
// parsed in parallel.
type Plugin struct {
	gameId GameId
	path   string
	data   pluginData
}

// NewPlugin creates an unparsed plugin for the given game dialect and file
// path.
func NewPlugin(gameId GameId, path string) *Plugin {
	return &Plugin{
		gameId: gameId,
		path:   path,
	}
}

// Parse parses plugin content. With loadHeaderOnly the header record alone
// is decoded and the form ID list is left empty; otherwise every record and
// group in the body is walked and its form IDs are resolved against the
// plugin's masters.
//
// The input is read-only and not retained: parse results own their bytes.
func (p *Plugin) Parse(input []byte, loadHeaderOnly bool) error {
	filename, err := p.Filename()
	if err != nil {
		return err
	}

	data, err := parsePlugin(input, p.gameId, filename, loadHeaderOnly)
	if err != nil {
		return err
	}

	p.data = data
	return nil
}

// ParseFile reads the plugin's file and parses it.
func (p *Plugin) ParseFile(loadHeaderOnly bool) error {
	content, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("read plugin file: %w", err)
	}

	return p.Parse(content, loadHeaderOnly)
}

// ParseMmappedFile parses the plugin's file through a read-only memory map.
// The mapping is dropped before returning; parse results own their bytes,
// so nothing outlives it.
func (p *Plugin) ParseMmappedFile(loadHeaderOnly bool) error {
	reader, err := mmap.Open(p.path)
	if err != nil {
		return fmt.Errorf("mmap plugin file: %w", err)
	}
	defer reader.Close()

	content := make([]byte, reader.Len())
	if len(content) > 0 {
		if _, err := reader.ReadAt(content, 0); err != nil {
			return fmt.Errorf("read mmapped plugin file: %w", err)
		}
	}

	return p.Parse(content, loadHeaderOnly)
}

// IsValid reports whether the file at path parses as a plugin for the given
// game. All error kinds collapse to false.
func IsValid(gameId GameId, path string, loadHeaderOnly bool) bool {
	return NewPlugin(gameId, path).ParseFile(loadHeaderOnly) == nil
}

// GameId returns the game dialect the plugin is parsed as.
func (p *Plugin) GameId() GameId {
	return p.gameId
}

// Path returns the plugin's file path as given to NewPlugin.
func (p *Plugin) Path() string {
	return p.path
}

// Filename returns the final component of the plugin's path. It fails with
// ErrNoFilename when the path has no final component, and with
// ErrNonTextPath when the component is not valid text.
func (p *Plugin) Filename() (string, error) {
	name := filepath.Base(p.path)
	if name == "." || name == "" || strings.Trim(name, `/\`) == "" {
		return "", ErrNoFilename
	}
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("%w: %q", ErrNonTextPath, name)
	}

	return name, nil
}

// HeaderRecord returns the plugin's decoded header record (TES3 or TES4).
// It is the zero Record before a successful parse.
func (p *Plugin) HeaderRecord() Record {
	return p.data.headerRecord
}

// FormIds returns the fully-qualified form IDs of every record in the
// plugin, in document order. It is empty after a header-only parse.
func (p *Plugin) FormIds() []FormId {
	return p.data.formIds
}

// Masters returns the plugin's declared masters in declaration order.
func (p *Plugin) Masters() ([]string, error) {
	return masters(&p.data.headerRecord)
}

// Description returns the plugin description from the header record. The
// second return value is false when the header carries no description
// subrecord, which is distinct from an empty description.
func (p *Plugin) Description() (string, bool, error) {
	subrecordType := descriptionSubrecordType
	offset := tes4DescriptionOffset
	if p.gameId == Morrowind {
		subrecordType = headerSubrecordType
		offset = tes3DescriptionOffset
	}

	for _, subrecord := range p.data.headerRecord.Subrecords {
		if subrecord.Type != subrecordType {
			continue
		}

		if len(subrecord.Data) <= offset {
			return "", false, fmt.Errorf("%w: %s subrecord has %d bytes, description starts at %d",
				ErrParsingError, subrecordType, len(subrecord.Data), offset)
		}

		// The description runs from the offset to the trailing NUL.
		description, err := decodeWindows1252(subrecord.Data[offset : len(subrecord.Data)-1])
		if err != nil {
			return "", false, err
		}
		return description, true, nil
	}

	return "", false, nil
}

// RecordAndGroupCount returns the record-and-group count declared in the
// header's HEDR subrecord. The second return value is false when the header
// has no HEDR subrecord or it is too short to hold the count.
func (p *Plugin) RecordAndGroupCount() (uint32, bool) {
	offset := tes4RecordCountOffset
	if p.gameId == Morrowind {
		offset = tes3RecordCountOffset
	}

	for _, subrecord := range p.data.headerRecord.Subrecords {
		if subrecord.Type != headerSubrecordType {
			continue
		}
		if len(subrecord.Data) < offset+4 {
			return 0, false
		}
		return binary.LittleEndian.Uint32(subrecord.Data[offset : offset+4]), true
	}

	return 0, false
}

// IsMasterFile reports whether the plugin is a master file. TES4-family
// plugins encode this in the header record's flags. Morrowind does not, so
// it is derived from the path: a .esm extension, or a .ghost extension whose
// stem ends in .esm. Extension matching is case-sensitive.
func (p *Plugin) IsMasterFile() bool {
	if p.gameId != Morrowind {
		return p.data.headerRecord.Flags&recordMasterFlag != 0
	}

	switch filepath.Ext(p.path) {
	case ".esm":
		return true
	case ".ghost":
		stem := strings.TrimSuffix(filepath.Base(p.path), ".ghost")
		return strings.HasSuffix(stem, ".esm")
	default:
		return false
	}
}

// masters collects the MAST subrecords of a header record: each payload is
// a NUL-terminated Windows-1252 master filename.
func masters(headerRecord *Record) ([]string, error) {
	var names []string
	for _, subrecord := range headerRecord.Subrecords {
		if subrecord.Type != masterSubrecordType {
			continue
		}

		if len(subrecord.Data) == 0 {
			return nil, fmt.Errorf("%w: %s subrecord has no data",
				ErrParsingError, masterSubrecordType)
		}

		name, err := decodeWindows1252(subrecord.Data[:len(subrecord.Data)-1])
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, nil
}

// parsePlugin decodes the header record and, unless loadHeaderOnly is set,
// walks the plugin body and resolves every raw form ID. The whole input
// must be consumed.
func parsePlugin(input []byte, gameId GameId, filename string, loadHeaderOnly bool) (pluginData, error) {
	headerRecord, rest, err := parseRecord(input, gameId)
	if err != nil {
		return pluginData{}, fmt.Errorf("parse header record: %w", err)
	}

	data := pluginData{headerRecord: headerRecord}
	if loadHeaderOnly {
		return data, nil
	}

	masterNames, err := masters(&headerRecord)
	if err != nil {
		return pluginData{}, err
	}

	rawFormIds, err := parsePluginBody(rest, gameId)
	if err != nil {
		return pluginData{}, err
	}

	data.formIds = make([]FormId, len(rawFormIds))
	for i, raw := range rawFormIds {
		data.formIds[i] = NewFormId(filename, masterNames, raw)
	}

	return data, nil
}

// parsePluginBody walks the bytes after the header record to exhaustion:
// bare records in the TES3 dialect, top-level groups otherwise.
func parsePluginBody(body []byte, gameId GameId) ([]uint32, error) {
	var formIds []uint32

	for len(body) > 0 {
		if gameId == Morrowind {
			formId, rest, err := parseRecordFormId(body, gameId)
			if err != nil {
				return nil, err
			}
			formIds = append(formIds, formId)
			body = rest
			continue
		}

		groupFormIds, rest, err := parseGroup(body, gameId)
		if err != nil {
			return nil, err
		}
		formIds = append(formIds, groupFormIds...)
		body = rest
	}

	return formIds, nil
}
