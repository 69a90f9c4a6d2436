// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package espm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

const (
	// Record header sizes. TES4-family: type[4], data size u32, flags u32,
	// form ID u32, version control u32. TES3: type[4], data size u32,
	// header flags u32, record flags u32 (no form ID).
	tes4RecordHeaderLen = 20
	tes3RecordHeaderLen = 16

	// Record header flag bits.
	recordMasterFlag     = 0x00000001 // plugin is a master file (header record only)
	recordCompressedFlag = 0x00040000 // record data is zlib-compressed (TES4 only)
)

// Record is a typed block of subrecords. TES3 records carry no form ID;
// FormId is zero for them.
type Record struct {
	Type       string
	Flags      uint32
	FormId     uint32
	Subrecords []Subrecord
}

// parseRecordHeader decodes the fixed record header and returns the record
// (without subrecords), its declared data size, and the bytes after the
// header.
func parseRecordHeader(input []byte, gameId GameId) (Record, uint32, []byte, error) {
	headerLen := tes4RecordHeaderLen
	if gameId == Morrowind {
		headerLen = tes3RecordHeaderLen
	}

	if len(input) < headerLen {
		return Record{}, 0, nil, fmt.Errorf("%w: record header needs %d bytes, have %d",
			ErrParsingIncomplete, headerLen, len(input))
	}

	record := Record{Type: string(input[:4])}
	dataSize := binary.LittleEndian.Uint32(input[4:8])

	if gameId == Morrowind {
		// Bytes 8-12 are an unused header field; the flags word follows.
		record.Flags = binary.LittleEndian.Uint32(input[12:16])
	} else {
		record.Flags = binary.LittleEndian.Uint32(input[8:12])
		record.FormId = binary.LittleEndian.Uint32(input[12:16])
		// Bytes 16-20 are version control info, opaque here.
	}

	return record, dataSize, input[headerLen:], nil
}

// parseRecord decodes a record and all of its subrecords from the front of
// input and returns the remaining bytes. Compressed TES4 record data is
// inflated before the subrecords are read.
func parseRecord(input []byte, gameId GameId) (Record, []byte, error) {
	record, dataSize, rest, err := parseRecordHeader(input, gameId)
	if err != nil {
		return Record{}, nil, err
	}

	if uint32(len(rest)) < dataSize {
		return Record{}, nil, fmt.Errorf("%w: record %q needs %d data bytes, have %d",
			ErrParsingIncomplete, record.Type, dataSize, len(rest))
	}
	data := rest[:dataSize]
	rest = rest[dataSize:]

	if gameId != Morrowind && record.Flags&recordCompressedFlag != 0 {
		data, err = inflateRecordData(data)
		if err != nil {
			return Record{}, nil, fmt.Errorf("record %q: %w", record.Type, err)
		}
	}

	record.Subrecords, err = parseSubrecords(data, gameId)
	if err != nil {
		return Record{}, nil, fmt.Errorf("record %q: %w", record.Type, err)
	}

	return record, rest, nil
}

// parseRecordFormId decodes only a record's form ID, skipping its data as
// opaque bytes (compressed or not), and returns the remaining input. TES3
// records have no form ID, so zero is returned for them.
func parseRecordFormId(input []byte, gameId GameId) (uint32, []byte, error) {
	record, dataSize, rest, err := parseRecordHeader(input, gameId)
	if err != nil {
		return 0, nil, err
	}

	if uint32(len(rest)) < dataSize {
		return 0, nil, fmt.Errorf("%w: record %q needs %d data bytes, have %d",
			ErrParsingIncomplete, record.Type, dataSize, len(rest))
	}

	return record.FormId, rest[dataSize:], nil
}

// inflateRecordData decompresses a compressed record's data. The first four
// bytes hold the uncompressed size; a zlib stream follows.
func inflateRecordData(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: compressed record data needs a 4-byte size prefix, have %d bytes",
			ErrParsingIncomplete, len(data))
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[:4])

	r, err := zlib.NewReader(bytes.NewReader(data[4:]))
	if err != nil {
		return nil, fmt.Errorf("%w: open zlib stream: %v", ErrParsingError, err)
	}
	defer r.Close()

	result := make([]byte, uncompressedSize)
	if _, err := io.ReadFull(r, result); err != nil {
		return nil, fmt.Errorf("%w: zlib inflate: %v", ErrParsingError, err)
	}

	// The stream must inflate to exactly the declared size.
	var trailer [1]byte
	if n, err := r.Read(trailer[:]); n != 0 || err != io.EOF {
		return nil, fmt.Errorf("%w: zlib stream inflates past the declared size %d",
			ErrParsingError, uncompressedSize)
	}

	return result, nil
}
