// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package espm

import (
	"bytes"
	"encoding/binary"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/text/encoding/charmap"
)

// Fixture builders: tests synthesize plugin bytes structure by structure and
// parse them back.

func tes4Subrecord(subrecordType string, data []byte) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString(subrecordType)
	binary.Write(buf, binary.LittleEndian, uint16(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func tes3Subrecord(subrecordType string, data []byte) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString(subrecordType)
	binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func tes4Record(recordType string, flags, formId uint32, subrecords ...[]byte) []byte {
	data := bytes.Join(subrecords, nil)
	buf := &bytes.Buffer{}
	buf.WriteString(recordType)
	binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	binary.Write(buf, binary.LittleEndian, flags)
	binary.Write(buf, binary.LittleEndian, formId)
	binary.Write(buf, binary.LittleEndian, uint32(0)) // version control
	buf.Write(data)
	return buf.Bytes()
}

// tes4RecordRawData builds a record around already-assembled data bytes,
// for payloads that are not a plain subrecord sequence (compressed records,
// skipped-over opaque data).
func tes4RecordRawData(recordType string, flags, formId uint32, data []byte) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString(recordType)
	binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	binary.Write(buf, binary.LittleEndian, flags)
	binary.Write(buf, binary.LittleEndian, formId)
	binary.Write(buf, binary.LittleEndian, uint32(0))
	buf.Write(data)
	return buf.Bytes()
}

func tes3Record(recordType string, flags uint32, subrecords ...[]byte) []byte {
	data := bytes.Join(subrecords, nil)
	buf := &bytes.Buffer{}
	buf.WriteString(recordType)
	binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	binary.Write(buf, binary.LittleEndian, uint32(0)) // unused header field
	binary.Write(buf, binary.LittleEndian, flags)
	buf.Write(data)
	return buf.Bytes()
}

func tes4Group(label string, contents ...[]byte) []byte {
	body := bytes.Join(contents, nil)
	buf := &bytes.Buffer{}
	buf.WriteString("GRUP")
	binary.Write(buf, binary.LittleEndian, uint32(groupHeaderLen+len(body)))
	buf.WriteString(label)
	binary.Write(buf, binary.LittleEndian, uint32(0)) // group type
	binary.Write(buf, binary.LittleEndian, uint32(0)) // stamp
	binary.Write(buf, binary.LittleEndian, uint32(0)) // version/unknown
	buf.Write(body)
	return buf.Bytes()
}

// compressRecordData wraps subrecord bytes the way a compressed TES4 record
// stores them: a 4-byte uncompressed size then a zlib stream.
func compressRecordData(data []byte) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	w := zlib.NewWriter(buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

// nulTerminated encodes a string the way plugin files store it: Windows-1252
// bytes with a trailing NUL.
func nulTerminated(s string) []byte {
	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic("fixture string not representable in Windows-1252: " + s)
	}
	return append(encoded, 0)
}

// tes4HedrData builds a TES4-family HEDR payload: version float, record
// count, next object ID.
func tes4HedrData(recordCount uint32) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, float32(0.94))
	binary.Write(buf, binary.LittleEndian, recordCount)
	binary.Write(buf, binary.LittleEndian, uint32(0x800))
	return buf.Bytes()
}

// tes3HedrData builds Morrowind's 300-byte HEDR payload: version float,
// file type, a 32-byte author field, a 256-byte description field, record
// count.
func tes3HedrData(author, description string, recordCount uint32) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, float32(1.3))
	binary.Write(buf, binary.LittleEndian, uint32(0))

	authorField := make([]byte, 32)
	copy(authorField, author)
	buf.Write(authorField)

	descriptionField := make([]byte, 256)
	copy(descriptionField, description)
	buf.Write(descriptionField)

	binary.Write(buf, binary.LittleEndian, recordCount)
	return buf.Bytes()
}

// tes4HeaderRecord builds a TES4 plugin header with the given flags,
// masters, description and declared record count.
func tes4HeaderRecord(flags uint32, masters []string, description string, recordCount uint32) []byte {
	subrecords := [][]byte{tes4Subrecord("HEDR", tes4HedrData(recordCount))}
	for _, master := range masters {
		subrecords = append(subrecords, tes4Subrecord("MAST", nulTerminated(master)))
		subrecords = append(subrecords, tes4Subrecord("DATA", make([]byte, 8)))
	}
	subrecords = append(subrecords, tes4Subrecord("SNAM", nulTerminated(description)))
	return tes4Record("TES4", flags, 0, subrecords...)
}

// tes3HeaderRecord builds a Morrowind plugin header.
func tes3HeaderRecord(masters []string, description string, recordCount uint32) []byte {
	subrecords := [][]byte{tes3Subrecord("HEDR", tes3HedrData("author", description, recordCount))}
	for _, master := range masters {
		subrecords = append(subrecords, tes3Subrecord("MAST", nulTerminated(master)))
		subrecords = append(subrecords, tes3Subrecord("DATA", make([]byte, 8)))
	}
	return tes3Record("TES3", 0, subrecords...)
}
