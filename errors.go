// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package espm

import "errors"

// Error kinds surfaced by plugin parsing. Errors returned by this package
// wrap one of these sentinels (or an underlying I/O error); discriminate
// with errors.Is.
var (
	// ErrNonTextPath indicates the plugin path's final component is not
	// valid text and cannot be used as a plugin name.
	ErrNonTextPath = errors.New("non-text file path")

	// ErrNonTextStringData indicates a string subrecord failed strict
	// Windows-1252 decoding.
	ErrNonTextStringData = errors.New("non-text string data")

	// ErrNoFilename indicates the plugin path has no final component.
	ErrNoFilename = errors.New("path has no filename")

	// ErrParsingIncomplete indicates the input ended in the middle of a
	// record, group or subrecord.
	ErrParsingIncomplete = errors.New("parsing incomplete")

	// ErrParsingError indicates the input violated a structural invariant
	// of the plugin format.
	ErrParsingError = errors.New("parsing error")
)
