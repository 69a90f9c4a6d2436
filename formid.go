// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package espm

import "strings"

// formIdObjectMask extracts the object index from a raw form ID; the high
// byte is the master index.
const formIdObjectMask = 0x00FFFFFF

// FormId is a fully-qualified record identifier: the object index of a raw
// 32-bit form ID paired with the filename of the plugin that defines it.
//
// Raw form IDs are relative to their plugin's master list, so they cannot be
// compared across plugins. Replacing the master-index byte with the owning
// plugin's name makes the identifier stable; two FormIds are equal when
// their plugin names match case-insensitively and their object indices are
// equal.
type FormId struct {
	PluginName  string
	ObjectIndex uint32
}

// NewFormId resolves a raw form ID against a plugin's declared masters.
// The raw value's high byte indexes the masters list, with any index past
// the end (including the conventional one-past-the-end self reference)
// resolving to the plugin's own name.
func NewFormId(parentPluginName string, masters []string, rawFormId uint32) FormId {
	pluginName := parentPluginName
	if index := int(rawFormId >> 24); index < len(masters) {
		pluginName = masters[index]
	}

	return FormId{
		PluginName:  pluginName,
		ObjectIndex: rawFormId & formIdObjectMask,
	}
}

// Equal reports whether two form IDs identify the same record. Plugin name
// comparison is case-insensitive to match Windows filesystem semantics.
func (f FormId) Equal(other FormId) bool {
	return f.ObjectIndex == other.ObjectIndex &&
		strings.EqualFold(f.PluginName, other.PluginName)
}
