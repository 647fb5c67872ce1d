// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the financial calculation tools exposed to the model.
// result.go serializes tool result payloads for the model.
package tools

import (
	"bytes"
	"encoding/json"
	"strings"
)

// MarshalResult serializes a tool result payload to compact JSON.
//
// HTML escaping is disabled so comparison operators in health warnings such
// as "gross margin low (<20%)" reach the model literally instead of as
// < escapes, which smaller models tend to echo back verbatim.
func MarshalResult(payload map[string]interface{}) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(payload); err != nil {
		return `{"error":"failed to serialize tool result"}`
	}

	// Encode appends a trailing newline
	return strings.TrimRight(buf.String(), "\n")
}
