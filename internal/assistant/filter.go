// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant implements the tool-calling conversation loop.
// filter.go strips model reasoning markup from final responses.
package assistant

import (
	"regexp"
	"strings"
)

var (
	// thinkBlockRe matches a complete <think>...</think> reasoning block,
	// including multi-line content. An unpaired opening tag never matches.
	thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

	// blankRunRe matches a run of three or more newlines with optional
	// whitespace between them.
	blankRunRe = regexp.MustCompile(`\n\s*\n\s*\n`)
)

// FilterResponse prepares a model response for display: reasoning blocks
// are removed, runs of three or more blank lines collapse to a single blank
// line, and surrounding whitespace is trimmed. Text without any reasoning
// markup passes through unchanged apart from the whitespace cleanup.
func FilterResponse(text string) string {
	cleaned := thinkBlockRe.ReplaceAllString(text, "")
	cleaned = blankRunRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}
