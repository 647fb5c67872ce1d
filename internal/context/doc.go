// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package context bounds conversation size by compacting older history.
//
// Long conversations eventually overflow the model's context window.
// Compaction folds the middle of the history into a model-generated
// summary while preserving the system prompt at index 0 and the most
// recent messages verbatim, so the model keeps both its instructions and
// the immediate thread of the conversation.
//
// Compaction is explicit: nothing triggers it automatically. The chat
// surface exposes it as a command, and suggests it when a model call fails
// with a context overflow.
//
// # Usage
//
//	compactor := context.NewCompactor(client, context.Config{Model: "qwen3:8b"})
//
//	result, err := compactor.Compact(ctx, conv, context.DefaultKeepRecent)
//	if err != nil {
//		// history is untouched
//	}
//
// The swap is atomic with respect to the conversation's version: if the
// history changed while the summary was being generated, Compact returns
// ErrConversationChanged and leaves the conversation alone.
package context
