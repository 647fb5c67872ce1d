// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing chat conversations and the messages they contain,
// including the tool exchanges the assistant runs against the model.
//
// # Key Types
//
//   - Conversation: Container for a chat session; element 0 is always the
//     system prompt message, and history swaps (compaction) are versioned
//   - Message: Single message with role, content, timestamp, and optional
//     tool calls
//   - Role: Message role enumeration (user, assistant, system, tool)
//
// # Usage
//
// Create a new conversation and run a turn:
//
//	conv := model.NewConversation("You are a financial analyst.", "qwen3:8b")
//	conv.AddUserMessage("What is our ROE?")
//	messages := conv.ToOllamaMessages() // includes tool exchanges verbatim
//
// Compaction works against a snapshot so a failed summary never corrupts
// history:
//
//	msgs, version := conv.Snapshot()
//	rewritten := buildCompactedHistory(msgs)
//	if !conv.ReplaceMessages(rewritten, version) {
//	    // conversation changed underneath; nothing was modified
//	}
package model
