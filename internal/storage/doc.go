// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for finsight.
//
// This package handles saving and loading conversations to/from disk,
// with support for search, listing, and session management.
//
// # Key Types
//
//   - ConversationStore: Main storage interface for conversations
//   - StoredConversation: Serializable conversation with metadata
//   - ConversationMeta: Lightweight metadata for listing
//
// # Usage
//
// Create a store and save a conversation:
//
//	store, err := storage.NewConversationStore()
//	id, err := store.Save(storage.FromConversation(conv))
//
// List and load conversations:
//
//	metas, err := store.List()
//	stored, err := store.Load(metas[0].ID)
//	conv := stored.ToConversation(systemPrompt)
//
// Search conversations:
//
//	results, err := store.Search("query text")
//
// # Storage Location
//
// Conversations are stored in ~/.finsight/conversations/ as JSON files.
package storage
