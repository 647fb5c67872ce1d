// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/jeranaias/finsight/internal/ollama"
)

// MaxMessages is the maximum number of messages to keep in conversation history.
// When exceeded, old messages are pruned to prevent unbounded memory growth.
// This is a safety net; intentional shrinking happens through explicit
// compaction.
const MaxMessages = 1000

// DefaultMaxTokens is the assumed context window when none is configured.
const DefaultMaxTokens = 32768

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a complete chat conversation with history and metadata.
//
// Messages[0] is always the system prompt message, created at construction
// and preserved by Clear, compaction swaps, and pruning for the
// conversation's lifetime.
//
// A Conversation is single-writer: one goroutine owns it and mutates it.
// The version counter exists so a compaction built from a snapshot refuses
// to overwrite history that changed under it, not to make the type
// concurrency-safe.
type Conversation struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages; element 0 is the system prompt
	Messages []*Message `json:"messages"`

	// Model configuration
	Model string `json:"model"`

	// Context tracking
	TokensUsed     int     `json:"tokens_used"`
	MaxTokens      int     `json:"max_tokens"`
	ContextPercent float64 `json:"-"` // Computed, not persisted

	// Mutation counter; bumped by every change to Messages
	version uint64
}

// NewConversation creates a new conversation seeded with its system prompt.
// The prompt is injected by the caller (it comes from configuration, not a
// default buried here) and becomes the permanent first message.
func NewConversation(systemPrompt string, modelName string) *Conversation {
	return &Conversation{
		ID:        generateConversationID(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Messages:  []*Message{NewSystemMessage(systemPrompt)},
		Model:     modelName,
		MaxTokens: DefaultMaxTokens,
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message to the conversation.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.version++
	c.UpdatedAt = time.Now()
	c.updateTokenEstimate()
	c.updateTitle()
	c.pruneOldMessages()
}

// AddUserMessage creates and appends a user message.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.AddMessage(msg)
	return msg
}

// AddAssistantMessage creates and appends an assistant message.
func (c *Conversation) AddAssistantMessage(content string) *Message {
	msg := NewAssistantMessage(content)
	c.AddMessage(msg)
	return msg
}

// AddAssistantMessageWithTools creates and appends the raw assistant message
// for a tool-calling turn: content and tool calls exactly as the model sent
// them.
func (c *Conversation) AddAssistantMessageWithTools(content string, toolCalls []ollama.ToolCall) *Message {
	msg := NewAssistantMessageWithTools(content, toolCalls)
	c.AddMessage(msg)
	return msg
}

// AddToolMessage creates and appends a tool result message.
func (c *Conversation) AddToolMessage(toolName string, result string, success bool) *Message {
	msg := NewToolMessage(toolName, result, success)
	c.AddMessage(msg)
	return msg
}

// GetLastMessage returns the most recent message, or nil if empty.
func (c *Conversation) GetLastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// GetLastAssistantMessage returns the most recent assistant message.
func (c *Conversation) GetLastAssistantMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i]
		}
	}
	return nil
}

// GetLastUserMessage returns the most recent user message.
func (c *Conversation) GetLastUserMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return c.Messages[i]
		}
	}
	return nil
}

// SystemPrompt returns the content of the pinned system message.
func (c *Conversation) SystemPrompt() string {
	if len(c.Messages) == 0 {
		return ""
	}
	return c.Messages[0].Content
}

// Clear truncates the history back to just the system prompt message.
func (c *Conversation) Clear() {
	if len(c.Messages) > 1 {
		c.Messages = c.Messages[:1]
	}
	c.version++
	c.UpdatedAt = time.Now()
	c.updateTokenEstimate()
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true when nothing beyond the system prompt exists.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) <= 1
}

// =============================================================================
// SNAPSHOT AND SWAP
// =============================================================================

// Snapshot returns a copy of the message slice along with the current
// version. Compaction reads from the snapshot and swaps with
// ReplaceMessages; the version makes the swap refuse stale input.
func (c *Conversation) Snapshot() ([]*Message, uint64) {
	msgs := make([]*Message, len(c.Messages))
	copy(msgs, c.Messages)
	return msgs, c.version
}

// ReplaceMessages atomically swaps the entire history for a rewritten one,
// but only if the conversation has not changed since the snapshot whose
// version is given. Returns false (history untouched) on a version mismatch
// or an attempt to install a history that does not start with the original
// system message.
func (c *Conversation) ReplaceMessages(msgs []*Message, snapshotVersion uint64) bool {
	if c.version != snapshotVersion {
		return false
	}
	if len(msgs) == 0 || len(c.Messages) == 0 || msgs[0] != c.Messages[0] {
		return false
	}

	c.Messages = msgs
	c.version++
	c.UpdatedAt = time.Now()
	c.updateTokenEstimate()
	return true
}

// =============================================================================
// OLLAMA CONVERSION
// =============================================================================

// ToOllamaMessages converts the conversation to the Ollama wire format.
// Every message is included in order: the system prompt, user and assistant
// turns, assistant tool_calls, and tool results. The model needs the full
// tool exchange as context, so nothing is filtered here.
func (c *Conversation) ToOllamaMessages() []ollama.Message {
	messages := make([]ollama.Message, 0, len(c.Messages))

	for _, msg := range c.Messages {
		messages = append(messages, ollama.Message{
			Role:      msg.Role.String(),
			Content:   msg.Content,
			ToolCalls: msg.ToolCalls,
		})
	}

	return messages
}

// GetHistory returns the message history for display.
func (c *Conversation) GetHistory() []*Message {
	return c.Messages
}

// =============================================================================
// TOKEN TRACKING
// =============================================================================

// EstimateTokens estimates the total token count of the conversation.
func (c *Conversation) EstimateTokens() int {
	total := 0

	for _, msg := range c.Messages {
		total += msg.EstimateTokens()
		// Add overhead for message structure (~4 tokens per message)
		total += 4
	}

	return total
}

// updateTokenEstimate updates the token usage and context percentage.
func (c *Conversation) updateTokenEstimate() {
	c.TokensUsed = c.EstimateTokens()
	if c.MaxTokens > 0 {
		c.ContextPercent = float64(c.TokensUsed) / float64(c.MaxTokens) * 100
	}
}

// GetContextPercent returns the percentage of context window used.
func (c *Conversation) GetContextPercent() float64 {
	return c.ContextPercent
}

// IsContextNearLimit returns true if context usage is above 75%.
func (c *Conversation) IsContextNearLimit() bool {
	return c.ContextPercent >= 75
}

// SetMaxTokens updates the maximum context window.
func (c *Conversation) SetMaxTokens(max int) {
	c.MaxTokens = max
	c.updateTokenEstimate()
}

// =============================================================================
// TITLE MANAGEMENT
// =============================================================================

// updateTitle auto-generates a title from the first user message if not set.
func (c *Conversation) updateTitle() {
	if c.Title != "" {
		return
	}

	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			c.Title = msg.Preview(50)
			return
		}
	}
}

// SetTitle manually sets the conversation title.
func (c *Conversation) SetTitle(title string) {
	c.Title = title
	c.UpdatedAt = time.Now()
}

// GetTitle returns the conversation title or a default.
func (c *Conversation) GetTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "New Conversation"
}


// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateConversationID creates a unique conversation ID.
func generateConversationID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "conv_" + hex.EncodeToString(bytes)
}

// Clone creates a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{
		ID:         c.ID,
		Title:      c.Title,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		Model:      c.Model,
		TokensUsed: c.TokensUsed,
		MaxTokens:  c.MaxTokens,
		Messages:   make([]*Message, len(c.Messages)),
	}

	for i, msg := range c.Messages {
		msgCopy := *msg
		clone.Messages[i] = &msgCopy
	}

	return clone
}

// pruneOldMessages removes old messages when conversation history exceeds
// MaxMessages. System messages (the prompt and any compaction summary) are
// always preserved.
func (c *Conversation) pruneOldMessages() {
	if len(c.Messages) <= MaxMessages {
		return
	}

	var systemMessages []*Message
	var otherMessages []*Message
	for _, msg := range c.Messages {
		if msg.Role == RoleSystem {
			systemMessages = append(systemMessages, msg)
		} else {
			otherMessages = append(otherMessages, msg)
		}
	}

	if len(otherMessages) > MaxMessages {
		startIdx := len(otherMessages) - MaxMessages
		otherMessages = otherMessages[startIdx:]
	}

	c.Messages = make([]*Message, 0, len(systemMessages)+len(otherMessages))
	c.Messages = append(c.Messages, systemMessages...)
	c.Messages = append(c.Messages, otherMessages...)
	c.version++
}
