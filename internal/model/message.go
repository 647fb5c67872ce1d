// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/jeranaias/finsight/internal/ollama"
	"github.com/jeranaias/finsight/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	case RoleTool:
		return "Tool"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Tool calls requested by an assistant message. Stored verbatim so the
	// model sees its own requests when the history is replayed, and so a
	// saved session resumes with valid tool context.
	ToolCalls []ollama.ToolCall `json:"tool_calls,omitempty"`

	// For tool messages
	ToolName  string `json:"tool_name,omitempty"`
	IsSuccess bool   `json:"is_success,omitempty"`

	// Token statistics
	TokenCount int `json:"token_count,omitempty"`

	// Generation metrics (for assistant messages)
	TotalDuration time.Duration `json:"total_duration_ns,omitempty"`
	TokensPerSec  float64       `json:"tokens_per_sec,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) *Message {
	return NewMessage(RoleAssistant, content)
}

// NewAssistantMessageWithTools creates an assistant message carrying the
// model's tool-call directives alongside any content.
func NewAssistantMessageWithTools(content string, toolCalls []ollama.ToolCall) *Message {
	msg := NewMessage(RoleAssistant, content)
	msg.ToolCalls = toolCalls
	return msg
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// NewToolMessage creates a new tool result message. The content is the
// serialized result payload; success records whether the payload carries a
// result or an error, for history display only.
func NewToolMessage(toolName string, result string, success bool) *Message {
	msg := NewMessage(RoleTool, result)
	msg.ToolName = toolName
	msg.IsSuccess = success
	return msg
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// HasToolCalls returns true if the message carries tool-call directives.
func (m *Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// RecordMetrics copies generation metrics from a chat response onto an
// assistant message.
func (m *Message) RecordMetrics(resp *ollama.ChatResponse) {
	if resp == nil {
		return
	}
	m.TokenCount = resp.EvalCount
	m.TotalDuration = resp.TotalTime()
	m.TokensPerSec = resp.TokensPerSecond()
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	return util.TruncateRunes(m.Content, maxLen)
}

// IsEmpty returns true if the message has no content and no tool calls.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0 && len(m.ToolCalls) == 0
}

// EstimateTokens gives a rough estimate of token count.
// Uses the approximation of ~4 characters per token.
func (m *Message) EstimateTokens() int {
	return (len(m.Content) + 3) / 4
}

// FormatStats returns a formatted string of generation statistics,
// e.g. "2.5s | 128 tokens | 51.2 tok/s". Empty for messages without metrics.
func (m *Message) FormatStats() string {
	if m.Role != RoleAssistant || m.TotalDuration == 0 {
		return ""
	}

	return formatSeconds(m.TotalDuration.Seconds()) + " | " +
		util.IntToStr(m.TokenCount) + " tokens | " +
		util.FloatToStringPrec(m.TokensPerSec, 1) + " tok/s"
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}

// formatSeconds formats a duration in seconds as "850ms" or "2.5s".
func formatSeconds(seconds float64) string {
	if seconds < 1 {
		return util.IntToStr(int(seconds*1000)) + "ms"
	}
	return util.FloatToStringPrec(seconds, 1) + "s"
}
