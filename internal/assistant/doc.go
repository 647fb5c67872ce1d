// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assistant implements the tool-calling conversation loop.
//
// One user turn flows through a fixed state machine: the user message is
// appended to the conversation, the model is invoked with the full history
// and tool catalog, and any requested tool calls are executed strictly in
// the order the model listed them, with one tool-role message appended per
// result. The loop re-invokes the model after each tool round until it
// answers without tool calls or the round cap is reached.
//
// # Key Types
//
//   - Assistant: owns one conversation and drives the loop
//   - ChatFunc: the injectable model-serving boundary
//   - Options: round cap, boundary override, failure log destination
//
// # Usage
//
//	client := ollama.NewClient()
//	conv := model.NewConversation(systemPrompt, "qwen3:8b")
//	a := assistant.New(client, conv, tools.NewDefaultRegistry(), assistant.Options{})
//
//	reply, err := a.Chat(ctx, "What is the ROE for 2M net income on 10M equity?")
//
// A failed model call never panics or corrupts the conversation: the reply
// is an apology string, err carries the cause, and all history appended
// before the failure is kept. Exhausting the round cap returns a fixed
// advisory string without recording a final assistant message.
package assistant
