// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
//
// This package implements a client for the Ollama local LLM server,
// supporting non-streaming chat completions with tool calling. Responses
// arrive complete, which keeps the assistant's tool loop simple: every
// round trip yields either final content or a batch of tool calls.
//
// # Key Types
//
//   - Client: HTTP client for Ollama API communication
//   - Message: Chat message with role, content, and optional tool calls
//   - Tool: Tool definition advertised to the model for function calling
//   - ChatResponse: Response structure with message and timing metrics
//   - ClientError: Typed error with sentinel values for common failures
//
// # Usage
//
// Create a client and send a tool-calling chat request:
//
//	client := ollama.NewClient()
//	resp, err := client.ChatWithTools(ctx, "qwen3:8b", messages, tools)
//	if err != nil {
//	    return err
//	}
//	if resp.Message.HasToolCalls() {
//	    // execute the calls, append results, call again
//	}
//
// # Error Handling
//
// Failures map onto a small taxonomy checked with the Is* helpers:
//
//	if ollama.IsNotRunning(err) {
//	    fmt.Println("Start Ollama with: ollama serve")
//	}
//	if ollama.IsModelNotFound(err) {
//	    fmt.Println("Pull the model with: ollama pull qwen3:8b")
//	}
package ollama
