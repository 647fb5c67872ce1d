// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tools provides the financial calculation tools exposed to the model.
//
// Tools are deterministic, schema-described computations that the model
// invokes through Ollama's tool calling API. Each tool validates its raw
// arguments into a typed request before computing, so a missing or mistyped
// argument becomes a recoverable error payload instead of a crash.
//
// # Key Types
//
//   - Tool: a named computation with a parameter schema
//   - Registry: ordered catalog of the available tools
//   - Executor: dispatches tool calls and keeps an audit history
//   - ValidationError: reports an invalid or missing argument
//
// # Usage
//
//	registry := tools.NewDefaultRegistry()
//	executor := tools.NewExecutor(registry)
//
//	payload := executor.Execute(ctx, "calculate_roe", map[string]interface{}{
//		"net_income":         2000000.0,
//		"shareholder_equity": 10000000.0,
//	})
//	result := tools.MarshalResult(payload)
//
// Failures of any kind come back as a payload with an "error" key. The
// serialized payload is sent back to the model as a tool-role message,
// letting it correct the call or explain the problem to the user.
package tools
